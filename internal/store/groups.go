package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/pkg/budget"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// MiscellaneousGroupName is the group that collects budgets without one
	MiscellaneousGroupName = "Miscellaneous"

	// MiscellaneousGroupIcon is the icon of the miscellaneous group
	MiscellaneousGroupIcon = "📦"

	// MiscellaneousGroupOrder sorts the miscellaneous group last
	MiscellaneousGroupOrder = 999
)

// GroupPatch holds the fields of a partial group update. Nil fields are left as they are.
type GroupPatch struct {
	Name         *string
	Icon         *string
	DisplayOrder *int
}

// CreateGroup assigns g an id and inserts it
func (s *Store) CreateGroup(ctx context.Context, g *budget.BudgetGroup) (*budget.BudgetGroup, error) {
	return s.createGroup(ctx, s.db, g)
}

func (s *Store) createGroup(ctx context.Context, q querier, g *budget.BudgetGroup) (*budget.BudgetGroup, error) {
	if strings.TrimSpace(g.Name) == "" {
		return nil, &budget.ValidationError{Field: "name", Message: "must not be empty"}
	}

	out := *g
	now := s.timestamp()
	out.ID = uuid.New().String()
	out.CreatedAt = now
	out.UpdatedAt = now
	out.Budgets = []*budget.Budget{}

	_, err := q.ExecContext(ctx, s.queries.MustLoad("groups/insert.sql"),
		out.ID, out.AccountID, out.Name, out.Icon, out.DisplayOrder, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert group")
	}

	s.logger.Debug("Created budget group", "id", out.ID, "name", out.Name)
	return &out, nil
}

// GetGroup returns one group with its budgets, or ErrNotFound
func (s *Store) GetGroup(ctx context.Context, groupID string) (*budget.BudgetGroup, error) {
	g, err := scanGroup(s.db.QueryRowContext(ctx, s.queries.MustLoad("groups/get.sql"), groupID))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(budget.ErrNotFound, "group %s", groupID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get group")
	}

	g.Budgets, err = s.listBudgets(ctx, s.db, "budgets/list_by_group.sql", groupID)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGroups returns the account's groups in display order with their budgets populated
func (s *Store) ListGroups(ctx context.Context, accountID string) ([]*budget.BudgetGroup, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustLoad("groups/list.sql"), accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list groups")
	}
	defer rows.Close()

	groups := []*budget.BudgetGroup{}
	byID := map[string]*budget.BudgetGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan group")
		}
		groups = append(groups, g)
		byID[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list groups")
	}
	rows.Close()

	budgets, err := s.ListBudgets(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, b := range budgets {
		if b.GroupID == nil {
			continue
		}
		if g, ok := byID[*b.GroupID]; ok {
			g.Budgets = append(g.Budgets, b)
		}
	}

	return groups, nil
}

// UpdateGroup applies the non-nil fields of patch and returns the updated group
func (s *Store) UpdateGroup(ctx context.Context, groupID string, patch *GroupPatch) (*budget.BudgetGroup, error) {
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if patch != nil {
		if patch.Name != nil {
			if strings.TrimSpace(*patch.Name) == "" {
				return nil, &budget.ValidationError{Field: "name", Message: "must not be empty"}
			}
			g.Name = *patch.Name
		}
		if patch.Icon != nil {
			g.Icon = patch.Icon
		}
		if patch.DisplayOrder != nil {
			g.DisplayOrder = *patch.DisplayOrder
		}
	}
	g.UpdatedAt = s.timestamp()

	err = s.execOne(ctx, s.db, "groups/update.sql", g.Name, g.Icon, g.DisplayOrder, g.UpdatedAt, g.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update group")
	}
	return g, nil
}

// DeleteGroup removes a group together with its budgets
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	err := s.execOne(ctx, s.db, "groups/delete.sql", groupID)
	return errors.Wrapf(err, "failed to delete group %s", groupID)
}

// EnsureMiscellaneousGroup returns the account's miscellaneous group, creating it if needed
func (s *Store) EnsureMiscellaneousGroup(ctx context.Context, accountID string) (*budget.BudgetGroup, error) {
	return s.ensureMiscellaneousGroup(ctx, s.db, accountID)
}

func (s *Store) ensureMiscellaneousGroup(ctx context.Context, q querier, accountID string) (*budget.BudgetGroup, error) {
	g, err := scanGroup(q.QueryRowContext(ctx, s.queries.MustLoad("groups/find_by_name.sql"), accountID, MiscellaneousGroupName))
	switch {
	case err == nil:
		return g, nil
	case err != sql.ErrNoRows:
		return nil, errors.Wrap(err, "failed to find miscellaneous group")
	}

	icon := MiscellaneousGroupIcon
	return s.createGroup(ctx, q, &budget.BudgetGroup{
		AccountID:    accountID,
		Name:         MiscellaneousGroupName,
		Icon:         &icon,
		DisplayOrder: MiscellaneousGroupOrder,
	})
}

// MigrateOrphanedBudgets moves the account's ungrouped budgets into the miscellaneous
// group, naming unnamed ones after their category. It returns the number moved.
func (s *Store) MigrateOrphanedBudgets(ctx context.Context, accountID string) (int, error) {
	var moved int

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		orphans, err := s.listBudgets(ctx, tx, "budgets/list_ungrouped.sql", accountID)
		if err != nil {
			return err
		}
		if len(orphans) == 0 {
			return nil
		}

		g, err := s.ensureMiscellaneousGroup(ctx, tx, accountID)
		if err != nil {
			return err
		}

		now := s.timestamp()
		for _, b := range orphans {
			b.GroupID = &g.ID
			if b.Name == nil {
				name := CategoryDisplayName(b.Category)
				b.Name = &name
			}
			err := s.execOne(ctx, tx, "budgets/update.sql",
				b.GroupID, b.Name, b.Category, b.Amount, b.Period, b.ResetDay, b.PeriodType,
				b.AnnualAmount, b.TargetMonth, b.LinkedPotID, now, b.ID)
			if err != nil {
				return errors.Wrapf(err, "failed to move budget %s", b.ID)
			}
		}

		moved = len(orphans)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if moved > 0 {
		s.logger.Info("Moved orphaned budgets", "account", accountID, "count", moved)
	}
	return moved, nil
}

// CategoryDisplayName turns a category key such as "eating_out" into "Eating Out"
func CategoryDisplayName(category string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(category, "_", " "))
}

func scanGroup(row rowScanner) (*budget.BudgetGroup, error) {
	g := budget.BudgetGroup{Budgets: []*budget.Budget{}}
	err := row.Scan(&g.ID, &g.AccountID, &g.Name, &g.Icon, &g.DisplayOrder, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
