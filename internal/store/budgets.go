package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// BudgetPatch holds the fields of a partial budget update. Nil fields are left as they are.
type BudgetPatch struct {
	GroupID      *string
	Name         *string
	Category     *string
	Amount       *int64
	Period       *budget.PeriodKind
	ResetDay     *int
	PeriodType   *budget.PeriodType
	AnnualAmount *int64
	TargetMonth  *int
	LinkedPotID  *string
}

func (p *BudgetPatch) apply(b *budget.Budget) {
	if p.GroupID != nil {
		b.GroupID = p.GroupID
	}
	if p.Name != nil {
		b.Name = p.Name
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.ResetDay != nil {
		b.ResetDay = *p.ResetDay
	}
	if p.PeriodType != nil {
		b.PeriodType = *p.PeriodType
	}
	if p.AnnualAmount != nil {
		b.AnnualAmount = p.AnnualAmount
	}
	if p.TargetMonth != nil {
		b.TargetMonth = p.TargetMonth
	}
	if p.LinkedPotID != nil {
		b.LinkedPotID = p.LinkedPotID
	}
}

// CreateBudget validates b, assigns it an id and inserts it.
// An unset period is monthly, an unset reset day is 1 and an unset period type follows
// the period.
func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) (*budget.Budget, error) {
	out := *b
	if out.Period == "" {
		out.Period = budget.PeriodMonthly
	}
	if out.ResetDay == 0 {
		out.ResetDay = 1
	}
	if out.PeriodType == "" {
		out.PeriodType = budget.PeriodType(out.Period)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	out.ID = uuid.New().String()
	out.CreatedAt = now
	out.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.queries.MustLoad("budgets/insert.sql"),
		out.ID, out.AccountID, out.GroupID, out.Name, out.Category, out.Amount,
		out.Period, out.ResetDay, out.PeriodType, out.AnnualAmount, out.TargetMonth,
		out.LinkedPotID, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert budget")
	}

	s.logger.Debug("Created budget", "id", out.ID, "category", out.Category)
	return &out, nil
}

// GetBudget returns one budget or ErrNotFound
func (s *Store) GetBudget(ctx context.Context, budgetID string) (*budget.Budget, error) {
	return s.getBudget(ctx, s.db, budgetID)
}

func (s *Store) getBudget(ctx context.Context, q querier, budgetID string) (*budget.Budget, error) {
	b, err := scanBudget(q.QueryRowContext(ctx, s.queries.MustLoad("budgets/get.sql"), budgetID))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(budget.ErrNotFound, "budget %s", budgetID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get budget")
	}
	return b, nil
}

// ListBudgets returns every budget of the account
func (s *Store) ListBudgets(ctx context.Context, accountID string) ([]*budget.Budget, error) {
	return s.listBudgets(ctx, s.db, "budgets/list.sql", accountID)
}

func (s *Store) listBudgets(ctx context.Context, q querier, name string, args ...interface{}) ([]*budget.Budget, error) {
	rows, err := q.QueryContext(ctx, s.queries.MustLoad(name), args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list budgets")
	}
	defer rows.Close()

	out := []*budget.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan budget")
		}
		out = append(out, b)
	}
	return out, errors.Wrap(rows.Err(), "failed to list budgets")
}

// UpdateBudget applies the non-nil fields of patch and returns the updated budget
func (s *Store) UpdateBudget(ctx context.Context, budgetID string, patch *BudgetPatch) (*budget.Budget, error) {
	var out *budget.Budget

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := s.getBudget(ctx, tx, budgetID)
		if err != nil {
			return err
		}

		if patch != nil {
			patch.apply(b)
		}
		if err := b.Validate(); err != nil {
			return err
		}
		b.UpdatedAt = s.timestamp()

		err = s.execOne(ctx, tx, "budgets/update.sql",
			b.GroupID, b.Name, b.Category, b.Amount, b.Period, b.ResetDay, b.PeriodType,
			b.AnnualAmount, b.TargetMonth, b.LinkedPotID, b.UpdatedAt, b.ID)
		if err != nil {
			return errors.Wrap(err, "failed to update budget")
		}

		out = b
		return nil
	})

	return out, err
}

// DeleteBudget removes a budget, returning ErrNotFound when it does not exist
func (s *Store) DeleteBudget(ctx context.Context, budgetID string) error {
	err := s.execOne(ctx, s.db, "budgets/delete.sql", budgetID)
	return errors.Wrapf(err, "failed to delete budget %s", budgetID)
}

func scanBudget(row rowScanner) (*budget.Budget, error) {
	var b budget.Budget
	err := row.Scan(
		&b.ID, &b.AccountID, &b.GroupID, &b.Name, &b.Category, &b.Amount, &b.Period,
		&b.ResetDay, &b.PeriodType, &b.AnnualAmount, &b.TargetMonth, &b.LinkedPotID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
