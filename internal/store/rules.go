package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// CreateRule assigns r an id and inserts it. A zero priority becomes the default.
func (s *Store) CreateRule(ctx context.Context, r *budget.Rule) (*budget.Rule, error) {
	if err := validateRule(r); err != nil {
		return nil, err
	}

	out := *r
	if out.Priority == 0 {
		out.Priority = budget.DefaultRulePriority
	}
	now := s.timestamp()
	out.ID = uuid.New().String()
	out.CreatedAt = now
	out.UpdatedAt = now

	conditions, err := json.Marshal(out.Conditions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode rule conditions")
	}

	_, err = s.db.ExecContext(ctx, s.queries.MustLoad("rules/insert.sql"),
		out.ID, out.Name, string(conditions), out.TargetCategory, out.Priority, out.Enabled,
		out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert rule")
	}
	return &out, nil
}

// GetRule returns one rule or ErrNotFound
func (s *Store) GetRule(ctx context.Context, ruleID string) (*budget.Rule, error) {
	r, err := scanRule(s.db.QueryRowContext(ctx, s.queries.MustLoad("rules/get.sql"), ruleID))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(budget.ErrNotFound, "rule %s", ruleID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rule")
	}
	return r, nil
}

// ListRules returns every rule, highest priority first
func (s *Store) ListRules(ctx context.Context) ([]*budget.Rule, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustLoad("rules/list.sql"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rules")
	}
	defer rows.Close()

	out := []*budget.Rule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "failed to list rules")
}

// UpdateRule replaces the name, conditions, target, priority and enabled flag of a rule
func (s *Store) UpdateRule(ctx context.Context, r *budget.Rule) (*budget.Rule, error) {
	if err := validateRule(r); err != nil {
		return nil, err
	}

	conditions, err := json.Marshal(r.Conditions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode rule conditions")
	}

	out := *r
	out.UpdatedAt = s.timestamp()
	err = s.execOne(ctx, s.db, "rules/update.sql",
		out.Name, string(conditions), out.TargetCategory, out.Priority, out.Enabled, out.UpdatedAt, out.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update rule %s", r.ID)
	}
	return s.GetRule(ctx, r.ID)
}

// DeleteRule removes a rule, returning ErrNotFound when it does not exist
func (s *Store) DeleteRule(ctx context.Context, ruleID string) error {
	err := s.execOne(ctx, s.db, "rules/delete.sql", ruleID)
	return errors.Wrapf(err, "failed to delete rule %s", ruleID)
}

func validateRule(r *budget.Rule) error {
	errs := &budget.ValidationErrors{}
	if strings.TrimSpace(r.Name) == "" {
		errs.Errors = append(errs.Errors, &budget.ValidationError{Field: "name", Message: "must not be empty"})
	}
	if strings.TrimSpace(r.TargetCategory) == "" {
		errs.Errors = append(errs.Errors, &budget.ValidationError{Field: "targetCategory", Message: "must not be empty"})
	}
	if len(errs.Errors) > 0 {
		return errs
	}
	return nil
}

func scanRule(row rowScanner) (*budget.Rule, error) {
	var r budget.Rule
	var conditions string
	err := row.Scan(&r.ID, &r.Name, &conditions, &r.TargetCategory, &r.Priority, &r.Enabled, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(conditions), &r.Conditions); err != nil {
		return nil, errors.Wrapf(err, "failed to decode conditions of rule %s", r.ID)
	}
	return &r, nil
}
