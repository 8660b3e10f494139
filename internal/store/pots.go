package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// UpsertPot inserts or refreshes a pot keyed by its bank id
func (s *Store) UpsertPot(ctx context.Context, p *budget.Pot) error {
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = s.timestamp()
	}

	_, err := s.db.ExecContext(ctx, s.queries.MustLoad("pots/upsert.sql"),
		p.ID, p.AccountID, p.Name, p.Balance, p.Deleted, updated.UTC())
	return errors.Wrapf(err, "failed to upsert pot %s", p.ID)
}

// GetPot returns the pot or ErrNotFound
func (s *Store) GetPot(ctx context.Context, potID string) (*budget.Pot, error) {
	p, err := scanPot(s.db.QueryRowContext(ctx, s.queries.MustLoad("pots/get.sql"), potID))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(budget.ErrNotFound, "pot %s", potID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pot")
	}
	return p, nil
}

// ListPots returns the account's pots by name, leaving out deleted ones when activeOnly is set
func (s *Store) ListPots(ctx context.Context, accountID string, activeOnly bool) ([]*budget.Pot, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustLoad("pots/list.sql"), accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pots")
	}
	defer rows.Close()

	out := []*budget.Pot{}
	for rows.Next() {
		p, err := scanPot(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan pot")
		}
		if activeOnly && p.Deleted {
			continue
		}
		out = append(out, p)
	}
	return out, errors.Wrap(rows.Err(), "failed to list pots")
}

// ListPotContributions returns the transfers into potID dated within [since, until],
// most recent first
func (s *Store) ListPotContributions(ctx context.Context, accountID, potID string, since, until budget.Date) ([]*budget.PotContribution, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustLoad("transactions/pot_transfers.sql"), accountID, potID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pot transfers")
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	out := budget.PotContributions(txs, potID, since, until)
	if out == nil {
		out = []*budget.PotContribution{}
	}
	return out, nil
}

func scanPot(row rowScanner) (*budget.Pot, error) {
	var p budget.Pot
	if err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.Balance, &p.Deleted, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
