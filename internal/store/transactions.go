package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// SaveTransactions inserts or refreshes transactions keyed by their bank id.
//
// The incoming category is stored as the bank category. Enabled category rules are run
// against each transaction and the first match becomes its custom category, which takes
// precedence when transactions are read back. A custom category already on record is
// kept. It returns the number of transactions a rule categorised.
func (s *Store) SaveTransactions(ctx context.Context, txs []*budget.Transaction) (int, error) {
	rules, err := s.ListRules(ctx)
	if err != nil {
		return 0, err
	}

	var categorised int
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		query := s.queries.MustLoad("transactions/upsert.sql")
		now := s.timestamp()

		for _, t := range txs {
			var custom *string
			if category, ok := budget.Categorise(t, rules); ok {
				custom = &category
				categorised++
			}

			metadata, err := encodeMetadata(t.Metadata)
			if err != nil {
				return errors.Wrapf(err, "failed to encode metadata of %s", t.ID)
			}

			var settled *time.Time
			if t.SettledAt != nil {
				utc := t.SettledAt.UTC()
				settled = &utc
			}

			_, err = tx.ExecContext(ctx, query,
				t.ID, t.AccountID, t.Amount, t.MerchantName, t.Category, custom,
				t.Description, t.OccurredAt.UTC(), settled, metadata, now, now)
			if err != nil {
				return errors.Wrapf(err, "failed to save transaction %s", t.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Saved transactions", "count", len(txs), "categorised", categorised)
	return categorised, nil
}

// SetTransactionCategory overrides the category of one transaction; nil clears the override
func (s *Store) SetTransactionCategory(ctx context.Context, transactionID string, category *string) error {
	err := s.execOne(ctx, s.db, "transactions/set_category.sql", category, s.timestamp(), transactionID)
	return errors.Wrapf(err, "failed to set category of transaction %s", transactionID)
}

// ListTransactions returns the transactions selected by q, oldest first
func (s *Store) ListTransactions(ctx context.Context, q *budget.TransactionQuery) ([]*budget.Transaction, error) {
	if q == nil {
		q = &budget.TransactionQuery{}
	}

	var where []string
	var args []interface{}

	if q.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, q.AccountID)
	}
	if len(q.Categories) > 0 {
		where = append(where, "COALESCE(custom_category, monzo_category) IN (?"+strings.Repeat(", ?", len(q.Categories)-1)+")")
		for _, c := range q.Categories {
			args = append(args, c)
		}
	}
	if !q.Since.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, q.Since.String())
	}
	if !q.Until.IsZero() {
		where = append(where, "occurred_at < ?")
		args = append(args, q.Until.AddDays(1).String())
	}
	if q.SpendOnly {
		where = append(where, "amount < 0")
	}
	if q.MerchantOnly {
		where = append(where, "merchant_name IS NOT NULL AND merchant_name != ''")
	}

	query := s.queries.MustLoad("transactions/list.sql")
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY occurred_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]*budget.Transaction, error) {
	out := []*budget.Transaction{}
	for rows.Next() {
		var t budget.Transaction
		var metadata sql.NullString
		err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.MerchantName, &t.Category,
			&t.Description, &t.OccurredAt, &t.SettledAt, &metadata)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan transaction")
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &t.Metadata); err != nil {
				return nil, errors.Wrapf(err, "failed to decode metadata of %s", t.ID)
			}
		}
		out = append(out, &t)
	}
	return out, errors.Wrap(rows.Err(), "failed to list transactions")
}

func encodeMetadata(m map[string]string) (*string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}
