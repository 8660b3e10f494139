// Package store persists budgets, groups, pots, transactions and category rules in
// SQLite and serves them to the budget engines.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/internal/queries"
	"github.com/solstice035/monzo-analysis/internal/types"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// Store is a SQLite-backed implementation of the engines' read collaborators
// plus the lifecycle writes that feed them
type Store struct {
	db      *sql.DB
	queries *queries.Loader
	logger  types.Logger
	now     func() time.Time
}

// Options configures the store
type Options struct {
	// Logger for debug logging
	Logger types.Logger

	// Now supplies record timestamps (defaults to time.Now)
	Now func() time.Time
}

var (
	_ budget.BudgetStore        = (*Store)(nil)
	_ budget.TransactionStore   = (*Store)(nil)
	_ budget.PotSource          = (*Store)(nil)
	_ budget.PotLister          = (*Store)(nil)
	_ budget.ContributionSource = (*Store)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Open opens (or creates) the database at path and applies pending migrations
func Open(path string, opts *Options) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	s, err := New(db, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database, applying pending migrations
func New(db *sql.DB, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := Migrate(db); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return &Store{
		db:      db,
		queries: queries.NewLoader(),
		logger:  opts.Logger,
		now:     opts.Now,
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// timestamp returns the current time in UTC truncated to seconds
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// execOne runs the named statement and reports ErrNotFound when no row changed
func (s *Store) execOne(ctx context.Context, q querier, name string, args ...interface{}) error {
	res, err := q.ExecContext(ctx, s.queries.MustLoad(name), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return budget.ErrNotFound
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
