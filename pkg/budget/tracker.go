package budget

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// Tracker is the entry point to the budget engines. It reads through the configured
// stores and never writes.
type Tracker struct {
	// Service interfaces
	Budgets      BudgetService
	Groups       GroupService
	SinkingFunds SinkingFundService
	Recurring    RecurringService
	Alerts       AlertService

	// Internal fields
	budgets       BudgetStore
	transactions  TransactionStore
	pots          PotSource
	contributions ContributionSource
	options       *TrackerOptions
}

// TrackerOptions configures the tracker
type TrackerOptions struct {
	// Budgets reads budgets and groups (required)
	Budgets BudgetStore

	// Transactions reads transactions (required)
	Transactions TransactionStore

	// Pots looks up live pot balances for sinking funds
	Pots PotSource

	// Contributions supplies pot transfer history for sinking funds
	Contributions ContributionSource

	// Detect holds the default recurring detection settings
	Detect *DetectOptions

	// Logger for debug logging
	Logger Logger

	// Hooks for observability
	Hooks *Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Hooks observe every tracker operation
type Hooks struct {
	OnOperation func(ctx context.Context, op string, duration time.Duration)
	OnError     func(ctx context.Context, op string, err error)
}

// NewTracker creates a tracker over the given stores
func NewTracker(opts *TrackerOptions) (*Tracker, error) {
	if opts == nil {
		opts = &TrackerOptions{}
	}
	if opts.Budgets == nil || opts.Transactions == nil {
		return nil, WrapError(ErrNoStore, "missing_store", "budget and transaction stores are required")
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		if err := sentry.Init(sentryOpts); err != nil {
			// Log error but don't fail tracker creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	t := &Tracker{
		budgets:       opts.Budgets,
		transactions:  opts.Transactions,
		pots:          opts.Pots,
		contributions: opts.Contributions,
		options:       opts,
	}

	t.initServices()

	return t, nil
}

// initServices initializes all service implementations
func (t *Tracker) initServices() {
	t.Budgets = &budgetService{tracker: t}
	t.Groups = &groupService{tracker: t}
	t.SinkingFunds = &sinkingFundService{tracker: t}
	t.Recurring = &recurringService{tracker: t}
	t.Alerts = &alertService{tracker: t}
}

// Close flushes any pending Sentry events
func (t *Tracker) Close() {
	sentry.Flush(2 * time.Second)
}

// observe runs one named operation, reporting failures to Sentry and the hooks
func (t *Tracker) observe(ctx context.Context, op string, tags map[string]string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if err != nil {
		capture := func(hub *sentry.Hub) {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("tracker.operation", op)
				for k, v := range tags {
					scope.SetTag(k, v)
				}
				scope.SetContext("tracker", map[string]interface{}{
					"operation": op,
					"duration":  duration.String(),
				})
				hub.CaptureException(err)
			})
		}
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			capture(hub)
		} else {
			capture(sentry.CurrentHub())
		}

		t.options.Logger.Error("Operation failed", "operation", op, "error", err, "duration", duration)
	} else {
		t.options.Logger.Debug("Operation complete", "operation", op, "duration", duration)
	}

	if t.options.Hooks != nil {
		if t.options.Hooks.OnOperation != nil {
			t.options.Hooks.OnOperation(ctx, op, duration)
		}
		if err != nil && t.options.Hooks.OnError != nil {
			t.options.Hooks.OnError(ctx, op, err)
		}
	}

	return err
}

// detectDefaults returns the configured detection settings merged under overrides
func (t *Tracker) detectDefaults(overrides *DetectOptions) *DetectOptions {
	out := DetectOptions{}
	if t.options.Detect != nil {
		out = *t.options.Detect
	}
	if overrides != nil {
		if overrides.MinOccurrences > 0 {
			out.MinOccurrences = overrides.MinOccurrences
		}
		if overrides.MaxIntervalVariance > 0 {
			out.MaxIntervalVariance = overrides.MaxIntervalVariance
		}
		if !overrides.Today.IsZero() {
			out.Today = overrides.Today
		}
	}
	return &out
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
