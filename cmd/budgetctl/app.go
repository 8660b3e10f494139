package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/internal/notify"
	"github.com/solstice035/monzo-analysis/internal/store"
	"github.com/solstice035/monzo-analysis/internal/types"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// defaultSyncDays is how far back sync reaches when the database holds no transactions
const defaultSyncDays = 90

// bank is the part of the Monzo client that sync uses
type bank interface {
	ListPots(ctx context.Context, accountID string, activeOnly bool) ([]*budget.Pot, error)
	ListTransactions(ctx context.Context, accountID string, since time.Time) ([]*budget.Transaction, error)
}

type app struct {
	store   *store.Store
	tracker *budget.Tracker
	slack   *notify.Slack
	bank    bank
	logger  types.Logger
	out     io.Writer

	accountID string
	today     budget.Date
	json      bool

	closed bool
}

// Close flushes error reports and closes the database
func (a *app) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.tracker.Close()
	_ = a.store.Close()
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	if a.accountID == "" {
		return errors.New("no account: pass -account or set monzo.account_id")
	}

	switch command {
	case "dashboard":
		return a.dashboard(ctx)
	case "sinking":
		return a.sinking(ctx)
	case "pots":
		return a.pots(ctx)
	case "recurring":
		return a.recurring(ctx, args)
	case "alerts":
		return a.alerts(ctx)
	case "digest":
		return a.digest(ctx)
	case "sync":
		return a.sync(ctx, args)
	case "orphans":
		return a.orphans(ctx)
	default:
		return errors.Errorf("unknown command %q", command)
	}
}

func (a *app) dashboard(ctx context.Context) error {
	summary, err := a.tracker.Groups.DashboardSummary(ctx, a.accountID, a.today)
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(summary)
	}
	_, err = fmt.Fprintln(a.out, renderDashboard(summary))
	return err
}

func (a *app) sinking(ctx context.Context) error {
	statuses, err := a.tracker.SinkingFunds.AllStatuses(ctx, a.accountID, a.today)
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(statuses)
	}
	_, err = fmt.Fprintln(a.out, renderSinkingFunds(statuses))
	return err
}

func (a *app) pots(ctx context.Context) error {
	summary, err := a.tracker.SinkingFunds.Pots(ctx, a.accountID)
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(summary)
	}
	_, err = fmt.Fprintln(a.out, renderPots(summary))
	return err
}

func (a *app) recurring(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recurring", flag.ContinueOnError)
	fs.SetOutput(a.out)
	minOccurrences := fs.Int("min", 0, "Minimum occurrences (0 uses the configured default)")
	variance := fs.Float64("variance", 0, "Maximum interval coefficient of variation (0 uses the configured default)")
	send := fs.Bool("slack", false, "Also post the digest to Slack")
	if err := fs.Parse(args); err != nil {
		return err
	}

	patterns, err := a.tracker.Recurring.Detect(ctx, a.accountID, a.today, &budget.DetectOptions{
		MinOccurrences:      *minOccurrences,
		MaxIntervalVariance: *variance,
	})
	if err != nil {
		return err
	}

	if *send {
		if err := a.slack.Send(ctx, notify.FormatRecurringDigest(patterns)); err != nil {
			return err
		}
	}

	if a.json {
		return a.writeJSON(patterns)
	}
	_, err = fmt.Fprintln(a.out, renderRecurring(patterns))
	return err
}

func (a *app) alerts(ctx context.Context) error {
	statuses, err := a.tracker.Alerts.Check(ctx, a.accountID, a.today)
	if err != nil {
		return err
	}
	sent, err := a.slack.NotifyBudgetAlerts(ctx, statuses)
	if err != nil {
		return err
	}

	funds, err := a.tracker.SinkingFunds.AllStatuses(ctx, a.accountID, a.today)
	if err != nil {
		return err
	}
	behind, err := a.slack.NotifySinkingFunds(ctx, funds)
	if err != nil {
		return err
	}

	a.logger.Info("Alerts checked", "budget_alerts", sent, "sinking_fund_alerts", behind, "slack", a.slack.Enabled())
	if a.json {
		return a.writeJSON(statuses)
	}
	_, err = fmt.Fprintln(a.out, renderAlerts(statuses))
	return err
}

func (a *app) digest(ctx context.Context) error {
	txs, err := a.store.ListTransactions(ctx, &budget.TransactionQuery{
		AccountID: a.accountID,
		Since:     a.today,
		Until:     a.today,
		SpendOnly: true,
	})
	if err != nil {
		return err
	}

	daily := budget.ComputeDailySpend(txs, a.today)
	if daily == nil {
		a.logger.Info("No spending to report", "date", a.today.String())
		return nil
	}

	if err := a.slack.Send(ctx, notify.FormatDailySummary(daily, a.accountID)); err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(daily)
	}
	_, err = fmt.Fprintln(a.out, notify.FormatDailySummary(daily, a.accountID))
	return err
}

func (a *app) sync(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(a.out)
	days := fs.Int("days", defaultSyncDays, "Days of history to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if a.bank == nil {
		return errors.New("sync needs monzo.access_token and monzo.account_id")
	}

	pots, err := a.bank.ListPots(ctx, a.accountID, false)
	if err != nil {
		return err
	}
	for _, p := range pots {
		if err := a.store.UpsertPot(ctx, p); err != nil {
			return err
		}
	}

	since := a.today.AddDays(-*days).Time
	txs, err := a.bank.ListTransactions(ctx, a.accountID, since)
	if err != nil {
		return err
	}
	categorised, err := a.store.SaveTransactions(ctx, txs)
	if err != nil {
		return err
	}

	a.logger.Info("Sync complete", "pots", len(pots), "transactions", len(txs), "categorised", categorised)
	if err := a.slack.Send(ctx, notify.FormatSyncComplete(len(txs), categorised)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, notify.FormatSyncComplete(len(txs), categorised))
	return err
}

func (a *app) orphans(ctx context.Context) error {
	moved, err := a.store.MigrateOrphanedBudgets(ctx, a.accountID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Moved %d budgets into %s\n", moved, store.MiscellaneousGroupName)
	return err
}

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
