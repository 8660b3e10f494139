// Command budgetctl reports budget, sinking fund and recurring payment status from the
// local database and sends alerts to Slack.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/solstice035/monzo-analysis/internal/config"
	"github.com/solstice035/monzo-analysis/internal/logging"
	"github.com/solstice035/monzo-analysis/internal/monzo"
	"github.com/solstice035/monzo-analysis/internal/notify"
	"github.com/solstice035/monzo-analysis/internal/store"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

const usage = `Usage: budgetctl [flags] <command> [command flags]

Commands:
  dashboard   budget groups and overall spend for the current period
  sinking     sinking fund contribution positions
  pots        pot balances split by budget linkage
  recurring   detected recurring payments
  alerts      send warning and exceeded budget alerts to Slack
  digest      send the daily spending summary to Slack
  sync        fetch pots and transactions from Monzo into the database
  orphans     move ungrouped budgets into the Miscellaneous group

Flags:
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}

	account := flag.String("account", "", "Account id (defaults to monzo.account_id)")
	date := flag.String("date", "", "Reference date as YYYY-MM-DD (defaults to today)")
	asJSON := flag.Bool("json", false, "Print JSON instead of tables")
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, os.Stderr).With("command", flag.Arg(0))

	today := budget.DateOf(time.Now())
	if *date != "" {
		today, err = budget.ParseDate(*date)
		if err != nil {
			logger.Error("Invalid date", "error", err)
			os.Exit(2)
		}
	}

	accountID := *account
	if accountID == "" {
		accountID = cfg.Monzo.AccountID
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("Failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	a.accountID = accountID
	a.today = today
	a.json = *asJSON

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		logger.Error("Command failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}

// newApp wires the store, tracker and notifier. With Monzo credentials the bank client
// also serves live pot balances; without them the store's last synced snapshot is used.
func newApp(cfg *config.Config, logger *logging.Logger) (*app, error) {
	s, err := store.Open(cfg.Database.Path, &store.Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	var client *monzo.Client
	var pots budget.PotSource = s
	if cfg.RequireMonzo() == nil {
		client, err = monzo.NewClient(&monzo.Options{
			BaseURL:     cfg.Monzo.BaseURL,
			AccessToken: cfg.Monzo.AccessToken,
			AccountID:   cfg.Monzo.AccountID,
			RetryConfig: &cfg.Retry,
			Logger:      logger,
		})
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		pots = client
	}

	var sentryOpts *sentry.ClientOptions
	if cfg.Sentry.DSN != "" {
		sentryOpts = &sentry.ClientOptions{Environment: cfg.Sentry.Environment}
	}

	tracker, err := budget.NewTracker(&budget.TrackerOptions{
		Budgets:       s,
		Transactions:  s,
		Pots:          pots,
		Contributions: s,
		Detect:        cfg.DetectOptions(),
		Logger:        logger,
		SentryDSN:     cfg.Sentry.DSN,
		SentryOptions: sentryOpts,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	a := &app{
		store:   s,
		tracker: tracker,
		slack: notify.NewSlack(&notify.Options{
			WebhookURL:  cfg.Slack.WebhookURL,
			RetryConfig: &cfg.Retry,
			Logger:      logger,
		}),
		logger: logger,
		out:    os.Stdout,
	}
	if client != nil {
		a.bank = client
	}

	return a, nil
}
