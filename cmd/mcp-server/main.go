package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/solstice035/monzo-analysis/internal/config"
	"github.com/solstice035/monzo-analysis/internal/logging"
	"github.com/solstice035/monzo-analysis/internal/store"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Monzo.AccountID == "" {
		log.Fatal("monzo.account_id (MONZO_ANALYSIS_MONZO_ACCOUNT_ID) is required")
	}

	// stdout carries the protocol
	logger := logging.New(cfg.Log.Level, os.Stderr).With("component", "mcp-server")

	s, err := store.Open(cfg.Database.Path, &store.Options{Logger: logger})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer s.Close()

	tracker, err := budget.NewTracker(&budget.TrackerOptions{
		Budgets:       s,
		Transactions:  s,
		Pots:          s,
		Contributions: s,
		Detect:        cfg.DetectOptions(),
		Logger:        logger,
		SentryDSN:     cfg.Sentry.DSN,
	})
	if err != nil {
		log.Fatalf("failed to initialize tracker: %v", err)
	}
	defer tracker.Close()

	impl := &mcp.Implementation{
		Name:    "monzo-budgets",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	registerTools(server, &budgetTools{
		tracker:   tracker,
		store:     s,
		accountID: cfg.Monzo.AccountID,
		now:       time.Now,
	})

	// Run server over stdio transport
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Error("Server stopped", "error", err)
	}
}

func registerTools(server *mcp.Server, tools *budgetTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get the budget dashboard for the period containing a date: every budget group with its budgets, spent and remaining amounts, percentage used and status (under, warning or over), plus overall totals and day progress.",
	}, tools.GetDashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_budget_alerts",
		Description: "Get the budgets that are at or above 80% of their amount for the current period.",
	}, tools.GetBudgetAlerts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_sinking_funds",
		Description: "Get every sinking fund (annual or bi-annual expense saved for monthly) with contributions to date, the expected amount so far, whether it is on track and the linked pot balance.",
	}, tools.GetSinkingFunds)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_recurring",
		Description: "Detect recurring payments such as subscriptions from spending history. Returns merchant, frequency, average amount, monthly cost, next expected date and confidence.",
	}, tools.GetRecurring)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transactions",
		Description: "Query stored transactions with optional filters for date range, category and limit. Amounts are negative for spending.",
	}, tools.GetTransactions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_pots",
		Description: "Get pot balances split by whether a sinking fund budget links to them.",
	}, tools.GetPots)
}
