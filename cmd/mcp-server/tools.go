package main

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
	"github.com/solstice035/monzo-analysis/internal/store"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

const defaultTransactionLimit = 50

// budgetTools holds the tracker and store and implements all tool handlers
type budgetTools struct {
	tracker   *budget.Tracker
	store     *store.Store
	accountID string
	now       func() time.Time
}

// today resolves an optional YYYY-MM-DD argument, defaulting to the current date
func (t *budgetTools) today(date string) (budget.Date, error) {
	if date == "" {
		return budget.DateOf(t.now()), nil
	}
	d, err := budget.ParseDate(date)
	if err != nil {
		return budget.Date{}, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	return d, nil
}

// pounds converts pence for display
func pounds(pence int64) float64 {
	return decimal.New(pence, -2).InexactFloat64()
}

func label(name *string, category string) string {
	if name != nil && *name != "" {
		return *name
	}
	return category
}

// DateInput selects the reference date
type DateInput struct {
	Date string `json:"date,omitempty" jsonschema:"Reference date in YYYY-MM-DD format (optional, defaults to today)"`
}

type BudgetEntry struct {
	Name       string  `json:"name" jsonschema:"Budget name, or the category when unnamed"`
	Category   string  `json:"category" jsonschema:"Budget category"`
	Budgeted   float64 `json:"budgeted" jsonschema:"Budgeted amount in pounds"`
	Spent      float64 `json:"spent" jsonschema:"Amount spent this period in pounds"`
	Remaining  float64 `json:"remaining" jsonschema:"Remaining amount in pounds (negative when over)"`
	Percentage float64 `json:"percentage" jsonschema:"Percentage of budget spent"`
	Status     string  `json:"status" jsonschema:"under, warning or over"`
	Period     string  `json:"period" jsonschema:"Current period as start to end dates"`
}

func newBudgetEntry(s *budget.BudgetStatus) BudgetEntry {
	return BudgetEntry{
		Name:       label(s.Name, s.Category),
		Category:   s.Category,
		Budgeted:   pounds(s.Amount),
		Spent:      pounds(s.Spent),
		Remaining:  pounds(s.Remaining),
		Percentage: s.Percentage,
		Status:     string(s.Status),
		Period:     fmt.Sprintf("%s to %s", s.PeriodStart, s.PeriodEnd),
	}
}

type GroupEntry struct {
	Name       string        `json:"name" jsonschema:"Group name"`
	Budgeted   float64       `json:"budgeted" jsonschema:"Total budgeted in pounds"`
	Spent      float64       `json:"spent" jsonschema:"Total spent in pounds"`
	Remaining  float64       `json:"remaining" jsonschema:"Total remaining in pounds"`
	Percentage float64       `json:"percentage" jsonschema:"Percentage of the group total spent"`
	Status     string        `json:"status" jsonschema:"under, warning or over"`
	Budgets    []BudgetEntry `json:"budgets" jsonschema:"Budgets in the group"`
}

type GetDashboardOutput struct {
	PeriodStart  string       `json:"periodStart" jsonschema:"First day of the covering period"`
	PeriodEnd    string       `json:"periodEnd" jsonschema:"Last day of the covering period"`
	DaysElapsed  int          `json:"daysElapsed" jsonschema:"Days elapsed including today"`
	DaysInPeriod int          `json:"daysInPeriod" jsonschema:"Days in the covering period"`
	Budgeted     float64      `json:"budgeted" jsonschema:"Total budgeted in pounds"`
	Spent        float64      `json:"spent" jsonschema:"Total spent in pounds"`
	Remaining    float64      `json:"remaining" jsonschema:"Total remaining in pounds"`
	Percentage   float64      `json:"percentage" jsonschema:"Overall percentage spent"`
	Status       string       `json:"status" jsonschema:"Overall status"`
	Groups       []GroupEntry `json:"groups" jsonschema:"Budget groups in display order"`
}

func (t *budgetTools) GetDashboard(ctx context.Context, req *mcp.CallToolRequest, input DateInput) (*mcp.CallToolResult, GetDashboardOutput, error) {
	today, err := t.today(input.Date)
	if err != nil {
		return nil, GetDashboardOutput{}, err
	}

	summary, err := t.tracker.Groups.DashboardSummary(ctx, t.accountID, today)
	if err != nil {
		return nil, GetDashboardOutput{}, fmt.Errorf("failed to build dashboard: %w", err)
	}

	groups := make([]GroupEntry, 0, len(summary.Groups))
	for _, g := range summary.Groups {
		entry := GroupEntry{
			Name:       g.Name,
			Budgeted:   pounds(g.TotalAmount),
			Spent:      pounds(g.TotalSpent),
			Remaining:  pounds(g.TotalRemaining),
			Percentage: g.Percentage,
			Status:     string(g.Status),
			Budgets:    make([]BudgetEntry, 0, len(g.Budgets)),
		}
		for _, s := range g.Budgets {
			entry.Budgets = append(entry.Budgets, newBudgetEntry(s))
		}
		groups = append(groups, entry)
	}

	return nil, GetDashboardOutput{
		PeriodStart:  summary.PeriodStart.String(),
		PeriodEnd:    summary.PeriodEnd.String(),
		DaysElapsed:  summary.DaysElapsed,
		DaysInPeriod: summary.DaysInPeriod,
		Budgeted:     pounds(summary.TotalBudget),
		Spent:        pounds(summary.TotalSpent),
		Remaining:    pounds(summary.TotalRemaining),
		Percentage:   summary.OverallPercentage,
		Status:       string(summary.OverallStatus),
		Groups:       groups,
	}, nil
}

type GetBudgetAlertsOutput struct {
	Alerts []BudgetEntry `json:"alerts" jsonschema:"Budgets in warning or over"`
	Count  int           `json:"count" jsonschema:"Number of alerts"`
}

func (t *budgetTools) GetBudgetAlerts(ctx context.Context, req *mcp.CallToolRequest, input DateInput) (*mcp.CallToolResult, GetBudgetAlertsOutput, error) {
	today, err := t.today(input.Date)
	if err != nil {
		return nil, GetBudgetAlertsOutput{}, err
	}

	statuses, err := t.tracker.Alerts.Check(ctx, t.accountID, today)
	if err != nil {
		return nil, GetBudgetAlertsOutput{}, fmt.Errorf("failed to check budgets: %w", err)
	}

	alerts := make([]BudgetEntry, 0, len(statuses))
	for _, s := range statuses {
		alerts = append(alerts, newBudgetEntry(s))
	}

	return nil, GetBudgetAlertsOutput{Alerts: alerts, Count: len(alerts)}, nil
}

type SinkingFundEntry struct {
	Name                string   `json:"name" jsonschema:"Sinking fund name, or the category when unnamed"`
	Target              float64  `json:"target" jsonschema:"Annual target in pounds"`
	MonthlyContribution float64  `json:"monthlyContribution" jsonschema:"Monthly contribution needed in pounds"`
	ContributedToDate   float64  `json:"contributedToDate" jsonschema:"Contributed since the window started, in pounds"`
	ExpectedToDate      float64  `json:"expectedToDate" jsonschema:"Expected contributions by now, in pounds"`
	OnTrack             bool     `json:"onTrack" jsonschema:"Whether contributions are at or above the expected amount"`
	MonthsRemaining     int      `json:"monthsRemaining" jsonschema:"Months until the target month"`
	PotName             string   `json:"potName,omitempty" jsonschema:"Linked pot name"`
	PotBalance          *float64 `json:"potBalance,omitempty" jsonschema:"Linked pot balance in pounds"`
}

type GetSinkingFundsOutput struct {
	Funds []SinkingFundEntry `json:"funds" jsonschema:"Sinking funds"`
	Count int                `json:"count" jsonschema:"Number of sinking funds"`
}

func (t *budgetTools) GetSinkingFunds(ctx context.Context, req *mcp.CallToolRequest, input DateInput) (*mcp.CallToolResult, GetSinkingFundsOutput, error) {
	today, err := t.today(input.Date)
	if err != nil {
		return nil, GetSinkingFundsOutput{}, err
	}

	statuses, err := t.tracker.SinkingFunds.AllStatuses(ctx, t.accountID, today)
	if err != nil {
		return nil, GetSinkingFundsOutput{}, fmt.Errorf("failed to fetch sinking funds: %w", err)
	}

	funds := make([]SinkingFundEntry, 0, len(statuses))
	for _, s := range statuses {
		entry := SinkingFundEntry{
			Name:                label(s.Name, s.Category),
			Target:              pounds(s.TargetAmount),
			MonthlyContribution: pounds(s.MonthlyContribution),
			ContributedToDate:   pounds(s.ContributionsToDate),
			ExpectedToDate:      pounds(s.ExpectedToDate),
			OnTrack:             s.OnTrack,
			MonthsRemaining:     s.MonthsRemaining,
		}
		if s.PotName != nil {
			entry.PotName = *s.PotName
		}
		if s.PotBalance != nil {
			balance := pounds(*s.PotBalance)
			entry.PotBalance = &balance
		}
		funds = append(funds, entry)
	}

	return nil, GetSinkingFundsOutput{Funds: funds, Count: len(funds)}, nil
}

type GetRecurringInput struct {
	Date           string `json:"date,omitempty" jsonschema:"Reference date in YYYY-MM-DD format (optional, defaults to today)"`
	MinOccurrences int    `json:"minOccurrences,omitempty" jsonschema:"Minimum number of payments to a merchant (optional, default 3)"`
}

type RecurringEntry struct {
	Merchant      string  `json:"merchant" jsonschema:"Merchant name"`
	Category      string  `json:"category" jsonschema:"Most recent category"`
	Frequency     string  `json:"frequency" jsonschema:"weekly, fortnightly, monthly, quarterly or yearly"`
	AverageAmount float64 `json:"averageAmount" jsonschema:"Average payment in pounds"`
	MonthlyCost   float64 `json:"monthlyCost" jsonschema:"Equivalent monthly cost in pounds"`
	LastPayment   string  `json:"lastPayment" jsonschema:"Date of the latest payment"`
	NextExpected  string  `json:"nextExpected,omitempty" jsonschema:"Next expected payment date, when in the future"`
	Confidence    float64 `json:"confidence" jsonschema:"Detection confidence from 0 to 1"`
}

type GetRecurringOutput struct {
	Patterns    []RecurringEntry `json:"patterns" jsonschema:"Recurring payments by monthly cost"`
	MonthlyCost float64          `json:"monthlyCost" jsonschema:"Combined monthly cost in pounds"`
	Count       int              `json:"count" jsonschema:"Number of recurring payments"`
}

func (t *budgetTools) GetRecurring(ctx context.Context, req *mcp.CallToolRequest, input GetRecurringInput) (*mcp.CallToolResult, GetRecurringOutput, error) {
	today, err := t.today(input.Date)
	if err != nil {
		return nil, GetRecurringOutput{}, err
	}

	patterns, err := t.tracker.Recurring.Detect(ctx, t.accountID, today, &budget.DetectOptions{
		MinOccurrences: input.MinOccurrences,
	})
	if err != nil {
		return nil, GetRecurringOutput{}, fmt.Errorf("failed to detect recurring payments: %w", err)
	}

	var total int64
	entries := make([]RecurringEntry, 0, len(patterns))
	for _, p := range patterns {
		total += p.MonthlyCost
		entry := RecurringEntry{
			Merchant:      p.MerchantName,
			Category:      p.Category,
			Frequency:     p.FrequencyLabel,
			AverageAmount: pounds(p.AverageAmount),
			MonthlyCost:   pounds(p.MonthlyCost),
			LastPayment:   p.LastTransaction.String(),
			Confidence:    p.Confidence,
		}
		if p.NextExpected != nil {
			entry.NextExpected = p.NextExpected.String()
		}
		entries = append(entries, entry)
	}

	return nil, GetRecurringOutput{
		Patterns:    entries,
		MonthlyCost: pounds(total),
		Count:       len(entries),
	}, nil
}

type GetTransactionsInput struct {
	StartDate string `json:"startDate,omitempty" jsonschema:"Start date in YYYY-MM-DD format (optional)"`
	EndDate   string `json:"endDate,omitempty" jsonschema:"End date in YYYY-MM-DD format (optional)"`
	Category  string `json:"category,omitempty" jsonschema:"Filter by category (optional)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of transactions to return, most recent first (default: 50)"`
}

type TransactionEntry struct {
	ID          string  `json:"id" jsonschema:"Transaction ID"`
	Date        string  `json:"date" jsonschema:"Transaction date"`
	Amount      float64 `json:"amount" jsonschema:"Transaction amount in pounds (negative for spending)"`
	Merchant    string  `json:"merchant,omitempty" jsonschema:"Merchant name"`
	Category    string  `json:"category,omitempty" jsonschema:"Transaction category"`
	Description string  `json:"description,omitempty" jsonschema:"Bank description"`
}

type GetTransactionsOutput struct {
	Transactions []TransactionEntry `json:"transactions" jsonschema:"List of transactions"`
	Count        int                `json:"count" jsonschema:"Number of transactions returned"`
}

func (t *budgetTools) GetTransactions(ctx context.Context, req *mcp.CallToolRequest, input GetTransactionsInput) (*mcp.CallToolResult, GetTransactionsOutput, error) {
	q := &budget.TransactionQuery{AccountID: t.accountID}

	if input.StartDate != "" {
		d, err := budget.ParseDate(input.StartDate)
		if err != nil {
			return nil, GetTransactionsOutput{}, fmt.Errorf("invalid startDate format (expected YYYY-MM-DD): %w", err)
		}
		q.Since = d
	}
	if input.EndDate != "" {
		d, err := budget.ParseDate(input.EndDate)
		if err != nil {
			return nil, GetTransactionsOutput{}, fmt.Errorf("invalid endDate format (expected YYYY-MM-DD): %w", err)
		}
		q.Until = d
	}
	if input.Category != "" {
		q.Categories = []string{input.Category}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultTransactionLimit
	}

	txs, err := t.store.ListTransactions(ctx, q)
	if err != nil {
		return nil, GetTransactionsOutput{}, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	// Oldest first from the store; keep the most recent
	if len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}

	transactions := make([]TransactionEntry, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		entry := TransactionEntry{
			ID:          tx.ID,
			Date:        tx.Date().String(),
			Amount:      pounds(tx.Amount),
			Description: tx.Description,
		}
		if tx.MerchantName != nil {
			entry.Merchant = *tx.MerchantName
		}
		if tx.Category != nil {
			entry.Category = *tx.Category
		}
		transactions = append(transactions, entry)
	}

	return nil, GetTransactionsOutput{
		Transactions: transactions,
		Count:        len(transactions),
	}, nil
}

type GetPotsInput struct{}

type PotEntry struct {
	Name    string  `json:"name" jsonschema:"Pot name"`
	Balance float64 `json:"balance" jsonschema:"Balance in pounds"`
}

type GetPotsOutput struct {
	TotalPots       int        `json:"totalPots" jsonschema:"Number of active pots"`
	TotalBalance    float64    `json:"totalBalance" jsonschema:"Combined balance in pounds"`
	LinkedBalance   float64    `json:"linkedBalance" jsonschema:"Balance of pots linked to sinking funds"`
	UnlinkedBalance float64    `json:"unlinkedBalance" jsonschema:"Balance of pots not linked to any budget"`
	Unlinked        []PotEntry `json:"unlinked" jsonschema:"Pots not linked to any budget"`
}

func (t *budgetTools) GetPots(ctx context.Context, req *mcp.CallToolRequest, input GetPotsInput) (*mcp.CallToolResult, GetPotsOutput, error) {
	summary, err := t.tracker.SinkingFunds.Pots(ctx, t.accountID)
	if err != nil {
		return nil, GetPotsOutput{}, fmt.Errorf("failed to fetch pots: %w", err)
	}

	unlinked := make([]PotEntry, 0, len(summary.Unlinked))
	for _, p := range summary.Unlinked {
		unlinked = append(unlinked, PotEntry{Name: p.Name, Balance: pounds(p.Balance)})
	}

	return nil, GetPotsOutput{
		TotalPots:       summary.TotalPots,
		TotalBalance:    pounds(summary.TotalBalance),
		LinkedBalance:   pounds(summary.LinkedBalance),
		UnlinkedBalance: pounds(summary.UnlinkedBalance),
		Unlinked:        unlinked,
	}, nil
}
