package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/solstice035/monzo-analysis/internal/config"
	"github.com/solstice035/monzo-analysis/internal/logging"
	"github.com/solstice035/monzo-analysis/internal/notify"
	"github.com/solstice035/monzo-analysis/internal/store"
	"github.com/solstice035/monzo-analysis/pkg/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAccount = "acc_00009"

type mockBank struct {
	mock.Mock
}

func (m *mockBank) ListPots(ctx context.Context, accountID string, activeOnly bool) ([]*budget.Pot, error) {
	args := m.Called(ctx, accountID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*budget.Pot), args.Error(1)
}

func (m *mockBank) ListTransactions(ctx context.Context, accountID string, since time.Time) ([]*budget.Transaction, error) {
	args := m.Called(ctx, accountID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*budget.Transaction), args.Error(1)
}

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "budget.db"), nil)
	require.NoError(t, err)

	tracker, err := budget.NewTracker(&budget.TrackerOptions{
		Budgets:       s,
		Transactions:  s,
		Pots:          s,
		Contributions: s,
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a := &app{
		store:     s,
		tracker:   tracker,
		slack:     notify.NewSlack(nil),
		logger:    nopLogger{},
		out:       out,
		accountID: testAccount,
		today:     budget.NewDate(2025, time.January, 20),
	}
	t.Cleanup(a.Close)
	return a, out
}

func strPtr(s string) *string { return &s }

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func seedBudgets(t *testing.T, a *app) {
	t.Helper()
	ctx := context.Background()

	g, err := a.store.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "Essentials"})
	require.NoError(t, err)

	_, err = a.store.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, GroupID: &g.ID, Category: "groceries", Amount: 20000})
	require.NoError(t, err)
	_, err = a.store.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, GroupID: &g.ID, Category: "eating_out", Amount: 5000})
	require.NoError(t, err)

	_, err = a.store.SaveTransactions(ctx, []*budget.Transaction{
		{ID: "tx_1", AccountID: testAccount, Amount: -5000, MerchantName: strPtr("Tesco"), Category: strPtr("groceries"), OccurredAt: at(2025, 1, 10)},
		{ID: "tx_2", AccountID: testAccount, Amount: -4800, MerchantName: strPtr("Dishoom"), Category: strPtr("eating_out"), OccurredAt: at(2025, 1, 18)},
		{ID: "tx_3", AccountID: testAccount, Amount: -1250, MerchantName: strPtr("Pret"), Category: strPtr("eating_out"), OccurredAt: at(2025, 1, 20)},
	})
	require.NoError(t, err)
}

func TestApp_Dashboard(t *testing.T) {
	// Setup
	a, out := newTestApp(t)
	seedBudgets(t, a)
	a.json = true

	// Execute
	err := a.run(context.Background(), "dashboard", nil)

	// Verify
	require.NoError(t, err)

	var summary budget.DashboardSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, int64(25000), summary.TotalBudget)
	assert.Equal(t, int64(11050), summary.TotalSpent)
	require.Len(t, summary.Groups, 1)
	assert.Equal(t, "Essentials", summary.Groups[0].Name)
	assert.Equal(t, budget.NewDate(2025, time.January, 1), summary.PeriodStart)
	assert.Equal(t, 20, summary.DaysElapsed)
}

func TestApp_DashboardTable(t *testing.T) {
	a, out := newTestApp(t)
	seedBudgets(t, a)

	require.NoError(t, a.run(context.Background(), "dashboard", nil))

	assert.Contains(t, out.String(), "Essentials")
	assert.Contains(t, out.String(), "groceries")
	assert.Contains(t, out.String(), "£110.50")
	assert.Contains(t, out.String(), "Day 20 of 31")
}

func TestApp_Alerts(t *testing.T) {
	a, out := newTestApp(t)
	seedBudgets(t, a)

	require.NoError(t, a.run(context.Background(), "alerts", nil))

	assert.Contains(t, out.String(), "eating_out")
	assert.Contains(t, out.String(), "121.0% over")
	assert.NotContains(t, out.String(), "groceries")
}

func TestApp_Digest(t *testing.T) {
	a, out := newTestApp(t)
	seedBudgets(t, a)
	a.json = true

	require.NoError(t, a.run(context.Background(), "digest", nil))

	var daily budget.DailySpend
	require.NoError(t, json.Unmarshal(out.Bytes(), &daily))
	assert.Equal(t, int64(1250), daily.TotalSpend)
	assert.Equal(t, 1, daily.TransactionCount)
}

func TestApp_DigestWithoutSpend(t *testing.T) {
	a, out := newTestApp(t)
	a.today = budget.NewDate(2025, time.January, 21)

	require.NoError(t, a.run(context.Background(), "digest", nil))
	assert.Empty(t, out.String())
}

func TestApp_Sync(t *testing.T) {
	// Setup
	ctx := context.Background()
	a, out := newTestApp(t)

	bank := &mockBank{}
	bank.On("ListPots", mock.Anything, testAccount, false).Return([]*budget.Pot{
		{ID: "pot_0001", AccountID: testAccount, Name: "Holiday", Balance: 42000},
	}, nil)
	bank.On("ListTransactions", mock.Anything, testAccount, budget.NewDate(2024, time.December, 21).Time).Return([]*budget.Transaction{
		{ID: "tx_1", AccountID: testAccount, Amount: -5000, MerchantName: strPtr("Tesco"), Category: strPtr("groceries"), OccurredAt: at(2025, 1, 10)},
	}, nil)
	a.bank = bank

	// Execute
	err := a.run(ctx, "sync", []string{"-days", "30"})

	// Verify
	require.NoError(t, err)
	bank.AssertExpectations(t)

	pot, err := a.store.GetPot(ctx, "pot_0001")
	require.NoError(t, err)
	assert.Equal(t, int64(42000), pot.Balance)

	txs, err := a.store.ListTransactions(ctx, &budget.TransactionQuery{AccountID: testAccount})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "tx_1", txs[0].ID)

	assert.Contains(t, out.String(), "1")
}

func TestApp_SyncNeedsBank(t *testing.T) {
	a, _ := newTestApp(t)

	err := a.run(context.Background(), "sync", nil)
	assert.ErrorContains(t, err, "monzo.access_token")
}

func TestApp_Orphans(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t)

	_, err := a.store.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, Category: "transport", Amount: 8000})
	require.NoError(t, err)

	require.NoError(t, a.run(ctx, "orphans", nil))
	assert.Equal(t, "Moved 1 budgets into Miscellaneous\n", out.String())
}

func TestApp_Errors(t *testing.T) {
	a, _ := newTestApp(t)

	err := a.run(context.Background(), "explode", nil)
	assert.ErrorContains(t, err, `unknown command "explode"`)

	a.accountID = ""
	err = a.run(context.Background(), "dashboard", nil)
	assert.ErrorContains(t, err, "no account")
}

func TestApp_CloseTwice(t *testing.T) {
	a, _ := newTestApp(t)

	a.Close()
	assert.NotPanics(t, a.Close)
}

func TestNewApp_LivePotBalancesWithCredentials(t *testing.T) {
	// Setup
	ctx := context.Background()
	bank := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pots", r.URL.Path)
		_, _ = w.Write([]byte(`{"pots": [{"id": "pot_0001", "name": "Car", "balance": 45000, "deleted": false}]}`))
	}))
	t.Cleanup(bank.Close)

	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(t.TempDir(), "budget.db")
	cfg.Monzo.BaseURL = bank.URL
	cfg.Monzo.AccessToken = "token-123"
	cfg.Monzo.AccountID = testAccount
	cfg.Retry.MaxRetries = 1
	cfg.Retry.RetryWait = time.Millisecond
	cfg.Retry.MaxWait = time.Millisecond

	a, err := newApp(cfg, logging.New("error", io.Discard))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	out := &bytes.Buffer{}
	a.out = out
	a.accountID = testAccount
	a.today = budget.NewDate(2025, time.January, 20)
	a.json = true

	require.NotNil(t, a.bank)
	require.NoError(t, a.store.UpsertPot(ctx, &budget.Pot{ID: "pot_0001", AccountID: testAccount, Name: "Car", Balance: 1000}))
	_, err = a.store.CreateBudget(ctx, &budget.Budget{
		AccountID:    testAccount,
		Name:         strPtr("Car insurance"),
		Category:     "insurance",
		PeriodType:   budget.PeriodTypeAnnual,
		AnnualAmount: int64Ptr(60000),
		TargetMonth:  intPtr(12),
		LinkedPotID:  strPtr("pot_0001"),
	})
	require.NoError(t, err)

	// Execute
	err = a.run(ctx, "sinking", nil)

	// Verify
	require.NoError(t, err)
	var statuses []*budget.SinkingFundStatus
	require.NoError(t, json.Unmarshal(out.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	require.NotNil(t, statuses[0].PotBalance)
	assert.Equal(t, int64(45000), *statuses[0].PotBalance, "balance comes from the bank, not the synced snapshot")
}

func TestNewApp_SnapshotPotBalancesWithoutCredentials(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(t.TempDir(), "budget.db")

	a, err := newApp(cfg, logging.New("error", io.Discard))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.bank)
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
