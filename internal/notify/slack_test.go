package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/solstice035/monzo-analysis/pkg/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhook struct {
	mu       sync.Mutex
	messages []map[string]interface{}
	status   int
}

func (w *webhook) handler(t *testing.T) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var msg map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))

		w.mu.Lock()
		w.messages = append(w.messages, msg)
		status := w.status
		w.mu.Unlock()

		if status != 0 {
			rw.WriteHeader(status)
			return
		}
		_, _ = rw.Write([]byte("ok"))
	}
}

func (w *webhook) received() []map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]map[string]interface{}(nil), w.messages...)
}

func newTestSlack(t *testing.T, hook *webhook) *Slack {
	t.Helper()

	server := httptest.NewServer(hook.handler(t))
	t.Cleanup(server.Close)

	return NewSlack(&Options{WebhookURL: server.URL + "/services/T000/B000/XXX"})
}

func TestSlack_SkipsWithoutWebhook(t *testing.T) {
	s := NewSlack(nil)

	assert.False(t, s.Enabled())
	assert.NoError(t, s.Send(context.Background(), "hello"))

	sent, err := s.NotifyBudgetAlerts(context.Background(), []*budget.BudgetStatus{{Status: budget.StatusOver}})
	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestSlack_Send(t *testing.T) {
	hook := &webhook{}
	s := newTestSlack(t, hook)

	require.True(t, s.Enabled())
	require.NoError(t, s.Send(context.Background(), "hello"))

	messages := hook.received()
	require.Len(t, messages, 1)
	assert.Equal(t, map[string]interface{}{"text": "hello"}, messages[0])
}

func TestSlack_SendFailure(t *testing.T) {
	hook := &webhook{status: http.StatusBadRequest}
	s := newTestSlack(t, hook)

	err := s.Send(context.Background(), "hello")

	assert.ErrorContains(t, err, "failed to post slack message")
}

func TestSlack_NotifyBudgetAlerts(t *testing.T) {
	// Setup
	hook := &webhook{}
	s := newTestSlack(t, hook)

	statuses := []*budget.BudgetStatus{
		{Category: "groceries", Status: budget.StatusWarning, Percentage: 85, Remaining: 7500},
		{Category: "transport", Status: budget.StatusUnder, Percentage: 10, Remaining: 9000},
		{Category: "eating_out", Status: budget.StatusOver, Percentage: 121.56, Remaining: -3234},
	}

	// Execute
	sent, err := s.NotifyBudgetAlerts(context.Background(), statuses)

	// Verify
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	messages := hook.received()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0]["text"], "Budget Warning: groceries")
	assert.Contains(t, messages[1]["text"], "Budget Exceeded: eating_out")
}

func TestSlack_NotifySinkingFunds(t *testing.T) {
	hook := &webhook{}
	s := newTestSlack(t, hook)

	sent, err := s.NotifySinkingFunds(context.Background(), []*budget.SinkingFundStatus{
		{BudgetID: "b1", Category: "insurance", OnTrack: true},
		{BudgetID: "b2", Category: "holiday", OnTrack: false, Variance: -500},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	messages := hook.received()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0]["text"], "Sinking Fund Behind: holiday")
}

func TestSlack_NotifyDashboard(t *testing.T) {
	hook := &webhook{}
	s := newTestSlack(t, hook)

	icon := "🍎"
	err := s.NotifyDashboard(context.Background(), &budget.DashboardSummary{
		Groups: []*budget.BudgetGroupStatus{
			{Name: "Food", Icon: &icon, TotalAmount: 55000, TotalSpent: 44990, Percentage: 81.8},
		},
		TotalBudget:       55000,
		TotalSpent:        44990,
		OverallPercentage: 81.8,
		PeriodStart:       budget.NewDate(2025, 1, 1),
		PeriodEnd:         budget.NewDate(2025, 1, 31),
		DaysInPeriod:      31,
		DaysElapsed:       20,
	})

	require.NoError(t, err)
	messages := hook.received()
	require.Len(t, messages, 1)
	assert.Equal(t, "Budget Dashboard", messages[0]["text"])

	blocks, ok := messages[0]["blocks"].([]interface{})
	require.True(t, ok)
	require.Len(t, blocks, 5)

	section := blocks[3].(map[string]interface{})["text"].(map[string]interface{})
	assert.Equal(t, "*🍎 Food*: £449.90 of £550.00 (82%)", section["text"])

	elements := blocks[4].(map[string]interface{})["elements"].([]interface{})
	assert.Equal(t, "Day 20 of 31", elements[1].(map[string]interface{})["text"])
}
