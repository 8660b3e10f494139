package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func charge(merchant, category string, amount int64, at time.Time) *Transaction {
	tx := &Transaction{
		AccountID:    "acc-1",
		Amount:       amount,
		MerchantName: strPtr(merchant),
		OccurredAt:   at,
	}
	if category != "" {
		tx.Category = strPtr(category)
	}
	return tx
}

// series returns charges starting at start, separated by the given day gaps
func series(merchant string, amount int64, start time.Time, gaps ...int) []*Transaction {
	txs := []*Transaction{charge(merchant, "entertainment", amount, start)}
	at := start
	for _, g := range gaps {
		at = at.AddDate(0, 0, g)
		txs = append(txs, charge(merchant, "entertainment", amount, at))
	}
	return txs
}

func TestDetectRecurringTransactions_MonthlySubscription(t *testing.T) {
	txs := series("Netflix", -1599, day(2025, 1, 1), 30, 30, 30, 30, 30)

	patterns := DetectRecurringTransactions(txs, &DetectOptions{Today: NewDate(2025, time.June, 1)})

	require.Len(t, patterns, 1)
	p := patterns[0]
	assert.Equal(t, "Netflix", p.MerchantName)
	assert.Equal(t, "entertainment", p.Category)
	assert.Equal(t, FrequencyMonthly, p.FrequencyLabel)
	assert.Equal(t, 30, p.FrequencyDays)
	assert.Equal(t, 6, p.TransactionCount)
	assert.Equal(t, int64(1599), p.AverageAmount)
	assert.Equal(t, int64(1599), p.MonthlyCost)
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
	assert.Equal(t, "2025-05-31", p.LastTransaction.String())
	require.NotNil(t, p.NextExpected)
	assert.Equal(t, "2025-06-30", p.NextExpected.String())
}

func TestDetectRecurringTransactions_NextExpectedOnlyInFuture(t *testing.T) {
	txs := series("Netflix", -1599, day(2025, 1, 1), 30, 30, 30, 30, 30)

	tests := []struct {
		name     string
		today    Date
		wantNext bool
	}{
		{"day before due", NewDate(2025, time.June, 29), true},
		{"due today is not in the future", NewDate(2025, time.June, 30), false},
		{"overdue", NewDate(2025, time.August, 1), false},
		{"no reference date", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := DetectRecurringTransactions(txs, &DetectOptions{Today: tt.today})
			require.Len(t, patterns, 1)
			assert.Equal(t, tt.wantNext, patterns[0].NextExpected != nil)
		})
	}
}

func TestDetectRecurringTransactions_Rejections(t *testing.T) {
	start := day(2025, 1, 1)

	tests := []struct {
		name string
		txs  []*Transaction
	}{
		{"too frequent", series("Coffee Shop", -350, start, 2, 2, 2, 2)},
		{"irregular intervals", series("Amazon", -2500, start, 7, 45, 10, 60)},
		{"too few occurrences", series("Gym", -3500, start, 30)},
		{"same day charges leave too few intervals", series("Spotify", -999, start, 0, 30)},
		{"income is ignored", series("Employer", 250000, start, 30, 30, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, DetectRecurringTransactions(tt.txs, nil))
		})
	}
}

func TestDetectRecurringTransactions_Options(t *testing.T) {
	txs := series("Gym", -3500, day(2025, 1, 1), 30)

	assert.Empty(t, DetectRecurringTransactions(txs, nil))

	patterns := DetectRecurringTransactions(txs, &DetectOptions{MinOccurrences: 2})
	require.Len(t, patterns, 1)
	assert.InDelta(t, 2.0/6.0, patterns[0].Confidence, 1e-9)

	// intervals of 25 and 35 have a coefficient of variation of about 0.24
	wobbly := series("Council Tax", -15000, day(2025, 1, 1), 25, 35)
	assert.Len(t, DetectRecurringTransactions(wobbly, nil), 1)
	assert.Empty(t, DetectRecurringTransactions(wobbly, &DetectOptions{MaxIntervalVariance: 0.2}))
}

func TestDetectRecurringTransactions_ZeroOptionsMeanDefaults(t *testing.T) {
	wobbly := series("Council Tax", -15000, day(2025, 1, 1), 25, 35)
	assert.Len(t, DetectRecurringTransactions(wobbly, &DetectOptions{MaxIntervalVariance: 0}), 1)
	assert.Len(t, DetectRecurringTransactions(wobbly, &DetectOptions{MaxIntervalVariance: -1}), 1)
	assert.Empty(t, DetectRecurringTransactions(wobbly, &DetectOptions{MaxIntervalVariance: 1e-9}))

	exact := series("Netflix", -1599, day(2025, 1, 1), 30, 30)
	assert.Len(t, DetectRecurringTransactions(exact, &DetectOptions{MaxIntervalVariance: 1e-9}), 1)

	pair := series("Gym", -3500, day(2025, 1, 1), 30)
	assert.Empty(t, DetectRecurringTransactions(pair, &DetectOptions{MinOccurrences: 0}))
	assert.Len(t, DetectRecurringTransactions(pair, &DetectOptions{MinOccurrences: 1}), 1)
}

func TestDetectRecurringTransactions_WeeklyCost(t *testing.T) {
	txs := series("Veg Box", -500, day(2025, 3, 3), 7, 7, 7)

	patterns := DetectRecurringTransactions(txs, nil)

	require.Len(t, patterns, 1)
	assert.Equal(t, FrequencyWeekly, patterns[0].FrequencyLabel)
	assert.Equal(t, 7, patterns[0].FrequencyDays)
	assert.Equal(t, int64(2143), patterns[0].MonthlyCost)
	assert.InDelta(t, 4.0/6.0, patterns[0].Confidence, 1e-9)
}

func TestDetectRecurringTransactions_AverageTruncates(t *testing.T) {
	txs := []*Transaction{
		charge("Phone", "bills", -1000, day(2025, 1, 10)),
		charge("Phone", "bills", -1001, day(2025, 2, 9)),
		charge("Phone", "bills", -1001, day(2025, 3, 11)),
	}

	patterns := DetectRecurringTransactions(txs, nil)

	require.Len(t, patterns, 1)
	assert.Equal(t, int64(1000), patterns[0].AverageAmount)
	assert.Equal(t, int64(1001), patterns[0].MonthlyCost)
}

func TestDetectRecurringTransactions_MajorityCategory(t *testing.T) {
	txs := []*Transaction{
		charge("Sky", "entertainment", -4000, day(2025, 1, 1)),
		charge("Sky", "bills", -4000, day(2025, 1, 31)),
		charge("Sky", "bills", -4000, day(2025, 3, 2)),
		charge("Sky", "entertainment", -4000, day(2025, 4, 1)),
	}
	patterns := DetectRecurringTransactions(txs, nil)
	require.Len(t, patterns, 1)
	assert.Equal(t, "entertainment", patterns[0].Category, "tie goes to the earliest seen")

	txs = append(txs, charge("Sky", "bills", -4000, day(2025, 5, 1)))
	patterns = DetectRecurringTransactions(txs, nil)
	require.Len(t, patterns, 1)
	assert.Equal(t, "bills", patterns[0].Category)

	uncategorised := series("Patreon", -500, day(2025, 1, 1), 30, 30)
	for _, tx := range uncategorised {
		tx.Category = nil
	}
	patterns = DetectRecurringTransactions(uncategorised, nil)
	require.Len(t, patterns, 1)
	assert.Equal(t, DefaultRecurringCategory, patterns[0].Category)
}

func TestDetectRecurringTransactions_OrderAndDeterminism(t *testing.T) {
	start := day(2025, 1, 1)
	var txs []*Transaction
	txs = append(txs, series("Netflix", -1599, start, 30, 30)...)
	txs = append(txs, series("Gym", -3500, start, 30, 30)...)
	txs = append(txs, series("Beta", -1000, start, 30, 30)...)
	txs = append(txs, series("Alpha", -1000, start, 30, 30)...)
	txs = append(txs, &Transaction{Amount: -100, OccurredAt: start}, nil)

	patterns := DetectRecurringTransactions(txs, nil)

	require.Len(t, patterns, 4)
	var names []string
	for _, p := range patterns {
		names = append(names, p.MerchantName)
	}
	assert.Equal(t, []string{"Gym", "Netflix", "Alpha", "Beta"}, names)

	reversed := make([]*Transaction, len(txs))
	for i, tx := range txs {
		reversed[len(txs)-1-i] = tx
	}
	assert.Equal(t, patterns, DetectRecurringTransactions(reversed, nil))
}

func TestClassifyFrequency_Boundaries(t *testing.T) {
	tests := []struct {
		mean      float64
		wantLabel string
		wantDays  int
	}{
		{5, FrequencyWeekly, 7},
		{9.99, FrequencyWeekly, 7},
		{10.0, FrequencyFortnightly, 14},
		{19.99, FrequencyFortnightly, 14},
		{20, FrequencyMonthly, 30},
		{44.9, FrequencyMonthly, 30},
		{45, FrequencyQuarterly, 90},
		{99.9, FrequencyQuarterly, 90},
		{100, FrequencyYearly, 365},
		{365, FrequencyYearly, 365},
	}

	for _, tt := range tests {
		label, days := ClassifyFrequency(tt.mean)
		assert.Equal(t, tt.wantLabel, label, "mean %v", tt.mean)
		assert.Equal(t, tt.wantDays, days, "mean %v", tt.mean)
	}
}
