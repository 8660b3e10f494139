package store

import (
	"context"
	"testing"
	"time"

	"github.com/solstice035/monzo-analysis/pkg/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Rules(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)

	weekend, err := s.CreateRule(ctx, &budget.Rule{
		Name:           "Weekend takeaway",
		Enabled:        true,
		TargetCategory: "takeaway",
		Priority:       80,
		Conditions: budget.Conditions{
			budget.MerchantPattern{Pattern: "deliveroo"},
			budget.DayOfWeek{Days: []time.Weekday{time.Friday, time.Saturday}},
		},
	})
	require.NoError(t, err)

	big, err := s.CreateRule(ctx, &budget.Rule{
		Name:           "Big shop",
		Enabled:        true,
		TargetCategory: "big_shop",
		Conditions: budget.Conditions{
			budget.CategoryEquals{Category: "groceries"},
			budget.AmountRange{AtMost: int64Ptr(-10000)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, budget.DefaultRulePriority, big.Priority)

	// Execute
	rules, err := s.ListRules(ctx)

	// Verify
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, weekend.ID, rules[0].ID, "highest priority first")
	assert.Equal(t, weekend.Conditions, rules[0].Conditions)
	assert.Equal(t, big.Conditions, rules[1].Conditions)
	assert.True(t, rules[1].Enabled)

	category, ok := budget.Categorise(&budget.Transaction{
		Amount:       -2350,
		MerchantName: strPtr("Deliveroo"),
		OccurredAt:   at(2025, 1, 17),
	}, rules)
	assert.True(t, ok)
	assert.Equal(t, "takeaway", category)
}

func TestStore_ListRulesKeepsInsertionOrderOnEqualPriority(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var want []string
	for _, target := range []string{"coffee", "lunch", "snacks", "groceries", "takeaway", "drinks"} {
		r, err := s.CreateRule(ctx, &budget.Rule{Name: target, Enabled: true, TargetCategory: target, Priority: 50})
		require.NoError(t, err)
		want = append(want, r.ID)
	}

	rules, err := s.ListRules(ctx)
	require.NoError(t, err)

	var got []string
	for _, r := range rules {
		got = append(got, r.ID)
	}
	assert.Equal(t, want, got)

	category, ok := budget.Categorise(&budget.Transaction{Amount: -300, OccurredAt: at(2025, 1, 17)}, rules)
	assert.True(t, ok)
	assert.Equal(t, "coffee", category)
}

func TestStore_UpdateAndDeleteRule(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r, err := s.CreateRule(ctx, &budget.Rule{Name: "Coffee", Enabled: true, TargetCategory: "coffee"})
	require.NoError(t, err)

	r.Enabled = false
	r.Conditions = budget.Conditions{budget.MerchantPattern{Pattern: "pret"}}
	updated, err := s.UpdateRule(ctx, r)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, r.Conditions, updated.Conditions)

	require.NoError(t, s.DeleteRule(ctx, r.ID))
	_, err = s.GetRule(ctx, r.ID)
	assert.True(t, budget.IsNotFound(err))

	_, err = s.UpdateRule(ctx, r)
	assert.True(t, budget.IsNotFound(err))
	assert.True(t, budget.IsNotFound(s.DeleteRule(ctx, r.ID)))
}

func TestStore_CreateRuleValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRule(context.Background(), &budget.Rule{})

	var verr *budget.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
}
