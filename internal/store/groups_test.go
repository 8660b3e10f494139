package store

import (
	"context"
	"testing"

	"github.com/solstice035/monzo-analysis/pkg/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ListGroups(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)

	bills, err := s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "Bills", DisplayOrder: 2})
	require.NoError(t, err)
	food, err := s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "Food", Icon: strPtr("🍎"), DisplayOrder: 1})
	require.NoError(t, err)
	_, err = s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "Empty", DisplayOrder: 3})
	require.NoError(t, err)

	for _, b := range []*budget.Budget{
		{AccountID: testAccount, GroupID: &food.ID, Category: "groceries", Amount: 40000},
		{AccountID: testAccount, GroupID: &food.ID, Category: "eating_out", Amount: 15000},
		{AccountID: testAccount, GroupID: &bills.ID, Category: "bills", Amount: 90000},
		{AccountID: testAccount, Category: "shopping", Amount: 5000},
	} {
		_, err := s.CreateBudget(ctx, b)
		require.NoError(t, err)
	}

	// Execute
	groups, err := s.ListGroups(ctx, testAccount)

	// Verify
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "Food", groups[0].Name)
	assert.Equal(t, "🍎", *groups[0].Icon)
	assert.Equal(t, "Bills", groups[1].Name)
	assert.Nil(t, groups[1].Icon)
	assert.Equal(t, "Empty", groups[2].Name)

	require.Len(t, groups[0].Budgets, 2)
	assert.Equal(t, "eating_out", groups[0].Budgets[0].Category)
	assert.Equal(t, "groceries", groups[0].Budgets[1].Category)
	require.Len(t, groups[1].Budgets, 1)
	assert.NotNil(t, groups[2].Budgets)
	assert.Empty(t, groups[2].Budgets)
}

func TestStore_ListGroupsKeepsInsertionOrder(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)

	// fixedNow gives every group the same created_at
	var want []string
	for _, name := range []string{"Home", "Food", "Travel", "Bills", "Kids", "Fun", "Gifts", "Health"} {
		g, err := s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: name, DisplayOrder: 1})
		require.NoError(t, err)
		want = append(want, g.ID)
	}
	_, err := s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "First", DisplayOrder: 0})
	require.NoError(t, err)

	// Execute
	groups, err := s.ListGroups(ctx, testAccount)

	// Verify
	require.NoError(t, err)
	require.Len(t, groups, 9)
	assert.Equal(t, "First", groups[0].Name)

	var got []string
	for _, g := range groups[1:] {
		got = append(got, g.ID)
	}
	assert.Equal(t, want, got)
}

func TestStore_GetGroup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g, err := s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "Food"})
	require.NoError(t, err)
	_, err = s.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, GroupID: &g.ID, Category: "groceries", Amount: 100})
	require.NoError(t, err)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food", got.Name)
	assert.Len(t, got.Budgets, 1)

	_, err = s.GetGroup(ctx, "missing")
	assert.True(t, budget.IsNotFound(err))
}

func TestStore_CreateGroupRequiresName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateGroup(context.Background(), &budget.BudgetGroup{AccountID: testAccount, Name: "  "})

	var verr *budget.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestStore_UpdateGroup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g, err := s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "Food", DisplayOrder: 4})
	require.NoError(t, err)

	updated, err := s.UpdateGroup(ctx, g.ID, &GroupPatch{Icon: strPtr("🛒")})
	require.NoError(t, err)
	assert.Equal(t, "Food", updated.Name)
	assert.Equal(t, 4, updated.DisplayOrder)
	assert.Equal(t, "🛒", *updated.Icon)

	_, err = s.UpdateGroup(ctx, g.ID, &GroupPatch{Name: strPtr("")})
	assert.Error(t, err)

	_, err = s.UpdateGroup(ctx, "missing", &GroupPatch{DisplayOrder: intPtr(1)})
	assert.True(t, budget.IsNotFound(err))
}

func TestStore_DeleteGroupCascades(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)

	g, err := s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "Food"})
	require.NoError(t, err)
	member, err := s.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, GroupID: &g.ID, Category: "groceries", Amount: 100})
	require.NoError(t, err)
	loose, err := s.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, Category: "shopping", Amount: 100})
	require.NoError(t, err)

	// Execute
	require.NoError(t, s.DeleteGroup(ctx, g.ID))

	// Verify
	_, err = s.GetBudget(ctx, member.ID)
	assert.True(t, budget.IsNotFound(err), "member budgets go with the group")

	_, err = s.GetBudget(ctx, loose.ID)
	assert.NoError(t, err)

	assert.True(t, budget.IsNotFound(s.DeleteGroup(ctx, g.ID)))
}

func TestStore_MigrateOrphanedBudgets(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)

	g, err := s.CreateGroup(ctx, &budget.BudgetGroup{AccountID: testAccount, Name: "Food"})
	require.NoError(t, err)
	grouped, err := s.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, GroupID: &g.ID, Category: "groceries", Amount: 100})
	require.NoError(t, err)
	unnamed, err := s.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, Category: "eating_out", Amount: 100})
	require.NoError(t, err)
	named, err := s.CreateBudget(ctx, &budget.Budget{AccountID: testAccount, Name: strPtr("Gym"), Category: "personal_care", Amount: 100})
	require.NoError(t, err)

	// Execute
	moved, err := s.MigrateOrphanedBudgets(ctx, testAccount)

	// Verify
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	misc, err := s.EnsureMiscellaneousGroup(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, MiscellaneousGroupName, misc.Name)
	assert.Equal(t, MiscellaneousGroupOrder, misc.DisplayOrder)
	assert.Equal(t, MiscellaneousGroupIcon, *misc.Icon)

	got, err := s.GetBudget(ctx, unnamed.ID)
	require.NoError(t, err)
	assert.Equal(t, misc.ID, *got.GroupID)
	assert.Equal(t, "Eating Out", *got.Name)

	got, err = s.GetBudget(ctx, named.ID)
	require.NoError(t, err)
	assert.Equal(t, misc.ID, *got.GroupID)
	assert.Equal(t, "Gym", *got.Name)

	got, err = s.GetBudget(ctx, grouped.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, *got.GroupID)

	// Running again finds nothing to move and creates no second group
	moved, err = s.MigrateOrphanedBudgets(ctx, testAccount)
	require.NoError(t, err)
	assert.Zero(t, moved)

	groups, err := s.ListGroups(ctx, testAccount)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestCategoryDisplayName(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"eating_out", "Eating Out"},
		{"groceries", "Groceries"},
		{"personal_care", "Personal Care"},
		{"TFL", "Tfl"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryDisplayName(tt.category))
		})
	}
}
