package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarisePots(t *testing.T) {
	pots := []*Pot{
		{ID: "pot-holiday", Name: "Holiday", Balance: 20000},
		{ID: "pot-car", Name: "Car", Balance: 15000},
		{ID: "pot-rainy", Name: "Rainy day", Balance: 50000},
		{ID: "pot-old", Name: "Old", Balance: 999, Deleted: true},
		nil,
	}
	budgets := []*Budget{
		holidayFund(),
		{ID: "b-car", LinkedPotID: strPtr("pot-car")},
		{ID: "b-old", LinkedPotID: strPtr("pot-old")},
		{ID: "b-plain"},
	}

	s := SummarisePots(pots, budgets)

	assert.Equal(t, 3, s.TotalPots)
	assert.Equal(t, 2, s.LinkedPots)
	assert.Equal(t, 1, s.UnlinkedPots)
	assert.Equal(t, int64(85000), s.TotalBalance)
	assert.Equal(t, int64(35000), s.LinkedBalance)
	assert.Equal(t, int64(50000), s.UnlinkedBalance)
	require.Len(t, s.Unlinked, 1)
	assert.Equal(t, "pot-rainy", s.Unlinked[0].ID)
}

func TestSummarisePots_Empty(t *testing.T) {
	s := SummarisePots(nil, nil)

	assert.Equal(t, 0, s.TotalPots)
	assert.NotNil(t, s.Unlinked)
}
