package budget

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBudget() *Budget {
	return &Budget{
		AccountID:  "acc_00009",
		Category:   "groceries",
		Amount:     45000,
		Period:     PeriodMonthly,
		ResetDay:   1,
		PeriodType: PeriodTypeMonthly,
	}
}

func TestBudget_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(b *Budget)
		fields []string
	}{
		{"valid", func(b *Budget) {}, nil},
		{"zero amount allowed", func(b *Budget) { b.Amount = 0 }, nil},
		{"reset day 28", func(b *Budget) { b.ResetDay = 28 }, nil},
		{
			name: "sinking fund",
			modify: func(b *Budget) {
				b.PeriodType = PeriodTypeAnnual
				b.AnnualAmount = int64Ptr(60000)
				b.TargetMonth = intPtr(12)
			},
		},
		{"empty category", func(b *Budget) { b.Category = "" }, []string{"category"}},
		{"negative amount", func(b *Budget) { b.Amount = -1 }, []string{"amount"}},
		{"unknown period", func(b *Budget) { b.Period = "daily" }, []string{"period"}},
		{"reset day 0", func(b *Budget) { b.ResetDay = 0 }, []string{"resetDay"}},
		{"reset day 29", func(b *Budget) { b.ResetDay = 29 }, []string{"resetDay"}},
		{"unknown period type", func(b *Budget) { b.PeriodType = "fortnightly" }, []string{"periodType"}},
		{"negative annual amount", func(b *Budget) { b.AnnualAmount = int64Ptr(-100) }, []string{"annualAmount"}},
		{"target month 13", func(b *Budget) { b.TargetMonth = intPtr(13) }, []string{"targetMonth"}},
		{
			name: "every problem reported",
			modify: func(b *Budget) {
				b.Category = ""
				b.Amount = -5
				b.ResetDay = 31
			},
			fields: []string{"category", "amount", "resetDay"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBudget()
			tt.modify(b)

			err := b.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidBudget))

			var verrs *ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var fields []string
			for _, e := range verrs.Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	one := &ValidationErrors{}
	one.add("category", "must not be empty", "")
	assert.Equal(t, "validation error on field 'category': must not be empty", one.Error())

	two := &ValidationErrors{}
	two.add("category", "must not be empty", "")
	two.add("amount", "must not be negative", int64(-1))
	assert.Equal(t, "2 validation errors occurred", two.Error())
}
