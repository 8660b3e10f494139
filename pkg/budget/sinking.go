package budget

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// DefaultTargetMonth is used when a sinking fund has no target month set
const DefaultTargetMonth = 12

// IsSinkingFund reports whether the budget accumulates toward a future lump sum
func (b *Budget) IsSinkingFund() bool {
	switch b.PeriodType {
	case PeriodTypeQuarterly, PeriodTypeAnnual, PeriodTypeBiAnnual:
		return true
	}
	return false
}

// MonthlyContribution returns the amount to set aside each month.
//
// Sinking funds with an annual amount divide it by 12, 6 or 3 for annual, bi-annual
// and quarterly funds. Integer division drops the remainder pence; nothing reconciles
// them in the final month. Every other budget contributes its raw amount.
func (b *Budget) MonthlyContribution() int64 {
	if !b.IsSinkingFund() || b.AnnualAmount == nil || *b.AnnualAmount == 0 {
		return b.Amount
	}
	switch b.PeriodType {
	case PeriodTypeAnnual:
		return *b.AnnualAmount / 12
	case PeriodTypeBiAnnual:
		return *b.AnnualAmount / 6
	case PeriodTypeQuarterly:
		return *b.AnnualAmount / 3
	}
	return b.Amount
}

// EffectiveTargetMonth returns the target month, defaulting to December
func (b *Budget) EffectiveTargetMonth() int {
	if b.TargetMonth == nil || *b.TargetMonth < 1 || *b.TargetMonth > 12 {
		return DefaultTargetMonth
	}
	return *b.TargetMonth
}

// SinkingFundMonths returns how many months of a contribution year have elapsed and
// remain. The year runs from targetMonth to targetMonth. Elapsed is clamped to 1..12.
func SinkingFundMonths(targetMonth int, ref Date) (elapsed, remaining int) {
	current := int(ref.Month())

	if current >= targetMonth {
		// saving toward next year's due date
		elapsed = current - targetMonth
	} else {
		elapsed = 12 - targetMonth + current
	}

	elapsed = max(1, min(elapsed, 12))
	remaining = max(0, 12-elapsed)
	return elapsed, remaining
}

// ContributionWindowStart returns the first day of the current contribution year:
// the 1st of targetMonth this year, or last year when ref is before targetMonth.
func ContributionWindowStart(targetMonth int, ref Date) Date {
	year := ref.Year()
	if int(ref.Month()) < targetMonth {
		year--
	}
	return NewDate(year, time.Month(targetMonth), 1)
}

// PotContributions picks the transfers into potID out of txs.
//
// A transfer leaves the main account as a negative amount with the destination pot in
// its metadata. It is dated by settlement when settled, else by occurrence, and kept
// when that date falls within [since, until]. Zero since/until leave that side open.
// Results are most recent first.
func PotContributions(txs []*Transaction, potID string, since, until Date) []*PotContribution {
	var out []*PotContribution
	for _, tx := range txs {
		if tx == nil || tx.Amount >= 0 || potID == "" || tx.PotID() != potID {
			continue
		}

		d := tx.Date()
		if tx.SettledAt != nil {
			d = DateOf(*tx.SettledAt)
		}
		if !since.IsZero() && d.Before(since.Time) {
			continue
		}
		if !until.IsZero() && d.After(until.Time) {
			continue
		}

		out = append(out, &PotContribution{
			TransactionID: tx.ID,
			Amount:        -tx.Amount,
			Date:          d,
			Description:   tx.Description,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// SinkingFundInput carries the optional external evidence of progress
type SinkingFundInput struct {
	// Pot is the live balance of the linked pot, when known
	Pot *Pot

	// Contributions is the derived transfer history for the contribution window
	Contributions []*PotContribution
}

// ComputeSinkingFundStatus returns the contribution position of a sinking fund.
//
// Actual progress is the live pot balance when one is supplied, else the sum of the
// contribution history. The projection extends the observed monthly rate, not the
// nominal one, so a fund that is behind stays behind.
func ComputeSinkingFundStatus(b *Budget, ref Date, in SinkingFundInput) (*SinkingFundStatus, error) {
	if b == nil {
		return nil, errors.Wrap(ErrInvalidBudget, "nil budget")
	}
	if !b.IsSinkingFund() {
		return nil, errors.Wrapf(ErrNotSinkingFund, "budget %s has period type %q", b.ID, b.PeriodType)
	}

	targetMonth := b.EffectiveTargetMonth()
	elapsed, remaining := SinkingFundMonths(targetMonth, ref)

	monthly := b.MonthlyContribution()
	expected := monthly * int64(elapsed)

	var history int64
	for _, c := range in.Contributions {
		history += c.Amount
	}

	actual := history
	var potBalance *int64
	var potName *string
	if in.Pot != nil {
		balance := in.Pot.Balance
		name := in.Pot.Name
		potBalance, potName = &balance, &name
		actual = balance
	}

	projected := actual
	if elapsed > 0 && remaining > 0 {
		projected = actual + actual*int64(remaining)/int64(elapsed)
	}

	var target int64
	if b.AnnualAmount != nil {
		target = *b.AnnualAmount
	}

	contributions := in.Contributions
	if contributions == nil {
		contributions = []*PotContribution{}
	}

	return &SinkingFundStatus{
		BudgetID:                b.ID,
		Name:                    b.Name,
		Category:                b.Category,
		TargetAmount:            target,
		MonthlyContribution:     monthly,
		ContributionsToDate:     actual,
		ContributionsThisPeriod: history,
		ExpectedToDate:          expected,
		Variance:                actual - expected,
		OnTrack:                 actual >= expected,
		TargetMonth:             targetMonth,
		MonthsElapsed:           elapsed,
		MonthsRemaining:         remaining,
		PotID:                   b.LinkedPotID,
		PotName:                 potName,
		PotBalance:              potBalance,
		ProjectedBalance:        projected,
		WindowStart:             ContributionWindowStart(targetMonth, ref),
		ContributionHistory:     contributions,
	}, nil
}
