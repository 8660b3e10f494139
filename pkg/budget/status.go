package budget

import "github.com/shopspring/decimal"

// Classification thresholds, in percent of the budget amount
const (
	WarningThreshold = 80
	OverThreshold    = 100
)

var hundred = decimal.NewFromInt(100)

// Percentage returns spent as a percentage of amount rounded to 2 decimal places.
// It is 0 whenever amount is not positive.
func Percentage(spent, amount int64) float64 {
	if amount <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(spent).Mul(hundred).Div(decimal.NewFromInt(amount))
	return pct.Round(2).InexactFloat64()
}

// Classify maps a percentage onto the fixed thresholds:
// >= 100 is over, >= 80 is warning, anything else is under.
func Classify(pct float64) Status {
	switch {
	case pct >= OverThreshold:
		return StatusOver
	case pct >= WarningThreshold:
		return StatusWarning
	default:
		return StatusUnder
	}
}

// classifySpend classifies on the exact ratio, so rounding of the displayed
// percentage never moves a budget across a threshold.
func classifySpend(spent, amount int64) Status {
	if amount <= 0 {
		return StatusUnder
	}
	switch {
	case spent*100 >= amount*OverThreshold:
		return StatusOver
	case spent*100 >= amount*WarningThreshold:
		return StatusWarning
	default:
		return StatusUnder
	}
}

// newBudgetStatus builds the status record for a budget with a known spend
func newBudgetStatus(b *Budget, p Period, spent int64) *BudgetStatus {
	return &BudgetStatus{
		BudgetID:    b.ID,
		GroupID:     b.GroupID,
		Name:        b.Name,
		Category:    b.Category,
		Amount:      b.Amount,
		Spent:       spent,
		Remaining:   b.Amount - spent,
		Percentage:  Percentage(spent, b.Amount),
		Status:      classifySpend(spent, b.Amount),
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
	}
}

// ComputeBudgetStatus returns the status of one budget for the period containing ref
func ComputeBudgetStatus(b *Budget, ref Date, txs []*Transaction) *BudgetStatus {
	p := b.CurrentPeriod(ref)
	return newBudgetStatus(b, p, ComputeSpend(b, p, txs))
}

// ComputeAllBudgetStatuses returns one status per budget, in budget order.
//
// txs is a single pool fetched over BudgetsPeriod. Each transaction is checked against
// each budget's own window, since budgets with different reset days have different
// windows even within one account.
func ComputeAllBudgetStatuses(budgets []*Budget, ref Date, txs []*Transaction) []*BudgetStatus {
	statuses := make([]*BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, ComputeBudgetStatus(b, ref, txs))
	}
	return statuses
}
