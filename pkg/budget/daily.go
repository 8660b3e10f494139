package budget

// DailySpend summarises one day's spending
type DailySpend struct {
	Date             Date   `json:"date"`
	TotalSpend       int64  `json:"totalSpend"`
	TransactionCount int    `json:"transactionCount"`
	TopCategory      string `json:"topCategory"`
	TopCategorySpend int64  `json:"topCategorySpend"`
}

// ComputeDailySpend totals the spend transactions that occurred on day. Uncategorised
// spend counts as DefaultRecurringCategory. Ties for the top category go to the category
// seen first. It returns nil when nothing was spent that day.
func ComputeDailySpend(txs []*Transaction, day Date) *DailySpend {
	out := &DailySpend{Date: day}
	totals := map[string]int64{}
	var order []string

	for _, tx := range txs {
		if tx == nil || tx.Amount >= 0 || !tx.Date().Equal(day.Time) {
			continue
		}

		category := DefaultRecurringCategory
		if tx.Category != nil && *tx.Category != "" {
			category = *tx.Category
		}
		if _, seen := totals[category]; !seen {
			order = append(order, category)
		}
		totals[category] += -tx.Amount

		out.TotalSpend += -tx.Amount
		out.TransactionCount++
	}

	if out.TransactionCount == 0 {
		return nil
	}

	for _, category := range order {
		if totals[category] > out.TopCategorySpend {
			out.TopCategory = category
			out.TopCategorySpend = totals[category]
		}
	}
	return out
}
