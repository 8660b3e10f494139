package budget

// ComputeSpend returns the total spend in pence for the budget's category within p.
// Only negative amounts count. Refunds and income are excluded, not netted.
func ComputeSpend(b *Budget, p Period, txs []*Transaction) int64 {
	var spent int64
	for _, tx := range txs {
		if countsTowards(b, p, tx) {
			spent += -tx.Amount
		}
	}
	return spent
}

// BudgetsPeriod returns the window covering every budget's current period for ref,
// so one transaction fetch serves all of them.
func BudgetsPeriod(budgets []*Budget, ref Date) Period {
	periods := make([]Period, 0, len(budgets))
	for _, b := range budgets {
		periods = append(periods, b.CurrentPeriod(ref))
	}
	if len(periods) == 0 {
		return Period{Start: ref, End: ref}
	}
	return CoveringPeriod(periods...)
}

// BudgetCategories returns the distinct categories of the budgets in first-seen order
func BudgetCategories(budgets []*Budget) []string {
	seen := make(map[string]bool, len(budgets))
	var out []string
	for _, b := range budgets {
		if seen[b.Category] {
			continue
		}
		seen[b.Category] = true
		out = append(out, b.Category)
	}
	return out
}

func countsTowards(b *Budget, p Period, tx *Transaction) bool {
	if tx == nil || tx.Amount >= 0 || tx.Category == nil {
		return false
	}
	if *tx.Category != b.Category {
		return false
	}
	if b.AccountID != "" && tx.AccountID != "" && tx.AccountID != b.AccountID {
		return false
	}
	return p.Contains(tx.Date())
}
