package budget

// SummarisePots totals the active pots, split by whether any budget links to them.
// Deleted pots are ignored.
func SummarisePots(pots []*Pot, budgets []*Budget) *PotSummary {
	linked := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		if b.LinkedPotID != nil && *b.LinkedPotID != "" {
			linked[*b.LinkedPotID] = true
		}
	}

	summary := &PotSummary{Unlinked: []*Pot{}}
	for _, p := range pots {
		if p == nil || p.Deleted {
			continue
		}

		summary.TotalPots++
		summary.TotalBalance += p.Balance
		if linked[p.ID] {
			summary.LinkedPots++
			summary.LinkedBalance += p.Balance
			continue
		}
		summary.UnlinkedPots++
		summary.UnlinkedBalance += p.Balance
		summary.Unlinked = append(summary.Unlinked, p)
	}
	return summary
}
