package budget

// ComputeGroupStatus rolls member statuses up into a group total.
//
// Members keep their own windows; the group window is the earliest start to the latest
// end among them, collapsing to ref when the group is empty. Classification is applied
// again to the summed totals.
func ComputeGroupStatus(g *BudgetGroup, members []*BudgetStatus, ref Date) *BudgetGroupStatus {
	var amount, spent int64
	periods := make([]Period, 0, len(members))
	for _, m := range members {
		amount += m.Amount
		spent += m.Spent
		periods = append(periods, Period{Start: m.PeriodStart, End: m.PeriodEnd})
	}

	window := Period{Start: ref, End: ref}
	if len(periods) > 0 {
		window = CoveringPeriod(periods...)
	}

	if members == nil {
		members = []*BudgetStatus{}
	}

	return &BudgetGroupStatus{
		GroupID:        g.ID,
		Name:           g.Name,
		Icon:           g.Icon,
		DisplayOrder:   g.DisplayOrder,
		TotalAmount:    amount,
		TotalSpent:     spent,
		TotalRemaining: amount - spent,
		Percentage:     Percentage(spent, amount),
		Status:         classifySpend(spent, amount),
		BudgetCount:    len(members),
		Budgets:        members,
		PeriodStart:    window.Start,
		PeriodEnd:      window.End,
	}
}

// ComputeDashboardSummary sums group totals into an account-wide view.
// Empty groups contribute nothing to the overall window. With no budgets at all the
// window is ref itself, one day long.
func ComputeDashboardSummary(groups []*BudgetGroupStatus, ref Date) *DashboardSummary {
	var amount, spent int64
	var periods []Period
	for _, g := range groups {
		amount += g.TotalAmount
		spent += g.TotalSpent
		if g.BudgetCount > 0 {
			periods = append(periods, Period{Start: g.PeriodStart, End: g.PeriodEnd})
		}
	}

	window := Period{Start: ref, End: ref}
	if len(periods) > 0 {
		window = CoveringPeriod(periods...)
	}

	if groups == nil {
		groups = []*BudgetGroupStatus{}
	}

	return &DashboardSummary{
		Groups:            groups,
		TotalBudget:       amount,
		TotalSpent:        spent,
		TotalRemaining:    amount - spent,
		OverallPercentage: Percentage(spent, amount),
		OverallStatus:     classifySpend(spent, amount),
		PeriodStart:       window.Start,
		PeriodEnd:         window.End,
		DaysInPeriod:      window.Days(),
		DaysElapsed:       ref.DaysSince(window.Start) + 1,
	}
}
