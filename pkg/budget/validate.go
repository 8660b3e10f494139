package budget

// Validate checks the budget's fields against their allowed ranges.
// It returns *ValidationErrors listing every problem, or nil.
func (b *Budget) Validate() error {
	verrs := &ValidationErrors{}

	if b.Category == "" {
		verrs.add("category", "must not be empty", b.Category)
	}
	if b.Amount < 0 {
		verrs.add("amount", "must not be negative", b.Amount)
	}

	switch b.Period {
	case PeriodWeekly, PeriodMonthly:
	default:
		verrs.add("period", "must be weekly or monthly", b.Period)
	}

	if b.ResetDay < minResetDay || b.ResetDay > maxResetDay {
		verrs.add("resetDay", "must be between 1 and 28", b.ResetDay)
	}

	switch b.PeriodType {
	case PeriodTypeWeekly, PeriodTypeMonthly, PeriodTypeQuarterly, PeriodTypeAnnual, PeriodTypeBiAnnual:
	default:
		verrs.add("periodType", "unknown period type", b.PeriodType)
	}

	if b.AnnualAmount != nil && *b.AnnualAmount < 0 {
		verrs.add("annualAmount", "must not be negative", *b.AnnualAmount)
	}
	if b.TargetMonth != nil && (*b.TargetMonth < 1 || *b.TargetMonth > 12) {
		verrs.add("targetMonth", "must be between 1 and 12", *b.TargetMonth)
	}

	if len(verrs.Errors) > 0 {
		return verrs
	}
	return nil
}
