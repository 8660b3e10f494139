package budget

import "time"

const (
	minResetDay = 1
	maxResetDay = 28
)

// ComputePeriod returns the budget window containing ref.
//
// Weekly windows run Monday to Sunday. Monthly windows start on resetDay and end the
// day before resetDay in the following month. resetDay is clamped to 1..28 so every
// month, February included, has the anchor day.
func ComputePeriod(ref Date, resetDay int, kind PeriodKind) Period {
	if kind == PeriodWeekly {
		start := ref.AddDays(-ref.DaysSinceMonday())
		return Period{Start: start, End: start.AddDays(6)}
	}

	resetDay = clampResetDay(resetDay)

	year, month := ref.Year(), ref.Month()
	if ref.Day() < resetDay {
		year, month = previousMonth(year, month)
	}

	start := NewDate(year, month, resetDay)
	endYear, endMonth := nextMonth(year, month)
	end := NewDate(endYear, endMonth, resetDay).AddDays(-1)

	return Period{Start: start, End: end}
}

// CoveringPeriod returns the smallest window containing all the given windows.
// It returns the zero Period when called with none.
func CoveringPeriod(periods ...Period) Period {
	if len(periods) == 0 {
		return Period{}
	}
	out := periods[0]
	for _, p := range periods[1:] {
		if p.Start.Before(out.Start.Time) {
			out.Start = p.Start
		}
		if p.End.After(out.End.Time) {
			out.End = p.End
		}
	}
	return out
}

// CurrentPeriod returns the budget's current window for ref
func (b *Budget) CurrentPeriod(ref Date) Period {
	return ComputePeriod(ref, b.ResetDay, b.Period)
}

func clampResetDay(day int) int {
	if day < minResetDay {
		return minResetDay
	}
	if day > maxResetDay {
		return maxResetDay
	}
	return day
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
