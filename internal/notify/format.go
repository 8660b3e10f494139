package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// FormatCurrency renders pence as pounds, e.g. 5234 as "£52.34". The sign is dropped.
func FormatCurrency(pence int64) string {
	if pence < 0 {
		pence = -pence
	}
	return "£" + decimal.New(pence, -2).StringFixed(2)
}

// FormatBudgetWarning renders the alert for a budget nearing its limit
func FormatBudgetWarning(s *budget.BudgetStatus) string {
	return fmt.Sprintf("⚠️ *Budget Warning: %s*\nYou've used *%.0f%%* of your budget\nRemaining: *%s*",
		s.Category, s.Percentage, FormatCurrency(s.Remaining))
}

// FormatBudgetExceeded renders the alert for a budget past its limit
func FormatBudgetExceeded(s *budget.BudgetStatus) string {
	return fmt.Sprintf("🚨 *Budget Exceeded: %s*\nYou've spent *%.0f%%* of your budget\nOver by: *%s*",
		s.Category, s.Percentage, FormatCurrency(s.Remaining))
}

// FormatDailySummary renders a day's spending digest. label, when set, follows the date.
func FormatDailySummary(d *budget.DailySpend, label string) string {
	date := d.Date.String()
	if label != "" {
		date = fmt.Sprintf("%s (%s)", date, label)
	}
	return fmt.Sprintf("📊 *Daily Summary for %s*\nTotal spent: *%s* across %d transactions\nTop category: *%s* (%s)",
		date, FormatCurrency(d.TotalSpend), d.TransactionCount, d.TopCategory, FormatCurrency(d.TopCategorySpend))
}

// FormatSyncComplete renders the result of a transaction sync
func FormatSyncComplete(processed, categorised int) string {
	return fmt.Sprintf("✅ Sync complete: %d transactions processed (%d categorised by rules)", processed, categorised)
}

// FormatSinkingFundBehind renders the alert for a sinking fund short of its expected balance
func FormatSinkingFundBehind(s *budget.SinkingFundStatus) string {
	return fmt.Sprintf("🐷 *Sinking Fund Behind: %s*\nSaved *%s* of *%s* expected by now\nShort by: *%s* with %d months to go",
		sinkingFundLabel(s), FormatCurrency(s.ContributionsToDate), FormatCurrency(s.ExpectedToDate),
		FormatCurrency(s.Variance), s.MonthsRemaining)
}

// FormatRecurringDigest renders detected recurring payments, one per line, with their
// combined monthly cost
func FormatRecurringDigest(patterns []*budget.RecurringPattern) string {
	if len(patterns) == 0 {
		return "🔁 *Recurring Payments*\nNo recurring payments detected"
	}

	var b strings.Builder
	var total int64
	b.WriteString("🔁 *Recurring Payments*")
	for _, p := range patterns {
		total += p.MonthlyCost
		fmt.Fprintf(&b, "\n• %s: %s %s (%s/month)", p.MerchantName, FormatCurrency(p.AverageAmount),
			p.FrequencyLabel, FormatCurrency(p.MonthlyCost))
	}
	fmt.Fprintf(&b, "\nTotal: *%s/month* across %d payments", FormatCurrency(total), len(patterns))
	return b.String()
}

func sinkingFundLabel(s *budget.SinkingFundStatus) string {
	if s.Name != nil && *s.Name != "" {
		return *s.Name
	}
	return s.Category
}

func dashboardLine(name string, spent, amount int64, pct float64) string {
	return fmt.Sprintf("*%s*: %s of %s (%.0f%%)", name, FormatCurrency(spent), FormatCurrency(amount), pct)
}

func dayProgress(elapsed, total int) string {
	return fmt.Sprintf("Day %d of %d", elapsed, total)
}
