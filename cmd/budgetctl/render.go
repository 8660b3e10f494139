package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/solstice035/monzo-analysis/internal/notify"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// Catppuccin Mocha
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorOverlay1)
	labelStyle = lipgloss.NewStyle().Foreground(colorText).Width(28)
	moneyStyle = lipgloss.NewStyle().Foreground(colorText).Width(12).Align(lipgloss.Right)
)

func statusColor(s budget.Status) lipgloss.Color {
	switch s {
	case budget.StatusOver:
		return colorRed
	case budget.StatusWarning:
		return colorYellow
	default:
		return colorGreen
	}
}

func statusCell(s budget.Status, pct float64) string {
	return lipgloss.NewStyle().Foreground(statusColor(s)).Width(16).Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%% %s", pct, s))
}

func money(pence int64) string {
	if pence < 0 {
		return moneyStyle.Render("-" + notify.FormatCurrency(pence))
	}
	return moneyStyle.Render(notify.FormatCurrency(pence))
}

func budgetLabel(name *string, category string) string {
	if name != nil && *name != "" {
		return *name
	}
	return category
}

func renderDashboard(d *budget.DashboardSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Budgets %s to %s", d.PeriodStart, d.PeriodEnd)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Day %d of %d", d.DaysElapsed, d.DaysInPeriod)))
	b.WriteString("\n")

	for _, g := range d.Groups {
		name := g.Name
		if g.Icon != nil {
			name = *g.Icon + " " + name
		}
		b.WriteString("\n")
		b.WriteString(labelStyle.Bold(true).Render(name))
		b.WriteString(money(g.TotalSpent) + money(g.TotalAmount) + statusCell(g.Status, g.Percentage))
		b.WriteString("\n")
		for _, s := range g.Budgets {
			b.WriteString(labelStyle.Render("  " + budgetLabel(s.Name, s.Category)))
			b.WriteString(money(s.Spent) + money(s.Amount) + statusCell(s.Status, s.Percentage))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Bold(true).Render("Total"))
	b.WriteString(money(d.TotalSpent) + money(d.TotalBudget) + statusCell(d.OverallStatus, d.OverallPercentage))
	return b.String()
}

func renderSinkingFunds(statuses []*budget.SinkingFundStatus) string {
	if len(statuses) == 0 {
		return mutedStyle.Render("No sinking funds")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Sinking funds"))
	b.WriteString("\n")
	for _, s := range statuses {
		state := lipgloss.NewStyle().Foreground(colorGreen).Render("on track")
		if !s.OnTrack {
			state = lipgloss.NewStyle().Foreground(colorRed).Render("behind")
		}
		b.WriteString(labelStyle.Render(budgetLabel(s.Name, s.Category)))
		b.WriteString(money(s.ContributionsToDate) + money(s.ExpectedToDate) + money(s.TargetAmount))
		b.WriteString("  " + state)
		if s.PotName != nil {
			b.WriteString(mutedStyle.Render("  " + *s.PotName))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPots(p *budget.PotSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d pots, %s", p.TotalPots, notify.FormatCurrency(p.TotalBalance))))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Linked (%d)", p.LinkedPots)) + money(p.LinkedBalance) + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Unlinked (%d)", p.UnlinkedPots)) + money(p.UnlinkedBalance))
	for _, pot := range p.Unlinked {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(labelStyle.Render("  "+pot.Name)) + money(pot.Balance))
	}
	return b.String()
}

func renderRecurring(patterns []*budget.RecurringPattern) string {
	if len(patterns) == 0 {
		return mutedStyle.Render("No recurring payments detected")
	}

	var total int64
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recurring payments"))
	b.WriteString("\n")
	for _, p := range patterns {
		total += p.MonthlyCost
		next := "-"
		if p.NextExpected != nil {
			next = p.NextExpected.String()
		}
		b.WriteString(labelStyle.Render(p.MerchantName))
		b.WriteString(money(p.AverageAmount) + " " + lipgloss.NewStyle().Width(10).Render(p.FrequencyLabel))
		b.WriteString(money(p.MonthlyCost) + mutedStyle.Render(fmt.Sprintf("  next %s  %.0f%%", next, p.Confidence*100)))
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Bold(true).Render("Monthly total") + money(total))
	return b.String()
}

func renderAlerts(statuses []*budget.BudgetStatus) string {
	if len(statuses) == 0 {
		return lipgloss.NewStyle().Foreground(colorGreen).Render("All budgets on track")
	}

	var b strings.Builder
	for i, s := range statuses {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(budgetLabel(s.Name, s.Category)))
		b.WriteString(money(s.Spent) + money(s.Amount) + statusCell(s.Status, s.Percentage))
	}
	return b.String()
}
