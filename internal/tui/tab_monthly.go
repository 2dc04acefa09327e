package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

func (a App) renderMonthlyTab(cw int) string {
	t := theme.Active
	r := a.report
	var b strings.Builder

	if len(a.months) == 0 {
		return ""
	}

	// Month picker
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)
	var picker strings.Builder
	for i, m := range a.months {
		if i > 0 {
			picker.WriteString(dim.Render(" "))
		}
		if i == a.monthIdx {
			picker.WriteString(sel.Render(" " + m.Key() + " "))
		} else {
			picker.WriteString(dim.Render(" " + m.Key() + " "))
		}
		if lipgloss.Width(picker.String()) > components.CardInnerWidth(cw)-12 {
			break
		}
	}
	picker.WriteString(dim.Render("   [j/k] month"))
	b.WriteString(components.ContentCard("Months", picker.String(), cw))
	b.WriteString("\n")

	metrics := []components.Metric{
		{Label: "Revenue", Value: cli.FormatKES(r.Summary.Revenue), Delta: fmt.Sprintf("%d receipts", r.Summary.IncomeCount), Color: t.Income},
		{Label: "Expenses", Value: cli.FormatKES(r.Summary.Expenses), Delta: fmt.Sprintf("%d payments", r.Summary.ExpenseCount), Color: t.Expense},
		{Label: "Profit", Value: cli.FormatSignedKES(r.Summary.Profit)},
		{Label: "Avg Transaction", Value: cli.FormatKES(r.AvgTransaction)},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	spend := make([]float64, len(r.Daily))
	for i, d := range r.Daily {
		spend[i] = float64(d.Expense)
	}
	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Daily Spend", components.BarChart(spend, chartDateLabels(r.Daily), t.Expense, components.CardInnerWidth(halves[0]), chartH), halves[0]),
		components.ContentCard("Expenses", a.renderCategoryBars(r.Categories, components.CardInnerWidth(halves[1])), halves[1]),
	}))
	return b.String()
}
