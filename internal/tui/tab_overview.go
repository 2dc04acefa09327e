package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	cur := a.cmp.Current
	var b strings.Builder

	// Row 1: metric cards
	runwayValue := cli.FormatRunway(a.projection)
	metrics := []components.Metric{
		{
			Label: "Balance",
			Value: cli.FormatKES(a.balance),
			Delta: "floor " + cli.FormatKES(a.threshold),
		},
		{
			Label: "Runway",
			Value: runwayValue,
			Delta: thresholdDateDelta(a.projection),
			Color: t.StatusColor(a.projection.Status),
		},
		{
			Label: "Revenue",
			Value: cli.FormatKES(cur.Revenue),
			Delta: fmt.Sprintf("%s vs prev %dd", cli.FormatChange(a.cmp.RevenueChange), a.days),
			Color: t.Income,
		},
		{
			Label: "Expenses",
			Value: cli.FormatKES(cur.Expenses),
			Delta: fmt.Sprintf("%s vs prev %dd", cli.FormatChange(a.cmp.ExpensesChange), a.days),
			Color: t.Expense,
		},
	}
	if !a.isCompactLayout() {
		metrics = append(metrics, components.Metric{
			Label: "Today",
			Value: cli.FormatSignedKES(a.today.Profit),
			Delta: fmt.Sprintf("%d in / %d out", a.today.IncomeCount, a.today.ExpenseCount),
		})
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: runway bar
	innerW := components.CardInnerWidth(cw)
	b.WriteString(components.ContentCard("Runway", components.RunwayBar("Days left", a.projection, 12, max(10, innerW-20)), cw))
	b.WriteString("\n")

	// Row 3: projected balance
	if len(a.curve) > 0 {
		chartH := 10
		if a.isCompactLayout() {
			chartH = 7
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Projected Balance (%d days)", len(a.curve)-1),
			components.BalanceChart(a.curve, a.threshold, curveLabels(a.curve), innerW, chartH),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 4: upcoming recurring expenses
	b.WriteString(components.ContentCard("Upcoming Recurring", a.renderUpcoming(innerW), cw))
	return b.String()
}

func thresholdDateDelta(r model.ProjectionResult) string {
	switch {
	case r.ThresholdDate != nil:
		return "floor on " + r.ThresholdDate.Format("Mon Jan 2")
	case r.Unbounded():
		return "no recent spending"
	default:
		return "at or below floor"
	}
}

func (a App) renderUpcoming(innerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	red := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)

	if len(a.upcoming) == 0 {
		return muted.Render("No recurring expenses due in the next week.")
	}

	descW := max(10, innerW-40)
	var b strings.Builder
	var total int64
	for i, u := range a.upcoming {
		if i == 5 {
			fmt.Fprintf(&b, "%s\n", dim.Render(fmt.Sprintf("+%d more", len(a.upcoming)-5)))
			break
		}
		total += u.Amount
		b.WriteString(dim.Render(fmt.Sprintf("%-11s", u.DueDate.Format("Mon Jan 2"))))
		b.WriteString(text.Render(fmt.Sprintf("%-*s ", descW, truncStr(u.Description, descW))))
		b.WriteString(muted.Render(fmt.Sprintf("%-12s ", truncStr(a.category(u.CategoryID).Name, 12))))
		b.WriteString(red.Render(fmt.Sprintf("%12s", cli.FormatKES(u.Amount))))
		b.WriteString("\n")
	}
	if after := a.balance - total; after <= a.threshold {
		warn := lipgloss.NewStyle().Foreground(t.Threshold).Background(t.Surface)
		b.WriteString(warn.Render(fmt.Sprintf("Paying these leaves %s, at or below the floor.", cli.FormatKES(after))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func curveLabels(points []model.ProjectionPoint) []string {
	labels := make([]string, len(points))
	for i, p := range points {
		if i == 0 {
			labels[i] = "now"
			continue
		}
		labels[i] = p.Date.Format("Jan 2")
	}
	return labels
}
