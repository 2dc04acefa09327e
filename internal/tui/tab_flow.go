package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

func (a App) renderFlowTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	income := make([]float64, len(a.daily))
	expense := make([]float64, len(a.daily))
	for i, d := range a.daily {
		income[i] = float64(d.Income)
		expense[i] = float64(d.Expense)
	}
	labels := chartDateLabels(a.daily)

	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Money In", components.BarChart(income, labels, t.Income, components.CardInnerWidth(halves[0]), chartH), halves[0]),
		components.ContentCard("Money Out", components.BarChart(expense, labels, t.Expense, components.CardInnerWidth(halves[1]), chartH), halves[1]),
	}))
	b.WriteString("\n")

	b.WriteString(components.ContentCard(fmt.Sprintf("Daily Cash Flow (%dd)", a.days), a.renderDailyTable(components.CardInnerWidth(cw)), cw))
	return b.String()
}

func (a App) renderDailyTable(innerW int) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	green := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	red := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	colW := max(12, (innerW-16)/3)
	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf("%-16s%*s%*s%*s", "Date", colW, "In", colW, "Out", colW, "Net")))
	b.WriteString("\n")

	// Newest first.
	var in, out int64
	for i := len(a.daily) - 1; i >= 0; i-- {
		d := a.daily[i]
		in += d.Income
		out += d.Expense
		if d.Income == 0 && d.Expense == 0 {
			continue
		}
		net := text
		if d.Net() < 0 {
			net = red
		}
		b.WriteString(dim.Render(fmt.Sprintf("%-16s", d.Date.Format("Mon 2006-01-02"))))
		b.WriteString(green.Render(fmt.Sprintf("%*s", colW, cli.FormatKES(d.Income))))
		b.WriteString(red.Render(fmt.Sprintf("%*s", colW, cli.FormatKES(d.Expense))))
		b.WriteString(net.Render(fmt.Sprintf("%*s", colW, cli.FormatSignedKES(d.Net()))))
		b.WriteString("\n")
	}
	b.WriteString(dim.Render(strings.Repeat("─", min(innerW, 16+3*colW))))
	b.WriteString("\n")
	b.WriteString(head.Render(fmt.Sprintf("%-16s%*s%*s%*s", "Total", colW, cli.FormatKES(in), colW, cli.FormatKES(out), colW, cli.FormatSignedKES(in-out))))
	return b.String()
}
