package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// runwayScaleDays is the full width of a runway bar.
const runwayScaleDays = 30

// ProgressBar renders a loading bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := max(0, min(int(pct*float64(width)), width))

	barColor := t.Key
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// runwayFraction maps days of runway onto [0, 1] over runwayScaleDays.
func runwayFraction(r model.ProjectionResult) float64 {
	if r.DaysUntilThreshold >= runwayScaleDays {
		return 1
	}
	if r.DaysUntilThreshold <= 0 {
		return 0
	}
	return float64(r.DaysUntilThreshold) / runwayScaleDays
}

func runwayDaysLabel(r model.ProjectionResult) string {
	if r.DaysUntilThreshold > runwayScaleDays {
		return fmt.Sprintf("%d+", runwayScaleDays)
	}
	return fmt.Sprintf("%dd", r.DaysUntilThreshold)
}

// RunwayBar renders a labeled bar showing how much of the next 30 days the
// balance covers, colored by status.
func RunwayBar(label string, r model.ProjectionResult, labelW, barWidth int) string {
	t := theme.Active
	color := t.StatusColor(r.Status)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	daysStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(runwayFraction(r)) +
		spaceStyle.Render(" ") +
		daysStyle.Render(runwayDaysLabel(r))
}

// CompactRunwayBar renders a status-bar-sized runway indicator.
func CompactRunwayBar(r model.ProjectionResult, width int) string {
	t := theme.Active
	color := t.StatusColor(r.Status)
	days := runwayDaysLabel(r)

	barW := max(4, width-lipgloss.Width(days)-1)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	daysStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	return bar.ViewAs(runwayFraction(r)) +
		lipgloss.NewStyle().Background(t.Surface).Render(" ") +
		daysStyle.Render(days)
}
