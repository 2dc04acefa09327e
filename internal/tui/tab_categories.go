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

func (a App) renderCategoriesTab(cw int) string {
	title := fmt.Sprintf("Expenses by Category (%dd)", a.days)
	return components.ContentCard(title, a.renderCategoryBars(a.categories, components.CardInnerWidth(cw)), cw)
}

// renderCategoryBars draws one proportional bar per category share.
func (a App) renderCategoryBars(shares []model.CategoryShare, innerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	track := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(shares) == 0 {
		return muted.Render("No expenses in this period.")
	}

	var maxAmt int64
	for _, s := range shares {
		maxAmt = max(maxAmt, s.Amount)
	}

	const labelW, amountW, pctW = 16, 14, 6
	barW := max(10, innerW-labelW-amountW-pctW-2)

	var b strings.Builder
	for _, s := range shares {
		cat := a.category(s.CategoryID)
		color := t.Accent
		if cat.Color != "" {
			color = lipgloss.Color(cat.Color)
		}
		filled := int(float64(s.Amount) / float64(maxAmt) * float64(barW))
		if filled == 0 && s.Amount > 0 {
			filled = 1
		}
		bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", filled)) +
			track.Render(strings.Repeat("░", barW-filled))

		b.WriteString(text.Render(fmt.Sprintf("%-*s", labelW, truncStr(cat.Name, labelW-1))))
		b.WriteString(bar)
		b.WriteString(text.Render(fmt.Sprintf(" %*s", amountW, cli.FormatKES(s.Amount))))
		b.WriteString(muted.Render(fmt.Sprintf("%*s", pctW, fmt.Sprintf("%d%%", s.Percentage))))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
