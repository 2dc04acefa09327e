package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// StatusBarState is what the bottom bar shows.
type StatusBarState struct {
	DataAge     string
	Projection  *model.ProjectionResult
	Refreshing  bool
	AutoRefresh bool
	Source      string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st StatusBarState) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	left := style.Render(" [?]help  [r]efresh  [q]uit")
	if st.AutoRefresh {
		left += accent.Render("  auto")
	}

	var right []string
	if st.Refreshing {
		right = append(right, accent.Render("refreshing…"))
	}
	if st.Projection != nil {
		right = append(right, CompactRunwayBar(*st.Projection, 16))
	}
	if st.Source != "" {
		right = append(right, style.Render(st.Source))
	}
	if st.DataAge != "" {
		right = append(right, style.Render("loaded in "+st.DataAge))
	}
	r := strings.Join(right, style.Render("  ")) + style.Render(" ")

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(r))
	return left + style.Render(strings.Repeat(" ", padding)) + r
}
