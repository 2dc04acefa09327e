// Package theme defines color themes for the runway TUI dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/model"
)

// Theme maps the dashboard's roles onto colors. Chrome roles style cards
// and text; the money roles color cash flow and runway state.
type Theme struct {
	Name string

	Background    lipgloss.Color
	Surface       lipgloss.Color // card and panel fill
	SurfaceBright lipgloss.Color // selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused card
	TextDim       lipgloss.Color
	TextMuted     lipgloss.Color
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	Key           lipgloss.Color // key hints in help and status bar

	Income    lipgloss.Color
	Expense   lipgloss.Color
	Threshold lipgloss.Color // low-balance floor line and warnings

	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default, a warm paper-ink dark palette.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Key:           lipgloss.Color("#24837B"),
	Income:        lipgloss.Color("#A3B859"),
	Expense:       lipgloss.Color("#D14D41"),
	Threshold:     lipgloss.Color("#DA702C"),
	Healthy:       lipgloss.Color("#A3B859"),
	Warning:       lipgloss.Color("#D0A215"),
	Critical:      lipgloss.Color("#D14D41"),
}

// MPesa is a green palette after the M-Pesa app.
var MPesa = Theme{
	Name:          "mpesa",
	Background:    lipgloss.Color("#0B1410"),
	Surface:       lipgloss.Color("#13211A"),
	SurfaceBright: lipgloss.Color("#223A2E"),
	Border:        lipgloss.Color("#2C4A3B"),
	BorderAccent:  lipgloss.Color("#4CB648"),
	TextDim:       lipgloss.Color("#4F6B5C"),
	TextMuted:     lipgloss.Color("#8FA99A"),
	TextPrimary:   lipgloss.Color("#EEF7F1"),
	Accent:        lipgloss.Color("#4CB648"),
	AccentBright:  lipgloss.Color("#7FD77B"),
	Key:           lipgloss.Color("#E4002B"),
	Income:        lipgloss.Color("#7FD77B"),
	Expense:       lipgloss.Color("#F26B5B"),
	Threshold:     lipgloss.Color("#F5A623"),
	Healthy:       lipgloss.Color("#4CB648"),
	Warning:       lipgloss.Color("#F5A623"),
	Critical:      lipgloss.Color("#E4002B"),
}

// Terminal uses the ANSI 16 colors so it follows the terminal's scheme.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Key:           lipgloss.Color("6"),
	Income:        lipgloss.Color("10"),
	Expense:       lipgloss.Color("1"),
	Threshold:     lipgloss.Color("3"),
	Healthy:       lipgloss.Color("10"),
	Warning:       lipgloss.Color("11"),
	Critical:      lipgloss.Color("9"),
}

// All available themes.
var All = []Theme{FlexokiDark, MPesa, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// StatusColor maps a runway status onto the theme.
func (t Theme) StatusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusHealthy:
		return t.Healthy
	case model.StatusWarning:
		return t.Warning
	default:
		return t.Critical
	}
}
