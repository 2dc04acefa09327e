package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

const (
	settingsFieldBusinessName = iota
	settingsFieldThreshold
	settingsFieldOpeningBalance
	settingsFieldTheme
	settingsFieldDays
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldBusinessName:
		ti.Placeholder = "Mama Njeri Groceries"
		ti.SetValue(a.cfg.Business.Name)
	case settingsFieldThreshold:
		ti.Placeholder = strconv.Itoa(config.DefaultThreshold)
		ti.SetValue(strconv.FormatInt(a.threshold, 10))
	case settingsFieldOpeningBalance:
		ti.Placeholder = "0"
		ti.SetValue(strconv.FormatInt(a.cfg.Business.OpeningBalance, 10))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldDays:
		ti.Placeholder = "30"
		ti.SetValue(strconv.Itoa(a.days))
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "30s"
		ti.SetValue(a.refreshInterval.String())
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field to the running app and persists it.
// Auto-refresh is a session toggle and is not written to disk.
func (a *App) settingsSave() {
	cfg := a.cfg
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldBusinessName:
		cfg.Business.Name = val
	case settingsFieldThreshold:
		n, err := parseShillings(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("threshold: %w", err)
			return
		}
		cfg.Business.LowBalanceThreshold = n
		a.threshold = n
	case settingsFieldOpeningBalance:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("opening balance: %w", err)
			return
		}
		cfg.Business.OpeningBalance = n
	case settingsFieldTheme:
		found := false
		for _, name := range theme.Names() {
			if name == val {
				found = true
				break
			}
		}
		if !found {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldDays:
		d, err := strconv.Atoi(val)
		if err != nil || d <= 0 {
			a.settings.saveErr = fmt.Errorf("days must be a positive number, got %q", val)
			return
		}
		cfg.General.DefaultDays = d
		a.days = d
	case settingsFieldAutoRefresh:
		a.autoRefresh = val == "true" || val == "1" || val == "yes"
		return
	case settingsFieldRefreshInterval:
		d, err := time.ParseDuration(val)
		if err != nil || d < 10*time.Second {
			a.settings.saveErr = fmt.Errorf("interval must be a duration of at least 10s, got %q", val)
			return
		}
		cfg.Daemon.Interval = d.String()
		a.refreshInterval = d
	}

	a.cfg = cfg
	a.recompute()
	a.settings.saveErr = config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Healthy).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	name := a.cfg.Business.Name
	if name == "" {
		name = "(not set)"
	}
	fields := []struct{ label, value string }{
		{"Business Name", name},
		{"Low-Balance Floor", cli.FormatKES(a.threshold)},
		{"Opening Balance", cli.FormatKES(a.cfg.Business.OpeningBalance)},
		{"Theme", a.cfg.Appearance.Theme},
		{"Days", strconv.Itoa(a.days)},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", a.refreshInterval.String()},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if padLen := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}
	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	source := a.opts.SourceLabel
	if source == "" {
		source = a.opts.DataDir
	}
	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Source:        ") + valueStyle.Render(source) + "\n")
	infoBody.WriteString(labelStyle.Render("Transactions:  ") + valueStyle.Render(cli.FormatNumber(int64(len(a.txs)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:     ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())) + "\n")
	infoBody.WriteString(labelStyle.Render("Timezone:      ") + valueStyle.Render(a.loc.String()) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
