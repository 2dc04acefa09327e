// Package tui provides the interactive Bubble Tea dashboard for runway.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// DataLoadedMsg is sent when the first load finishes.
type DataLoadedMsg struct {
	Transactions []model.Transaction
	LoadTime     time.Duration
	Err          error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background refresh completes.
type RefreshDataMsg struct {
	Transactions []model.Transaction
	LoadTime     time.Duration
	Err          error
}

// Options configures the dashboard.
type Options struct {
	Config    config.Config
	DataDir   string
	Days      int
	Category  string
	Threshold int64
	// Ref pins the reference time; zero means now.
	Ref      time.Time
	UseCache bool
	// Source overrides statement loading, e.g. with the dashboard database.
	Source      pipeline.TransactionSource
	SourceLabel string
	// Categories from the source take precedence over config labels.
	Categories map[string]model.Category
	Logger      *zap.Logger
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	cfg  config.Config
	loc  *time.Location
	log  *zap.Logger

	// Data
	txs      []model.Transaction
	loaded   bool
	loadTime time.Duration
	loadErr  error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for the current filter
	balance    int64
	threshold  int64
	projection model.ProjectionResult
	curve      []model.ProjectionPoint
	today      model.PeriodSummary
	cmp        model.PeriodComparison
	daily      []model.DailyTotals
	categories []model.CategoryShare
	upcoming   []model.UpcomingExpense
	months     []model.MonthOption
	monthIdx   int
	report     model.Report

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	days      int

	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160
	minContentHeight = 5
)

const (
	tabOverview = iota
	tabFlow
	tabCategories
	tabMonthly
	tabSettings
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	loc, err := opts.Config.Location()
	if err != nil {
		loc = time.Local
	}
	interval, err := opts.Config.PollInterval()
	if err != nil {
		interval = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	days := opts.Days
	if days <= 0 {
		days = 30
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:            opts,
		cfg:             opts.Config,
		loc:             loc,
		log:             log,
		days:            days,
		threshold:       opts.Threshold,
		needSetup:       !config.Exists(),
		refreshInterval: interval,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.source(a.loadSub), a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// source returns the configured transaction source. Statement directories
// report parse progress through sub when it is non-nil.
func (a App) source(sub chan tea.Msg) pipeline.TransactionSource {
	if a.opts.Source != nil {
		return a.opts.Source
	}
	opts := pipeline.LoadOptions{Location: a.loc, Logger: a.log}
	if sub != nil {
		// Non-blocking send so workers aren't stalled.
		opts.Progress = func(current, total int) {
			select {
			case sub <- ProgressMsg{Current: current, Total: total}:
			default:
			}
		}
	}
	return pipeline.DirSource{Dir: a.opts.DataDir, UseCache: a.opts.UseCache, Options: opts}
}

func (a App) ref() time.Time {
	if !a.opts.Ref.IsZero() {
		return a.opts.Ref
	}
	return time.Now().In(a.loc)
}

// asOf drops transactions after a fixed reference date, so the dashboard
// shows the history as it stood then.
func (a App) asOf(txs []model.Transaction) []model.Transaction {
	if a.opts.Ref.IsZero() {
		return txs
	}
	return pipeline.AsOf(txs, a.opts.Ref)
}

func (a App) window(ref time.Time) model.DateRange {
	start := time.Date(ref.Year(), ref.Month(), ref.Day()-(a.days-1), 0, 0, 0, 0, a.loc)
	end := time.Date(ref.Year(), ref.Month(), ref.Day(), 23, 59, 59, 0, a.loc)
	return pipeline.PeriodRange(pipeline.PeriodCustom, ref, start, end)
}

func (a *App) recompute() {
	ref := a.ref()

	a.balance = a.cfg.Business.OpeningBalance + pipeline.Balance(a.txs)
	proj, err := pipeline.Project(model.ProjectionInput{
		Balance:      a.balance,
		Threshold:    a.threshold,
		Transactions: a.txs,
		Ref:          ref,
	})
	if err != nil {
		a.loadErr = err
		return
	}
	a.projection = proj
	a.curve = pipeline.ProjectCurve(a.balance, a.threshold, a.txs, ref)

	txs := a.txs
	if a.opts.Category != "" {
		txs = pipeline.FilterByCategory(txs, a.opts.Category)
	}

	r := a.window(ref)
	inRange := pipeline.InRange(txs, r)
	a.cmp = pipeline.ComparePeriods(
		pipeline.Summarize(inRange),
		pipeline.Summarize(pipeline.InRange(txs, pipeline.PreviousPeriod(r))),
	)
	a.daily = pipeline.BucketByDay(inRange, r.Start, r.End)
	a.categories = pipeline.BreakdownByCategory(inRange)
	a.today = pipeline.Today(txs, ref)
	a.upcoming = pipeline.UpcomingRecurring(txs, ref, pipeline.UpcomingHorizonDays)

	a.months = pipeline.AvailableMonths(txs, a.loc)
	if a.monthIdx >= len(a.months) {
		a.monthIdx = max(0, len(a.months)-1)
	}
	a.recomputeReport()
}

func (a *App) recomputeReport() {
	if len(a.months) == 0 {
		a.report = model.Report{}
		return
	}
	m := a.months[a.monthIdx]
	txs := a.txs
	if a.opts.Category != "" {
		txs = pipeline.FilterByCategory(txs, a.opts.Category)
	}
	a.report = pipeline.BuildReport(txs, m.Year, m.Month, a.loc)
}

func (a App) category(id string) model.Category {
	if c, ok := a.opts.Categories[id]; ok && c.Name != "" {
		return c
	}
	return a.cfg.Category(id)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		a.txs = a.asOf(msg.Transactions)
		a.recompute()

		if a.needSetup {
			a.setupForm = newSetupForm(len(a.txs), a.opts.DataDir, a.cfg, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.source(nil)))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			a.log.Warn("refresh failed", zap.Error(msg.Err))
			return a, nil
		}
		a.txs = a.asOf(msg.Transactions)
		a.loadTime = msg.LoadTime
		a.loadErr = nil
		a.recompute()
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabMonthly:
		switch key {
		case "j", "down", "[":
			if a.monthIdx < len(a.months)-1 {
				a.monthIdx++
				a.recomputeReport()
			}
			return a, nil
		case "k", "up", "]":
			if a.monthIdx > 0 {
				a.monthIdx--
				a.recomputeReport()
			}
			return a, nil
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.source(nil))
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}
	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.saveSetupConfig()
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  runway needs at least %d columns.\n", a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ runway"))
	b.WriteString(subtitleStyle.Render(" · cash-flow runway"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Parsing statements\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(strconv.Itoa(a.progress)))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(strconv.Itoa(a.progressMax)))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Loading transactions..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Key).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	bindings := []struct{ key, desc string }{
		{"o f c m x", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k", "Change month / setting"},
		{"Enter", "Edit setting"},
		{"Esc", "Cancel edit"},
		{"r", "Refresh data"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	filter := pillStyle.Render(" ") + pillAccent.Render(fmt.Sprintf("%dd", a.days))
	if a.opts.Category != "" {
		filter += pillStyle.Render(" │ ") + pillAccent.Render(a.opts.Category)
	}
	if a.cfg.Business.Name != "" {
		filter += pillStyle.Render(" │ ") + pillStyle.Render(a.cfg.Business.Name)
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filter)

	var proj *model.ProjectionResult
	if a.loadErr == nil {
		proj = &a.projection
	}
	statusBar := components.RenderStatusBar(w, components.StatusBarState{
		DataAge:     fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Projection:  proj,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Source:      a.opts.SourceLabel,
	})

	contentH := max(minContentHeight, a.height-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch {
	case a.loadErr != nil:
		content = a.renderError(cw)
	case len(a.txs) == 0 && a.activeTab != tabSettings:
		content = a.renderEmpty(cw)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabFlow:
			content = a.renderFlowTab(cw)
		case tabCategories:
			content = a.renderCategoriesTab(cw)
		case tabMonthly:
			content = a.renderMonthlyTab(cw)
		case tabSettings:
			content = a.renderSettingsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderError(cw int) string {
	t := theme.Active
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	return components.ContentCard("Could not load transactions", warn.Render(a.loadErr.Error()), cw)
}

func (a App) renderEmpty(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	body := muted.Render("No transactions found.\n\nDrop M-Pesa statements (CSV, PDF or JSONL) into\n" +
		a.opts.DataDir + "\nand press r to reload.")
	return components.ContentCard("Nothing to show yet", body, cw)
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd starts loading in a background goroutine. Progress updates
// and the final DataLoadedMsg arrive through sub.
func loadDataCmd(src pipeline.TransactionSource, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			txs, err := src.Transactions(context.Background())
			if err == nil {
				err = pipeline.ValidateTransactions(txs)
			}
			sub <- DataLoadedMsg{Transactions: txs, LoadTime: time.Since(start), Err: err}
		}()
		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads transactions in the background without progress UI.
func refreshDataCmd(src pipeline.TransactionSource) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		txs, err := src.Transactions(context.Background())
		if err == nil {
			err = pipeline.ValidateTransactions(txs)
		}
		return RefreshDataMsg{Transactions: txs, LoadTime: time.Since(start), Err: err}
	}
}

// chartDateLabels builds compact x axis labels for an ascending date
// series: a month name at the start and at month boundaries, otherwise the
// day number.
func chartDateLabels(days []model.DailyTotals) []string {
	labels := make([]string, len(days))
	prev := time.Month(0)
	for i, d := range days {
		if i == 0 || d.Date.Month() != prev {
			labels[i] = d.Date.Format("Jan")
		} else {
			labels[i] = strconv.Itoa(d.Date.Day())
		}
		prev = d.Date.Month()
	}
	return labels
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
