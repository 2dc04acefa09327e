package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	BusinessName   string
	Threshold      string
	OpeningBalance string
	DataDir        string
	Timezone       string
	Theme          string
}

// NewSetupValues seeds the form with the current config.
func NewSetupValues(cfg config.Config) SetupValues {
	return SetupValues{
		BusinessName:   cfg.Business.Name,
		Threshold:      strconv.FormatInt(cfg.Business.LowBalanceThreshold, 10),
		OpeningBalance: strconv.FormatInt(cfg.Business.OpeningBalance, 10),
		DataDir:        cfg.DataDir(),
		Timezone:       cfg.General.Timezone,
		Theme:          cfg.Appearance.Theme,
	}
}

// Apply copies the answers onto cfg.
func (v SetupValues) Apply(cfg config.Config) (config.Config, error) {
	threshold, err := parseShillings(v.Threshold)
	if err != nil {
		return cfg, fmt.Errorf("threshold: %w", err)
	}
	opening, err := strconv.ParseInt(strings.TrimSpace(v.OpeningBalance), 10, 64)
	if err != nil {
		return cfg, fmt.Errorf("opening balance: %w", err)
	}

	cfg.Business.Name = strings.TrimSpace(v.BusinessName)
	cfg.Business.LowBalanceThreshold = threshold
	cfg.Business.OpeningBalance = opening
	if dir := strings.TrimSpace(v.DataDir); dir != "" && dir != config.DefaultDataDir() {
		cfg.General.DataDir = dir
	}
	if tz := strings.TrimSpace(v.Timezone); tz != "" {
		cfg.General.Timezone = tz
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return cfg, cfg.Validate()
}

func parseShillings(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must be non-negative, got %d", n)
	}
	return n, nil
}

// NewSetupForm builds the first-run configuration form. The intro is shown
// above the questions.
func NewSetupForm(intro string, vals *SetupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to runway").
				Description(intro),
			huh.NewInput().
				Title("Business name").
				Placeholder("optional").
				Value(&vals.BusinessName),
			huh.NewInput().
				Title("Low-balance threshold (KES)").
				Description("Runway counts the days until the balance falls to this floor.").
				Value(&vals.Threshold).
				Validate(func(s string) error {
					_, err := parseShillings(s)
					return err
				}),
			huh.NewInput().
				Title("Opening balance (KES)").
				Description("Cash held before the first statement line.").
				Value(&vals.OpeningBalance).
				Validate(func(s string) error {
					_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Statement directory").
				Value(&vals.DataDir),
			huh.NewInput().
				Title("Timezone").
				Placeholder("Africa/Nairobi").
				Value(&vals.Timezone).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := time.LoadLocation(strings.TrimSpace(s))
					return err
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeDracula())
}

func newSetupForm(txCount int, dataDir string, cfg config.Config, vals *SetupValues) *huh.Form {
	*vals = NewSetupValues(cfg)
	if dataDir != "" {
		vals.DataDir = dataDir
	}
	intro := fmt.Sprintf("Found %d transactions in %s.\nLet's set up a few things.", txCount, dataDir)
	return NewSetupForm(intro, vals)
}

// saveSetupConfig applies the form answers to the running app and writes
// them to disk. Failures leave the settings applied for this session only.
func (a *App) saveSetupConfig() {
	cfg, err := a.setupVals.Apply(a.cfg)
	if err != nil {
		a.settings.saveErr = err
		return
	}
	a.cfg = cfg
	a.threshold = cfg.Business.LowBalanceThreshold
	if loc, err := cfg.Location(); err == nil {
		a.loc = loc
	}
	theme.SetActive(cfg.Appearance.Theme)
	a.settings.saveErr = config.Save(cfg)
}
