package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	if !flagNoColor {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	loc, err := appCfg.Location()
	if err != nil {
		return err
	}
	ref, err := referenceTime(loc)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Config:    appCfg,
		DataDir:   flagDataDir,
		Days:      flagDays,
		Category:  flagCategory,
		Threshold: appCfg.Business.LowBalanceThreshold,
		UseCache:  !flagNoCache,
		Logger:    logger,
	}
	if flagAt != "" {
		opts.Ref = ref
	}

	if appCfg.Database.URL != "" {
		db, err := store.OpenDashboard(cmd.Context(), appCfg.Database.URL, appCfg.Database.UserID)
		if err != nil {
			return err
		}
		defer db.Close()

		if settings, ok, err := db.Settings(cmd.Context()); err != nil {
			return err
		} else if ok {
			opts.Threshold = settings.Threshold
		}
		cats, err := db.Categories(cmd.Context())
		if err != nil {
			logger.Warn("dashboard categories unavailable", zap.Error(err))
		}
		opts.Source = db
		opts.SourceLabel = "dashboard"
		opts.Categories = cats
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = flagThreshold
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
