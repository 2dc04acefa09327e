package cmd

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	intro := "Let's set up a few things."
	if files, err := source.ScanDir(flagDataDir); err == nil && len(files) > 0 {
		intro = fmt.Sprintf("Found %s statement files in %s (%d accounts).\n%s",
			cli.FormatNumber(int64(len(files))), flagDataDir, source.CountAccounts(files), intro)
	}

	vals := tui.NewSetupValues(appCfg)
	if err := tui.NewSetupForm(intro, &vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	cfg, err := vals.Apply(appCfg)
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `runway setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

// maskDSN hides the password in a database URL.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "****"
	}
	return u.Redacted()
}
