// Package cmd implements the runway CLI commands.
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default days:    %d\n", cfg.General.DefaultDays)
	fmt.Printf("    Data directory:  %s\n", cfg.DataDir())
	fmt.Printf("    Timezone:        %s\n", cfg.General.Timezone)
	fmt.Println()

	fmt.Println("  [Business]")
	name := cfg.Business.Name
	if name == "" {
		name = "not set"
	}
	fmt.Printf("    Name:            %s\n", name)
	if cfg.Business.TillNumber != "" {
		fmt.Printf("    Till number:     %s\n", cfg.Business.TillNumber)
	}
	fmt.Printf("    Threshold:       %s\n", cli.FormatKES(cfg.Business.LowBalanceThreshold))
	fmt.Printf("    Opening balance: %s\n", cli.FormatKES(cfg.Business.OpeningBalance))
	fmt.Println()

	fmt.Println("  [Database]")
	if cfg.Database.URL != "" {
		fmt.Printf("    URL:     %s\n", maskDSN(cfg.Database.URL))
		fmt.Printf("    User ID: %s\n", cfg.Database.UserID)
	} else {
		fmt.Println("    Not configured (reading statements from disk)")
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.Daemon.Interval)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Println()

	if len(cfg.Categories) > 0 {
		ids := make([]string, 0, len(cfg.Categories))
		for id := range cfg.Categories {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Println("  [Categories]")
		for _, id := range ids {
			fmt.Printf("    %-16s %s\n", id, cfg.Categories[id].Name)
		}
		fmt.Println()
	}

	fmt.Println("  Run `runway setup` to reconfigure.")
	return nil
}
