package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
)

var flagStatusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "One-line runway status, for prompts and scripts",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagStatusJSON, "json", false, "Print the projection as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	flagQuiet = true
	ds, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	proj, err := project(ds)
	if err != nil {
		return err
	}

	if flagStatusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Balance   int64 `json:"balance"`
			Threshold int64 `json:"threshold"`
			model.ProjectionResult
		}{ds.Balance, ds.Threshold, proj})
	}

	line := fmt.Sprintf("%s  %s  %s", cli.RenderStatus(proj.Status), cli.FormatKES(ds.Balance), cli.FormatRunway(proj))
	if proj.ThresholdDate != nil {
		line += "  " + cli.RenderMuted("until "+cli.FormatDate(proj.ThresholdDate))
	}
	fmt.Println(line)
	return nil
}
