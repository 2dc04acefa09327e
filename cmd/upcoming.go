package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var flagHorizon int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Recurring expenses due soon",
	RunE:  runUpcoming,
}

func init() {
	upcomingCmd.Flags().IntVar(&flagHorizon, "horizon", pipeline.UpcomingHorizonDays, "Days ahead to look")
	rootCmd.AddCommand(upcomingCmd)
}

func runUpcoming(cmd *cobra.Command, _ []string) error {
	ds, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	due := pipeline.UpcomingRecurring(ds.filtered(), ds.Ref, flagHorizon)
	if len(due) == 0 {
		fmt.Printf("\n  No recurring expenses due in the next %d days.\n", flagHorizon)
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("UPCOMING  Next %dd", flagHorizon)))
	fmt.Println()

	rows := make([][]string, 0, len(due)+2)
	var total int64
	for _, u := range due {
		total += u.Amount
		rows = append(rows, []string{
			u.DueDate.Format("2006-01-02"),
			u.Description,
			ds.category(u.CategoryID).Name,
			cli.FormatKES(u.Amount),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", "", "", cli.FormatKES(total)})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Due", "Expense", "Category", "Amount"},
		Rows:    rows,
	}))

	if after := ds.Balance - total; after <= ds.Threshold {
		fmt.Println()
		fmt.Println(cli.RenderWarning(fmt.Sprintf("  Paying these leaves %s, at or below the %s threshold.",
			cli.FormatKES(after), cli.FormatKES(ds.Threshold))))
	}
	return nil
}
