package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily money in and out",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	ds, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(ds.Transactions) == 0 {
		printNoData()
		return nil
	}

	r := ds.window()
	days := pipeline.BucketByDay(pipeline.InRange(ds.filtered(), r), r.Start, r.End)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY CASH FLOW  Last %dd", flagDays)))
	fmt.Println()

	rows := make([][]string, 0, len(days)+2)
	var in, out int64
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		in += d.Income
		out += d.Expense
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatKES(d.Income),
			cli.FormatKES(d.Expense),
			cli.FormatSignedKES(d.Net()),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", "", cli.FormatKES(in), cli.FormatKES(out), cli.FormatSignedKES(in - out)})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "In", "Out", "Net"},
		Rows:    rows,
	}))
	return nil
}
