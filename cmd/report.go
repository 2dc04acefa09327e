package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var (
	flagMonth      string
	flagListMonths bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Monthly profit and loss report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagMonth, "month", "", "Month to report, YYYY-MM (default: month of --at)")
	reportCmd.Flags().BoolVar(&flagListMonths, "list", false, "List months that have transactions")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ds, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(ds.Transactions) == 0 {
		printNoData()
		return nil
	}

	if flagListMonths {
		fmt.Println()
		for _, m := range pipeline.AvailableMonths(ds.Transactions, ds.Location) {
			fmt.Printf("  %s\n", m.Key())
		}
		return nil
	}

	year, month := ds.Ref.Year(), ds.Ref.Month()
	if flagMonth != "" {
		year, month, err = pipeline.ParseMonth(flagMonth)
		if err != nil {
			return err
		}
	}

	rep := pipeline.BuildReport(ds.filtered(), year, month, ds.Location)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY REPORT  %s %d", month, year)))
	fmt.Println()

	s := rep.Summary
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Revenue", cli.FormatKES(s.Revenue)},
			{"Expenses", cli.FormatKES(s.Expenses)},
			{"Profit", cli.FormatSignedKES(s.Profit)},
			{"---"},
			{"Transactions", cli.FormatNumber(int64(s.TransactionCount()))},
			{"Avg transaction", cli.FormatKES(rep.AvgTransaction)},
		},
	}))

	if len(rep.Categories) > 0 {
		rows := make([][]string, 0, len(rep.Categories))
		for _, c := range rep.Categories {
			rows = append(rows, []string{
				ds.category(c.CategoryID).Name,
				cli.FormatKES(c.Amount),
				fmt.Sprintf("%d%%", c.Percentage),
				cli.FormatNumber(int64(c.Count)),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Expenses",
			Headers: []string{"Category", "Spent", "Share", "Txns"},
			Rows:    rows,
		}))
	}

	net := make([]float64, len(rep.Daily))
	for i, d := range rep.Daily {
		net[i] = float64(d.Expense)
	}
	fmt.Println()
	fmt.Printf("  Daily spend  %s\n", cli.RenderSparkline(net))
	return nil
}
