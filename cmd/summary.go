package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var flagPeriod string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Revenue, expenses and runway for the period",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&flagPeriod, "period", "p", "", "Reporting period: week, month or custom (custom uses --days)")
	rootCmd.AddCommand(summaryCmd)
}

// summaryWindow resolves --period, falling back to the --days window.
func summaryWindow(ds *dataset) (model.DateRange, error) {
	days := ds.window()
	if flagPeriod == "" {
		return days, nil
	}
	p, err := pipeline.ParsePeriod(flagPeriod)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("--period: %w", err)
	}
	return pipeline.PeriodRange(p, ds.Ref, days.Start, days.End), nil
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ds, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(ds.Transactions) == 0 {
		printNoData()
		return nil
	}

	txs := ds.filtered()
	cur, err := summaryWindow(ds)
	if err != nil {
		return err
	}
	days := cur.Days()
	prev := pipeline.PreviousPeriod(cur)
	cmp := pipeline.ComparePeriods(
		pipeline.Summarize(pipeline.InRange(txs, cur)),
		pipeline.Summarize(pipeline.InRange(txs, prev)),
	)

	proj, err := project(ds)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("RUNWAY  Last %dd", days)
	if appCfg.Business.Name != "" {
		title = fmt.Sprintf("%s  Last %dd", appCfg.Business.Name, days)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	s, p := cmp.Current, cmp.Previous
	rows := [][]string{
		{"Revenue", cli.FormatKES(s.Revenue), cli.FormatDelta(s.Revenue, p.Revenue), changeCell(cmp.RevenueChange)},
		{"Expenses", cli.FormatKES(s.Expenses), cli.FormatDelta(s.Expenses, p.Expenses), changeCell(cmp.ExpensesChange)},
		{"Profit", cli.FormatSignedKES(s.Profit), cli.FormatDelta(s.Profit, p.Profit), changeCell(cmp.ProfitChange)},
		{"---"},
		{"Money in", cli.FormatNumber(int64(s.IncomeCount)) + " txns", "", ""},
		{"Money out", cli.FormatNumber(int64(s.ExpenseCount)) + " txns", "", ""},
		{"Avg daily spend", cli.FormatKES(pipeline.AverageDailySpend(pipeline.InRange(txs, cur), days)), "", ""},
		{"---"},
		{"Balance", cli.FormatKES(ds.Balance), "", ""},
		{"Threshold", cli.FormatKES(ds.Threshold), "", ""},
		{"Runway", cli.FormatRunway(proj), "", string(proj.Status)},
		{"Hits threshold", cli.FormatDate(proj.ThresholdDate), "", ""},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value", "Change", fmt.Sprintf("vs prev %dd", days)},
		Rows:    rows,
	}))

	if n := pipeline.UncategorizedCount(pipeline.InRange(txs, cur)); n > 0 {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("\n  %d transactions uncategorized", n)))
	}
	printFileErrors(ds)
	return nil
}

func changeCell(pct float64) string {
	if pct == 0 {
		return "-"
	}
	return cli.FormatChange(pct)
}
