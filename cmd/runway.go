package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var flagCurve bool

var runwayCmd = &cobra.Command{
	Use:   "runway",
	Short: "Days until the balance reaches the low-balance threshold",
	RunE:  runRunway,
}

func init() {
	runwayCmd.Flags().BoolVar(&flagCurve, "curve", true, "Show the 30-day projected balance")
	rootCmd.AddCommand(runwayCmd)
}

// project runs the runway projection for ds. Without --at the wall clock
// is the reference.
func project(ds *dataset) (model.ProjectionResult, error) {
	if flagAt != "" {
		return pipeline.Project(model.ProjectionInput{
			Balance:      ds.Balance,
			Threshold:    ds.Threshold,
			Transactions: ds.Transactions,
			Ref:          ds.Ref,
		})
	}
	res, err := pipeline.ProjectNow(ds.Balance, ds.Threshold, ds.Transactions)
	if err == nil && res.ThresholdDate != nil {
		d := res.ThresholdDate.In(ds.Location)
		res.ThresholdDate = &d
	}
	return res, err
}

func runRunway(cmd *cobra.Command, _ []string) error {
	ds, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	proj, err := project(ds)
	if err != nil {
		return err
	}

	last30 := pipeline.InRange(ds.Transactions, pipeline.PeriodRange(pipeline.PeriodMonth, ds.Ref, time.Time{}, time.Time{}))
	burn := pipeline.AverageDailySpend(last30, pipeline.BurnWindowDays)

	fmt.Println()
	fmt.Println(cli.RenderTitle("CASH RUNWAY"))
	fmt.Println()
	fmt.Printf("  Status          %s\n", cli.RenderStatus(proj.Status))
	fmt.Printf("  Balance         %s\n", cli.FormatKES(ds.Balance))
	fmt.Printf("  Threshold       %s\n", cli.FormatKES(ds.Threshold))
	fmt.Printf("  Avg daily burn  %s\n", cli.FormatKES(burn))
	fmt.Printf("  Runway          %s\n", cli.FormatRunway(proj))
	fmt.Printf("  Hits threshold  %s\n", cli.FormatDate(proj.ThresholdDate))

	if proj.Status != model.StatusHealthy {
		fmt.Println()
		fmt.Println(cli.RenderWarning("  Balance is close to the threshold. Review upcoming expenses with `runway upcoming`."))
	}

	if !flagCurve || proj.Unbounded() {
		return nil
	}

	curve := pipeline.ProjectCurve(ds.Balance, ds.Threshold, ds.Transactions, ds.Ref)
	values := make([]float64, len(curve))
	for i, p := range curve {
		values[i] = float64(p.Balance)
	}

	fmt.Println()
	fmt.Printf("  Next 30 days  %s\n", cli.RenderSparkline(values))
	fmt.Println()

	rows := make([][]string, 0, 6)
	for i := 0; i < len(curve); i += 7 {
		p := curve[i]
		rows = append(rows, []string{
			p.Date.Format("2006-01-02"),
			cli.FormatKES(p.Balance),
			string(p.Status),
		})
	}
	last := curve[len(curve)-1]
	if (len(curve)-1)%7 != 0 {
		rows = append(rows, []string{last.Date.Format("2006-01-02"), cli.FormatKES(last.Balance), string(last.Status)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Projected", "Status"},
		Rows:    rows,
	}))
	return nil
}
