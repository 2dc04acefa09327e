package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var flagTop int

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "Where the money goes, by expense category",
	RunE:    runCategories,
}

func init() {
	categoriesCmd.Flags().IntVar(&flagTop, "top", 10, "Show only the N largest categories (0 = all)")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	ds, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(ds.Transactions) == 0 {
		printNoData()
		return nil
	}

	all := pipeline.BreakdownByCategory(pipeline.InRange(ds.filtered(), ds.window()))
	if len(all) == 0 {
		fmt.Println("\n  No expenses in the selected period.")
		return nil
	}
	shares := pipeline.TopN(all, flagTop)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EXPENSES BY CATEGORY  Last %dd", flagDays)))
	fmt.Println()

	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, []string{
			ds.category(s.CategoryID).Name,
			cli.FormatKES(s.Amount),
			fmt.Sprintf("%d%%", s.Percentage),
			cli.FormatNumber(int64(s.Count)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Spent", "Share", "Txns"},
		Rows:    rows,
	}))

	fmt.Println()
	top := float64(shares[0].Amount)
	for _, s := range shares {
		c := ds.category(s.CategoryID)
		color := cli.ColorAccent
		if c.Color != "" {
			color = lipgloss.Color(c.Color)
		}
		fmt.Println(cli.RenderHorizontalBar(c.Name, float64(s.Amount), top, 30, color))
	}

	if hidden := len(all) - len(shares); hidden > 0 {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("\n  %d more categories (use --top 0 to show all)", hidden)))
	}
	return nil
}
