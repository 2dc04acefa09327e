package pipeline

import (
	"math"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

// BuildReport summarizes one calendar month: totals, the expense breakdown
// and a zero-filled daily series covering every day of the month.
func BuildReport(txs []model.Transaction, year int, month time.Month, loc *time.Location) model.Report {
	r := MonthRange(year, month, loc)
	inMonth := InRange(txs, r)

	rep := model.Report{
		Year:       year,
		Month:      month,
		Summary:    Summarize(inMonth),
		Categories: BreakdownByCategory(inMonth),
		Daily:      BucketByDay(inMonth, r.Start, r.End),
	}
	if n := rep.Summary.TransactionCount(); n > 0 {
		total := float64(rep.Summary.Revenue) + float64(rep.Summary.Expenses)
		rep.AvgTransaction = int64(math.Round(total / float64(n)))
	}
	return rep
}
