// Package pipeline loads transactions and computes runway projections and
// aggregate statistics over them.
package pipeline

import (
	"math"
	"math/bits"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

const dayKeyLayout = "2006-01-02"

// Summarize totals income and expenses over the given transactions. Totals
// saturate at the int64 limits.
func Summarize(txs []model.Transaction) model.PeriodSummary {
	var s model.PeriodSummary
	for _, t := range txs {
		switch t.Kind {
		case model.KindIncome:
			s.Revenue = addSat(s.Revenue, t.Amount)
			s.IncomeCount++
		case model.KindExpense:
			s.Expenses = addSat(s.Expenses, t.Amount)
			s.ExpenseCount++
		}
	}
	s.Profit = s.Revenue - s.Expenses
	return s
}

// Balance returns total income minus total expense, saturating at the
// int64 limits.
func Balance(txs []model.Transaction) int64 {
	var b int64
	for _, t := range txs {
		b = addSat(b, t.Signed())
	}
	return b
}

// addSat adds a and b, clamping to the int64 range instead of wrapping.
func addSat(a, b int64) int64 {
	s := a + b
	switch {
	case b > 0 && s < a:
		return math.MaxInt64
	case b < 0 && s > a:
		return math.MinInt64
	}
	return s
}

// BucketByDay returns one entry per calendar day from start to end
// inclusive, ascending. Days without activity are zero. Dates are taken in
// start's location; transactions on days outside the range are ignored.
func BucketByDay(txs []model.Transaction, start, end time.Time) []model.DailyTotals {
	loc := start.Location()
	first := startOfDay(start)
	last := startOfDay(end.In(loc))
	if last.Before(first) {
		return nil
	}

	var days []model.DailyTotals
	index := make(map[string]int)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		index[day.Format(dayKeyLayout)] = len(days)
		days = append(days, model.DailyTotals{Date: day})
	}

	for _, t := range txs {
		i, ok := index[t.OccurredAt.In(loc).Format(dayKeyLayout)]
		if !ok {
			continue
		}
		switch t.Kind {
		case model.KindIncome:
			days[i].Income = addSat(days[i].Income, t.Amount)
		case model.KindExpense:
			days[i].Expense = addSat(days[i].Expense, t.Amount)
		}
	}
	return days
}

// BreakdownByCategory groups expenses by category. Transactions without a
// category are grouped under model.Uncategorized. Percentages are rounded
// half up. The result is sorted by amount descending, then by id, and is
// empty when there are no expenses.
func BreakdownByCategory(txs []model.Transaction) []model.CategoryShare {
	byCat := make(map[string]*model.CategoryShare)
	// The grand total is sum + carries*2^64 so percentages stay exact
	// when amounts approach the int64 limit.
	var sum, carries uint64
	for _, t := range txs {
		if t.Kind != model.KindExpense {
			continue
		}
		id := t.Category()
		cs, ok := byCat[id]
		if !ok {
			cs = &model.CategoryShare{CategoryID: id}
			byCat[id] = cs
		}
		cs.Amount = addSat(cs.Amount, t.Amount)
		cs.Count++
		var carry uint64
		sum, carry = bits.Add64(sum, uint64(t.Amount), 0)
		carries += carry
	}
	if sum == 0 && carries == 0 {
		return nil
	}

	total := wideFloat(sum, carries)
	shares := make([]model.CategoryShare, 0, len(byCat))
	for _, cs := range byCat {
		cs.Percentage = roundPercent(cs.Amount, total)
		shares = append(shares, *cs)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].CategoryID < shares[j].CategoryID
	})
	return shares
}

func roundPercent(part int64, total float64) int {
	return int(math.Floor(float64(part)/total*100 + 0.5))
}

// TopN returns at most n shares from an already sorted breakdown.
func TopN(shares []model.CategoryShare, n int) []model.CategoryShare {
	if n <= 0 || n >= len(shares) {
		return shares
	}
	return shares[:n]
}

// PercentChange returns the change from prev to cur as a percentage of
// |prev|. A zero previous value yields 0.
func PercentChange(cur, prev int64) float64 {
	if prev == 0 {
		return 0
	}
	return float64(cur-prev) / math.Abs(float64(prev)) * 100
}

// ComparePeriods computes revenue, expense and profit changes between two
// period summaries.
func ComparePeriods(current, previous model.PeriodSummary) model.PeriodComparison {
	return model.PeriodComparison{
		Current:        current,
		Previous:       previous,
		RevenueChange:  PercentChange(current.Revenue, previous.Revenue),
		ExpensesChange: PercentChange(current.Expenses, previous.Expenses),
		ProfitChange:   PercentChange(current.Profit, previous.Profit),
	}
}

// AverageDailySpend divides total expenses by the number of days, rounded
// to the nearest shilling.
func AverageDailySpend(txs []model.Transaction, days int) int64 {
	if days < 1 {
		days = 1
	}
	return int64(math.Round(float64(Summarize(txs).Expenses) / float64(days)))
}

// Today summarizes transactions that fall on ref's calendar day.
func Today(txs []model.Transaction, ref time.Time) model.PeriodSummary {
	start := startOfDay(ref)
	return Summarize(FilterByTime(txs, start, start.AddDate(0, 0, 1)))
}

// UncategorizedCount returns how many transactions have no category.
func UncategorizedCount(txs []model.Transaction) int {
	n := 0
	for _, t := range txs {
		if t.CategoryID == "" {
			n++
		}
	}
	return n
}

// FilterByTime returns transactions that occurred within [since, until).
// A zero bound is open.
func FilterByTime(txs []model.Transaction, since, until time.Time) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return txs
	}

	var result []model.Transaction
	for _, t := range txs {
		if !since.IsZero() && t.OccurredAt.Before(since) {
			continue
		}
		if !until.IsZero() && !t.OccurredAt.Before(until) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// AsOf returns transactions that occurred at or before ref, for views of
// the history as it stood on a past date.
func AsOf(txs []model.Transaction, ref time.Time) []model.Transaction {
	var result []model.Transaction
	for _, t := range txs {
		if !t.OccurredAt.After(ref) {
			result = append(result, t)
		}
	}
	return result
}

// FilterByCategory returns transactions whose category matches the
// substring, case-insensitively.
func FilterByCategory(txs []model.Transaction, category string) []model.Transaction {
	if category == "" {
		return txs
	}
	var result []model.Transaction
	for _, t := range txs {
		if containsIgnoreCase(t.Category(), category) {
			result = append(result, t)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
