package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

func categorized(kind model.Kind, amount int64, category string, at time.Time) model.Transaction {
	return model.Transaction{Kind: kind, Amount: amount, CategoryID: category, OccurredAt: at}
}

func TestBreakdownByCategory_RoundsAndSorts(t *testing.T) {
	txs := []model.Transaction{
		categorized(model.KindExpense, 100, "A", testRef),
		categorized(model.KindExpense, 200, "B", testRef),
		categorized(model.KindExpense, 300, "", testRef),
		categorized(model.KindIncome, 9999, "A", testRef),
	}

	got := BreakdownByCategory(txs)
	want := []model.CategoryShare{
		{CategoryID: model.Uncategorized, Amount: 300, Percentage: 50, Count: 1},
		{CategoryID: "B", Amount: 200, Percentage: 33, Count: 1},
		{CategoryID: "A", Amount: 100, Percentage: 17, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("share[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBreakdownByCategory_RoundHalfUp(t *testing.T) {
	// 1/8 = 12.5% rounds to 13, 7/8 = 87.5% rounds to 88.
	got := BreakdownByCategory([]model.Transaction{
		categorized(model.KindExpense, 1, "small", testRef),
		categorized(model.KindExpense, 7, "big", testRef),
	})
	if got[0].Percentage != 88 || got[1].Percentage != 13 {
		t.Fatalf("percentages = %d/%d, want 88/13", got[0].Percentage, got[1].Percentage)
	}
}

func TestBreakdownByCategory_EmptyWithoutExpenses(t *testing.T) {
	if got := BreakdownByCategory(nil); len(got) != 0 {
		t.Fatalf("nil input = %v, want empty", got)
	}
	got := BreakdownByCategory([]model.Transaction{
		categorized(model.KindIncome, 500, "sales", testRef),
		categorized(model.KindExpense, 0, "rent", testRef),
	})
	if len(got) != 0 {
		t.Fatalf("zero expenses = %v, want empty", got)
	}
}

func TestBreakdownByCategory_TiesOrderedByID(t *testing.T) {
	got := BreakdownByCategory([]model.Transaction{
		categorized(model.KindExpense, 50, "transport", testRef),
		categorized(model.KindExpense, 50, "airtime", testRef),
		categorized(model.KindExpense, 20, "airtime", testRef),
	})
	if got[0].CategoryID != "airtime" || got[0].Amount != 70 || got[0].Count != 2 {
		t.Fatalf("first = %+v, want airtime/70/2", got[0])
	}

	got = BreakdownByCategory([]model.Transaction{
		categorized(model.KindExpense, 50, "transport", testRef),
		categorized(model.KindExpense, 50, "airtime", testRef),
	})
	if got[0].CategoryID != "airtime" || got[1].CategoryID != "transport" {
		t.Fatalf("order = %s,%s, want airtime,transport", got[0].CategoryID, got[1].CategoryID)
	}
}

func TestTopN(t *testing.T) {
	shares := []model.CategoryShare{{CategoryID: "a"}, {CategoryID: "b"}, {CategoryID: "c"}}
	if got := TopN(shares, 2); len(got) != 2 || got[1].CategoryID != "b" {
		t.Fatalf("TopN(2) = %v", got)
	}
	if got := TopN(shares, 0); len(got) != 3 {
		t.Fatalf("TopN(0) len = %d, want 3", len(got))
	}
	if got := TopN(shares, 10); len(got) != 3 {
		t.Fatalf("TopN(10) len = %d, want 3", len(got))
	}
}

func TestBucketByDay_ZeroFillsAscending(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 14, 23, 59, 59, 0, time.UTC)
	txs := []model.Transaction{
		categorized(model.KindIncome, 500, "", time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)),
		categorized(model.KindExpense, 200, "", time.Date(2025, 1, 10, 21, 0, 0, 0, time.UTC)),
		categorized(model.KindExpense, 300, "", time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)),
		categorized(model.KindExpense, 999, "", time.Date(2025, 1, 15, 1, 0, 0, 0, time.UTC)),
	}

	days := BucketByDay(txs, start, end)
	if len(days) != 5 {
		t.Fatalf("len = %d, want 5", len(days))
	}
	for i, d := range days {
		want := start.AddDate(0, 0, i)
		if !d.Date.Equal(want) {
			t.Fatalf("days[%d].Date = %s, want %s", i, d.Date, want)
		}
	}
	if days[0].Income != 500 || days[0].Expense != 200 {
		t.Fatalf("Jan 10 = %d/%d, want 500/200", days[0].Income, days[0].Expense)
	}
	if days[1].Income != 0 || days[1].Expense != 0 {
		t.Fatalf("Jan 11 = %d/%d, want zero", days[1].Income, days[1].Expense)
	}
	if days[3].Expense != 300 {
		t.Fatalf("Jan 13 expense = %d, want 300", days[3].Expense)
	}
	if days[0].Net() != 300 {
		t.Fatalf("Jan 10 net = %d, want 300", days[0].Net())
	}
}

func TestBucketByDay_UsesStartLocation(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, nairobi)
	end := time.Date(2025, 1, 11, 0, 0, 0, 0, nairobi)

	// 22:30 UTC on the 10th is 01:30 on the 11th in Nairobi.
	tx := categorized(model.KindExpense, 100, "", time.Date(2025, 1, 10, 22, 30, 0, 0, time.UTC))
	days := BucketByDay([]model.Transaction{tx}, start, end)
	if days[0].Expense != 0 || days[1].Expense != 100 {
		t.Fatalf("buckets = %d/%d, want 0/100", days[0].Expense, days[1].Expense)
	}
}

func TestBucketByDay_SumsMatchRawTotals(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	var txs []model.Transaction
	var wantIncome, wantExpense int64
	for i := 0; i < 90; i++ {
		at := time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * 13 * time.Hour)
		kind := model.KindExpense
		if i%3 == 0 {
			kind = model.KindIncome
		}
		amt := int64(100 + i*7)
		txs = append(txs, categorized(kind, amt, "", at))

		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(start) || day.After(end) {
			continue
		}
		if kind == model.KindIncome {
			wantIncome += amt
		} else {
			wantExpense += amt
		}
	}

	var gotIncome, gotExpense int64
	for _, d := range BucketByDay(txs, start, end) {
		gotIncome += d.Income
		gotExpense += d.Expense
	}
	if gotIncome != wantIncome || gotExpense != wantExpense {
		t.Fatalf("bucket totals = %d/%d, want %d/%d", gotIncome, gotExpense, wantIncome, wantExpense)
	}
}

func TestBucketByDay_EmptyWhenEndBeforeStart(t *testing.T) {
	if got := BucketByDay(nil, testRef, testRef.AddDate(0, 0, -1)); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		cur, prev int64
		want      float64
	}{
		{150, 100, 50},
		{50, 100, -50},
		{100, 100, 0},
		{500, 0, 0},
		{0, 0, 0},
		{-50, -100, 50},
		{100, -100, 200},
	}
	for _, tt := range tests {
		got := PercentChange(tt.cur, tt.prev)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("PercentChange(%d, %d) = %.2f, want %.2f", tt.cur, tt.prev, got, tt.want)
		}
	}
}

func TestComparePeriods(t *testing.T) {
	cur := model.PeriodSummary{Revenue: 12000, Expenses: 9000, Profit: 3000}
	prev := model.PeriodSummary{Revenue: 10000, Expenses: 10000, Profit: 0}

	cmp := ComparePeriods(cur, prev)
	if math.Abs(cmp.RevenueChange-20) > 1e-9 {
		t.Fatalf("RevenueChange = %.2f, want 20", cmp.RevenueChange)
	}
	if math.Abs(cmp.ExpensesChange+10) > 1e-9 {
		t.Fatalf("ExpensesChange = %.2f, want -10", cmp.ExpensesChange)
	}
	if cmp.ProfitChange != 0 {
		t.Fatalf("ProfitChange = %.2f, want 0 for zero baseline", cmp.ProfitChange)
	}
	if cmp.Current != cur || cmp.Previous != prev {
		t.Fatal("comparison did not carry the input summaries")
	}
}

func TestSummarizeAndBalance(t *testing.T) {
	txs := []model.Transaction{income(8000, 1), income(2000, 2), expense(3000, 1), expense(500, 3)}
	s := Summarize(txs)
	if s.Revenue != 10000 || s.Expenses != 3500 || s.Profit != 6500 {
		t.Fatalf("Summarize = %+v", s)
	}
	if s.IncomeCount != 2 || s.ExpenseCount != 2 || s.TransactionCount() != 4 {
		t.Fatalf("counts = %d/%d", s.IncomeCount, s.ExpenseCount)
	}
	if b := Balance(txs); b != 6500 {
		t.Fatalf("Balance = %d, want 6500", b)
	}
	if b := Balance([]model.Transaction{expense(100, 1)}); b != -100 {
		t.Fatalf("Balance = %d, want -100", b)
	}
}

func TestTodayAndAverageDailySpend(t *testing.T) {
	ref := testRef.Add(15 * time.Hour)
	txs := []model.Transaction{
		{Kind: model.KindIncome, Amount: 4000, OccurredAt: testRef.Add(9 * time.Hour)},
		{Kind: model.KindExpense, Amount: 1500, OccurredAt: testRef.Add(11 * time.Hour)},
		expense(700, 1),
	}

	today := Today(txs, ref)
	if today.Revenue != 4000 || today.Expenses != 1500 {
		t.Fatalf("Today = %+v, want 4000/1500", today)
	}
	if got := AverageDailySpend(txs, 7); got != 314 {
		t.Fatalf("AverageDailySpend = %d, want 314", got)
	}
	if got := AverageDailySpend(txs, 0); got != 2200 {
		t.Fatalf("AverageDailySpend(0 days) = %d, want 2200", got)
	}
}

func TestFilters(t *testing.T) {
	txs := []model.Transaction{
		categorized(model.KindExpense, 100, "Transport", testRef.AddDate(0, 0, -3)),
		categorized(model.KindExpense, 200, "Rent", testRef.AddDate(0, 0, -1)),
		categorized(model.KindExpense, 300, "", testRef),
	}

	got := FilterByTime(txs, testRef.AddDate(0, 0, -2), testRef)
	if len(got) != 1 || got[0].Amount != 200 {
		t.Fatalf("FilterByTime = %v, want the rent expense only", got)
	}
	if got := FilterByCategory(txs, "trans"); len(got) != 1 || got[0].Amount != 100 {
		t.Fatalf("FilterByCategory(trans) = %v", got)
	}
	if got := FilterByCategory(txs, "uncat"); len(got) != 1 || got[0].Amount != 300 {
		t.Fatalf("FilterByCategory(uncat) = %v", got)
	}
	if n := UncategorizedCount(txs); n != 1 {
		t.Fatalf("UncategorizedCount = %d, want 1", n)
	}
}

func TestAggregates_SaturateInsteadOfWrapping(t *testing.T) {
	half := int64(math.MaxInt64/2 + 1)
	txs := []model.Transaction{
		categorized(model.KindExpense, half, "a", testRef.AddDate(0, 0, -1)),
		categorized(model.KindExpense, half, "b", testRef),
	}

	s := Summarize(txs)
	if s.Expenses != math.MaxInt64 {
		t.Fatalf("Summarize().Expenses = %d, want %d", s.Expenses, int64(math.MaxInt64))
	}
	if s.Profit >= 0 {
		t.Fatalf("Summarize().Profit = %d, want negative", s.Profit)
	}
	if b := Balance(txs); b != math.MinInt64 {
		t.Fatalf("Balance = %d, want %d", b, int64(math.MinInt64))
	}

	shares := BreakdownByCategory(txs)
	if len(shares) != 2 {
		t.Fatalf("BreakdownByCategory returned %d shares, want 2", len(shares))
	}
	for _, cs := range shares {
		if cs.Percentage != 50 {
			t.Fatalf("%s percentage = %d, want 50", cs.CategoryID, cs.Percentage)
		}
	}

	days := BucketByDay(append(txs, categorized(model.KindExpense, half, "a", testRef)), testRef, testRef)
	if len(days) != 1 || days[0].Expense != math.MaxInt64 {
		t.Fatalf("BucketByDay = %+v, want one saturated day", days)
	}
}

func TestAsOf(t *testing.T) {
	txs := []model.Transaction{
		categorized(model.KindIncome, 100000, "", testRef.AddDate(0, 0, -14)),
		categorized(model.KindExpense, 1000, "", testRef.AddDate(0, 0, -5)),
		categorized(model.KindExpense, 500, "", testRef),
		categorized(model.KindExpense, 90000, "", testRef.AddDate(0, 0, 26)),
	}

	got := AsOf(txs, testRef)
	if len(got) != 3 {
		t.Fatalf("AsOf kept %d transactions, want 3", len(got))
	}
	if b := Balance(got); b != 98500 {
		t.Fatalf("Balance(AsOf) = %d, want 98500", b)
	}
}
