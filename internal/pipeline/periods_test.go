package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestPeriodRange(t *testing.T) {
	ref := mustDate(t, "2025-01-15").Add(10 * time.Hour)

	week := PeriodRange(PeriodWeek, ref, time.Time{}, time.Time{})
	if !week.Start.Equal(mustDate(t, "2025-01-09")) {
		t.Fatalf("week start = %s, want 2025-01-09", week.Start)
	}
	wantEnd := mustDate(t, "2025-01-15").Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	if !week.End.Equal(wantEnd) {
		t.Fatalf("week end = %s, want %s", week.End, wantEnd)
	}
	if week.Days() != 7 {
		t.Fatalf("week Days() = %d, want 7", week.Days())
	}

	month := PeriodRange(PeriodMonth, ref, time.Time{}, time.Time{})
	if !month.Start.Equal(mustDate(t, "2024-12-17")) {
		t.Fatalf("month start = %s, want 2024-12-17", month.Start)
	}
	if month.Days() != 30 {
		t.Fatalf("month Days() = %d, want 30", month.Days())
	}

	cs, ce := mustDate(t, "2024-11-01"), mustDate(t, "2024-11-20")
	custom := PeriodRange(PeriodCustom, ref, cs, ce)
	if !custom.Start.Equal(cs) || !custom.End.Equal(ce) {
		t.Fatalf("custom = %s..%s, want %s..%s", custom.Start, custom.End, cs, ce)
	}

	fallback := PeriodRange(PeriodCustom, ref, cs, time.Time{})
	if !fallback.Start.Equal(month.Start) {
		t.Fatalf("custom without end = %s, want month start", fallback.Start)
	}
}

func TestPreviousPeriod(t *testing.T) {
	cur := PeriodRange(PeriodWeek, mustDate(t, "2025-01-15"), time.Time{}, time.Time{})
	prev := PreviousPeriod(cur)

	if !prev.End.Before(cur.Start) {
		t.Fatalf("previous end %s not before current start %s", prev.End, cur.Start)
	}
	if cur.Start.Sub(prev.End) != time.Nanosecond {
		t.Fatalf("gap = %s, want 1ns", cur.Start.Sub(prev.End))
	}
	if prev.End.Sub(prev.Start) != cur.End.Sub(cur.Start) {
		t.Fatalf("previous duration = %s, want %s", prev.End.Sub(prev.Start), cur.End.Sub(cur.Start))
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod("week"); err != nil || p != PeriodWeek {
		t.Fatalf("ParsePeriod(week) = %q, %v", p, err)
	}
	if _, err := ParsePeriod("fortnight"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("ParsePeriod(fortnight) err = %v, want ErrInvalidInput", err)
	}
}

func TestMonthRangeAndParseMonth(t *testing.T) {
	y, m, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	r := MonthRange(y, m, time.UTC)
	if r.End.Day() != 29 {
		t.Fatalf("Feb 2024 last day = %d, want 29", r.End.Day())
	}
	if !r.Contains(mustDate(t, "2024-02-29").Add(23*time.Hour)) {
		t.Fatal("range should contain the last evening of the month")
	}
	if r.Contains(mustDate(t, "2024-03-01")) {
		t.Fatal("range should not contain March 1")
	}

	if _, _, err := ParseMonth("Feb 2024"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("ParseMonth(bad) err = %v, want ErrInvalidInput", err)
	}
}

func TestAvailableMonths(t *testing.T) {
	txs := []model.Transaction{
		{Kind: model.KindIncome, Amount: 1, OccurredAt: mustDate(t, "2024-11-03")},
		{Kind: model.KindIncome, Amount: 1, OccurredAt: mustDate(t, "2025-01-09")},
		{Kind: model.KindExpense, Amount: 1, OccurredAt: mustDate(t, "2024-11-28")},
		{Kind: model.KindExpense, Amount: 1, OccurredAt: mustDate(t, "2024-12-01")},
	}
	got := AvailableMonths(txs, time.UTC)
	want := []string{"2025-01", "2024-12", "2024-11"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Key() != w {
			t.Fatalf("months[%d] = %s, want %s", i, got[i].Key(), w)
		}
	}
}

func TestUpcomingRecurring(t *testing.T) {
	ref := mustDate(t, "2025-01-15")
	txs := []model.Transaction{
		{ID: "rent", Kind: model.KindExpense, Amount: 15000, IsRecurring: true, Counterparty: "Landlord", OccurredAt: mustDate(t, "2024-11-01")},
		{ID: "net", Kind: model.KindExpense, Amount: 3000, IsRecurring: true, Description: "Internet Bill", CategoryID: "utilities", OccurredAt: mustDate(t, "2024-12-20")},
		{ID: "today", Kind: model.KindExpense, Amount: 100, IsRecurring: true, OccurredAt: ref},
		{ID: "once", Kind: model.KindExpense, Amount: 900, OccurredAt: mustDate(t, "2024-12-25")},
		{ID: "salary", Kind: model.KindIncome, Amount: 50000, IsRecurring: true, OccurredAt: mustDate(t, "2024-12-30")},
	}

	got := UpcomingRecurring(txs, ref, UpcomingHorizonDays)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].ID != "net" || !got[0].DueDate.Equal(mustDate(t, "2025-01-20")) {
		t.Fatalf("first = %+v, want internet on 2025-01-20", got[0])
	}
	if got[0].Description != "Internet Bill" || got[0].CategoryID != "utilities" {
		t.Fatalf("first labels = %q/%q", got[0].Description, got[0].CategoryID)
	}
	if got[1].ID != "rent" || !got[1].DueDate.Equal(mustDate(t, "2025-02-01")) {
		t.Fatalf("second = %+v, want rent on 2025-02-01", got[1])
	}
	if got[1].Description != "Landlord" || got[1].CategoryID != model.Uncategorized {
		t.Fatalf("second labels = %q/%q", got[1].Description, got[1].CategoryID)
	}
}

func TestBuildReport(t *testing.T) {
	txs := []model.Transaction{
		{Kind: model.KindIncome, Amount: 10000, CategoryID: "sales", OccurredAt: mustDate(t, "2025-01-03").Add(9 * time.Hour)},
		{Kind: model.KindExpense, Amount: 2500, CategoryID: "stock", OccurredAt: mustDate(t, "2025-01-03").Add(14 * time.Hour)},
		{Kind: model.KindExpense, Amount: 500, OccurredAt: mustDate(t, "2025-01-31").Add(20 * time.Hour)},
		{Kind: model.KindExpense, Amount: 7777, CategoryID: "stock", OccurredAt: mustDate(t, "2025-02-01")},
	}

	rep := BuildReport(txs, 2025, time.January, time.UTC)
	if rep.Summary.Revenue != 10000 || rep.Summary.Expenses != 3000 || rep.Summary.Profit != 7000 {
		t.Fatalf("Summary = %+v", rep.Summary)
	}
	if rep.AvgTransaction != 4333 {
		t.Fatalf("AvgTransaction = %d, want 4333", rep.AvgTransaction)
	}
	if len(rep.Daily) != 31 {
		t.Fatalf("len(Daily) = %d, want 31", len(rep.Daily))
	}
	if rep.Daily[2].Income != 10000 || rep.Daily[30].Expense != 500 {
		t.Fatalf("Daily[2]/Daily[30] = %+v / %+v", rep.Daily[2], rep.Daily[30])
	}
	if len(rep.Categories) != 2 || rep.Categories[0].CategoryID != "stock" || rep.Categories[0].Percentage != 83 {
		t.Fatalf("Categories = %+v", rep.Categories)
	}
}
