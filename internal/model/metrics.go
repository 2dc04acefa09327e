package model

import (
	"math"
	"time"
)

// PeriodSummary holds income and expense totals over a span.
type PeriodSummary struct {
	Revenue      int64 `json:"revenue"`
	Expenses     int64 `json:"expenses"`
	Profit       int64 `json:"profit"`
	IncomeCount  int   `json:"income_count"`
	ExpenseCount int   `json:"expense_count"`
}

// TransactionCount returns the number of transactions in the summary.
func (s PeriodSummary) TransactionCount() int {
	return s.IncomeCount + s.ExpenseCount
}

// DailyTotals holds income and expense for a single calendar day.
type DailyTotals struct {
	Date    time.Time `json:"date"`
	Income  int64     `json:"income"`
	Expense int64     `json:"expense"`
}

// Net returns income minus expense for the day.
func (d DailyTotals) Net() int64 {
	return d.Income - d.Expense
}

// CategoryShare holds one category's slice of total expenses.
type CategoryShare struct {
	CategoryID string `json:"category_id"`
	Amount     int64  `json:"amount"`
	Percentage int    `json:"percentage"`
	Count      int    `json:"count"`
}

// PeriodComparison holds current and previous period data along with
// the percentage changes between them.
type PeriodComparison struct {
	Current        PeriodSummary `json:"current"`
	Previous       PeriodSummary `json:"previous"`
	RevenueChange  float64       `json:"revenue_change"`
	ExpensesChange float64       `json:"expenses_change"`
	ProfitChange   float64       `json:"profit_change"`
}

// DateRange is a closed time span.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of days the range covers, rounded up, at least 1.
func (r DateRange) Days() int {
	d := int(math.Ceil(r.End.Sub(r.Start).Hours() / 24))
	if d < 1 {
		return 1
	}
	return d
}

// Contains reports whether t falls within the closed range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// UpcomingExpense is a recurring expense expected to hit again soon.
type UpcomingExpense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id"`
	Amount      int64     `json:"amount"`
	DueDate     time.Time `json:"due_date"`
}

// Report is a monthly breakdown of activity.
type Report struct {
	Year           int             `json:"year"`
	Month          time.Month      `json:"month"`
	Summary        PeriodSummary   `json:"summary"`
	AvgTransaction int64           `json:"avg_transaction"`
	Categories     []CategoryShare `json:"categories"`
	Daily          []DailyTotals   `json:"daily"`
}

// MonthOption is a month that has at least one transaction.
type MonthOption struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Key returns the month as YYYY-MM.
func (m MonthOption) Key() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
