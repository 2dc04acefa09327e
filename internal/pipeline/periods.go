package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

// Period names a reporting window.
type Period string

const (
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodCustom Period = "custom"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodWeek, PeriodMonth, PeriodCustom:
		return p, nil
	default:
		return "", &ValidationError{Field: "period", Message: fmt.Sprintf("unknown period %q", s)}
	}
}

// PeriodRange returns the window ending at the close of ref's day. Week
// covers the last 7 calendar days, month the last 30. A custom period uses
// the given bounds when both are set and falls back to month otherwise.
func PeriodRange(p Period, ref, customStart, customEnd time.Time) model.DateRange {
	if p == PeriodCustom && !customStart.IsZero() && !customEnd.IsZero() {
		return model.DateRange{Start: customStart, End: customEnd}
	}

	end := time.Date(ref.Year(), ref.Month(), ref.Day(), 23, 59, 59, 0, ref.Location())
	back := 29
	if p == PeriodWeek {
		back = 6
	}
	start := startOfDay(end.AddDate(0, 0, -back))
	return model.DateRange{Start: start, End: end}
}

// PreviousPeriod returns the window of equal length that ends just before r.
func PreviousPeriod(r model.DateRange) model.DateRange {
	d := r.End.Sub(r.Start)
	end := r.Start.Add(-time.Nanosecond)
	return model.DateRange{Start: end.Add(-d), End: end}
}

// InRange returns transactions inside the closed range.
func InRange(txs []model.Transaction, r model.DateRange) []model.Transaction {
	var result []model.Transaction
	for _, t := range txs {
		if r.Contains(t.OccurredAt) {
			result = append(result, t)
		}
	}
	return result
}

// MonthRange returns the first and last instant of a calendar month.
func MonthRange(year int, month time.Month, loc *time.Location) model.DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return model.DateRange{Start: start, End: end}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, &ValidationError{Field: "month", Message: fmt.Sprintf("expected YYYY-MM, got %q", s)}
	}
	return t.Year(), t.Month(), nil
}

// AvailableMonths lists every month with at least one transaction, newest
// first. Months are taken in loc.
func AvailableMonths(txs []model.Transaction, loc *time.Location) []model.MonthOption {
	seen := make(map[model.MonthOption]struct{})
	for _, t := range txs {
		lt := t.OccurredAt.In(loc)
		seen[model.MonthOption{Year: lt.Year(), Month: lt.Month()}] = struct{}{}
	}

	months := make([]model.MonthOption, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})
	return months
}
