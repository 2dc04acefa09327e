// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

// Currency is the prefix used for money values.
var Currency = "KES"

// FormatKES formats a whole-shilling amount, e.g. 12400 -> "KES 12,400"
// and -1200 -> "-KES 1,200".
func FormatKES(n int64) string {
	if n < 0 {
		return "-" + Currency + " " + FormatNumber(-n)
	}
	return Currency + " " + FormatNumber(n)
}

// FormatSignedKES is FormatKES with an explicit "+" for positive amounts.
func FormatSignedKES(n int64) string {
	if n > 0 {
		return "+" + FormatKES(n)
	}
	return FormatKES(n)
}

// FormatCompact shortens large amounts with a suffix.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n == math.MinInt64 {
		return "-9,223,372,036,854,775,808"
	}
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatChange formats a percentage change with sign, e.g. "+12.5%".
func FormatChange(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats the difference between two amounts with sign. The
// difference is clamped to the int64 range.
func FormatDelta(current, previous int64) string {
	d := current - previous
	switch {
	case previous < 0 && d < current:
		d = math.MaxInt64
	case previous > 0 && d > current:
		d = -math.MaxInt64
	}
	return FormatSignedKES(d)
}

// FormatRunway describes a projection for humans.
func FormatRunway(r model.ProjectionResult) string {
	switch {
	case r.Unbounded():
		return "no recent spending"
	case r.DaysUntilThreshold == 0:
		return "at or below threshold"
	case r.DaysUntilThreshold == 1:
		return "1 day"
	default:
		return FormatNumber(r.DaysUntilThreshold) + " days"
	}
}

// FormatDate formats a date as "Mon 2 Jan 2006"; nil yields "-".
func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("Mon 2 Jan 2006")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
