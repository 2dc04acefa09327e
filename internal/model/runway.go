package model

import "time"

// Status is the discrete runway health state.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// UnboundedDays marks a runway with no measurable burn.
const UnboundedDays = 999

// ProjectionInput is everything the runway projection needs.
type ProjectionInput struct {
	Balance      int64
	Threshold    int64
	Transactions []Transaction
	Ref          time.Time
}

// ProjectionResult is the outcome of a runway projection.
// ThresholdDate is nil when the balance is already at or below the
// threshold and when the runway is unbounded.
type ProjectionResult struct {
	Status             Status     `json:"status"`
	DaysUntilThreshold int64      `json:"days_until_threshold"`
	ThresholdDate      *time.Time `json:"threshold_date,omitempty"`
}

// Unbounded reports whether the result carries the no-burn sentinel.
func (r ProjectionResult) Unbounded() bool {
	return r.DaysUntilThreshold == UnboundedDays && r.ThresholdDate == nil && r.Status == StatusHealthy
}

// ProjectionPoint is one day on the projected balance curve.
type ProjectionPoint struct {
	Date    time.Time `json:"date"`
	Balance int64     `json:"balance"`
	Status  Status    `json:"status"`
}
