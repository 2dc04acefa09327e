package pipeline

import (
	"math"
	"math/bits"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

const (
	// BurnWindowDays is the trailing window used to estimate daily spend.
	BurnWindowDays = 30

	healthyAfterDays  = 14
	criticalUpToDays  = 7
	curveWarningRatio = 1.5
)

// Project estimates how many days the balance lasts before it reaches the
// threshold and classifies the result. The reference date is always
// supplied by the caller; Project never reads the wall clock.
func Project(in model.ProjectionInput) (model.ProjectionResult, error) {
	if err := validateProjection(in); err != nil {
		return model.ProjectionResult{}, err
	}

	if in.Balance <= in.Threshold {
		return model.ProjectionResult{Status: model.StatusCritical}, nil
	}

	sum, carries := trailingExpenses(in.Transactions, in.Ref)
	if sum == 0 && carries == 0 {
		return model.ProjectionResult{
			Status:             model.StatusHealthy,
			DaysUntilThreshold: model.UnboundedDays,
		}, nil
	}

	span := observationSpan(in.Transactions, in.Ref)
	above := uint64(in.Balance - in.Threshold)

	var days int64
	if carries > 0 {
		avg := wideFloat(sum, carries) / float64(span)
		days = int64(math.Floor(float64(above) / avg))
	} else {
		days = runwayDays(above, uint64(span), sum)
	}

	res := model.ProjectionResult{
		Status:             Classify(days),
		DaysUntilThreshold: days,
	}
	if days != model.UnboundedDays && days <= math.MaxInt32 {
		d := in.Ref.AddDate(0, 0, int(days))
		res.ThresholdDate = &d
	}
	return res, nil
}

// ProjectNow runs Project with the current wall-clock time as reference.
func ProjectNow(balance, threshold int64, txs []model.Transaction) (model.ProjectionResult, error) {
	return Project(model.ProjectionInput{
		Balance:      balance,
		Threshold:    threshold,
		Transactions: txs,
		Ref:          time.Now(),
	})
}

// Classify maps a runway length in days to a status.
func Classify(days int64) model.Status {
	switch {
	case days > healthyAfterDays:
		return model.StatusHealthy
	case days > criticalUpToDays:
		return model.StatusWarning
	default:
		return model.StatusCritical
	}
}

// trailingExpenses sums expenses on or after ref minus the burn window.
// The total is sum + carries*2^64.
func trailingExpenses(txs []model.Transaction, ref time.Time) (sum, carries uint64) {
	windowStart := ref.AddDate(0, 0, -BurnWindowDays)
	for _, t := range txs {
		if t.Kind != model.KindExpense || t.OccurredAt.Before(windowStart) {
			continue
		}
		var carry uint64
		sum, carry = bits.Add64(sum, uint64(t.Amount), 0)
		carries += carry
	}
	return sum, carries
}

func wideFloat(sum, carries uint64) float64 {
	return float64(carries)*math.Exp2(64) + float64(sum)
}

// observationSpan is the number of days between the earliest transaction
// and ref, rounded up and clamped to [1, BurnWindowDays].
func observationSpan(txs []model.Transaction, ref time.Time) int64 {
	earliest := ref
	for _, t := range txs {
		if t.OccurredAt.Before(earliest) {
			earliest = t.OccurredAt
		}
	}

	elapsed := ref.Sub(earliest)
	span := int64(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		span++
	}
	if span < 1 {
		span = 1
	}
	if span > BurnWindowDays {
		span = BurnWindowDays
	}
	return span
}

// runwayDays computes floor(above / (sum / span)) as floor(above*span / sum)
// with a 128-bit intermediate. Results beyond int64 saturate.
func runwayDays(above, span, sum uint64) int64 {
	hi, lo := bits.Mul64(above, span)
	if hi >= sum {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, sum)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}

// ProjectCurve returns the projected balance for today and each of the next
// BurnWindowDays days, assuming spend continues at the trailing 30-day
// average. Balances are floored at zero.
func ProjectCurve(balance, threshold int64, txs []model.Transaction, ref time.Time) []model.ProjectionPoint {
	sum, carries := trailingExpenses(txs, ref)
	burn := wideFloat(sum, carries) / BurnWindowDays

	warnAt := float64(threshold) * curveWarningRatio
	points := make([]model.ProjectionPoint, 0, BurnWindowDays+1)
	for i := 0; i <= BurnWindowDays; i++ {
		projected := float64(balance) - burn*float64(i)
		if projected < 0 {
			projected = 0
		}

		status := model.StatusHealthy
		switch {
		case projected <= float64(threshold):
			status = model.StatusCritical
		case projected <= warnAt:
			status = model.StatusWarning
		}

		points = append(points, model.ProjectionPoint{
			Date:    ref.AddDate(0, 0, i),
			Balance: clampInt64(math.Round(projected)),
			Status:  status,
		})
	}
	return points
}

func clampInt64(f float64) int64 {
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}
