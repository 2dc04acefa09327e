package pipeline

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/runway/internal/model"
)

// ErrInvalidInput is wrapped by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError describes a caller-supplied value the engine refuses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ValidateTransactions checks that every transaction has a known kind and
// a non-negative amount.
func ValidateTransactions(txs []model.Transaction) error {
	for i, t := range txs {
		if !t.Kind.Valid() {
			return &ValidationError{
				Field:   fmt.Sprintf("transactions[%d].kind", i),
				Message: fmt.Sprintf("unknown kind %q", t.Kind),
			}
		}
		if t.Amount < 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("transactions[%d].amount", i),
				Message: fmt.Sprintf("must be non-negative, got %d", t.Amount),
			}
		}
	}
	return nil
}

func validateProjection(in model.ProjectionInput) error {
	if in.Threshold < 0 {
		return &ValidationError{
			Field:   "threshold",
			Message: fmt.Sprintf("must be non-negative, got %d", in.Threshold),
		}
	}
	if in.Ref.IsZero() {
		return &ValidationError{Field: "ref", Message: "reference date is required"}
	}
	return ValidateTransactions(in.Transactions)
}
