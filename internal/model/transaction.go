// Package model defines domain types for runway transactions and metrics.
package model

import "time"

// Kind distinguishes money coming in from money going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Source records where a transaction was captured.
type Source string

const (
	SourceMpesa  Source = "mpesa"
	SourceManual Source = "manual"
)

// Uncategorized is the category id used for transactions without one.
const Uncategorized = "uncategorized"

// UncategorizedColor is the display color for the uncategorized bucket.
const UncategorizedColor = "#94A3B8"

// Category is a display label for a category id.
type Category struct {
	ID    string
	Name  string
	Color string
}

// Transaction is one money movement. Amount is always a non-negative
// magnitude in whole shillings; the direction comes from Kind.
type Transaction struct {
	ID           string
	Kind         Kind
	Amount       int64
	OccurredAt   time.Time
	CategoryID   string
	Description  string
	Counterparty string
	Reference    string
	IsRecurring  bool
	Source       Source
	FilePath     string
}

// Category returns the category id, or Uncategorized when none is set.
func (t Transaction) Category() string {
	if t.CategoryID == "" {
		return Uncategorized
	}
	return t.CategoryID
}

// Signed returns the amount with income positive and expense negative.
func (t Transaction) Signed() int64 {
	if t.Kind == KindExpense {
		return -t.Amount
	}
	return t.Amount
}
