// Package model defines the core data structures for the saffron categorization engine.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is an unclassified transaction awaiting a category.
// ID, Tags and Notes are only set when the caller supplies a snapshot of an
// already persisted transaction, for example when recording a correction.
type Observation struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	ID          string          `json:"id,omitempty"`
	Merchant    string          `json:"merchant,omitempty"`
	Description string          `json:"description"`
	Location    string          `json:"location,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// AmountFloat returns the amount as a float64 for scoring.
func (o Observation) AmountFloat() float64 {
	return o.Amount.InexactFloat64()
}

// HasTimeOfDay reports whether the observation date carries a time component.
// Dates parsed from a bare calendar day land exactly on midnight.
func (o Observation) HasTimeOfDay() bool {
	h, m, s := o.Date.Clock()
	return h != 0 || m != 0 || s != 0 || o.Date.Nanosecond() != 0
}

// LabeledObservation is an observation with a known category, used for bulk training.
type LabeledObservation struct {
	Category Category `json:"category"`
	Observation
}
