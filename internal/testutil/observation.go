package testutil

import (
	"time"

	"github.com/Veraticus/saffron/internal/model"
	"github.com/shopspring/decimal"
)

// Monday is 2024-03-18 15:00 UTC, a weekday afternoon that triggers no
// time-of-day heuristic.
var Monday = time.Date(2024, 3, 18, 15, 0, 0, 0, time.UTC)

// ObservationBuilder builds observations fluently.
//
//	obs := testutil.NewObservation().
//		WithMerchant("Foo Mart").
//		WithAmount("42").
//		Build()
type ObservationBuilder struct {
	obs model.Observation
}

// NewObservation starts an observation dated Monday with a zero amount.
func NewObservation() *ObservationBuilder {
	return &ObservationBuilder{obs: model.Observation{
		Date:   Monday,
		Amount: decimal.Zero,
	}}
}

// WithMerchant sets the merchant.
func (b *ObservationBuilder) WithMerchant(merchant string) *ObservationBuilder {
	b.obs.Merchant = merchant
	return b
}

// WithDescription sets the description.
func (b *ObservationBuilder) WithDescription(description string) *ObservationBuilder {
	b.obs.Description = description
	return b
}

// WithAmount sets the amount from a decimal string and panics on bad input.
func (b *ObservationBuilder) WithAmount(amount string) *ObservationBuilder {
	b.obs.Amount = decimal.RequireFromString(amount)
	return b
}

// WithDate sets the date.
func (b *ObservationBuilder) WithDate(date time.Time) *ObservationBuilder {
	b.obs.Date = date
	return b
}

// WithID sets the transaction ID.
func (b *ObservationBuilder) WithID(id string) *ObservationBuilder {
	b.obs.ID = id
	return b
}

// Build returns the observation.
func (b *ObservationBuilder) Build() model.Observation {
	return b.obs
}

// Labeled returns the observation labeled with category.
func (b *ObservationBuilder) Labeled(category model.Category) model.LabeledObservation {
	return model.LabeledObservation{Observation: b.obs, Category: category}
}
