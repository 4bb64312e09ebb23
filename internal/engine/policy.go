package engine

import (
	"github.com/Veraticus/saffron/internal/model"
)

// ShouldRetrain reports whether the correctionCount-th correction triggers a
// retrain pass. An interval of zero disables retraining.
func ShouldRetrain(correctionCount, every int) bool {
	return every > 0 && correctionCount > 0 && correctionCount%every == 0
}

// PrunePolicy decides which learned rules and patterns a retrain pass drops.
// User-authored rules and anything without enough usage are never pruned.
type PrunePolicy struct {
	AccuracyFloor float64
	MinUsage      int
	Enabled       bool
}

// DefaultPrunePolicy returns the standard pruning thresholds.
func DefaultPrunePolicy() PrunePolicy {
	return PrunePolicy{
		AccuracyFloor: 0.3,
		MinUsage:      10,
		Enabled:       true,
	}
}

// PruneRule reports whether r should be removed.
func (p PrunePolicy) PruneRule(r model.Rule) bool {
	return p.Enabled &&
		!r.IsUserCreated &&
		r.UsageCount >= p.MinUsage &&
		r.Accuracy < p.AccuracyFloor
}

// PrunePattern reports whether pt should be removed, using occurrences as its
// usage count.
func (p PrunePolicy) PrunePattern(pt model.Pattern) bool {
	return p.Enabled &&
		pt.Occurrences >= p.MinUsage &&
		pt.Accuracy < p.AccuracyFloor
}
