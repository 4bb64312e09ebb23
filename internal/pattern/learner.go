// Package pattern maintains statistically derived category patterns: it scores
// observations against them, synthesizes new ones from corrections and
// rebuilds them from labeled history.
package pattern

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/Veraticus/saffron/internal/rule"
	"github.com/google/uuid"
)

// Correction synthesis constants.
const (
	// MaxExamples bounds the example descriptions kept per pattern.
	MaxExamples = 5

	newPatternConfidence = 0.6
	newPatternAccuracy   = 0.8
	confidenceStep       = 0.1
	correctionKeywords   = 5
	amountSpread         = 0.2
)

// Learner holds the mutable pattern set and the optional description model.
// It is not safe for concurrent use; the engine serializes access.
type Learner struct {
	evaluator   *rule.Evaluator
	clock       func() time.Time
	description *DescriptionModel
	patterns    []model.Pattern
}

// Option configures a Learner.
type Option func(*Learner)

// WithClock overrides the time source used for lastSeen.
func WithClock(clock func() time.Time) Option {
	return func(l *Learner) {
		l.clock = clock
	}
}

// WithEvaluator shares a condition evaluator for composite patterns.
func WithEvaluator(e *rule.Evaluator) Option {
	return func(l *Learner) {
		l.evaluator = e
	}
}

// NewLearner creates a learner over a copy of the given patterns.
func NewLearner(patterns []model.Pattern, opts ...Option) *Learner {
	l := &Learner{
		evaluator: rule.NewEvaluator(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.Replace(patterns)
	return l
}

// ApplyPatterns scores the observation against every pattern and returns a
// prediction for each score above EmitThreshold, plus the description model's
// prediction when one is trained and confident.
func (l *Learner) ApplyPatterns(obs model.Observation) []model.CategoryPrediction {
	var predictions []model.CategoryPrediction
	for _, p := range l.patterns {
		score := Score(p, obs, l.evaluator)
		if score <= EmitThreshold {
			continue
		}
		predictions = append(predictions, model.CategoryPrediction{
			Category:   p.Category,
			Confidence: model.ClampConfidence(score * p.Accuracy),
			Reasoning: []string{fmt.Sprintf("learned %s pattern matched (%s, score %.2f)",
				p.Kind(), p.Payload.Describe(), score)},
		})
	}

	if l.description != nil {
		if pred, ok := l.description.Predict(obs); ok {
			predictions = append(predictions, pred)
		}
	}
	return predictions
}

// UpdateAccuracy reviews every pattern that currently matches the observation
// against the confirmed category.
func (l *Learner) UpdateAccuracy(obs model.Observation, confirmed model.Category) int {
	reviewed := 0
	for i := range l.patterns {
		p := &l.patterns[i]
		if Score(*p, obs, l.evaluator) <= EmitThreshold {
			continue
		}
		p.Accuracy = rule.RollingAccuracy(p.Accuracy, p.Occurrences, p.Category == confirmed)
		reviewed++
	}
	return reviewed
}

// CreatePatternsFromCorrection derives merchant, keyword and amount candidates
// from a correction and folds each into the pattern set. It returns the
// created or updated patterns.
func (l *Learner) CreatePatternsFromCorrection(c model.Correction) []model.Pattern {
	var touched []model.Pattern
	for _, payload := range correctionCandidates(c.Observation) {
		touched = append(touched, l.reinforce(payload, c.CorrectedCategory, c.Observation.Description))
	}
	return touched
}

func correctionCandidates(obs model.Observation) []model.PatternPayload {
	var candidates []model.PatternPayload

	if merchant := common.NormalizeText(obs.Merchant); merchant != "" {
		candidates = append(candidates, model.MerchantPayload{Merchant: merchant})
	}

	if keywords := common.Keywords(obs.Description, correctionKeywords); len(keywords) > 0 {
		candidates = append(candidates, model.KeywordPayload{Keywords: sortedCopy(keywords)})
	}

	if amount := obs.AmountFloat(); amount > 0 {
		candidates = append(candidates, model.AmountPayload{Range: model.Range{
			Min: roundCents(amount * (1 - amountSpread)),
			Max: roundCents(amount * (1 + amountSpread)),
		}})
	}

	return candidates
}

// reinforce strengthens the structurally equal pattern, retargets it when it
// disagrees with the correction, or creates a new pattern.
func (l *Learner) reinforce(payload model.PatternPayload, category model.Category, example string) model.Pattern {
	now := l.clock()
	candidate := model.Pattern{Payload: payload, Category: category}

	if existing := l.findKey(candidate.Key()); existing != nil {
		if existing.Category == category {
			existing.Occurrences++
			existing.Confidence = min(1, existing.Confidence+confidenceStep)
		} else {
			existing.Category = category
			existing.Confidence = newPatternConfidence
			existing.Occurrences = 1
			existing.Examples = nil
		}
		existing.LastSeen = now
		existing.AddExample(example, MaxExamples)
		return *existing
	}

	candidate.ID = uuid.NewString()
	candidate.Confidence = newPatternConfidence
	candidate.Accuracy = newPatternAccuracy
	candidate.Occurrences = 1
	candidate.LastSeen = now
	candidate.AddExample(example, MaxExamples)
	l.patterns = append(l.patterns, candidate)
	return candidate
}

// Train rebuilds the pattern set from labeled history. When withModel is set
// and the history spans at least two categories, the description model is
// retrained; otherwise it is dropped.
func (l *Learner) Train(samples []model.LabeledObservation, th Thresholds, withModel bool) (TrainingSummary, error) {
	patterns := Synthesize(samples, th, l.clock())
	l.Replace(patterns)
	l.description = nil

	summary := summarize(patterns)
	summary.Samples = len(samples)
	if !withModel {
		return summary, nil
	}

	dm, err := TrainDescriptionModel(samples)
	switch {
	case errors.Is(err, ErrTooFewClasses):
		return summary, nil
	case err != nil:
		return summary, err
	}
	l.description = dm
	summary.ModelTrained = true
	return summary, nil
}

// Merge upserts patterns by kind+payload. A matching pattern keeps its ID and
// takes the incoming category and statistics; its accuracy and examples
// survive when the category is unchanged.
func (l *Learner) Merge(patterns []model.Pattern) (added, updated int) {
	for _, p := range patterns {
		existing := l.findKey(p.Key())
		if existing == nil {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			l.patterns = append(l.patterns, p)
			added++
			continue
		}

		merged := p
		merged.ID = existing.ID
		if existing.Category == p.Category {
			merged.Accuracy = existing.Accuracy
			merged.Examples = append([]string(nil), existing.Examples...)
			for _, ex := range p.Examples {
				merged.AddExample(ex, MaxExamples)
			}
		}
		*existing = merged
		updated++
	}
	return added, updated
}

// Add validates and inserts a pattern, assigning an ID when missing.
func (l *Learner) Add(p model.Pattern) (model.Pattern, error) {
	if err := p.Validate(); err != nil {
		return model.Pattern{}, err
	}
	if l.findKey(p.Key()) != nil {
		return model.Pattern{}, fmt.Errorf("pattern %s: %w", p.Payload.Describe(), common.ErrDuplicateEntry)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if l.find(p.ID) != nil {
		return model.Pattern{}, fmt.Errorf("pattern %s: %w", p.ID, common.ErrDuplicateEntry)
	}
	if p.LastSeen.IsZero() {
		p.LastSeen = l.clock()
	}
	l.patterns = append(l.patterns, p)
	return p, nil
}

// Update replaces the pattern with the same ID.
func (l *Learner) Update(p model.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	existing := l.find(p.ID)
	if existing == nil {
		return fmt.Errorf("pattern %s: %w", p.ID, common.ErrNotFound)
	}
	*existing = p
	return nil
}

// Delete removes the pattern with the given ID.
func (l *Learner) Delete(id string) error {
	for i, p := range l.patterns {
		if p.ID == id {
			l.patterns = append(l.patterns[:i], l.patterns[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("pattern %s: %w", id, common.ErrNotFound)
}

// Get returns a copy of the pattern with the given ID.
func (l *Learner) Get(id string) (model.Pattern, error) {
	p := l.find(id)
	if p == nil {
		return model.Pattern{}, fmt.Errorf("pattern %s: %w", id, common.ErrNotFound)
	}
	return *p, nil
}

// Patterns returns a copy of the pattern set.
func (l *Learner) Patterns() []model.Pattern {
	out := make([]model.Pattern, len(l.patterns))
	copy(out, l.patterns)
	return out
}

// Replace swaps in a new pattern set.
func (l *Learner) Replace(patterns []model.Pattern) {
	l.patterns = make([]model.Pattern, len(patterns))
	copy(l.patterns, patterns)
}

// Prune removes every pattern for which remove returns true and returns them.
func (l *Learner) Prune(remove func(model.Pattern) bool) []model.Pattern {
	var removed []model.Pattern
	kept := l.patterns[:0]
	for _, p := range l.patterns {
		if remove(p) {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	l.patterns = kept
	return removed
}

// DescriptionModel returns the trained description model, or nil.
func (l *Learner) DescriptionModel() *DescriptionModel {
	return l.description
}

// SetDescriptionModel installs a previously trained description model.
func (l *Learner) SetDescriptionModel(dm *DescriptionModel) {
	l.description = dm
}

func (l *Learner) find(id string) *model.Pattern {
	for i := range l.patterns {
		if l.patterns[i].ID == id {
			return &l.patterns[i]
		}
	}
	return nil
}

func (l *Learner) findKey(key string) *model.Pattern {
	if key == "" {
		return nil
	}
	for i := range l.patterns {
		if l.patterns[i].Key() == key {
			return &l.patterns[i]
		}
	}
	return nil
}
