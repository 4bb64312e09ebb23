// Package rule evaluates authored condition to category rules and tracks their
// usage and rolling accuracy.
package rule

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/google/uuid"
)

// Matcher holds the mutable rule set. It is not safe for concurrent use; the
// engine serializes access.
type Matcher struct {
	evaluator *Evaluator
	clock     func() time.Time
	rules     []model.Rule
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithClock overrides the time source used for lastUsed and createdAt.
func WithClock(clock func() time.Time) Option {
	return func(m *Matcher) {
		m.clock = clock
	}
}

// WithEvaluator shares a condition evaluator, and its regex cache, with the matcher.
func WithEvaluator(e *Evaluator) Option {
	return func(m *Matcher) {
		m.evaluator = e
	}
}

// NewMatcher creates a matcher over a copy of the given rules.
func NewMatcher(rules []model.Rule, opts ...Option) *Matcher {
	m := &Matcher{
		evaluator: NewEvaluator(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Replace(rules)
	return m
}

// ApplyRules evaluates every active rule in descending priority order and
// returns one prediction per match. Matching rules have their usage count
// incremented and lastUsed set.
func (m *Matcher) ApplyRules(obs model.Observation) []model.CategoryPrediction {
	var predictions []model.CategoryPrediction
	now := m.clock()

	for i := range m.rules {
		r := &m.rules[i]
		if !r.IsActive || !m.evaluator.Evaluate(r.Condition, obs) {
			continue
		}

		r.UsageCount++
		used := now
		r.LastUsed = &used

		predictions = append(predictions, prediction(*r))
	}

	return predictions
}

// Preview returns the predictions ApplyRules would emit without touching
// usage counters.
func (m *Matcher) Preview(obs model.Observation) []model.CategoryPrediction {
	var predictions []model.CategoryPrediction
	for _, r := range m.rules {
		if r.IsActive && m.evaluator.Evaluate(r.Condition, obs) {
			predictions = append(predictions, prediction(r))
		}
	}
	return predictions
}

// Matching returns the IDs of active rules whose condition holds, without
// touching usage counters.
func (m *Matcher) Matching(obs model.Observation) []string {
	var ids []string
	for _, r := range m.rules {
		if r.IsActive && m.evaluator.Evaluate(r.Condition, obs) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func prediction(r model.Rule) model.CategoryPrediction {
	return model.CategoryPrediction{
		Category:      r.Action.Category,
		Confidence:    model.ClampConfidence(r.Action.Confidence * r.Accuracy),
		Reasoning:     []string{fmt.Sprintf("rule %q matched: %s", r.Name, r.Condition)},
		SuggestedTags: append([]string(nil), r.Action.Tags...),
	}
}

// UpdateAccuracy folds one review into the rule's rolling accuracy, weighting
// the prior accuracy by the rule's usage count.
func (m *Matcher) UpdateAccuracy(id string, wasCorrect bool) error {
	r := m.find(id)
	if r == nil {
		return fmt.Errorf("rule %s: %w", id, common.ErrNotFound)
	}
	r.Accuracy = RollingAccuracy(r.Accuracy, r.UsageCount, wasCorrect)
	return nil
}

// RollingAccuracy computes (old*prior + hit) / (prior+1).
func RollingAccuracy(old float64, prior int, wasCorrect bool) float64 {
	if prior < 0 {
		prior = 0
	}
	hit := 0.0
	if wasCorrect {
		hit = 1
	}
	return model.ClampConfidence((old*float64(prior) + hit) / float64(prior+1))
}

// Add validates and inserts a rule, assigning an ID and creation time when missing.
func (m *Matcher) Add(r model.Rule) (model.Rule, error) {
	if err := r.Validate(); err != nil {
		return model.Rule{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	} else if m.find(r.ID) != nil {
		return model.Rule{}, fmt.Errorf("rule %s: %w", r.ID, common.ErrDuplicateEntry)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.clock()
	}

	m.rules = append(m.rules, r)
	sortByPriority(m.rules)
	return r, nil
}

// Update replaces the rule with the same ID.
func (m *Matcher) Update(r model.Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	existing := m.find(r.ID)
	if existing == nil {
		return fmt.Errorf("rule %s: %w", r.ID, common.ErrNotFound)
	}
	*existing = r
	sortByPriority(m.rules)
	return nil
}

// Delete removes the rule with the given ID.
func (m *Matcher) Delete(id string) error {
	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("rule %s: %w", id, common.ErrNotFound)
}

// Get returns a copy of the rule with the given ID.
func (m *Matcher) Get(id string) (model.Rule, error) {
	r := m.find(id)
	if r == nil {
		return model.Rule{}, fmt.Errorf("rule %s: %w", id, common.ErrNotFound)
	}
	return *r, nil
}

// Rules returns a copy of the rule set in evaluation order.
func (m *Matcher) Rules() []model.Rule {
	out := make([]model.Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Replace swaps in a new rule set.
func (m *Matcher) Replace(rules []model.Rule) {
	m.rules = make([]model.Rule, len(rules))
	copy(m.rules, rules)
	sortByPriority(m.rules)
}

// Prune removes every rule for which remove returns true and returns them.
func (m *Matcher) Prune(remove func(model.Rule) bool) []model.Rule {
	var removed []model.Rule
	kept := m.rules[:0]
	for _, r := range m.rules {
		if remove(r) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	m.rules = kept
	return removed
}

func (m *Matcher) find(id string) *model.Rule {
	for i := range m.rules {
		if m.rules[i].ID == id {
			return &m.rules[i]
		}
	}
	return nil
}

// sortByPriority sorts rules by priority (highest first), keeping insertion
// order among equal priorities.
func sortByPriority(rules []model.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
}
