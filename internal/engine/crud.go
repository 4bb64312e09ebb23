package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/saffron/internal/model"
)

// AddRule validates and inserts a rule, then persists.
func (e *Engine) AddRule(ctx context.Context, r model.Rule) (model.Rule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	added, err := e.rules.Add(r)
	if err != nil {
		return model.Rule{}, err
	}
	_ = e.persist(ctx)
	return added, nil
}

// ImportRules inserts every rule, stopping at the first invalid one. Rules
// added before the failure are kept and persisted.
func (e *Engine) ImportRules(ctx context.Context, rules []model.Rule) ([]model.Rule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		added []model.Rule
		err   error
	)
	for i, r := range rules {
		var a model.Rule
		if a, err = e.rules.Add(r); err != nil {
			err = fmt.Errorf("rule %d (%s): %w", i+1, r.Name, err)
			break
		}
		added = append(added, a)
	}
	if len(added) > 0 {
		_ = e.persist(ctx)
	}
	return added, err
}

// UpdateRule replaces an existing rule, then persists.
func (e *Engine) UpdateRule(ctx context.Context, r model.Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.rules.Update(r); err != nil {
		return err
	}
	_ = e.persist(ctx)
	return nil
}

// DeleteRule removes a rule, then persists.
func (e *Engine) DeleteRule(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.rules.Delete(id); err != nil {
		return err
	}
	_ = e.persist(ctx)
	return nil
}

// Rule returns the rule with the given ID.
func (e *Engine) Rule(id string) (model.Rule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.Get(id)
}

// AddPattern validates and inserts a pattern, then persists.
func (e *Engine) AddPattern(ctx context.Context, p model.Pattern) (model.Pattern, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	added, err := e.patterns.Add(p)
	if err != nil {
		return model.Pattern{}, err
	}
	_ = e.persist(ctx)
	return added, nil
}

// UpdatePattern replaces an existing pattern, then persists.
func (e *Engine) UpdatePattern(ctx context.Context, p model.Pattern) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.patterns.Update(p); err != nil {
		return err
	}
	_ = e.persist(ctx)
	return nil
}

// DeletePattern removes a pattern, then persists.
func (e *Engine) DeletePattern(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.patterns.Delete(id); err != nil {
		return err
	}
	_ = e.persist(ctx)
	return nil
}

// Pattern returns the pattern with the given ID.
func (e *Engine) Pattern(id string) (model.Pattern, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patterns.Get(id)
}

// MatchingRules returns the active rules whose condition holds for obs,
// without touching usage counters.
func (e *Engine) MatchingRules(obs model.Observation) []model.Rule {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.Rule
	for _, id := range e.rules.Matching(obs) {
		if r, err := e.rules.Get(id); err == nil {
			out = append(out, r)
		}
	}
	return out
}
