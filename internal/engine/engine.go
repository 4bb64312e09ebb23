// Package engine implements the categorization engine: it fans an observation
// out to rules, learned patterns and heuristics, combines their signals, and
// learns from user corrections.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/config"
	"github.com/Veraticus/saffron/internal/heuristic"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/Veraticus/saffron/internal/pattern"
	"github.com/Veraticus/saffron/internal/rule"
	"github.com/Veraticus/saffron/internal/storage"
)

// InitialModelVersion is the model version of a fresh engine.
const InitialModelVersion = "1.0.0"

// Heuristics produces table-driven signals for an observation.
type Heuristics interface {
	Predict(obs model.Observation) []model.CategoryPrediction
}

// Config holds the engine's tunables.
type Config struct {
	Training         pattern.Thresholds
	Prune            PrunePolicy
	CorrectionCap    int
	RetrainEvery     int
	RetrainWindow    int
	MaxConfidence    float64
	DescriptionModel bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Training:         pattern.DefaultThresholds(),
		Prune:            DefaultPrunePolicy(),
		CorrectionCap:    config.DefaultCorrectionCap,
		RetrainEvery:     config.DefaultRetrainEvery,
		RetrainWindow:    config.DefaultRetrainWindow,
		MaxConfidence:    DefaultMaxConfidence,
		DescriptionModel: true,
	}
}

// ConfigFrom converts loaded application configuration.
func ConfigFrom(c config.EngineConfig) Config {
	cfg := DefaultConfig()
	cfg.CorrectionCap = c.CorrectionCap
	cfg.RetrainEvery = c.RetrainEvery
	cfg.RetrainWindow = c.RetrainWindow
	cfg.MaxConfidence = c.MaxConfidence
	cfg.DescriptionModel = c.DescriptionModel
	cfg.Prune = PrunePolicy{
		AccuracyFloor: c.Prune.AccuracyFloor,
		MinUsage:      c.Prune.MinUsage,
		Enabled:       c.Prune.Enabled,
	}
	return cfg
}

// Engine owns the rule set, pattern set, correction log and metrics. All
// public methods are serialized by a single mutex.
type Engine struct {
	store       storage.Store
	heuristics  Heuristics
	clock       func() time.Time
	rules       *rule.Matcher
	patterns    *pattern.Learner
	metrics     model.Metrics
	corrections []model.Correction
	cfg         Config
	corrected   int
	memoryOnly  bool
	mu          sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithHeuristics replaces the default heuristic predictor.
func WithHeuristics(h Heuristics) Option {
	return func(e *Engine) {
		e.heuristics = h
	}
}

// New creates an engine backed by store and loads any saved state. When no
// state is saved, the default rules are seeded. Load failures are logged and
// leave the engine running in memory only.
func New(ctx context.Context, store storage.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", common.ErrInvalidInput)
	}

	e := &Engine{
		store:      store,
		heuristics: heuristic.NewPredictor(),
		clock:      time.Now,
		cfg:        DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.CorrectionCap < 1 {
		return nil, fmt.Errorf("%w: correction cap must be at least 1", common.ErrInvalidConfig)
	}

	evaluator := rule.NewEvaluator()
	e.rules = rule.NewMatcher(nil, rule.WithClock(e.now), rule.WithEvaluator(evaluator))
	e.patterns = pattern.NewLearner(nil, pattern.WithClock(e.now), pattern.WithEvaluator(evaluator))

	e.load(ctx)
	return e, nil
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// seed installs the bootstrap state.
func (e *Engine) seed() {
	e.rules.Replace(rule.DefaultRules(e.now()))
	e.patterns.Replace(nil)
	e.patterns.SetDescriptionModel(nil)
	e.corrections = nil
	e.corrected = 0
	e.metrics = model.NewMetrics(InitialModelVersion)
}

// Categorize predicts a category for the observation. It never fails; with no
// signal it returns the low-confidence Other fallback. Rule usage counters are
// updated in memory; call Save to persist them.
func (e *Engine) Categorize(obs model.Observation) model.CategoryPrediction {
	e.mu.Lock()
	defer e.mu.Unlock()

	return CombineCapped(e.predictions(obs), e.cfg.MaxConfidence)
}

// Explain returns every individual signal for the observation without
// combining them or touching usage counters.
func (e *Engine) Explain(obs model.Observation) []model.CategoryPrediction {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.CategoryPrediction
	out = append(out, e.rules.Preview(obs)...)
	out = append(out, e.patterns.ApplyPatterns(obs)...)
	out = append(out, e.heuristics.Predict(obs)...)
	return out
}

func (e *Engine) predictions(obs model.Observation) []model.CategoryPrediction {
	var preds []model.CategoryPrediction
	preds = append(preds, e.rules.ApplyRules(obs)...)
	preds = append(preds, e.patterns.ApplyPatterns(obs)...)
	preds = append(preds, e.heuristics.Predict(obs)...)
	return preds
}

// Metrics returns a snapshot with freshly derived accuracies.
func (e *Engine) Metrics() model.Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.metrics.Clone()
	m.Recompute()
	return m
}

// Rules returns the rule set in evaluation order.
func (e *Engine) Rules() []model.Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.Rules()
}

// Patterns returns the learned pattern set.
func (e *Engine) Patterns() []model.Pattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patterns.Patterns()
}

// Corrections returns the retained corrections, oldest first.
func (e *Engine) Corrections() []model.Correction {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Correction, len(e.corrections))
	copy(out, e.corrections)
	return out
}

// MemoryOnly reports whether saved state could not be read, in which case
// the engine no longer writes to the store.
func (e *Engine) MemoryOnly() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memoryOnly
}

// Save persists the current state.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist(ctx)
}

// Reset clears saved state and reseeds the default rules.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Clear(ctx, StateKey); err != nil {
		return fmt.Errorf("failed to clear saved state: %w", err)
	}
	e.memoryOnly = false
	e.seed()
	return e.persist(ctx)
}
