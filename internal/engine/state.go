package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/Veraticus/saffron/internal/pattern"
	"github.com/Veraticus/saffron/internal/storage"
)

// StateKey is the store key holding the engine's state document.
const StateKey = "engine-state"

// StateVersion is the current state document format.
const StateVersion = 1

// stateDocument is everything the engine persists, written as one value.
type stateDocument struct {
	DescriptionModel *pattern.DescriptionModel `json:"description_model,omitempty"`
	Rules            []model.Rule              `json:"rules"`
	Patterns         []model.Pattern           `json:"patterns"`
	Corrections      []model.Correction        `json:"corrections"`
	Metrics          model.Metrics             `json:"metrics"`
	Version          int                       `json:"version"`
	CorrectionsTotal int                       `json:"corrections_total"`
}

func (e *Engine) snapshot() stateDocument {
	corrections := make([]model.Correction, len(e.corrections))
	copy(corrections, e.corrections)

	return stateDocument{
		Version:          StateVersion,
		Rules:            e.rules.Rules(),
		Patterns:         e.patterns.Patterns(),
		Corrections:      corrections,
		CorrectionsTotal: e.corrected,
		Metrics:          e.metrics.Clone(),
		DescriptionModel: e.patterns.DescriptionModel(),
	}
}

func (e *Engine) restore(doc stateDocument) {
	e.rules.Replace(doc.Rules)
	e.patterns.Replace(doc.Patterns)
	e.patterns.SetDescriptionModel(doc.DescriptionModel)

	e.corrections = doc.Corrections
	if overflow := len(e.corrections) - e.cfg.CorrectionCap; overflow > 0 {
		e.corrections = append([]model.Correction(nil), e.corrections[overflow:]...)
	}
	e.corrected = doc.CorrectionsTotal

	e.metrics = doc.Metrics
	if e.metrics.ByCategory == nil {
		e.metrics.ByCategory = make(map[model.Category]model.CategoryStats)
	}
	if e.metrics.ModelVersion == "" {
		e.metrics.ModelVersion = InitialModelVersion
	}
	e.metrics.Recompute()
}

func decodeState(data []byte) (stateDocument, error) {
	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return stateDocument{}, fmt.Errorf("%w: %w", common.ErrCorruptState, err)
	}
	if doc.Version < 1 || doc.Version > StateVersion {
		return stateDocument{}, fmt.Errorf("%w: unsupported state version %d", common.ErrCorruptState, doc.Version)
	}
	return doc, nil
}

// load reads saved state once. A missing document seeds the defaults; any
// other failure seeds the defaults and switches the engine to memory-only so
// the unreadable document is not overwritten.
func (e *Engine) load(ctx context.Context) {
	data, err := e.store.Get(ctx, StateKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		e.seed()
		return
	}
	if err != nil {
		common.LogError(err, "Failed to load engine state; continuing in memory only", common.Fields{"key": StateKey})
		e.memoryOnly = true
		e.seed()
		return
	}

	doc, err := decodeState(data)
	if err != nil {
		common.LogError(err, "Saved engine state is unreadable; continuing in memory only", common.Fields{"key": StateKey})
		e.memoryOnly = true
		e.seed()
		return
	}
	e.restore(doc)

	common.LogDebug("Loaded engine state", common.Fields{
		"rules":       len(doc.Rules),
		"patterns":    len(doc.Patterns),
		"corrections": len(doc.Corrections),
	})
}

// persist writes the state document. Failures are logged and returned; the
// in-memory state stays authoritative either way.
func (e *Engine) persist(ctx context.Context) error {
	if e.memoryOnly {
		return fmt.Errorf("%w: engine is running in memory only", common.ErrStoreUnavailable)
	}

	data, err := json.Marshal(e.snapshot())
	if err != nil {
		common.LogError(err, "Failed to encode engine state", common.Fields{"key": StateKey})
		return fmt.Errorf("failed to encode engine state: %w", err)
	}

	if err := e.store.Set(ctx, StateKey, data); err != nil {
		common.LogError(err, "Failed to persist engine state", common.Fields{"key": StateKey})
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}
