package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/Veraticus/saffron/internal/pattern"
	"github.com/google/uuid"
)

// LearnFromCorrection records that the observation originally predicted as
// original belongs to corrected. It reviews the rules and patterns that match
// the observation, synthesizes patterns from the correction, runs a retrain
// pass when the retrain policy fires, and persists the result.
func (e *Engine) LearnFromCorrection(
	ctx context.Context,
	obs model.Observation,
	original model.CategoryPrediction,
	corrected model.Category,
	reason string,
) (model.Correction, error) {
	if !corrected.IsValid() {
		return model.Correction{}, fmt.Errorf("%w: %q", common.ErrInvalidCategory, corrected)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c := model.Correction{
		ID:                 uuid.NewString(),
		Observation:        obs,
		OriginalCategory:   original.Category,
		OriginalConfidence: original.Confidence,
		CorrectedCategory:  corrected,
		Reason:             reason,
		Timestamp:          e.now(),
	}

	e.corrections = append(e.corrections, c)
	if overflow := len(e.corrections) - e.cfg.CorrectionCap; overflow > 0 {
		e.corrections = append([]model.Correction(nil), e.corrections[overflow:]...)
	}
	e.corrected++

	e.metrics.Record(original.Category, c.WasCorrect())

	for _, id := range e.rules.Matching(obs) {
		r, err := e.rules.Get(id)
		if err != nil {
			continue
		}
		if err := e.rules.UpdateAccuracy(id, r.Action.Category == corrected); err != nil {
			common.LogError(err, "Failed to update rule accuracy", common.Fields{"rule_id": id})
		}
	}
	reviewed := e.patterns.UpdateAccuracy(obs, corrected)
	touched := e.patterns.CreatePatternsFromCorrection(c)

	common.LogDebug("Learned from correction", common.Fields{
		"original":         original.Category,
		"corrected":        corrected,
		"patterns_touched": len(touched),
		"patterns_review":  reviewed,
	})

	if ShouldRetrain(e.corrected, e.cfg.RetrainEvery) {
		e.retrain()
	}

	_ = e.persist(ctx)
	return c, nil
}

// retrain re-synthesizes patterns from the most recent corrections, merges
// them into the pattern set and prunes what the policy rejects.
func (e *Engine) retrain() {
	window := e.corrections
	if len(window) > e.cfg.RetrainWindow {
		window = window[len(window)-e.cfg.RetrainWindow:]
	}

	samples := make([]model.LabeledObservation, len(window))
	for i, c := range window {
		samples[i] = c.Labeled()
	}

	added, updated := e.patterns.Merge(pattern.Synthesize(samples, e.cfg.Training, e.now()))
	prunedRules := e.rules.Prune(e.cfg.Prune.PruneRule)
	prunedPatterns := e.patterns.Prune(e.cfg.Prune.PrunePattern)

	common.LogInfo("Retrained from recent corrections", common.Fields{
		"window":           len(samples),
		"patterns_added":   added,
		"patterns_updated": updated,
		"rules_pruned":     len(prunedRules),
		"patterns_pruned":  len(prunedPatterns),
	})
}

// LearnFromHistory rebuilds the pattern set, and the description model when
// enabled, from labeled observations. It records the training time, bumps
// the model version and persists the result.
func (e *Engine) LearnFromHistory(ctx context.Context, samples []model.LabeledObservation) (pattern.TrainingSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	summary, err := e.patterns.Train(samples, e.cfg.Training, e.cfg.DescriptionModel)
	if err != nil {
		return summary, fmt.Errorf("failed to train from history: %w", err)
	}

	trained := e.now()
	e.metrics.LastTraining = &trained
	e.metrics.ModelVersion = nextVersion(e.metrics.ModelVersion)

	common.LogInfo("Trained from history", common.Fields{
		"samples":       summary.Samples,
		"patterns":      summary.Patterns,
		"model_trained": summary.ModelTrained,
		"model_version": e.metrics.ModelVersion,
	})

	_ = e.persist(ctx)
	return summary, nil
}

// nextVersion increments the patch component of a major.minor.patch tag.
func nextVersion(v string) string {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return InitialModelVersion
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return InitialModelVersion
	}
	parts[2] = strconv.Itoa(patch + 1)
	return strings.Join(parts, ".")
}
