package engine

import (
	"github.com/Veraticus/saffron/internal/model"
)

// Fallback results.
const (
	// DefaultMaxConfidence caps combined predictions to preserve residual uncertainty.
	DefaultMaxConfidence = 0.95

	fallbackConfidence = 0.1
	fallbackReason     = "no patterns matched"
)

// Combine merges independent predictions into one using DefaultMaxConfidence.
func Combine(predictions []model.CategoryPrediction) model.CategoryPrediction {
	return CombineCapped(predictions, DefaultMaxConfidence)
}

// CombineCapped groups predictions by category and folds each group's
// confidences with score = score + c*(1-score). The highest group wins, ties
// going to the category seen first, and its score is capped at maxConfidence.
// The winner carries its group's reasoning in input order and the union of
// its suggested tags.
func CombineCapped(predictions []model.CategoryPrediction, maxConfidence float64) model.CategoryPrediction {
	if len(predictions) == 0 {
		return model.CategoryPrediction{
			Category:   model.CategoryOther,
			Confidence: fallbackConfidence,
			Reasoning:  []string{fallbackReason},
		}
	}

	type group struct {
		category  model.Category
		reasoning []string
		tags      []string
		seenTags  map[string]bool
		score     float64
	}

	groups := make(map[model.Category]*group)
	var order []*group
	for _, p := range predictions {
		g, ok := groups[p.Category]
		if !ok {
			g = &group{category: p.Category, seenTags: make(map[string]bool)}
			groups[p.Category] = g
			order = append(order, g)
		}

		c := model.ClampConfidence(p.Confidence)
		g.score += c * (1 - g.score)
		g.reasoning = append(g.reasoning, p.Reasoning...)
		for _, tag := range p.SuggestedTags {
			if !g.seenTags[tag] {
				g.seenTags[tag] = true
				g.tags = append(g.tags, tag)
			}
		}
	}

	best := order[0]
	for _, g := range order[1:] {
		if g.score > best.score {
			best = g
		}
	}

	return model.CategoryPrediction{
		Category:      best.category,
		Confidence:    min(model.ClampConfidence(best.score), maxConfidence),
		Reasoning:     best.reasoning,
		SuggestedTags: best.tags,
	}
}
