package pattern

import (
	"strings"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/Veraticus/saffron/internal/rule"
)

// Match scores.
const (
	// EmitThreshold is the score a pattern must exceed to produce a prediction.
	EmitThreshold = 0.3

	merchantSimilarityFloor = 0.7
	amountRangeScore        = 0.7
	weekdayScore            = 0.3
	hourSlotScore           = 0.4
)

// Score returns how well the observation matches the pattern, in [0,1].
func Score(p model.Pattern, obs model.Observation, evaluator *rule.Evaluator) float64 {
	switch payload := p.Payload.(type) {
	case model.MerchantPayload:
		return scoreMerchant(payload, obs)
	case model.KeywordPayload:
		return scoreKeywords(payload, obs)
	case model.AmountPayload:
		return scoreAmount(payload, obs)
	case model.TimeSlotPayload:
		return scoreTimeSlot(payload, obs)
	case model.CompositePayload:
		return scoreComposite(payload, obs, evaluator)
	}
	return 0
}

func scoreMerchant(p model.MerchantPayload, obs model.Observation) float64 {
	merchant := common.NormalizeText(obs.Merchant)
	stored := common.NormalizeText(p.Merchant)
	if merchant == "" || stored == "" {
		return 0
	}
	if strings.Contains(merchant, stored) || strings.Contains(stored, merchant) {
		return 1
	}
	if sim := Similarity(merchant, stored); sim > merchantSimilarityFloor {
		return sim
	}
	return 0
}

func scoreKeywords(p model.KeywordPayload, obs model.Observation) float64 {
	if len(p.Keywords) == 0 {
		return 0
	}
	present := make(map[string]bool)
	for _, token := range common.Tokenize(obs.Description) {
		present[token] = true
	}

	hits := 0
	for _, kw := range p.Keywords {
		if present[strings.ToLower(kw)] {
			hits++
		}
	}
	return model.Ratio(hits, len(p.Keywords))
}

func scoreAmount(p model.AmountPayload, obs model.Observation) float64 {
	if p.Range.Contains(obs.AmountFloat()) {
		return amountRangeScore
	}
	return 0
}

func scoreTimeSlot(p model.TimeSlotPayload, obs model.Observation) float64 {
	if obs.Date.IsZero() {
		return 0
	}
	score := 0.0
	if obs.Date.Weekday() == p.Weekday {
		score += weekdayScore
	}
	if obs.HasTimeOfDay() && p.Contains(obs.Date.Hour()) {
		score += hourSlotScore
	}
	return score
}

func scoreComposite(p model.CompositePayload, obs model.Observation, evaluator *rule.Evaluator) float64 {
	if len(p.Conditions) == 0 {
		return 0
	}
	satisfied := 0
	for _, cond := range p.Conditions {
		if evaluator.Evaluate(cond, obs) {
			satisfied++
		}
	}
	return model.Ratio(satisfied, len(p.Conditions))
}
