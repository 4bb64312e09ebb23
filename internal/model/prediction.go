package model

// CategoryPrediction is a suggested category with confidence and reasoning.
type CategoryPrediction struct {
	Category      Category `json:"category"`
	Reasoning     []string `json:"reasoning"`
	SuggestedTags []string `json:"suggested_tags,omitempty"`
	Confidence    float64  `json:"confidence"`
}

// ClampConfidence bounds a confidence value to [0,1].
func ClampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Ratio returns correct/total, or 0 when total is zero.
func Ratio(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
