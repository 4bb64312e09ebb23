package model

import "time"

// Correction is a user override of a prior prediction.
type Correction struct {
	Timestamp          time.Time   `json:"timestamp"`
	ID                 string      `json:"id"`
	OriginalCategory   Category    `json:"original_category"`
	CorrectedCategory  Category    `json:"corrected_category"`
	Reason             string      `json:"reason,omitempty"`
	Observation        Observation `json:"observation"`
	OriginalConfidence float64     `json:"original_confidence"`
}

// WasCorrect reports whether the original prediction was confirmed.
func (c Correction) WasCorrect() bool {
	return c.OriginalCategory == c.CorrectedCategory
}

// Labeled converts the correction into a training sample.
func (c Correction) Labeled() LabeledObservation {
	return LabeledObservation{
		Observation: c.Observation,
		Category:    c.CorrectedCategory,
	}
}
