package model

import "time"

// CategoryStats tracks reviewed predictions for one category.
type CategoryStats struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Metrics summarizes how well predictions have held up under review.
type Metrics struct {
	LastTraining       *time.Time                 `json:"last_training,omitempty"`
	ByCategory         map[Category]CategoryStats `json:"by_category"`
	ModelVersion       string                     `json:"model_version"`
	TotalPredictions   int                        `json:"total_predictions"`
	CorrectPredictions int                        `json:"correct_predictions"`
	Accuracy           float64                    `json:"accuracy"`
}

// NewMetrics returns an empty metrics ledger.
func NewMetrics(version string) Metrics {
	return Metrics{
		ByCategory:   make(map[Category]CategoryStats),
		ModelVersion: version,
	}
}

// Record adds one reviewed prediction for the predicted category.
func (m *Metrics) Record(predicted Category, correct bool) {
	if m.ByCategory == nil {
		m.ByCategory = make(map[Category]CategoryStats)
	}

	m.TotalPredictions++
	stats := m.ByCategory[predicted]
	stats.Total++
	if correct {
		m.CorrectPredictions++
		stats.Correct++
	}
	m.ByCategory[predicted] = stats
	m.Recompute()
}

// Recompute refreshes every derived accuracy from its counters.
func (m *Metrics) Recompute() {
	m.Accuracy = Ratio(m.CorrectPredictions, m.TotalPredictions)
	for cat, stats := range m.ByCategory {
		stats.Accuracy = Ratio(stats.Correct, stats.Total)
		m.ByCategory[cat] = stats
	}
}

// Clone returns a deep copy.
func (m Metrics) Clone() Metrics {
	out := m
	out.ByCategory = make(map[Category]CategoryStats, len(m.ByCategory))
	for k, v := range m.ByCategory {
		out.ByCategory[k] = v
	}
	if m.LastTraining != nil {
		t := *m.LastTraining
		out.LastTraining = &t
	}
	return out
}
