package model

import (
	"testing"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("1.0.0")
	assert.Zero(t, m.Accuracy)

	m.Record(CategoryFood, true)
	m.Record(CategoryFood, false)
	m.Record(CategoryTravel, true)

	assert.Equal(t, 3, m.TotalPredictions)
	assert.Equal(t, 2, m.CorrectPredictions)
	assert.InDelta(t, 2.0/3.0, m.Accuracy, 1e-9)
	assert.Equal(t, CategoryStats{Correct: 1, Total: 2, Accuracy: 0.5}, m.ByCategory[CategoryFood])
	assert.Equal(t, CategoryStats{Correct: 1, Total: 1, Accuracy: 1}, m.ByCategory[CategoryTravel])
}

func TestMetrics_RecordOnZeroValue(t *testing.T) {
	var m Metrics
	m.Record(CategoryOther, false)
	assert.Equal(t, 1, m.TotalPredictions)
	assert.Zero(t, m.Accuracy)
}

func TestMetrics_Clone(t *testing.T) {
	trained := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMetrics("1.0.0")
	m.LastTraining = &trained
	m.Record(CategoryFood, true)

	c := m.Clone()
	c.Record(CategoryFood, false)
	*c.LastTraining = trained.Add(time.Hour)

	assert.Equal(t, 1, m.ByCategory[CategoryFood].Total)
	assert.Equal(t, trained, *m.LastTraining)
}

func TestRatio(t *testing.T) {
	assert.Zero(t, Ratio(3, 0))
	assert.Zero(t, Ratio(3, -1))
	assert.InDelta(t, 0.25, Ratio(1, 4), 1e-9)
}

func TestClampConfidence(t *testing.T) {
	assert.Zero(t, ClampConfidence(-0.2))
	assert.InDelta(t, 1.0, ClampConfidence(1.7), 1e-9)
	assert.InDelta(t, 0.4, ClampConfidence(0.4), 1e-9)
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory(" groceries ")
	require.NoError(t, err)
	assert.Equal(t, CategoryGroceries, got)
	assert.True(t, got.IsValid())

	_, err = ParseCategory("Gadgets")
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
	assert.False(t, Category("Gadgets").IsValid())

	assert.Contains(t, AllCategories(), CategoryOther)
}

func TestObservation_HasTimeOfDay(t *testing.T) {
	assert.False(t, Observation{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}.HasTimeOfDay())
	assert.True(t, Observation{Date: time.Date(2024, 1, 2, 0, 0, 1, 0, time.UTC)}.HasTimeOfDay())
}
