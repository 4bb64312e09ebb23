package engine

import (
	"testing"

	"github.com/Veraticus/saffron/internal/model"
	"github.com/stretchr/testify/assert"
)

func pred(cat model.Category, confidence float64, reason string, tags ...string) model.CategoryPrediction {
	return model.CategoryPrediction{
		Category:      cat,
		Confidence:    confidence,
		Reasoning:     []string{reason},
		SuggestedTags: tags,
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		input    []model.CategoryPrediction
		wantCat  model.Category
		wantWhy  []string
		wantTags []string
		max      float64
		wantConf float64
	}{
		{
			name:     "no predictions falls back to other",
			max:      DefaultMaxConfidence,
			wantCat:  model.CategoryOther,
			wantConf: 0.1,
			wantWhy:  []string{"no patterns matched"},
		},
		{
			name:     "agreeing signals reinforce",
			max:      DefaultMaxConfidence,
			input:    []model.CategoryPrediction{pred(model.CategoryFood, 0.5, "a"), pred(model.CategoryFood, 0.5, "b")},
			wantCat:  model.CategoryFood,
			wantConf: 0.75,
			wantWhy:  []string{"a", "b"},
		},
		{
			name:     "capped at maximum",
			max:      DefaultMaxConfidence,
			input:    []model.CategoryPrediction{pred(model.CategoryFood, 0.9, "a"), pred(model.CategoryFood, 0.9, "b")},
			wantCat:  model.CategoryFood,
			wantConf: 0.95,
			wantWhy:  []string{"a", "b"},
		},
		{
			name:     "custom cap",
			max:      0.5,
			input:    []model.CategoryPrediction{pred(model.CategoryFood, 0.8, "a")},
			wantCat:  model.CategoryFood,
			wantConf: 0.5,
			wantWhy:  []string{"a"},
		},
		{
			name: "strongest group wins",
			max:  DefaultMaxConfidence,
			input: []model.CategoryPrediction{
				pred(model.CategoryShopping, 0.7, "shop"),
				pred(model.CategoryFood, 0.5, "food 1"),
				pred(model.CategoryFood, 0.5, "food 2"),
			},
			wantCat:  model.CategoryFood,
			wantConf: 0.75,
			wantWhy:  []string{"food 1", "food 2"},
		},
		{
			name:     "tie goes to first seen",
			max:      DefaultMaxConfidence,
			input:    []model.CategoryPrediction{pred(model.CategoryTravel, 0.4, "t"), pred(model.CategoryFood, 0.4, "f")},
			wantCat:  model.CategoryTravel,
			wantConf: 0.4,
			wantWhy:  []string{"t"},
		},
		{
			name: "tags are unioned in order",
			max:  DefaultMaxConfidence,
			input: []model.CategoryPrediction{
				pred(model.CategoryGroceries, 0.5, "a", "weekly", "store"),
				pred(model.CategoryGroceries, 0.5, "b", "store", "organic"),
			},
			wantCat:  model.CategoryGroceries,
			wantConf: 0.75,
			wantWhy:  []string{"a", "b"},
			wantTags: []string{"weekly", "store", "organic"},
		},
		{
			name:     "out of range inputs are clamped",
			max:      DefaultMaxConfidence,
			input:    []model.CategoryPrediction{pred(model.CategoryFood, -2, "neg"), pred(model.CategoryFood, 0.5, "half")},
			wantCat:  model.CategoryFood,
			wantConf: 0.5,
			wantWhy:  []string{"neg", "half"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CombineCapped(tt.input, tt.max)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantWhy, got.Reasoning)
			assert.Equal(t, tt.wantTags, got.SuggestedTags)
		})
	}
}

func TestCombine_UsesDefaultCap(t *testing.T) {
	got := Combine([]model.CategoryPrediction{pred(model.CategoryFood, 1, "sure")})
	assert.InDelta(t, DefaultMaxConfidence, got.Confidence, 1e-9)
}
