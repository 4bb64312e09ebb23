package heuristic

import (
	"testing"
	"time"

	"github.com/Veraticus/saffron/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(merchant, description, amount string, date time.Time) model.Observation {
	return model.Observation{
		Merchant:    merchant,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
	}
}

// 2024-03-18 is a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2024, 3, 18, hour, minute, 0, 0, time.UTC)
}

func TestPredictor_Merchant(t *testing.T) {
	p := NewPredictor()

	tests := []struct {
		name       string
		merchant   string
		wantCat    model.Category
		wantConf   float64
		wantSignal bool
	}{
		{
			name:       "exact substring",
			merchant:   "WALMART SUPERCENTER #123",
			wantCat:    model.CategoryShopping,
			wantConf:   0.9,
			wantSignal: true,
		},
		{
			name:       "longest entry wins",
			merchant:   "Uber Eats San Francisco",
			wantCat:    model.CategoryFood,
			wantConf:   0.9,
			wantSignal: true,
		},
		{
			name:       "token overlap",
			merchant:   "Foods Whole",
			wantCat:    model.CategoryGroceries,
			wantConf:   0.7,
			wantSignal: true,
		},
		{
			name:       "unknown merchant",
			merchant:   "Zyx Qwv",
			wantSignal: false,
		},
		{
			name:       "missing merchant",
			merchant:   "",
			wantSignal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, ok := p.Merchant(obs(tt.merchant, "", "10", monday(15, 0)))
			require.Equal(t, tt.wantSignal, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantCat, pred.Category)
			assert.InDelta(t, tt.wantConf, pred.Confidence, 1e-9)
			assert.NotEmpty(t, pred.Reasoning)
		})
	}
}

func TestPredictor_Keyword(t *testing.T) {
	p := NewPredictor()

	tests := []struct {
		name        string
		description string
		wantCat     model.Category
		wantConf    float64
		wantSignal  bool
	}{
		{
			name:        "two hits",
			description: "Dinner and pizza at Joe",
			wantCat:     model.CategoryFood,
			wantConf:    0.6,
			wantSignal:  true,
		},
		{
			name:        "confidence capped",
			description: "coffee coffee coffee coffee coffee",
			wantCat:     model.CategoryFood,
			wantConf:    0.8,
			wantSignal:  true,
		},
		{
			name:        "majority category wins",
			description: "hotel flight and lunch",
			wantCat:     model.CategoryTravel,
			wantConf:    0.6,
			wantSignal:  true,
		},
		{
			name:        "no keywords",
			description: "transfer 4411",
			wantSignal:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, ok := p.Keyword(obs("", tt.description, "10", monday(15, 0)))
			require.Equal(t, tt.wantSignal, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantCat, pred.Category)
			assert.InDelta(t, tt.wantConf, pred.Confidence, 1e-9)
		})
	}
}

func TestPredictor_Amount(t *testing.T) {
	p := NewPredictor()

	tests := []struct {
		name       string
		amount     string
		wantCat    model.Category
		wantConf   float64
		wantSignal bool
	}{
		{name: "large", amount: "1500", wantCat: model.CategoryHousing, wantConf: 0.3, wantSignal: true},
		{name: "small", amount: "3.25", wantCat: model.CategoryOther, wantConf: 0.2, wantSignal: true},
		{name: "daily band", amount: "50", wantCat: model.CategoryFood, wantConf: 0.3, wantSignal: true},
		{name: "band edge inclusive", amount: "100", wantCat: model.CategoryFood, wantConf: 0.3, wantSignal: true},
		{name: "between bands", amount: "150", wantSignal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, ok := p.Amount(obs("", "", tt.amount, monday(15, 0)))
			require.Equal(t, tt.wantSignal, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantCat, pred.Category)
			assert.InDelta(t, tt.wantConf, pred.Confidence, 1e-9)
		})
	}
}

func TestPredictor_Time(t *testing.T) {
	p := NewPredictor()
	saturday := time.Date(2024, 3, 16, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		date       time.Time
		name       string
		amount     string
		wantCat    model.Category
		wantConf   float64
		wantSignal bool
	}{
		{name: "weekend leisure", date: saturday, amount: "50", wantCat: model.CategoryEntertainment, wantConf: 0.4, wantSignal: true},
		{name: "breakfast", date: monday(8, 30), amount: "150", wantCat: model.CategoryFood, wantConf: 0.3, wantSignal: true},
		{name: "lunch", date: monday(12, 0), amount: "150", wantCat: model.CategoryFood, wantConf: 0.35, wantSignal: true},
		{name: "dinner", date: monday(19, 0), amount: "150", wantCat: model.CategoryFood, wantConf: 0.4, wantSignal: true},
		{name: "late night", date: monday(23, 15), amount: "150", wantCat: model.CategoryEntertainment, wantConf: 0.3, wantSignal: true},
		{name: "afternoon", date: monday(15, 0), amount: "150", wantSignal: false},
		{name: "date without time of day", date: monday(0, 0), amount: "150", wantSignal: false},
		{name: "zero date", date: time.Time{}, amount: "50", wantSignal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, ok := p.Time(obs("", "", tt.amount, tt.date))
			require.Equal(t, tt.wantSignal, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantCat, pred.Category)
			assert.InDelta(t, tt.wantConf, pred.Confidence, 1e-9)
		})
	}
}

func TestPredictor_Predict(t *testing.T) {
	p := NewPredictor()

	preds := p.Predict(obs("Starbucks #42", "coffee", "4.50", monday(8, 30)))
	require.Len(t, preds, 4)

	for _, pred := range preds {
		assert.GreaterOrEqual(t, pred.Confidence, 0.0)
		assert.LessOrEqual(t, pred.Confidence, 1.0)
		assert.NotEmpty(t, pred.Reasoning)
	}

	assert.Empty(t, p.Predict(obs("", "", "150", monday(15, 0))))
}

func TestPredictor_Options(t *testing.T) {
	p := NewPredictor(
		WithMerchants([]MerchantEntry{{Name: "Foo Mart", Category: model.CategoryGroceries}}),
		WithKeywords(map[string]model.Category{"Widget": model.CategoryShopping}),
		WithThresholds(Thresholds{LargeAmount: 50, SmallAmount: 1, DailyMin: 2, DailyMax: 3}),
	)

	pred, ok := p.Merchant(obs("FOO MART 17", "", "1", monday(15, 0)))
	require.True(t, ok)
	assert.Equal(t, model.CategoryGroceries, pred.Category)

	_, ok = p.Merchant(obs("Target", "", "1", monday(15, 0)))
	assert.False(t, ok)

	pred, ok = p.Keyword(obs("", "one widget", "1", monday(15, 0)))
	require.True(t, ok)
	assert.Equal(t, model.CategoryShopping, pred.Category)

	pred, ok = p.Amount(obs("", "", "75", monday(15, 0)))
	require.True(t, ok)
	assert.Equal(t, model.CategoryHousing, pred.Category)
}
