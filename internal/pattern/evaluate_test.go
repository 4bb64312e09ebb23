package pattern

import (
	"testing"
	"time"

	"github.com/Veraticus/saffron/internal/model"
	"github.com/Veraticus/saffron/internal/rule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newObs(merchant, description, amount string, date time.Time) model.Observation {
	return model.Observation{
		Merchant:    merchant,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
	}
}

// 2024-03-18 is a Monday.
func monday(hour int) time.Time {
	return time.Date(2024, 3, 18, hour, 0, 0, 0, time.UTC)
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{a: "kitten", b: "sitting", want: 1 - 3.0/7.0},
		{a: "Blue Bottle", b: "blue bottle", want: 1},
		{a: "abc", b: "", want: 0},
		{a: "", b: "", want: 0},
		{a: "abcd", b: "wxyz", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_TruncatesLongInput(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	assert.InDelta(t, 1.0, Similarity(string(long), string(long[:200])), 1e-9)
}

func TestScore(t *testing.T) {
	evaluator := rule.NewEvaluator()
	bracket := model.Range{Min: 10, Max: 50}

	tests := []struct {
		payload model.PatternPayload
		name    string
		obs     model.Observation
		want    float64
	}{
		{
			name:    "merchant containment",
			payload: model.MerchantPayload{Merchant: "foo mart"},
			obs:     newObs("FOO MART #12", "", "5", monday(15)),
			want:    1,
		},
		{
			name:    "merchant reverse containment",
			payload: model.MerchantPayload{Merchant: "foo mart downtown"},
			obs:     newObs("Foo Mart", "", "5", monday(15)),
			want:    1,
		},
		{
			name:    "merchant similarity",
			payload: model.MerchantPayload{Merchant: "bluebottle"},
			obs:     newObs("blu bottle", "", "5", monday(15)),
			want:    0.9,
		},
		{
			name:    "merchant dissimilar",
			payload: model.MerchantPayload{Merchant: "bluebottle"},
			obs:     newObs("hardware depot", "", "5", monday(15)),
			want:    0,
		},
		{
			name:    "merchant missing",
			payload: model.MerchantPayload{Merchant: "bluebottle"},
			obs:     newObs("", "bluebottle", "5", monday(15)),
			want:    0,
		},
		{
			name:    "keyword fraction",
			payload: model.KeywordPayload{Keywords: []string{"coffee", "pastry"}},
			obs:     newObs("", "Coffee and bagel", "5", monday(15)),
			want:    0.5,
		},
		{
			name:    "amount inside",
			payload: model.AmountPayload{Range: model.Range{Min: 10, Max: 20}},
			obs:     newObs("", "", "15", monday(15)),
			want:    0.7,
		},
		{
			name:    "amount outside",
			payload: model.AmountPayload{Range: model.Range{Min: 10, Max: 20}},
			obs:     newObs("", "", "25", monday(15)),
			want:    0,
		},
		{
			name:    "time slot weekday and hour",
			payload: model.TimeSlotPayload{Weekday: time.Monday, Slot: 2},
			obs:     newObs("", "", "5", monday(9)),
			want:    0.7,
		},
		{
			name:    "time slot weekday only",
			payload: model.TimeSlotPayload{Weekday: time.Monday, Slot: 2},
			obs:     newObs("", "", "5", monday(15)),
			want:    0.3,
		},
		{
			name:    "time slot hour only",
			payload: model.TimeSlotPayload{Weekday: time.Tuesday, Slot: 2},
			obs:     newObs("", "", "5", monday(9)),
			want:    0.4,
		},
		{
			name:    "time slot date without time of day",
			payload: model.TimeSlotPayload{Weekday: time.Monday, Slot: 0},
			obs:     newObs("", "", "5", monday(0)),
			want:    0.3,
		},
		{
			name: "composite partial",
			payload: model.CompositePayload{Conditions: []model.Condition{
				{Field: model.FieldMerchant, Operator: model.OpContains, Value: "acme"},
				{Field: model.FieldAmount, Operator: model.OpRange, Range: &bracket},
			}},
			obs:  newObs("ACME Corp", "", "100", monday(15)),
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.Pattern{Payload: tt.payload, Category: model.CategoryOther, Accuracy: 1}
			assert.InDelta(t, tt.want, Score(p, tt.obs, evaluator), 1e-9)
		})
	}
}
