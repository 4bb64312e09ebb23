package rule

import (
	"testing"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func merchantRule(id, value string, category model.Category, priority int) model.Rule {
	return model.Rule{
		ID:        id,
		Name:      id,
		Kind:      model.RuleKindMerchant,
		Condition: model.Condition{Field: model.FieldMerchant, Operator: model.OpContains, Value: value},
		Action:    model.Action{Category: category, Confidence: 0.8},
		Priority:  priority,
		Accuracy:  1,
		IsActive:  true,
	}
}

func TestMatcher_ApplyRules_ConflictingPriorities(t *testing.T) {
	m := NewMatcher([]model.Rule{
		merchantRule("low", "trader", model.CategoryShopping, 10),
		merchantRule("high", "joe", model.CategoryGroceries, 100),
	}, WithClock(fixedClock))

	preds := m.ApplyRules(testObservation())
	require.Len(t, preds, 2)

	assert.Equal(t, model.CategoryGroceries, preds[0].Category)
	assert.InDelta(t, 0.8, preds[0].Confidence, 1e-9)
	assert.Equal(t, model.CategoryShopping, preds[1].Category)
	assert.InDelta(t, 0.8, preds[1].Confidence, 1e-9)

	for _, r := range m.Rules() {
		assert.Equal(t, 1, r.UsageCount)
		require.NotNil(t, r.LastUsed)
		assert.Equal(t, fixedNow, *r.LastUsed)
	}
}

func TestMatcher_ApplyRules_InvalidRegex(t *testing.T) {
	bad := merchantRule("bad", "", model.CategoryOther, 50)
	bad.Condition = model.Condition{Field: model.FieldMerchant, Operator: model.OpRegex, Value: "[a-"}

	m := NewMatcher([]model.Rule{bad, merchantRule("good", "trader", model.CategoryGroceries, 10)})

	var preds []model.CategoryPrediction
	assert.NotPanics(t, func() {
		preds = m.ApplyRules(testObservation())
	})
	require.Len(t, preds, 1)
	assert.Equal(t, model.CategoryGroceries, preds[0].Category)
}

func TestMatcher_ApplyRules_ScalesByAccuracy(t *testing.T) {
	r := merchantRule("half", "trader", model.CategoryGroceries, 10)
	r.Accuracy = 0.5
	inactive := merchantRule("off", "trader", model.CategoryShopping, 20)
	inactive.IsActive = false

	m := NewMatcher([]model.Rule{r, inactive})
	preds := m.ApplyRules(testObservation())

	require.Len(t, preds, 1)
	assert.InDelta(t, 0.4, preds[0].Confidence, 1e-9)
	assert.Contains(t, preds[0].Reasoning[0], `rule "half" matched`)
}

func TestMatcher_UpdateAccuracy(t *testing.T) {
	m := NewMatcher([]model.Rule{merchantRule("r1", "trader", model.CategoryGroceries, 10)})

	require.NoError(t, m.UpdateAccuracy("r1", true))
	r, err := m.Get("r1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.Accuracy, 1e-9)

	m.ApplyRules(testObservation())
	require.NoError(t, m.UpdateAccuracy("r1", false))
	r, err = m.Get("r1")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, r.Accuracy, 1e-9)

	err = m.UpdateAccuracy("missing", true)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRollingAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		old     float64
		prior   int
		correct bool
		want    float64
	}{
		{name: "first review correct", old: 0, prior: 0, correct: true, want: 1},
		{name: "first review wrong", old: 1, prior: 0, correct: false, want: 0},
		{name: "one correct of two", old: 1, prior: 1, correct: false, want: 0.5},
		{name: "negative prior", old: 0.3, prior: -4, correct: true, want: 1},
		{name: "long history", old: 0.9, prior: 9, correct: true, want: 0.91},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RollingAccuracy(tt.old, tt.prior, tt.correct), 1e-9)
		})
	}
}

func TestMatcher_Matching(t *testing.T) {
	m := NewMatcher([]model.Rule{
		merchantRule("a", "trader", model.CategoryGroceries, 10),
		merchantRule("b", "costco", model.CategoryGroceries, 10),
	})

	assert.Equal(t, []string{"a"}, m.Matching(testObservation()))
	r, err := m.Get("a")
	require.NoError(t, err)
	assert.Zero(t, r.UsageCount)
}

func TestMatcher_CRUD(t *testing.T) {
	m := NewMatcher(nil, WithClock(fixedClock))

	added, err := m.Add(merchantRule("", "costco", model.CategoryGroceries, 5))
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, fixedNow, added.CreatedAt)

	_, err = m.Add(merchantRule(added.ID, "costco", model.CategoryGroceries, 5))
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	invalid := merchantRule("", "x", "", 5)
	_, err = m.Add(invalid)
	assert.ErrorIs(t, err, model.ErrInvalidRule)

	_, err = m.Add(merchantRule("top", "target", model.CategoryShopping, 50))
	require.NoError(t, err)
	rules := m.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "top", rules[0].ID)

	updated := added
	updated.Priority = 99
	require.NoError(t, m.Update(updated))
	assert.Equal(t, added.ID, m.Rules()[0].ID)

	assert.ErrorIs(t, m.Update(merchantRule("ghost", "x", model.CategoryOther, 1)), common.ErrNotFound)

	require.NoError(t, m.Delete("top"))
	assert.ErrorIs(t, m.Delete("top"), common.ErrNotFound)
	assert.Len(t, m.Rules(), 1)
}

func TestMatcher_Prune(t *testing.T) {
	keep := merchantRule("keep", "a", model.CategoryOther, 1)
	drop := merchantRule("drop", "b", model.CategoryOther, 1)
	drop.Accuracy = 0.1

	m := NewMatcher([]model.Rule{keep, drop})
	removed := m.Prune(func(r model.Rule) bool { return r.Accuracy < 0.3 })

	require.Len(t, removed, 1)
	assert.Equal(t, "drop", removed[0].ID)
	require.Len(t, m.Rules(), 1)
	assert.Equal(t, "keep", m.Rules()[0].ID)
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules(fixedNow)
	require.NotEmpty(t, rules)

	m := NewMatcher(rules)
	ordered := m.Rules()
	priorities := make([]int, len(ordered))
	for i, r := range ordered {
		require.NoError(t, r.Validate())
		assert.True(t, r.IsActive)
		assert.False(t, r.IsUserCreated)
		priorities[i] = r.Priority
	}
	assert.Equal(t, []int{100, 90, 80, 80}, priorities)

	preds := m.ApplyRules(testObservation())
	require.NotEmpty(t, preds)
	assert.Equal(t, model.CategoryGroceries, preds[0].Category)
}

func TestMatcher_Preview(t *testing.T) {
	m := NewMatcher([]model.Rule{merchantRule("a", "trader", model.CategoryGroceries, 10)})

	preds := m.Preview(testObservation())
	require.Len(t, preds, 1)
	assert.Equal(t, model.CategoryGroceries, preds[0].Category)

	r, err := m.Get("a")
	require.NoError(t, err)
	assert.Zero(t, r.UsageCount)
	assert.Nil(t, r.LastUsed)
}
