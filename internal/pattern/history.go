package pattern

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/google/uuid"
)

// trainingKeywords bounds the keywords taken from one description.
const trainingKeywords = 20

// Thresholds are the support and purity requirements bulk training applies
// per pattern kind.
type Thresholds struct {
	MerchantMinSupport  int
	MerchantMinShare    float64
	KeywordMinSupport   int
	KeywordMinShare     float64
	AmountMinSamples    int
	TimeSlotMinSamples  int
	TimeSlotMinShare    float64
	CompositeMinSupport int
}

// DefaultThresholds returns the standard training thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MerchantMinSupport:  3,
		MerchantMinShare:    0.7,
		KeywordMinSupport:   5,
		KeywordMinShare:     0.75,
		AmountMinSamples:    10,
		TimeSlotMinSamples:  10,
		TimeSlotMinShare:    0.6,
		CompositeMinSupport: 3,
	}
}

// TrainingSummary reports what a training pass produced.
type TrainingSummary struct {
	ByKind       map[model.PatternKind]int
	Samples      int
	Patterns     int
	ModelTrained bool
}

func summarize(patterns []model.Pattern) TrainingSummary {
	s := TrainingSummary{
		ByKind:   make(map[model.PatternKind]int),
		Patterns: len(patterns),
	}
	for _, p := range patterns {
		s.ByKind[p.Kind()]++
	}
	return s
}

// tally counts categories for one candidate payload.
type tally struct {
	payload  model.PatternPayload
	counts   map[model.Category]int
	examples map[model.Category][]string
	order    []model.Category
	total    int
}

func newTally(payload model.PatternPayload) *tally {
	return &tally{
		payload:  payload,
		counts:   make(map[model.Category]int),
		examples: make(map[model.Category][]string),
	}
}

func (t *tally) add(category model.Category, description string) {
	if _, seen := t.counts[category]; !seen {
		t.order = append(t.order, category)
	}
	t.counts[category]++
	t.total++
	if description != "" && len(t.examples[category]) < MaxExamples {
		t.examples[category] = append(t.examples[category], description)
	}
}

// top returns the majority category; ties go to the category seen first.
func (t *tally) top() (model.Category, int) {
	var (
		best  model.Category
		count int
	)
	for _, cat := range t.order {
		if t.counts[cat] > count {
			best, count = cat, t.counts[cat]
		}
	}
	return best, count
}

// pattern builds a pattern when the tally meets the support and share floor.
func (t *tally) pattern(minSupport int, minShare float64, now time.Time) (model.Pattern, bool) {
	if t.total < minSupport {
		return model.Pattern{}, false
	}
	category, count := t.top()
	share := model.Ratio(count, t.total)
	if share < minShare {
		return model.Pattern{}, false
	}

	p := model.Pattern{
		ID:          uuid.NewString(),
		Payload:     t.payload,
		Category:    category,
		Confidence:  share,
		Accuracy:    share,
		Occurrences: count,
		LastSeen:    now,
	}
	for _, ex := range t.examples[category] {
		p.AddExample(ex, MaxExamples)
	}
	return p, true
}

// tallies keeps candidate tallies in first-seen order so synthesis output is
// deterministic.
type tallies struct {
	byKey map[string]*tally
	keys  []string
}

func newTallies() *tallies {
	return &tallies{byKey: make(map[string]*tally)}
}

func (ts *tallies) get(payload model.PatternPayload) *tally {
	key := model.Pattern{Payload: payload}.Key()
	t, ok := ts.byKey[key]
	if !ok {
		t = newTally(payload)
		ts.byKey[key] = t
		ts.keys = append(ts.keys, key)
	}
	return t
}

func (ts *tallies) patterns(minSupport int, minShare float64, now time.Time) []model.Pattern {
	var out []model.Pattern
	for _, key := range ts.keys {
		if p, ok := ts.byKey[key].pattern(minSupport, minShare, now); ok {
			out = append(out, p)
		}
	}
	return out
}

// Synthesize derives the full pattern set from labeled observations. Each
// pattern's confidence and accuracy start at the share of its supporting
// observations that carry its category.
func Synthesize(samples []model.LabeledObservation, th Thresholds, now time.Time) []model.Pattern {
	var out []model.Pattern
	out = append(out, merchantPatterns(samples, th, now)...)
	out = append(out, keywordPatterns(samples, th, now)...)
	out = append(out, amountPatterns(samples, th, now)...)
	out = append(out, timeSlotPatterns(samples, th, now)...)
	out = append(out, compositePatterns(samples, th, now)...)
	return out
}

func merchantPatterns(samples []model.LabeledObservation, th Thresholds, now time.Time) []model.Pattern {
	ts := newTallies()
	for _, s := range samples {
		merchant := common.NormalizeText(s.Merchant)
		if merchant == "" {
			continue
		}
		ts.get(model.MerchantPayload{Merchant: merchant}).add(s.Category, s.Description)
	}
	return ts.patterns(th.MerchantMinSupport, th.MerchantMinShare, now)
}

// keywordPatterns counts each keyword at most once per observation.
func keywordPatterns(samples []model.LabeledObservation, th Thresholds, now time.Time) []model.Pattern {
	ts := newTallies()
	for _, s := range samples {
		for _, kw := range common.Keywords(s.Description, trainingKeywords) {
			ts.get(model.KeywordPayload{Keywords: []string{kw}}).add(s.Category, s.Description)
		}
	}
	return ts.patterns(th.KeywordMinSupport, th.KeywordMinShare, now)
}

// amountPatterns emits the interquartile envelope of each category with
// enough samples. Confidence is the envelope's precision across all samples.
func amountPatterns(samples []model.LabeledObservation, th Thresholds, now time.Time) []model.Pattern {
	amounts := make(map[model.Category][]float64)
	var order []model.Category
	for _, s := range samples {
		if _, seen := amounts[s.Category]; !seen {
			order = append(order, s.Category)
		}
		amounts[s.Category] = append(amounts[s.Category], s.AmountFloat())
	}

	var out []model.Pattern
	for _, cat := range order {
		values := amounts[cat]
		if len(values) < th.AmountMinSamples {
			continue
		}
		sort.Float64s(values)
		envelope := model.Range{
			Min: roundCents(quantile(values, 0.25)),
			Max: roundCents(quantile(values, 0.75)),
		}

		inside, own := 0, 0
		for _, s := range samples {
			if envelope.Contains(s.AmountFloat()) {
				inside++
				if s.Category == cat {
					own++
				}
			}
		}
		precision := model.Ratio(own, inside)

		out = append(out, model.Pattern{
			ID:          uuid.NewString(),
			Payload:     model.AmountPayload{Range: envelope},
			Category:    cat,
			Confidence:  precision,
			Accuracy:    precision,
			Occurrences: own,
			LastSeen:    now,
		})
	}
	return out
}

func timeSlotPatterns(samples []model.LabeledObservation, th Thresholds, now time.Time) []model.Pattern {
	ts := newTallies()
	for _, s := range samples {
		if s.Date.IsZero() || !s.HasTimeOfDay() {
			continue
		}
		payload := model.TimeSlotPayload{
			Weekday: s.Date.Weekday(),
			Slot:    s.Date.Hour() / model.HoursPerSlot,
		}
		ts.get(payload).add(s.Category, s.Description)
	}
	return ts.patterns(th.TimeSlotMinSamples, th.TimeSlotMinShare, now)
}

// compositePatterns pairs a merchant with its amount bracket and keeps pairs
// that map to exactly one category.
func compositePatterns(samples []model.LabeledObservation, th Thresholds, now time.Time) []model.Pattern {
	ts := newTallies()
	for _, s := range samples {
		merchant := common.NormalizeText(s.Merchant)
		if merchant == "" {
			continue
		}
		bracket := amountBracket(s.AmountFloat())
		payload := model.CompositePayload{Conditions: []model.Condition{
			{Field: model.FieldMerchant, Operator: model.OpContains, Value: merchant},
			{Field: model.FieldAmount, Operator: model.OpRange, Range: &bracket},
		}}
		ts.get(payload).add(s.Category, s.Description)
	}
	return ts.patterns(th.CompositeMinSupport, 1, now)
}

var bracketBounds = []float64{10, 50, 100, 500, 1000}

// amountBracket returns the coarse amount band containing amount.
func amountBracket(amount float64) model.Range {
	lower := 0.0
	for _, upper := range bracketBounds {
		if amount < upper {
			return model.Range{Min: lower, Max: upper}
		}
		lower = upper
	}
	return model.Range{Min: lower, Max: math.MaxFloat64}
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
