// Package heuristic provides lightweight, table-driven category signals for
// merchant names, description keywords, amount magnitude and time of day.
package heuristic

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
)

// Signal confidences.
const (
	merchantExactConfidence   = 0.9
	merchantOverlapConfidence = 0.7
	keywordBaseConfidence     = 0.4
	keywordStepConfidence     = 0.1
	keywordMaxConfidence      = 0.8
	largeAmountConfidence     = 0.3
	smallAmountConfidence     = 0.2
	dailyAmountConfidence     = 0.3
	weekendConfidence         = 0.4
	breakfastConfidence       = 0.3
	lunchConfidence           = 0.35
	dinnerConfidence          = 0.4
	lateNightConfidence       = 0.3
)

// minTokenLength ignores short tokens such as initials during overlap matching.
const minTokenLength = 3

// Thresholds are the amount bands the amount and time signals use.
type Thresholds struct {
	LargeAmount float64
	SmallAmount float64
	DailyMin    float64
	DailyMax    float64
	LeisureMin  float64
	LeisureMax  float64
}

// DefaultThresholds returns the standard amount bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LargeAmount: 1000,
		SmallAmount: 5,
		DailyMin:    20,
		DailyMax:    100,
		LeisureMin:  20,
		LeisureMax:  200,
	}
}

type merchantEntry struct {
	name     string
	category model.Category
	tokens   []string
}

// Predictor generates heuristic category signals. It is read-only after
// construction and safe for concurrent use.
type Predictor struct {
	keywords   map[string]model.Category
	merchants  []merchantEntry
	thresholds Thresholds
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithMerchants replaces the merchant table.
func WithMerchants(entries []MerchantEntry) Option {
	return func(p *Predictor) {
		p.merchants = compileMerchants(entries)
	}
}

// WithKeywords replaces the keyword table.
func WithKeywords(keywords map[string]model.Category) Option {
	return func(p *Predictor) {
		p.keywords = make(map[string]model.Category, len(keywords))
		for k, v := range keywords {
			p.keywords[strings.ToLower(k)] = v
		}
	}
}

// WithThresholds replaces the amount bands.
func WithThresholds(t Thresholds) Option {
	return func(p *Predictor) {
		p.thresholds = t
	}
}

// NewPredictor creates a predictor with the default tables.
func NewPredictor(opts ...Option) *Predictor {
	p := &Predictor{
		merchants:  compileMerchants(DefaultMerchants()),
		keywords:   DefaultKeywords(),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func compileMerchants(entries []MerchantEntry) []merchantEntry {
	compiled := make([]merchantEntry, 0, len(entries))
	for _, e := range entries {
		name := common.NormalizeText(e.Name)
		if name == "" {
			continue
		}
		compiled = append(compiled, merchantEntry{
			name:     name,
			category: e.Category,
			tokens:   significantTokens(name),
		})
	}
	return compiled
}

// Predict runs every signal and returns the ones that fired.
func (p *Predictor) Predict(obs model.Observation) []model.CategoryPrediction {
	var out []model.CategoryPrediction
	for _, signal := range []func(model.Observation) (model.CategoryPrediction, bool){
		p.Merchant,
		p.Keyword,
		p.Amount,
		p.Time,
	} {
		if pred, ok := signal(obs); ok {
			out = append(out, pred)
		}
	}
	return out
}

// Merchant matches the merchant name against the merchant table. A table
// entry contained in the merchant wins outright; otherwise the entry sharing at
// least half of the merchant's tokens is used.
func (p *Predictor) Merchant(obs model.Observation) (model.CategoryPrediction, bool) {
	merchant := common.NormalizeText(obs.Merchant)
	if merchant == "" {
		return model.CategoryPrediction{}, false
	}

	var exact *merchantEntry
	for i := range p.merchants {
		entry := &p.merchants[i]
		if strings.Contains(merchant, entry.name) && (exact == nil || len(entry.name) > len(exact.name)) {
			exact = entry
		}
	}
	if exact != nil {
		return model.CategoryPrediction{
			Category:   exact.category,
			Confidence: merchantExactConfidence,
			Reasoning:  []string{fmt.Sprintf("merchant %q is a known %s merchant", exact.name, exact.category)},
		}, true
	}

	tokens := significantTokens(merchant)
	if len(tokens) == 0 {
		return model.CategoryPrediction{}, false
	}

	var (
		best      *merchantEntry
		bestCount int
	)
	for i := range p.merchants {
		entry := &p.merchants[i]
		count := overlap(tokens, entry.tokens)
		if count*2 >= len(tokens) && count > bestCount {
			best = entry
			bestCount = count
		}
	}
	if best == nil {
		return model.CategoryPrediction{}, false
	}

	return model.CategoryPrediction{
		Category:   best.category,
		Confidence: merchantOverlapConfidence,
		Reasoning:  []string{fmt.Sprintf("merchant %q resembles known %s merchant %q", merchant, best.category, best.name)},
	}, true
}

// Keyword counts description tokens found in the keyword table and picks the
// category with the most hits.
func (p *Predictor) Keyword(obs model.Observation) (model.CategoryPrediction, bool) {
	hits := make(map[model.Category]int)
	matched := make(map[model.Category][]string)
	for _, token := range common.Tokenize(obs.Description) {
		if cat, ok := p.keywords[token]; ok {
			hits[cat]++
			matched[cat] = append(matched[cat], token)
		}
	}
	if len(hits) == 0 {
		return model.CategoryPrediction{}, false
	}

	winner, count := topCategory(hits)
	return model.CategoryPrediction{
		Category:   winner,
		Confidence: min(keywordMaxConfidence, keywordBaseConfidence+keywordStepConfidence*float64(count)),
		Reasoning: []string{fmt.Sprintf("description keywords [%s] suggest %s",
			strings.Join(matched[winner], ", "), winner)},
	}, true
}

// Amount applies a weak magnitude prior.
func (p *Predictor) Amount(obs model.Observation) (model.CategoryPrediction, bool) {
	amount := obs.AmountFloat()
	t := p.thresholds

	switch {
	case amount > t.LargeAmount:
		return model.CategoryPrediction{
			Category:   model.CategoryHousing,
			Confidence: largeAmountConfidence,
			Reasoning:  []string{fmt.Sprintf("large amount %.2f suggests an infrequent expense", amount)},
		}, true
	case amount < t.SmallAmount:
		return model.CategoryPrediction{
			Category:   model.CategoryOther,
			Confidence: smallAmountConfidence,
			Reasoning:  []string{fmt.Sprintf("small amount %.2f", amount)},
		}, true
	case amount >= t.DailyMin && amount <= t.DailyMax:
		return model.CategoryPrediction{
			Category:   model.CategoryFood,
			Confidence: dailyAmountConfidence,
			Reasoning:  []string{fmt.Sprintf("amount %.2f is typical of daily spending", amount)},
		}, true
	}
	return model.CategoryPrediction{}, false
}

// Time applies weekend and time-of-day priors. Hour-based signals are skipped
// for dates without a time of day.
func (p *Predictor) Time(obs model.Observation) (model.CategoryPrediction, bool) {
	if obs.Date.IsZero() {
		return model.CategoryPrediction{}, false
	}

	amount := obs.AmountFloat()
	weekday := obs.Date.Weekday()
	if (weekday == time.Saturday || weekday == time.Sunday) &&
		amount >= p.thresholds.LeisureMin && amount <= p.thresholds.LeisureMax {
		return model.CategoryPrediction{
			Category:   model.CategoryEntertainment,
			Confidence: weekendConfidence,
			Reasoning:  []string{fmt.Sprintf("weekend spending of %.2f", amount)},
		}, true
	}

	if !obs.HasTimeOfDay() {
		return model.CategoryPrediction{}, false
	}

	hour := obs.Date.Hour()
	switch {
	case hour >= 7 && hour < 10:
		return mealPrediction("breakfast", breakfastConfidence), true
	case hour >= 11 && hour < 14:
		return mealPrediction("lunch", lunchConfidence), true
	case hour >= 17 && hour < 21:
		return mealPrediction("dinner", dinnerConfidence), true
	case hour >= 22 || hour < 4:
		return model.CategoryPrediction{
			Category:   model.CategoryEntertainment,
			Confidence: lateNightConfidence,
			Reasoning:  []string{fmt.Sprintf("late-night purchase at %02d:00", hour)},
		}, true
	}
	return model.CategoryPrediction{}, false
}

func mealPrediction(meal string, confidence float64) model.CategoryPrediction {
	return model.CategoryPrediction{
		Category:   model.CategoryFood,
		Confidence: confidence,
		Reasoning:  []string{fmt.Sprintf("purchase time falls in the %s window", meal)},
	}
}

// topCategory returns the category with the most hits, breaking ties by
// category name so results do not depend on map order.
func topCategory(hits map[model.Category]int) (model.Category, int) {
	cats := make([]model.Category, 0, len(hits))
	for cat := range hits {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		if hits[cats[i]] != hits[cats[j]] {
			return hits[cats[i]] > hits[cats[j]]
		}
		return cats[i] < cats[j]
	})
	return cats[0], hits[cats[0]]
}

func significantTokens(s string) []string {
	var out []string
	for _, token := range common.Tokenize(s) {
		if len(token) >= minTokenLength && !common.IsStopword(token) {
			out = append(out, token)
		}
	}
	return out
}

// overlap counts merchant tokens that appear in, or contain, an entry token.
func overlap(tokens, entryTokens []string) int {
	count := 0
	for _, t := range tokens {
		for _, e := range entryTokens {
			if strings.Contains(e, t) || strings.Contains(t, e) {
				count++
				break
			}
		}
	}
	return count
}
