package rule

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/shopspring/decimal"
)

// maxCachedRegexes bounds the compiled regex cache. A full cache is dropped
// and refilled on demand.
const maxCachedRegexes = 256

// Evaluator tests conditions against observations. Compiled regular
// expressions are cached by pattern string; patterns that fail to compile are
// cached as misses and logged once.
type Evaluator struct {
	compiled map[string]*regexp.Regexp
	mu       sync.RWMutex
}

// NewEvaluator creates an evaluator with an empty regex cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		compiled: make(map[string]*regexp.Regexp),
	}
}

// Evaluate reports whether the observation satisfies the condition. It never
// panics or returns an error; malformed conditions are non-matches.
func (e *Evaluator) Evaluate(cond model.Condition, obs model.Observation) bool {
	text, number, numeric := resolveField(cond.Field, obs)

	switch cond.Operator {
	case model.OpContains:
		return cond.Value != "" && strings.Contains(strings.ToLower(text), strings.ToLower(cond.Value))
	case model.OpStartsWith:
		return cond.Value != "" && strings.HasPrefix(strings.ToLower(text), strings.ToLower(cond.Value))
	case model.OpEndsWith:
		return cond.Value != "" && strings.HasSuffix(strings.ToLower(text), strings.ToLower(cond.Value))
	case model.OpEquals:
		if cond.Field == model.FieldAmount {
			return amountEquals(obs, cond.Value)
		}
		return text == cond.Value
	case model.OpRegex:
		re := e.regex(cond.Value)
		return re != nil && re.MatchString(text)
	case model.OpRange:
		return cond.Range != nil && numeric && cond.Range.Contains(number)
	}
	return false
}

// amountEquals compares numerically so "42.00" matches an amount of 42.
func amountEquals(obs model.Observation, value string) bool {
	want, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return obs.Amount.Equal(want)
}

// resolveField maps a condition field to the observation attribute. The
// numeric result is only meaningful when ok is true.
func resolveField(field model.Field, obs model.Observation) (text string, number float64, ok bool) {
	switch field {
	case model.FieldMerchant:
		return obs.Merchant, 0, false
	case model.FieldDescription:
		return obs.Description, 0, false
	case model.FieldAmount:
		return obs.Amount.String(), obs.AmountFloat(), true
	case model.FieldDate:
		if obs.Date.IsZero() {
			return "", 0, false
		}
		return obs.Date.Format("2006-01-02"), 0, false
	}
	return "", 0, false
}

func (e *Evaluator) regex(pattern string) *regexp.Regexp {
	e.mu.RLock()
	re, seen := e.compiled[pattern]
	e.mu.RUnlock()
	if seen {
		return re
	}

	re, err := common.CompileFold(pattern)
	if err != nil {
		slog.Warn("Invalid rule regex treated as non-match",
			"pattern", pattern,
			"error", err)
		re = nil
	}

	e.mu.Lock()
	if len(e.compiled) >= maxCachedRegexes {
		e.compiled = make(map[string]*regexp.Regexp, maxCachedRegexes)
	}
	e.compiled[pattern] = re
	e.mu.Unlock()
	return re
}
