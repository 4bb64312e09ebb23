package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPattern is returned for patterns with a missing or unknown payload.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternKind identifies the statistical shape a pattern captures.
type PatternKind string

// Pattern kinds.
const (
	PatternKindMerchant  PatternKind = "merchant_category"
	PatternKindKeywords  PatternKind = "keyword_set"
	PatternKindAmount    PatternKind = "amount_range"
	PatternKindTimeSlot  PatternKind = "time_slot"
	PatternKindComposite PatternKind = "composite"
)

// HoursPerSlot is the width of a time-slot bucket.
const HoursPerSlot = 4

// PatternPayload is the kind-specific part of a pattern. The set of
// implementations is closed to this package.
type PatternPayload interface {
	Kind() PatternKind
	Describe() string
	isPayload()
}

// MerchantPayload associates a normalized merchant name with a category.
type MerchantPayload struct {
	Merchant string `json:"merchant"`
}

// KeywordPayload associates a set of description keywords with a category.
type KeywordPayload struct {
	Keywords []string `json:"keywords"`
}

// AmountPayload associates an amount envelope with a category.
type AmountPayload struct {
	Range Range `json:"range"`
}

// TimeSlotPayload associates a weekday and a four-hour bucket with a category.
type TimeSlotPayload struct {
	Weekday time.Weekday `json:"weekday"`
	Slot    int          `json:"slot"`
}

// CompositePayload associates a conjunction of simple conditions with a category.
type CompositePayload struct {
	Conditions []Condition `json:"conditions"`
}

func (MerchantPayload) Kind() PatternKind  { return PatternKindMerchant }
func (KeywordPayload) Kind() PatternKind   { return PatternKindKeywords }
func (AmountPayload) Kind() PatternKind    { return PatternKindAmount }
func (TimeSlotPayload) Kind() PatternKind  { return PatternKindTimeSlot }
func (CompositePayload) Kind() PatternKind { return PatternKindComposite }

func (MerchantPayload) isPayload()  {}
func (KeywordPayload) isPayload()   {}
func (AmountPayload) isPayload()    {}
func (TimeSlotPayload) isPayload()  {}
func (CompositePayload) isPayload() {}

func (p MerchantPayload) Describe() string {
	return fmt.Sprintf("merchant %q", p.Merchant)
}

func (p KeywordPayload) Describe() string {
	return fmt.Sprintf("keywords [%s]", strings.Join(p.Keywords, ", "))
}

func (p AmountPayload) Describe() string {
	return fmt.Sprintf("amount between %.2f and %.2f", p.Range.Min, p.Range.Max)
}

// Contains reports whether the hour falls inside the slot.
func (p TimeSlotPayload) Contains(hour int) bool {
	return hour/HoursPerSlot == p.Slot
}

func (p TimeSlotPayload) Describe() string {
	start := p.Slot * HoursPerSlot
	return fmt.Sprintf("%s %02d:00-%02d:00", p.Weekday, start, start+HoursPerSlot)
}

func (p CompositePayload) Describe() string {
	parts := make([]string, len(p.Conditions))
	for i, c := range p.Conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, " and ")
}

// Pattern is a statistically derived condition to category association.
type Pattern struct {
	LastSeen    time.Time      `json:"last_seen"`
	Payload     PatternPayload `json:"-"`
	ID          string         `json:"id"`
	Category    Category       `json:"category"`
	Examples    []string       `json:"examples,omitempty"`
	Confidence  float64        `json:"confidence"`
	Accuracy    float64        `json:"accuracy"`
	Occurrences int            `json:"occurrences"`
}

// Kind returns the payload's kind, or "" when no payload is set.
func (p Pattern) Kind() PatternKind {
	if p.Payload == nil {
		return ""
	}
	return p.Payload.Kind()
}

// Key returns a string that is equal for structurally equal kind+payload pairs.
func (p Pattern) Key() string {
	if p.Payload == nil {
		return ""
	}
	data, err := json.Marshal(p.Payload)
	if err != nil {
		return string(p.Payload.Kind())
	}
	return string(p.Payload.Kind()) + ":" + string(data)
}

// Validate checks that the pattern has a payload and a category.
func (p Pattern) Validate() error {
	if p.Payload == nil {
		return fmt.Errorf("%w: missing payload", ErrInvalidPattern)
	}
	if p.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidPattern)
	}
	if c, ok := p.Payload.(CompositePayload); ok {
		if len(c.Conditions) == 0 {
			return fmt.Errorf("%w: composite pattern has no conditions", ErrInvalidPattern)
		}
		for _, cond := range c.Conditions {
			if err := cond.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPattern, err)
			}
		}
	}
	return nil
}

// AddExample records a description, keeping at most limit distinct entries.
func (p *Pattern) AddExample(description string, limit int) {
	if description == "" {
		return
	}
	for _, existing := range p.Examples {
		if existing == description {
			return
		}
	}
	if len(p.Examples) >= limit {
		return
	}
	p.Examples = append(p.Examples, description)
}

type patternAlias Pattern

type patternEnvelope struct {
	Kind    PatternKind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
	patternAlias
}

// MarshalJSON writes the payload alongside its kind tag.
func (p Pattern) MarshalJSON() ([]byte, error) {
	if p.Payload == nil {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidPattern)
	}
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pattern payload: %w", err)
	}
	return json.Marshal(patternEnvelope{
		Kind:         p.Payload.Kind(),
		Payload:      payload,
		patternAlias: patternAlias(p),
	})
}

// UnmarshalJSON decodes the payload according to its kind tag.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var env patternEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	payload, err := decodePayload(env.Kind, env.Payload)
	if err != nil {
		return err
	}

	*p = Pattern(env.patternAlias)
	p.Payload = payload
	return nil
}

func decodePayload(kind PatternKind, raw json.RawMessage) (PatternPayload, error) {
	var (
		payload PatternPayload
		err     error
	)
	switch kind {
	case PatternKindMerchant:
		var v MerchantPayload
		err = json.Unmarshal(raw, &v)
		payload = v
	case PatternKindKeywords:
		var v KeywordPayload
		err = json.Unmarshal(raw, &v)
		payload = v
	case PatternKindAmount:
		var v AmountPayload
		err = json.Unmarshal(raw, &v)
		payload = v
	case PatternKindTimeSlot:
		var v TimeSlotPayload
		err = json.Unmarshal(raw, &v)
		payload = v
	case PatternKindComposite:
		var v CompositePayload
		err = json.Unmarshal(raw, &v)
		payload = v
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidPattern, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return payload, nil
}
