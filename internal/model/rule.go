package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidRule      = errors.New("invalid rule")
)

// RuleKind records where a rule came from.
type RuleKind string

// Rule kinds.
const (
	RuleKindMerchant    RuleKind = "merchant"
	RuleKindDescription RuleKind = "description"
	RuleKindAmount      RuleKind = "amount"
	RuleKindPattern     RuleKind = "pattern"
	RuleKindModel       RuleKind = "model"
)

// Field names an observation attribute a condition tests.
type Field string

// Condition fields.
const (
	FieldMerchant    Field = "merchant"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldDate        Field = "date"
)

// Operator is the comparison a condition performs.
type Operator string

// Condition operators.
const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpRegex      Operator = "regex"
	OpRange      Operator = "range"
)

// Range is an inclusive numeric envelope.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the inclusive bounds.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Condition is a single field/operator/value test. String operators carry
// Value; OpRange carries Range.
type Condition struct {
	Range    *Range   `json:"range,omitempty"`
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value,omitempty"`
}

// Validate checks that the condition's value is appropriate for its operator.
// Regex values are only checked for syntax here; matching never fails.
func (c Condition) Validate() error {
	switch c.Field {
	case FieldMerchant, FieldDescription, FieldAmount, FieldDate:
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidCondition, c.Field)
	}

	switch c.Operator {
	case OpContains, OpEquals, OpStartsWith, OpEndsWith:
		if c.Value == "" {
			return fmt.Errorf("%w: %s requires a value", ErrInvalidCondition, c.Operator)
		}
	case OpRegex:
		if c.Value == "" {
			return fmt.Errorf("%w: regex requires a pattern", ErrInvalidCondition)
		}
		if _, err := regexp.Compile(c.Value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
	case OpRange:
		if c.Range == nil {
			return fmt.Errorf("%w: range requires min and max", ErrInvalidCondition)
		}
		if c.Range.Min > c.Range.Max {
			return fmt.Errorf("%w: range min %.2f exceeds max %.2f", ErrInvalidCondition, c.Range.Min, c.Range.Max)
		}
		if c.Field != FieldAmount {
			return fmt.Errorf("%w: range requires the amount field", ErrInvalidCondition)
		}
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, c.Operator)
	}
	return nil
}

// String renders the condition for reasoning text and listings.
func (c Condition) String() string {
	if c.Operator == OpRange && c.Range != nil {
		return fmt.Sprintf("%s in [%.2f, %.2f]", c.Field, c.Range.Min, c.Range.Max)
	}
	return fmt.Sprintf("%s %s %q", c.Field, strings.ReplaceAll(string(c.Operator), "_", " "), c.Value)
}

// Action is what a rule does when its condition holds.
type Action struct {
	Category   Category `json:"category"`
	Tags       []string `json:"tags,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Rule is an authored condition to category mapping with tracked usage and accuracy.
type Rule struct {
	CreatedAt     time.Time  `json:"created_at"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Kind          RuleKind   `json:"kind"`
	Action        Action     `json:"action"`
	Condition     Condition  `json:"condition"`
	Priority      int        `json:"priority"`
	UsageCount    int        `json:"usage_count"`
	Accuracy      float64    `json:"accuracy"`
	IsUserCreated bool       `json:"is_user_created"`
	IsActive      bool       `json:"is_active"`
}

// Validate checks the rule's condition and action.
func (r Rule) Validate() error {
	if err := r.Condition.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if r.Action.Category == "" {
		return fmt.Errorf("%w: missing target category", ErrInvalidRule)
	}
	if r.Action.Confidence < 0 || r.Action.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidRule)
	}
	return nil
}
