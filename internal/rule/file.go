package rule

import (
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/saffron/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultConfidence applies when a definition leaves confidence unset.
const DefaultConfidence = 0.8

// Definition is an authored rule as written in a rule file or on the
// command line.
type Definition struct {
	Min        *float64 `yaml:"min"`
	Max        *float64 `yaml:"max"`
	Confidence *float64 `yaml:"confidence"`
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Field      string   `yaml:"field"`
	Operator   string   `yaml:"operator"`
	Value      string   `yaml:"value"`
	Category   string   `yaml:"category"`
	Tags       []string `yaml:"tags"`
	Priority   int      `yaml:"priority"`
	Disabled   bool     `yaml:"disabled"`
}

type ruleFile struct {
	Rules []Definition `yaml:"rules"`
}

// LoadFile reads authored rules from a YAML file.
//
// Example:
//
//	rules:
//	  - name: Coffee shops
//	    field: merchant
//	    operator: contains
//	    value: starbucks
//	    category: Food
//	    confidence: 0.9
//	    priority: 50
func LoadFile(path string) ([]model.Rule, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse decodes and validates YAML rules. Parsed rules are user-created and
// active unless marked disabled.
func Parse(r io.Reader) ([]model.Rule, error) {
	var doc ruleFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}

	rules := make([]model.Rule, 0, len(doc.Rules))
	for i, fr := range doc.Rules {
		rule, err := fr.ToRule()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, fr.Name, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ToRule converts the definition into a validated, user-created rule.
func (fr Definition) ToRule() (model.Rule, error) {
	category, err := model.ParseCategory(fr.Category)
	if err != nil {
		return model.Rule{}, fmt.Errorf("%w: %w", model.ErrInvalidRule, err)
	}

	cond := model.Condition{
		Field:    model.Field(fr.Field),
		Operator: model.Operator(fr.Operator),
		Value:    fr.Value,
	}
	if cond.Operator == model.OpRange {
		if fr.Min == nil || fr.Max == nil {
			return model.Rule{}, fmt.Errorf("%w: range requires min and max", model.ErrInvalidRule)
		}
		cond.Range = &model.Range{Min: *fr.Min, Max: *fr.Max}
	}

	kind := model.RuleKind(fr.Kind)
	if kind == "" {
		kind = kindForField(cond.Field)
	}

	confidence := DefaultConfidence
	if fr.Confidence != nil {
		confidence = *fr.Confidence
	}

	r := model.Rule{
		Name:      fr.Name,
		Kind:      kind,
		Condition: cond,
		Action: model.Action{
			Category:   category,
			Confidence: confidence,
			Tags:       fr.Tags,
		},
		Priority:      fr.Priority,
		Accuracy:      1,
		IsUserCreated: true,
		IsActive:      !fr.Disabled,
	}
	if err := r.Validate(); err != nil {
		return model.Rule{}, err
	}
	return r, nil
}

func kindForField(field model.Field) model.RuleKind {
	switch field {
	case model.FieldMerchant:
		return model.RuleKindMerchant
	case model.FieldAmount:
		return model.RuleKindAmount
	default:
		return model.RuleKindDescription
	}
}
