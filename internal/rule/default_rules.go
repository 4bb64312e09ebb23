package rule

import (
	"time"

	"github.com/Veraticus/saffron/internal/model"
)

// DefaultRules returns the bootstrap rule set seeded into a fresh engine.
// Store-name rules outrank fuel-station rules, which outrank description rules.
func DefaultRules(now time.Time) []model.Rule {
	rules := []model.Rule{
		{
			ID:   "default-groceries",
			Name: "Grocery stores",
			Kind: model.RuleKindMerchant,
			Condition: model.Condition{
				Field:    model.FieldMerchant,
				Operator: model.OpRegex,
				Value:    `\b(safeway|kroger|whole foods|trader joe'?s|aldi|publix|wegmans)\b`,
			},
			Action:   model.Action{Category: model.CategoryGroceries, Confidence: 0.9, Tags: []string{"groceries"}},
			Priority: 100,
		},
		{
			ID:   "default-fuel",
			Name: "Gas stations",
			Kind: model.RuleKindMerchant,
			Condition: model.Condition{
				Field:    model.FieldMerchant,
				Operator: model.OpRegex,
				Value:    `\b(shell|chevron|exxon|mobil|texaco|arco|valero)\b`,
			},
			Action:   model.Action{Category: model.CategoryTransportation, Confidence: 0.85, Tags: []string{"fuel"}},
			Priority: 90,
		},
		{
			ID:   "default-restaurants",
			Name: "Restaurants",
			Kind: model.RuleKindDescription,
			Condition: model.Condition{
				Field:    model.FieldDescription,
				Operator: model.OpRegex,
				Value:    `\b(restaurant|bistro|grill|diner|eatery|taqueria)\b`,
			},
			Action:   model.Action{Category: model.CategoryFood, Confidence: 0.8, Tags: []string{"dining"}},
			Priority: 80,
		},
		{
			ID:   "default-utilities",
			Name: "Utility bills",
			Kind: model.RuleKindDescription,
			Condition: model.Condition{
				Field:    model.FieldDescription,
				Operator: model.OpRegex,
				Value:    `\b(electric|electricity|water|sewer|utility|utilities)\b`,
			},
			Action:   model.Action{Category: model.CategoryUtilities, Confidence: 0.85},
			Priority: 80,
		},
	}

	for i := range rules {
		rules[i].CreatedAt = now
		rules[i].Accuracy = 1
		rules[i].IsActive = true
	}
	return rules
}
