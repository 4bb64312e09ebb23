package model

import (
	"fmt"
	"strings"

	"github.com/Veraticus/saffron/internal/common"
)

// Category is a semantic spending category.
type Category string

// Known spending categories. CategoryOther is the catch-all.
const (
	CategoryFood           Category = "Food"
	CategoryGroceries      Category = "Groceries"
	CategoryTransportation Category = "Transportation"
	CategoryShopping       Category = "Shopping"
	CategoryEntertainment  Category = "Entertainment"
	CategoryBills          Category = "Bills"
	CategoryUtilities      Category = "Utilities"
	CategoryHealthcare     Category = "Healthcare"
	CategoryTravel         Category = "Travel"
	CategoryHousing        Category = "Housing"
	CategoryEducation      Category = "Education"
	CategoryPersonal       Category = "Personal"
	CategoryOther          Category = "Other"
)

var allCategories = []Category{
	CategoryFood,
	CategoryGroceries,
	CategoryTransportation,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryTravel,
	CategoryHousing,
	CategoryEducation,
	CategoryPersonal,
	CategoryOther,
}

// AllCategories returns every known category in display order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(name string) (Category, error) {
	trimmed := strings.TrimSpace(name)
	for _, known := range allCategories {
		if strings.EqualFold(string(known), trimmed) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidCategory, name)
}
