package heuristic

import "github.com/Veraticus/saffron/internal/model"

// MerchantEntry maps a lowercase merchant name to a category.
type MerchantEntry struct {
	Name     string
	Category model.Category
}

// DefaultMerchants returns the built-in merchant table.
func DefaultMerchants() []MerchantEntry {
	return []MerchantEntry{
		{Name: "whole foods", Category: model.CategoryGroceries},
		{Name: "trader joe's", Category: model.CategoryGroceries},
		{Name: "safeway", Category: model.CategoryGroceries},
		{Name: "kroger", Category: model.CategoryGroceries},
		{Name: "costco", Category: model.CategoryGroceries},
		{Name: "aldi", Category: model.CategoryGroceries},
		{Name: "starbucks", Category: model.CategoryFood},
		{Name: "mcdonald's", Category: model.CategoryFood},
		{Name: "chipotle", Category: model.CategoryFood},
		{Name: "subway", Category: model.CategoryFood},
		{Name: "uber eats", Category: model.CategoryFood},
		{Name: "doordash", Category: model.CategoryFood},
		{Name: "uber", Category: model.CategoryTransportation},
		{Name: "lyft", Category: model.CategoryTransportation},
		{Name: "shell", Category: model.CategoryTransportation},
		{Name: "chevron", Category: model.CategoryTransportation},
		{Name: "exxon", Category: model.CategoryTransportation},
		{Name: "walmart", Category: model.CategoryShopping},
		{Name: "target", Category: model.CategoryShopping},
		{Name: "amazon", Category: model.CategoryShopping},
		{Name: "best buy", Category: model.CategoryShopping},
		{Name: "netflix", Category: model.CategoryEntertainment},
		{Name: "spotify", Category: model.CategoryEntertainment},
		{Name: "hulu", Category: model.CategoryEntertainment},
		{Name: "steam", Category: model.CategoryEntertainment},
		{Name: "comcast", Category: model.CategoryUtilities},
		{Name: "pg&e", Category: model.CategoryUtilities},
		{Name: "verizon", Category: model.CategoryBills},
		{Name: "t-mobile", Category: model.CategoryBills},
		{Name: "geico", Category: model.CategoryBills},
		{Name: "cvs", Category: model.CategoryHealthcare},
		{Name: "walgreens", Category: model.CategoryHealthcare},
		{Name: "delta air", Category: model.CategoryTravel},
		{Name: "united airlines", Category: model.CategoryTravel},
		{Name: "marriott", Category: model.CategoryTravel},
		{Name: "airbnb", Category: model.CategoryTravel},
		{Name: "home depot", Category: model.CategoryHousing},
		{Name: "ikea", Category: model.CategoryHousing},
		{Name: "coursera", Category: model.CategoryEducation},
		{Name: "udemy", Category: model.CategoryEducation},
	}
}

// DefaultKeywords returns the built-in description keyword table.
func DefaultKeywords() map[string]model.Category {
	return map[string]model.Category{
		"grocery":     model.CategoryGroceries,
		"groceries":   model.CategoryGroceries,
		"supermarket": model.CategoryGroceries,
		"produce":     model.CategoryGroceries,

		"restaurant": model.CategoryFood,
		"cafe":       model.CategoryFood,
		"coffee":     model.CategoryFood,
		"breakfast":  model.CategoryFood,
		"lunch":      model.CategoryFood,
		"dinner":     model.CategoryFood,
		"pizza":      model.CategoryFood,
		"burger":     model.CategoryFood,
		"sushi":      model.CategoryFood,
		"bakery":     model.CategoryFood,

		"gas":     model.CategoryTransportation,
		"fuel":    model.CategoryTransportation,
		"parking": model.CategoryTransportation,
		"toll":    model.CategoryTransportation,
		"taxi":    model.CategoryTransportation,
		"transit": model.CategoryTransportation,
		"metro":   model.CategoryTransportation,
		"train":   model.CategoryTransportation,

		"electric":    model.CategoryUtilities,
		"electricity": model.CategoryUtilities,
		"water":       model.CategoryUtilities,
		"internet":    model.CategoryUtilities,
		"utility":     model.CategoryUtilities,

		"phone":        model.CategoryBills,
		"insurance":    model.CategoryBills,
		"subscription": model.CategoryBills,
		"bill":         model.CategoryBills,
		"invoice":      model.CategoryBills,

		"movie":     model.CategoryEntertainment,
		"cinema":    model.CategoryEntertainment,
		"concert":   model.CategoryEntertainment,
		"theater":   model.CategoryEntertainment,
		"tickets":   model.CategoryEntertainment,
		"streaming": model.CategoryEntertainment,

		"pharmacy": model.CategoryHealthcare,
		"doctor":   model.CategoryHealthcare,
		"hospital": model.CategoryHealthcare,
		"dental":   model.CategoryHealthcare,
		"clinic":   model.CategoryHealthcare,
		"medical":  model.CategoryHealthcare,

		"hotel":    model.CategoryTravel,
		"flight":   model.CategoryTravel,
		"airline":  model.CategoryTravel,
		"vacation": model.CategoryTravel,

		"rent":      model.CategoryHousing,
		"mortgage":  model.CategoryHousing,
		"furniture": model.CategoryHousing,
		"repair":    model.CategoryHousing,

		"tuition": model.CategoryEducation,
		"course":  model.CategoryEducation,
		"books":   model.CategoryEducation,
		"school":  model.CategoryEducation,

		"clothing":    model.CategoryShopping,
		"shoes":       model.CategoryShopping,
		"electronics": model.CategoryShopping,
		"mall":        model.CategoryShopping,

		"salon":   model.CategoryPersonal,
		"haircut": model.CategoryPersonal,
		"gym":     model.CategoryPersonal,
		"spa":     model.CategoryPersonal,
	}
}
