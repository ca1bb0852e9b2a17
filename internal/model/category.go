package model

import "strings"

// Category is one of the closed set of expense categories.
type Category string

// Expense categories. Anything a stage produces outside this set collapses to CategoryOther.
const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryHealthcare    Category = "healthcare"
	CategoryUtilities     Category = "utilities"
	CategoryOther         Category = "other"
)

// Categories lists the closed category set in canonical order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryHealthcare,
	CategoryUtilities,
	CategoryOther,
}

// IsValid reports whether c is a member of the closed set.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches s against the closed set, ignoring case and surrounding space.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.IsValid() {
		return c, true
	}
	return CategoryOther, false
}

// NormalizeCategory collapses any value outside the closed set to CategoryOther.
func NormalizeCategory(s string) Category {
	c, _ := ParseCategory(s)
	return c
}
