package enums

import "fmt"

// ExpenseCategory maps to the expense_category_enum enum in Postgres.
type ExpenseCategory string

const (
	ExpenseCategoryFood          ExpenseCategory = "food"
	ExpenseCategoryGroceries     ExpenseCategory = "groceries"
	ExpenseCategoryTransport     ExpenseCategory = "transport"
	ExpenseCategoryLodging       ExpenseCategory = "lodging"
	ExpenseCategoryActivities    ExpenseCategory = "activities"
	ExpenseCategoryEntertainment ExpenseCategory = "entertainment"
	ExpenseCategoryShopping      ExpenseCategory = "shopping"
	ExpenseCategoryOther         ExpenseCategory = "other"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryFood,
	ExpenseCategoryGroceries,
	ExpenseCategoryTransport,
	ExpenseCategoryLodging,
	ExpenseCategoryActivities,
	ExpenseCategoryEntertainment,
	ExpenseCategoryShopping,
	ExpenseCategoryOther,
}

// IsValid reports whether the value matches the canonical expense category enum.
func (c ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	for _, candidate := range validExpenseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}

// ExpenseCategories returns the canonical category list in declaration order.
func ExpenseCategories() []ExpenseCategory {
	out := make([]ExpenseCategory, len(validExpenseCategories))
	copy(out, validExpenseCategories)
	return out
}
