package models

// Fallback category names, one per direction. The classifier never fails:
// when nothing matches it resolves to the fallback compatible with the
// candidate's direction.
const (
	CategoryFallbackExpense  = "Інше"
	CategoryFallbackIncome   = "Інший дохід"
	CategoryFallbackTransfer = "Переказ (інше)"
)

// Category describes a spending/income/transfer bucket. A category with an
// empty UserID is global and immutable to users; a user category may shadow
// a global name for that user only. (scope, name) is unique.
type Category struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Type     Direction `json:"type" yaml:"type"`
	UserID   string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Icon     string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Keywords []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// IsGlobal reports whether the category is shared across all users.
func (c Category) IsGlobal() bool {
	return c.UserID == ""
}

// CompatibleWith reports whether the category may back a candidate moving
// in the given direction. An income category can never back an expense.
func (c Category) CompatibleWith(d Direction) bool {
	return c.Type == d
}

// FallbackCategory returns the deterministic fallback for a direction.
func FallbackCategory(d Direction) Category {
	switch d {
	case DirectionIncome:
		return Category{Name: CategoryFallbackIncome, Type: DirectionIncome}
	case DirectionTransfer:
		return Category{Name: CategoryFallbackTransfer, Type: DirectionTransfer}
	default:
		return Category{Name: CategoryFallbackExpense, Type: DirectionExpense}
	}
}

// CategoriesFile is the yaml layout of the seeded global category set.
type CategoriesFile struct {
	Categories []Category `yaml:"categories"`
}
