package enums

// BudgetAlertLevel classifies how far spend has progressed against a limit.
type BudgetAlertLevel string

const (
	// BudgetAlertWarning fires when spend reaches 80% of a limit without
	// exceeding it.
	BudgetAlertWarning BudgetAlertLevel = "warning"
	// BudgetAlertExceeded fires when spend passes 100% of a limit.
	BudgetAlertExceeded BudgetAlertLevel = "exceeded"
)

// IsValid reports whether the value is a known alert level.
func (l BudgetAlertLevel) IsValid() bool {
	return l == BudgetAlertWarning || l == BudgetAlertExceeded
}
