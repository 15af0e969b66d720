package ledger

import (
	"github.com/tripledger/tripledger-backend/pkg/enums"
)

// BudgetInput describes the configured budget plus actual spend.
type BudgetInput struct {
	TotalCents      int64
	CategoryLimits  map[enums.ExpenseCategory]int64
	SpentCents      int64
	SpentByCategory map[enums.ExpenseCategory]int64
}

// BudgetAlert flags a budget scope that crossed a threshold.
type BudgetAlert struct {
	// Category is nil for the group-wide budget.
	Category   *enums.ExpenseCategory
	Level      enums.BudgetAlertLevel
	SpentCents int64
	LimitCents int64
}

// BudgetReport summarizes budget consumption for a group.
type BudgetReport struct {
	TotalCents     int64
	SpentCents     int64
	RemainingCents int64
	SpentPercent   float64
	Alerts         []BudgetAlert
}

// BudgetStatus evaluates spend against the configured limits. The warning
// threshold is 80% of a limit, exceeded means spend is strictly above it.
// Threshold checks use integer arithmetic so 79.999% never rounds into a
// warning.
func BudgetStatus(in BudgetInput) (BudgetReport, error) {
	if in.TotalCents <= 0 {
		return BudgetReport{}, validationf("budget total must be positive, got %d cents", in.TotalCents)
	}
	if in.SpentCents < 0 {
		return BudgetReport{}, validationf("spent amount must not be negative, got %d cents", in.SpentCents)
	}

	report := BudgetReport{
		TotalCents:     in.TotalCents,
		SpentCents:     in.SpentCents,
		RemainingCents: in.TotalCents - in.SpentCents,
		SpentPercent:   float64(in.SpentCents) / float64(in.TotalCents) * 100,
	}

	if level, ok := alertLevel(in.SpentCents, in.TotalCents); ok {
		report.Alerts = append(report.Alerts, BudgetAlert{
			Level:      level,
			SpentCents: in.SpentCents,
			LimitCents: in.TotalCents,
		})
	}

	for _, category := range enums.ExpenseCategories() {
		limit, ok := in.CategoryLimits[category]
		if !ok {
			continue
		}
		if limit <= 0 {
			return BudgetReport{}, validationf("budget limit for category %q must be positive, got %d cents", category, limit)
		}
		spent := in.SpentByCategory[category]
		if level, crossed := alertLevel(spent, limit); crossed {
			cat := category
			report.Alerts = append(report.Alerts, BudgetAlert{
				Category:   &cat,
				Level:      level,
				SpentCents: spent,
				LimitCents: limit,
			})
		}
	}

	return report, nil
}

// alertLevel applies the 80% warning and >100% exceeded thresholds.
// spent*5 >= limit*4 is the integer form of spent/limit >= 0.8.
func alertLevel(spent, limit int64) (enums.BudgetAlertLevel, bool) {
	switch {
	case spent > limit:
		return enums.BudgetAlertExceeded, true
	case spent*5 >= limit*4:
		return enums.BudgetAlertWarning, true
	default:
		return "", false
	}
}
