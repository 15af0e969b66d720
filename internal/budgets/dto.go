package budgets

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/internal/ledger"
	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	"github.com/tripledger/tripledger-backend/pkg/money"
)

// BudgetDTO exposes the configured budget for a group.
type BudgetDTO struct {
	ID         uuid.UUID           `json:"id"`
	GroupID    uuid.UUID           `json:"group_id"`
	TotalCents int64               `json:"total_cents"`
	Total      string              `json:"total"`
	Categories []BudgetCategoryDTO `json:"categories,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// BudgetCategoryDTO is one category cap.
type BudgetCategoryDTO struct {
	Category   enums.ExpenseCategory `json:"category"`
	LimitCents int64                 `json:"limit_cents"`
	Limit      string                `json:"limit"`
}

// BudgetAlertDTO flags a scope that crossed the warning or exceeded threshold.
type BudgetAlertDTO struct {
	Category   *enums.ExpenseCategory `json:"category,omitempty"`
	Level      enums.BudgetAlertLevel `json:"level"`
	SpentCents int64                  `json:"spent_cents"`
	LimitCents int64                  `json:"limit_cents"`
}

// BudgetStatusDTO reports budget consumption for a group.
type BudgetStatusDTO struct {
	TotalCents     int64            `json:"total_cents"`
	SpentCents     int64            `json:"spent_cents"`
	RemainingCents int64            `json:"remaining_cents"`
	Spent          string           `json:"spent"`
	Remaining      string           `json:"remaining"`
	SpentPercent   float64          `json:"spent_percent"`
	Alerts         []BudgetAlertDTO `json:"alerts"`
}

// FromModel maps the persisted budget into a DTO.
func FromModel(m *models.Budget) *BudgetDTO {
	if m == nil {
		return nil
	}
	dto := &BudgetDTO{
		ID:         m.ID,
		GroupID:    m.GroupID,
		TotalCents: m.TotalCents,
		Total:      money.FormatCents(m.TotalCents),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	for _, category := range m.Categories {
		dto.Categories = append(dto.Categories, BudgetCategoryDTO{
			Category:   category.Category,
			LimitCents: category.LimitCents,
			Limit:      money.FormatCents(category.LimitCents),
		})
	}
	return dto
}

func statusFromReport(report ledger.BudgetReport) *BudgetStatusDTO {
	dto := &BudgetStatusDTO{
		TotalCents:     report.TotalCents,
		SpentCents:     report.SpentCents,
		RemainingCents: report.RemainingCents,
		Spent:          money.FormatCents(report.SpentCents),
		Remaining:      money.FormatCents(report.RemainingCents),
		SpentPercent:   report.SpentPercent,
		Alerts:         make([]BudgetAlertDTO, 0, len(report.Alerts)),
	}
	for _, alert := range report.Alerts {
		dto.Alerts = append(dto.Alerts, BudgetAlertDTO{
			Category:   alert.Category,
			Level:      alert.Level,
			SpentCents: alert.SpentCents,
			LimitCents: alert.LimitCents,
		})
	}
	return dto
}
