package expenses

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	"github.com/tripledger/tripledger-backend/pkg/money"
)

// ExpenseDTO exposes a stored expense with its splits.
type ExpenseDTO struct {
	ID                uuid.UUID             `json:"id"`
	GroupID           uuid.UUID             `json:"group_id"`
	Description       string                `json:"description"`
	Category          enums.ExpenseCategory `json:"category"`
	AmountCents       int64                 `json:"amount_cents"`
	Amount            string                `json:"amount"`
	PaidByMemberID    uuid.UUID             `json:"paid_by_member_id"`
	CreatedByMemberID uuid.UUID             `json:"created_by_member_id"`
	SplitPolicy       enums.SplitPolicy     `json:"split_policy"`
	SpentAt           time.Time             `json:"spent_at"`
	CreatedAt         time.Time             `json:"created_at"`
	Splits            []SplitDTO            `json:"splits"`
}

// SplitDTO is one member's share of an expense.
type SplitDTO struct {
	MemberID    uuid.UUID `json:"member_id"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	Percentage  *float64  `json:"percentage,omitempty"`
}

// ExpensePageDTO is a cursor page of expenses.
type ExpensePageDTO struct {
	Expenses   []ExpenseDTO `json:"expenses"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// FromModel maps the persisted expense into a DTO.
func FromModel(m *models.Expense) *ExpenseDTO {
	if m == nil {
		return nil
	}

	dto := &ExpenseDTO{
		ID:                m.ID,
		GroupID:           m.GroupID,
		Description:       m.Description,
		Category:          m.Category,
		AmountCents:       m.AmountCents,
		Amount:            money.FormatCents(m.AmountCents),
		PaidByMemberID:    m.PaidByMemberID,
		CreatedByMemberID: m.CreatedByMemberID,
		SplitPolicy:       m.SplitPolicy,
		SpentAt:           m.SpentAt,
		CreatedAt:         m.CreatedAt,
	}
	for _, split := range m.Splits {
		dto.Splits = append(dto.Splits, SplitDTO{
			MemberID:    split.MemberID,
			AmountCents: split.AmountCents,
			Amount:      money.FormatCents(split.AmountCents),
			Percentage:  split.Percentage,
		})
	}
	return dto
}
