package settlements

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/money"
)

// SettlementDTO exposes a recorded repayment.
type SettlementDTO struct {
	ID                uuid.UUID `json:"id"`
	GroupID           uuid.UUID `json:"group_id"`
	FromMemberID      uuid.UUID `json:"from_member_id"`
	ToMemberID        uuid.UUID `json:"to_member_id"`
	AmountCents       int64     `json:"amount_cents"`
	Amount            string    `json:"amount"`
	Notes             string    `json:"notes,omitempty"`
	CreatedByMemberID uuid.UUID `json:"created_by_member_id"`
	SettledAt         time.Time `json:"settled_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// SettlementPageDTO is a cursor page of settlements.
type SettlementPageDTO struct {
	Settlements []SettlementDTO `json:"settlements"`
	NextCursor  string          `json:"next_cursor,omitempty"`
}

// FromModel maps the persisted settlement into a DTO.
func FromModel(m *models.Settlement) *SettlementDTO {
	if m == nil {
		return nil
	}
	return &SettlementDTO{
		ID:                m.ID,
		GroupID:           m.GroupID,
		FromMemberID:      m.FromMemberID,
		ToMemberID:        m.ToMemberID,
		AmountCents:       m.AmountCents,
		Amount:            money.FormatCents(m.AmountCents),
		Notes:             m.Notes,
		CreatedByMemberID: m.CreatedByMemberID,
		SettledAt:         m.SettledAt,
		CreatedAt:         m.CreatedAt,
	}
}
