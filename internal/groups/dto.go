package groups

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/money"
)

// GroupDTO exposes group data in API responses.
type GroupDTO struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Currency        string      `json:"currency"`
	CreatedByUserID uuid.UUID   `json:"created_by_user_id"`
	Archived        bool        `json:"archived"`
	ArchivedAt      *time.Time  `json:"archived_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Members         []MemberDTO `json:"members,omitempty"`
}

// MemberDTO exposes a single group member.
type MemberDTO struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	DisplayName string     `json:"display_name"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MemberBalanceDTO is one row of the group balance sheet. Positive means the
// member is owed money.
type MemberBalanceDTO struct {
	MemberID     uuid.UUID `json:"member_id"`
	DisplayName  string    `json:"display_name"`
	BalanceCents int64     `json:"balance_cents"`
	Balance      string    `json:"balance"`
}

// TransferDTO is one suggested repayment from the settle-up plan.
type TransferDTO struct {
	FromMemberID uuid.UUID `json:"from_member_id"`
	ToMemberID   uuid.UUID `json:"to_member_id"`
	AmountCents  int64     `json:"amount_cents"`
	Amount       string    `json:"amount"`
}

// BalanceSheetDTO bundles balances with the settled flag clients key off.
type BalanceSheetDTO struct {
	Balances     []MemberBalanceDTO `json:"balances"`
	FullySettled bool               `json:"fully_settled"`
}

// SettleUpPlanDTO is the simplified repayment plan for a group.
type SettleUpPlanDTO struct {
	Transfers    []TransferDTO `json:"transfers"`
	FullySettled bool          `json:"fully_settled"`
}

// FromModel maps the persisted group into a DTO.
func FromModel(m *models.Group, members []models.Member) *GroupDTO {
	if m == nil {
		return nil
	}

	dto := &GroupDTO{
		ID:              m.ID,
		Name:            m.Name,
		Currency:        m.Currency,
		CreatedByUserID: m.CreatedByUserID,
		Archived:        m.IsArchived(),
		ArchivedAt:      m.ArchivedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for _, member := range members {
		dto.Members = append(dto.Members, MemberFromModel(&member))
	}
	return dto
}

// MemberFromModel maps the persisted member into a DTO.
func MemberFromModel(m *models.Member) MemberDTO {
	return MemberDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		IsAdmin:     m.IsAdmin,
		CreatedAt:   m.CreatedAt,
	}
}

func newTransferDTO(from, to uuid.UUID, amountCents int64) TransferDTO {
	return TransferDTO{
		FromMemberID: from,
		ToMemberID:   to,
		AmountCents:  amountCents,
		Amount:       money.FormatCents(amountCents),
	}
}
