package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/pkg/enums"
)

// Expense is an immutable shared-cost record. Edits are modelled as
// delete + recreate; only the creating member may delete it.
type Expense struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID           uuid.UUID             `gorm:"column:group_id;type:uuid;not null;index"`
	Description       string                `gorm:"column:description;type:text;not null"`
	Category          enums.ExpenseCategory `gorm:"column:category;type:expense_category_enum;not null"`
	AmountCents       int64                 `gorm:"column:amount_cents;not null"`
	PaidByMemberID    uuid.UUID             `gorm:"column:paid_by_member_id;type:uuid;not null"`
	CreatedByMemberID uuid.UUID             `gorm:"column:created_by_member_id;type:uuid;not null"`
	SplitPolicy       enums.SplitPolicy     `gorm:"column:split_policy;type:split_policy_enum;not null"`
	SpentAt           time.Time             `gorm:"column:spent_at;not null"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`

	Splits []ExpenseSplit `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"`
}

// ExpenseSplit is one member's allocated share of an expense. Shares for an
// expense always sum to the expense amount; that is enforced before append.
type ExpenseSplit struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExpenseID   uuid.UUID `gorm:"column:expense_id;type:uuid;not null;index"`
	MemberID    uuid.UUID `gorm:"column:member_id;type:uuid;not null"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	Percentage  *float64  `gorm:"column:percentage"`
}
