package models

import (
	"time"

	"github.com/google/uuid"
)

// Settlement records a real-world repayment between two members. It is an
// immutable fact, not a money movement the service executes.
type Settlement struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID           uuid.UUID `gorm:"column:group_id;type:uuid;not null;index"`
	FromMemberID      uuid.UUID `gorm:"column:from_member_id;type:uuid;not null"`
	ToMemberID        uuid.UUID `gorm:"column:to_member_id;type:uuid;not null"`
	AmountCents       int64     `gorm:"column:amount_cents;not null"`
	Notes             string    `gorm:"column:notes;type:text"`
	CreatedByMemberID uuid.UUID `gorm:"column:created_by_member_id;type:uuid;not null"`
	SettledAt         time.Time `gorm:"column:settled_at;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}
