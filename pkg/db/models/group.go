package models

import (
	"time"

	"github.com/google/uuid"
)

// Group is a trip group: the container for members, expenses, settlements and
// an optional budget. An archived group accepts no new expenses; settlements
// remain allowed so outstanding debts can still be paid down.
type Group struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string     `gorm:"column:name;type:text;not null"`
	Currency        string     `gorm:"column:currency;type:text;not null;default:'EUR'"`
	CreatedByUserID uuid.UUID  `gorm:"column:created_by_user_id;type:uuid;not null"`
	ArchivedAt      *time.Time `gorm:"column:archived_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsArchived reports whether the group is frozen for new expenses.
func (g Group) IsArchived() bool {
	return g.ArchivedAt != nil
}
