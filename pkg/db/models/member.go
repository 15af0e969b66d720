package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a participant in exactly one group. Identity is immutable once
// created; removal is gated on a zero derived balance by the groups service.
type Member struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID     uuid.UUID  `gorm:"column:group_id;type:uuid;not null;index"`
	UserID      *uuid.UUID `gorm:"column:user_id;type:uuid"`
	DisplayName string     `gorm:"column:display_name;type:text;not null"`
	IsAdmin     bool       `gorm:"column:is_admin;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
