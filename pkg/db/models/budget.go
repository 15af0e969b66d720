package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/pkg/enums"
)

// Budget is the optional spending envelope for a group.
type Budget struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID    uuid.UUID `gorm:"column:group_id;type:uuid;not null;uniqueIndex"`
	TotalCents int64     `gorm:"column:total_cents;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Categories []BudgetCategory `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE"`
}

// BudgetCategory caps spend for a single expense category.
type BudgetCategory struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BudgetID   uuid.UUID             `gorm:"column:budget_id;type:uuid;not null;index"`
	Category   enums.ExpenseCategory `gorm:"column:category;type:expense_category_enum;not null"`
	LimitCents int64                 `gorm:"column:limit_cents;not null"`
}
