package budgets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
)

// Repository handles budget persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to budget operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByGroup loads the group's budget with its category caps.
func (r *Repository) FindByGroup(ctx context.Context, groupID uuid.UUID) (*models.Budget, error) {
	var budget models.Budget
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("group_id = ?", groupID).
		First(&budget).Error
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// UpsertWithTx creates or replaces the group's budget and its category caps.
func (r *Repository) UpsertWithTx(tx *gorm.DB, budget *models.Budget) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if budget == nil {
		return fmt.Errorf("budget is required")
	}

	var existing models.Budget
	err := tx.Where("group_id = ?", budget.GroupID).First(&existing).Error
	switch {
	case err == nil:
		budget.ID = existing.ID
		budget.CreatedAt = existing.CreatedAt
		if err := tx.Where("budget_id = ?", existing.ID).Delete(&models.BudgetCategory{}).Error; err != nil {
			return err
		}
		for i := range budget.Categories {
			budget.Categories[i].BudgetID = existing.ID
		}
		return tx.Save(budget).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(budget).Error
	default:
		return err
	}
}
