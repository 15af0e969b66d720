package expenses

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/internal/ledger"
	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	"github.com/tripledger/tripledger-backend/pkg/pagination"
)

// Repository handles expense persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to expense operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx persists an expense row and its splits atomically.
func (r *Repository) CreateWithTx(tx *gorm.DB, expense *models.Expense) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if expense == nil {
		return fmt.Errorf("expense is required")
	}
	return tx.Create(expense).Error
}

// FindByID loads an expense with its splits.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Preload("Splits").
		Where("id = ?", id).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// ListByGroup returns a page of expenses for a group, newest first.
func (r *Repository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Expense, error) {
	query := r.db.WithContext(ctx).
		Preload("Splits").
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// Delete removes an expense and, via cascade, its splits.
func (r *Repository) Delete(ctx context.Context, groupID, expenseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, expenseID).
		Delete(&models.Expense{}).Error
}

// ListForLedger projects all group expenses into the engine's shape.
func (r *Repository) ListForLedger(ctx context.Context, groupID uuid.UUID) ([]ledger.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Preload("Splits").
		Where("group_id = ?", groupID).
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	out := make([]ledger.Expense, 0, len(expenses))
	for _, exp := range expenses {
		entry := ledger.Expense{
			PaidByMemberID: exp.PaidByMemberID,
			AmountCents:    exp.AmountCents,
		}
		for _, split := range exp.Splits {
			entry.Shares = append(entry.Shares, ledger.Share{
				MemberID:    split.MemberID,
				AmountCents: split.AmountCents,
				Percentage:  split.Percentage,
			})
		}
		out = append(out, entry)
	}
	return out, nil
}

// SpendSummary aggregates total and per-category spend for budget tracking.
func (r *Repository) SpendSummary(ctx context.Context, groupID uuid.UUID) (int64, map[enums.ExpenseCategory]int64, error) {
	type row struct {
		Category enums.ExpenseCategory
		Total    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount_cents), 0) AS total").
		Where("group_id = ?", groupID).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, err
	}

	var total int64
	byCategory := make(map[enums.ExpenseCategory]int64, len(rows))
	for _, r := range rows {
		byCategory[r.Category] = r.Total
		total += r.Total
	}
	return total, byCategory, nil
}
