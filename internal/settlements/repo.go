package settlements

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/internal/ledger"
	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/pagination"
)

// Repository handles settlement persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to settlement operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new settlement row.
func (r *Repository) Create(ctx context.Context, settlement *models.Settlement) error {
	if settlement == nil {
		return fmt.Errorf("settlement is required")
	}
	return r.db.WithContext(ctx).Create(settlement).Error
}

// ListByGroup returns a page of settlements for a group, newest first.
func (r *Repository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Settlement, error) {
	query := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var settlements []models.Settlement
	if err := query.Find(&settlements).Error; err != nil {
		return nil, err
	}
	return settlements, nil
}

// ListForLedger projects all group settlements into the engine's shape.
func (r *Repository) ListForLedger(ctx context.Context, groupID uuid.UUID) ([]ledger.Settlement, error) {
	var settlements []models.Settlement
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Find(&settlements).Error
	if err != nil {
		return nil, err
	}

	out := make([]ledger.Settlement, 0, len(settlements))
	for _, s := range settlements {
		out = append(out, ledger.Settlement{
			FromMemberID: s.FromMemberID,
			ToMemberID:   s.ToMemberID,
			AmountCents:  s.AmountCents,
		})
	}
	return out, nil
}
