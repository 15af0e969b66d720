package groups

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
)

// Repository handles group and member persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to group operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx persists a new group plus its founding member atomically.
func (r *Repository) CreateWithTx(tx *gorm.DB, group *models.Group, founder *models.Member) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if group == nil || founder == nil {
		return fmt.Errorf("group and founding member are required")
	}
	if err := tx.Create(group).Error; err != nil {
		return err
	}
	founder.GroupID = group.ID
	return tx.Create(founder).Error
}

// FindByID loads a group by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByUser returns all groups the user participates in, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN members ON members.group_id = groups.id").
		Where("members.user_id = ?", userID).
		Order("groups.created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Archive stamps the group as archived.
func (r *Repository) Archive(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ? AND archived_at IS NULL", id).
		Update("archived_at", at).Error
}

// CreateMember persists a new member row.
func (r *Repository) CreateMember(ctx context.Context, member *models.Member) error {
	if member == nil {
		return fmt.Errorf("member is required")
	}
	return r.db.WithContext(ctx).Create(member).Error
}

// FindMemberByID loads a member by its UUID.
func (r *Repository) FindMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindMemberByUser resolves the acting user's membership in a group.
func (r *Repository) FindMemberByUser(ctx context.Context, groupID, userID uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers returns all members of a group in join order.
func (r *Repository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// DeleteMember removes a member row.
func (r *Repository) DeleteMember(ctx context.Context, groupID, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, memberID).
		Delete(&models.Member{}).Error
}
