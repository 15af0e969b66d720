package settlements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
	"github.com/tripledger/tripledger-backend/pkg/pagination"
)

type settlementRepository interface {
	Create(ctx context.Context, settlement *models.Settlement) error
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Settlement, error)
}

type groupSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	FindMemberByUser(ctx context.Context, groupID, userID uuid.UUID) (*models.Member, error)
	FindMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// Service exposes settlement operations.
type Service interface {
	Create(ctx context.Context, userID, groupID uuid.UUID, input CreateSettlementInput) (*SettlementDTO, error)
	List(ctx context.Context, userID, groupID uuid.UUID, params pagination.Params) (*SettlementPageDTO, error)
}

type service struct {
	repo   settlementRepository
	groups groupSource
}

// NewService builds a settlement service with the provided repositories.
func NewService(repo settlementRepository, groups groupSource) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settlement repository required")
	}
	if groups == nil {
		return nil, fmt.Errorf("group source required")
	}
	return &service{repo: repo, groups: groups}, nil
}

// CreateSettlementInput captures creation-time data for a new settlement.
type CreateSettlementInput struct {
	FromMemberID uuid.UUID
	ToMemberID   uuid.UUID
	AmountCents  int64
	Notes        string
	SettledAt    *time.Time
}

// Create records a repayment. Archived groups still accept settlements so
// outstanding debts can be paid down after a trip is closed.
func (s *service) Create(ctx context.Context, userID, groupID uuid.UUID, input CreateSettlementInput) (*SettlementDTO, error) {
	_, actor, err := s.loadGroupAsMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.FromMemberID == input.ToMemberID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer and receiver must differ")
	}
	for _, memberID := range []uuid.UUID{input.FromMemberID, input.ToMemberID} {
		member, err := s.groups.FindMemberByID(ctx, memberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement references a non-member").
					WithDetails(map[string]any{"member_id": memberID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}
		if member.GroupID != groupID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement references a non-member").
				WithDetails(map[string]any{"member_id": memberID})
		}
	}

	settledAt := time.Now().UTC()
	if input.SettledAt != nil {
		settledAt = input.SettledAt.UTC()
	}

	settlement := &models.Settlement{
		GroupID:           groupID,
		FromMemberID:      input.FromMemberID,
		ToMemberID:        input.ToMemberID,
		AmountCents:       input.AmountCents,
		Notes:             strings.TrimSpace(input.Notes),
		CreatedByMemberID: actor.ID,
		SettledAt:         settledAt,
	}
	if err := s.repo.Create(ctx, settlement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create settlement")
	}

	return FromModel(settlement), nil
}

func (s *service) List(ctx context.Context, userID, groupID uuid.UUID, params pagination.Params) (*SettlementPageDTO, error) {
	if _, _, err := s.loadGroupAsMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByGroup(ctx, groupID, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settlements")
	}

	page := &SettlementPageDTO{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		page.Settlements = append(page.Settlements, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) loadGroupAsMember(ctx context.Context, userID, groupID uuid.UUID) (*models.Group, *models.Member, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}

	member, err := s.groups.FindMemberByUser(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a group member")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return group, member, nil
}
