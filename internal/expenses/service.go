package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/internal/ledger"
	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
	"github.com/tripledger/tripledger-backend/pkg/pagination"
)

type expenseRepository interface {
	CreateWithTx(tx *gorm.DB, expense *models.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Expense, error)
	Delete(ctx context.Context, groupID, expenseID uuid.UUID) error
}

type groupSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	FindMemberByUser(ctx context.Context, groupID, userID uuid.UUID) (*models.Member, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.Member, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes expense operations.
type Service interface {
	Create(ctx context.Context, userID, groupID uuid.UUID, input CreateExpenseInput) (*ExpenseDTO, error)
	GetByID(ctx context.Context, userID, groupID, expenseID uuid.UUID) (*ExpenseDTO, error)
	List(ctx context.Context, userID, groupID uuid.UUID, params pagination.Params) (*ExpensePageDTO, error)
	Delete(ctx context.Context, userID, groupID, expenseID uuid.UUID) error
}

type service struct {
	repo   expenseRepository
	groups groupSource
	tx     txRunner
}

// NewService builds an expense service with the provided repositories.
func NewService(repo expenseRepository, groups groupSource, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expense repository required")
	}
	if groups == nil {
		return nil, fmt.Errorf("group source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, groups: groups, tx: tx}, nil
}

// CreateExpenseInput captures creation-time data for a new expense. Amounts
// are already parsed into cents by the API layer.
type CreateExpenseInput struct {
	Description    string
	Category       enums.ExpenseCategory
	AmountCents    int64
	PaidByMemberID uuid.UUID
	SplitPolicy    enums.SplitPolicy
	Participants   []uuid.UUID
	CustomAmounts  map[uuid.UUID]int64
	Percentages    map[uuid.UUID]float64
	SpentAt        *time.Time
}

func (s *service) Create(ctx context.Context, userID, groupID uuid.UUID, input CreateExpenseInput) (*ExpenseDTO, error) {
	group, actor, err := s.loadGroupAsMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if group.IsArchived() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "archived groups accept no new expenses")
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	category := input.Category
	if category == "" {
		category = enums.ExpenseCategoryOther
	}
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid expense category")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.SplitPolicy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid split policy")
	}

	memberIDs, err := s.memberIDSet(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, ok := memberIDs[input.PaidByMemberID]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer is not a group member")
	}
	for _, participant := range input.Participants {
		if _, ok := memberIDs[participant]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "participant is not a group member").
				WithDetails(map[string]any{"member_id": participant})
		}
	}

	shares, err := ledger.ComputeSplits(ledger.SplitInput{
		Policy:       input.SplitPolicy,
		AmountCents:  input.AmountCents,
		Participants: input.Participants,
		Options: ledger.SplitOptions{
			Amounts:     input.CustomAmounts,
			Percentages: input.Percentages,
		},
	})
	if err != nil {
		if ledger.IsValidation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute splits")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute splits")
	}

	spentAt := time.Now().UTC()
	if input.SpentAt != nil {
		spentAt = input.SpentAt.UTC()
	}

	expense := &models.Expense{
		GroupID:           groupID,
		Description:       description,
		Category:          category,
		AmountCents:       input.AmountCents,
		PaidByMemberID:    input.PaidByMemberID,
		CreatedByMemberID: actor.ID,
		SplitPolicy:       input.SplitPolicy,
		SpentAt:           spentAt,
	}
	for _, share := range shares {
		expense.Splits = append(expense.Splits, models.ExpenseSplit{
			MemberID:    share.MemberID,
			AmountCents: share.AmountCents,
			Percentage:  share.Percentage,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateWithTx(tx, expense)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}

	return FromModel(expense), nil
}

func (s *service) GetByID(ctx context.Context, userID, groupID, expenseID uuid.UUID) (*ExpenseDTO, error) {
	if _, _, err := s.loadGroupAsMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	expense, err := s.loadGroupExpense(ctx, groupID, expenseID)
	if err != nil {
		return nil, err
	}
	return FromModel(expense), nil
}

func (s *service) List(ctx context.Context, userID, groupID uuid.UUID, params pagination.Params) (*ExpensePageDTO, error) {
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}

	page := &ExpensePageDTO{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		page.Expenses = append(page.Expenses, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) Delete(ctx context.Context, userID, groupID, expenseID uuid.UUID) error {
	_, actor, err := s.loadGroupAsMember(ctx, userID, groupID)
	if err != nil {
		return err
	}

	expense, err := s.loadGroupExpense(ctx, groupID, expenseID)
	if err != nil {
		return err
	}
	if expense.CreatedByMemberID != actor.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the expense creator can delete it")
	}

	if err := s.repo.Delete(ctx, groupID, expenseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	return nil
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

func (s *service) loadGroupExpense(ctx context.Context, groupID, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := s.repo.FindByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	if expense.GroupID != groupID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
	}
	return expense, nil
}

func (s *service) memberIDSet(ctx context.Context, groupID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	set := make(map[uuid.UUID]struct{}, len(members))
	for _, member := range members {
		set[member.ID] = struct{}{}
	}
	return set, nil
}
