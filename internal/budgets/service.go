package budgets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/internal/ledger"
	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
)

type budgetRepository interface {
	FindByGroup(ctx context.Context, groupID uuid.UUID) (*models.Budget, error)
	UpsertWithTx(tx *gorm.DB, budget *models.Budget) error
}

type groupSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	FindMemberByUser(ctx context.Context, groupID, userID uuid.UUID) (*models.Member, error)
}

type spendSource interface {
	SpendSummary(ctx context.Context, groupID uuid.UUID) (int64, map[enums.ExpenseCategory]int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes budget configuration and tracking.
type Service interface {
	Upsert(ctx context.Context, userID, groupID uuid.UUID, input UpsertBudgetInput) (*BudgetDTO, error)
	Get(ctx context.Context, userID, groupID uuid.UUID) (*BudgetDTO, error)
	Status(ctx context.Context, userID, groupID uuid.UUID) (*BudgetStatusDTO, error)
}

type service struct {
	repo   budgetRepository
	groups groupSource
	spend  spendSource
	tx     txRunner
}

// NewService builds a budget service with the provided repositories.
func NewService(repo budgetRepository, groups groupSource, spend spendSource, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("budget repository required")
	}
	if groups == nil {
		return nil, fmt.Errorf("group source required")
	}
	if spend == nil {
		return nil, fmt.Errorf("spend source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, groups: groups, spend: spend, tx: tx}, nil
}

// UpsertBudgetInput captures the budget configuration. Category caps replace
// the previous set wholesale.
type UpsertBudgetInput struct {
	TotalCents     int64
	CategoryLimits map[enums.ExpenseCategory]int64
}

func (s *service) Upsert(ctx context.Context, userID, groupID uuid.UUID, input UpsertBudgetInput) (*BudgetDTO, error) {
	actor, err := s.requireMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only group admins can configure the budget")
	}

	if input.TotalCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "budget total must be positive")
	}
	var categoryTotal int64
	for category, limit := range input.CategoryLimits {
		if !category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid budget category").
				WithDetails(map[string]any{"category": category})
		}
		if limit <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category limit must be positive").
				WithDetails(map[string]any{"category": category})
		}
		categoryTotal += limit
	}
	if categoryTotal > input.TotalCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category limits exceed the total budget")
	}

	budget := &models.Budget{
		GroupID:    groupID,
		TotalCents: input.TotalCents,
	}
	for _, category := range enums.ExpenseCategories() {
		if limit, ok := input.CategoryLimits[category]; ok {
			budget.Categories = append(budget.Categories, models.BudgetCategory{
				Category:   category,
				LimitCents: limit,
			})
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.UpsertWithTx(tx, budget)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save budget")
	}

	return FromModel(budget), nil
}

func (s *service) Get(ctx context.Context, userID, groupID uuid.UUID) (*BudgetDTO, error) {
	if _, err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	budget, err := s.loadBudget(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return FromModel(budget), nil
}

func (s *service) Status(ctx context.Context, userID, groupID uuid.UUID) (*BudgetStatusDTO, error) {
	if _, err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	budget, err := s.loadBudget(ctx, groupID)
	if err != nil {
		return nil, err
	}

	spentTotal, spentByCategory, err := s.spend.SpendSummary(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize spend")
	}

	limits := make(map[enums.ExpenseCategory]int64, len(budget.Categories))
	for _, category := range budget.Categories {
		limits[category.Category] = category.LimitCents
	}

	report, err := ledger.BudgetStatus(ledger.BudgetInput{
		TotalCents:      budget.TotalCents,
		CategoryLimits:  limits,
		SpentCents:      spentTotal,
		SpentByCategory: spentByCategory,
	})
	if err != nil {
		if ledger.IsValidation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvariant, err, "stored budget failed validation")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "budget status")
	}

	return statusFromReport(report), nil
}

func (s *service) requireMember(ctx context.Context, userID, groupID uuid.UUID) (*models.Member, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}
	member, err := s.groups.FindMemberByUser(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a group member")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return member, nil
}

func (s *service) loadBudget(ctx context.Context, groupID uuid.UUID) (*models.Budget, error) {
	budget, err := s.repo.FindByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no budget configured for this group")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load budget")
	}
	return budget, nil
}
