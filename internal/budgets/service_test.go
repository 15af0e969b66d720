package budgets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
)

type stubBudgetRepo struct {
	budget *models.Budget
}

func (s *stubBudgetRepo) FindByGroup(_ context.Context, groupID uuid.UUID) (*models.Budget, error) {
	if s.budget == nil || s.budget.GroupID != groupID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.budget, nil
}

func (s *stubBudgetRepo) UpsertWithTx(_ *gorm.DB, budget *models.Budget) error {
	if s.budget != nil {
		budget.ID = s.budget.ID
	} else {
		budget.ID = uuid.New()
	}
	s.budget = budget
	return nil
}

type stubGroupSource struct {
	group   *models.Group
	members []models.Member
}

func (s *stubGroupSource) FindByID(_ context.Context, id uuid.UUID) (*models.Group, error) {
	if s.group == nil || s.group.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.group, nil
}

func (s *stubGroupSource) FindMemberByUser(_ context.Context, groupID, userID uuid.UUID) (*models.Member, error) {
	for i := range s.members {
		if s.members[i].GroupID == groupID && s.members[i].UserID != nil && *s.members[i].UserID == userID {
			return &s.members[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSpendSource struct {
	total      int64
	byCategory map[enums.ExpenseCategory]int64
}

func (s *stubSpendSource) SpendSummary(_ context.Context, _ uuid.UUID) (int64, map[enums.ExpenseCategory]int64, error) {
	return s.total, s.byCategory, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fixture struct {
	svc         Service
	repo        *stubBudgetRepo
	spend       *stubSpendSource
	group       *models.Group
	adminUserID uuid.UUID
	graceUserID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	adminUserID := uuid.New()
	graceUserID := uuid.New()
	groupID := uuid.New()
	group := &models.Group{ID: groupID, Name: "Lisbon trip", Currency: "EUR", CreatedByUserID: adminUserID}
	members := []models.Member{
		{ID: uuid.New(), GroupID: groupID, UserID: &adminUserID, DisplayName: "Ada", IsAdmin: true},
		{ID: uuid.New(), GroupID: groupID, UserID: &graceUserID, DisplayName: "Grace"},
	}

	repo := &stubBudgetRepo{}
	spend := &stubSpendSource{}
	svc, err := NewService(repo, &stubGroupSource{group: group, members: members}, spend, stubTxRunner{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &fixture{svc: svc, repo: repo, spend: spend, group: group, adminUserID: adminUserID, graceUserID: graceUserID}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected *pkgerrors.Error, got %T: %v", err, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestUpsertBudgetAdminOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upsert(context.Background(), f.graceUserID, f.group.ID, UpsertBudgetInput{TotalCents: 100000})
	assertCode(t, err, pkgerrors.CodeForbidden)

	dto, err := f.svc.Upsert(context.Background(), f.adminUserID, f.group.ID, UpsertBudgetInput{
		TotalCents: 100000,
		CategoryLimits: map[enums.ExpenseCategory]int64{
			enums.ExpenseCategoryFood: 40000,
		},
	})
	if err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	if dto.Total != "1000.00" {
		t.Fatalf("expected total 1000.00, got %q", dto.Total)
	}
	if len(dto.Categories) != 1 || dto.Categories[0].Category != enums.ExpenseCategoryFood {
		t.Fatalf("unexpected categories: %+v", dto.Categories)
	}
}

func TestUpsertBudgetValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upsert(context.Background(), f.adminUserID, f.group.ID, UpsertBudgetInput{TotalCents: 0})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Upsert(context.Background(), f.adminUserID, f.group.ID, UpsertBudgetInput{
		TotalCents: 100000,
		CategoryLimits: map[enums.ExpenseCategory]int64{
			enums.ExpenseCategoryFood:    80000,
			enums.ExpenseCategoryLodging: 80000,
		},
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Upsert(context.Background(), f.adminUserID, f.group.ID, UpsertBudgetInput{
		TotalCents: 100000,
		CategoryLimits: map[enums.ExpenseCategory]int64{
			enums.ExpenseCategory("misc"): 1000,
		},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestGetBudgetNotConfigured(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), f.adminUserID, f.group.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestStatusWarningAtEightyFivePercent(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Upsert(context.Background(), f.adminUserID, f.group.ID, UpsertBudgetInput{TotalCents: 100000}); err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	f.spend.total = 85000

	status, err := f.svc.Status(context.Background(), f.graceUserID, f.group.ID)
	if err != nil {
		t.Fatalf("budget status: %v", err)
	}
	if status.SpentPercent != 85 {
		t.Fatalf("expected 85%% spent, got %f", status.SpentPercent)
	}
	if status.Remaining != "150.00" {
		t.Fatalf("expected remaining 150.00, got %q", status.Remaining)
	}
	if len(status.Alerts) != 1 || status.Alerts[0].Level != enums.BudgetAlertWarning {
		t.Fatalf("expected one warning alert, got %+v", status.Alerts)
	}
}

func TestStatusExceededWithCategoryAlert(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Upsert(context.Background(), f.adminUserID, f.group.ID, UpsertBudgetInput{
		TotalCents: 100000,
		CategoryLimits: map[enums.ExpenseCategory]int64{
			enums.ExpenseCategoryFood: 30000,
		},
	})
	if err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	f.spend.total = 110000
	f.spend.byCategory = map[enums.ExpenseCategory]int64{
		enums.ExpenseCategoryFood: 35000,
	}

	status, err := f.svc.Status(context.Background(), f.adminUserID, f.group.ID)
	if err != nil {
		t.Fatalf("budget status: %v", err)
	}
	if len(status.Alerts) != 2 {
		t.Fatalf("expected total + category alerts, got %+v", status.Alerts)
	}
	if status.Alerts[0].Level != enums.BudgetAlertExceeded || status.Alerts[0].Category != nil {
		t.Fatalf("expected group-wide exceeded alert first, got %+v", status.Alerts[0])
	}
	if status.Alerts[1].Category == nil || *status.Alerts[1].Category != enums.ExpenseCategoryFood {
		t.Fatalf("expected food category alert, got %+v", status.Alerts[1])
	}
}
