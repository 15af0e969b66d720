package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
	"github.com/tripledger/tripledger-backend/pkg/pagination"
)

type stubExpenseRepo struct {
	expenses []*models.Expense
	deleted  []uuid.UUID
}

func (s *stubExpenseRepo) CreateWithTx(_ *gorm.DB, expense *models.Expense) error {
	expense.ID = uuid.New()
	expense.CreatedAt = time.Now().UTC()
	for i := range expense.Splits {
		expense.Splits[i].ID = uuid.New()
		expense.Splits[i].ExpenseID = expense.ID
	}
	s.expenses = append(s.expenses, expense)
	return nil
}

func (s *stubExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	for _, exp := range s.expenses {
		if exp.ID == id {
			return exp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubExpenseRepo) ListByGroup(_ context.Context, groupID uuid.UUID, limit int, _ *pagination.Cursor) ([]models.Expense, error) {
	var out []models.Expense
	for _, exp := range s.expenses {
		if exp.GroupID == groupID {
			out = append(out, *exp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubExpenseRepo) Delete(_ context.Context, _ uuid.UUID, expenseID uuid.UUID) error {
	s.deleted = append(s.deleted, expenseID)
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

func (s *stubGroupSource) ListMembers(_ context.Context, groupID uuid.UUID) ([]models.Member, error) {
	var out []models.Member
	for _, m := range s.members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fixture struct {
	svc         Service
	repo        *stubExpenseRepo
	groups      *stubGroupSource
	group       *models.Group
	adminUserID uuid.UUID
	admin       models.Member
	grace       models.Member
	henry       models.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	adminUserID := uuid.New()
	groupID := uuid.New()
	group := &models.Group{ID: groupID, Name: "Lisbon trip", Currency: "EUR", CreatedByUserID: adminUserID}

	admin := models.Member{ID: uuid.New(), GroupID: groupID, UserID: &adminUserID, DisplayName: "Ada", IsAdmin: true}
	grace := models.Member{ID: uuid.New(), GroupID: groupID, DisplayName: "Grace"}
	henry := models.Member{ID: uuid.New(), GroupID: groupID, DisplayName: "Henry"}

	repo := &stubExpenseRepo{}
	groups := &stubGroupSource{group: group, members: []models.Member{admin, grace, henry}}
	svc, err := NewService(repo, groups, stubTxRunner{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &fixture{
		svc:         svc,
		repo:        repo,
		groups:      groups,
		group:       group,
		adminUserID: adminUserID,
		admin:       admin,
		grace:       grace,
		henry:       henry,
	}
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

func TestCreateExpenseEqualSplit(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateExpenseInput{
		Description:    "Dinner",
		Category:       enums.ExpenseCategoryFood,
		AmountCents:    30000,
		PaidByMemberID: f.admin.ID,
		SplitPolicy:    enums.SplitPolicyEqual,
		Participants:   []uuid.UUID{f.admin.ID, f.grace.ID, f.henry.ID},
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if dto.Amount != "300.00" {
		t.Fatalf("expected amount 300.00, got %q", dto.Amount)
	}
	if len(dto.Splits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(dto.Splits))
	}
	for _, split := range dto.Splits {
		if split.AmountCents != 10000 {
			t.Fatalf("expected 10000 cents per split, got %d", split.AmountCents)
		}
	}
	if dto.CreatedByMemberID != f.admin.ID {
		t.Fatalf("expected creator member %s, got %s", f.admin.ID, dto.CreatedByMemberID)
	}
}

func TestCreateExpenseCustomSplitMismatchRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateExpenseInput{
		Description:    "Museum tickets",
		AmountCents:    9999,
		PaidByMemberID: f.admin.ID,
		SplitPolicy:    enums.SplitPolicyCustom,
		Participants:   []uuid.UUID{f.admin.ID, f.grace.ID},
		CustomAmounts: map[uuid.UUID]int64{
			f.admin.ID: 6000,
			f.grace.ID: 4000,
		},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
	if len(f.repo.expenses) != 0 {
		t.Fatal("expected nothing persisted for rejected expense")
	}
}

func TestCreateExpensePercentageSplit(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateExpenseInput{
		Description:    "Hotel",
		Category:       enums.ExpenseCategoryLodging,
		AmountCents:    25000,
		PaidByMemberID: f.grace.ID,
		SplitPolicy:    enums.SplitPolicyPercentage,
		Participants:   []uuid.UUID{f.admin.ID, f.grace.ID},
		Percentages: map[uuid.UUID]float64{
			f.admin.ID: 60,
			f.grace.ID: 40,
		},
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if dto.Splits[0].AmountCents != 15000 || dto.Splits[1].AmountCents != 10000 {
		t.Fatalf("expected 15000/10000 split, got %+v", dto.Splits)
	}
}

func TestCreateExpenseRejectsNonMembers(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateExpenseInput{
		Description:    "Dinner",
		AmountCents:    1000,
		PaidByMemberID: uuid.New(),
		SplitPolicy:    enums.SplitPolicyEqual,
		Participants:   []uuid.UUID{f.admin.ID},
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateExpenseInput{
		Description:    "Dinner",
		AmountCents:    1000,
		PaidByMemberID: f.admin.ID,
		SplitPolicy:    enums.SplitPolicyEqual,
		Participants:   []uuid.UUID{f.admin.ID, uuid.New()},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateExpenseRejectedOnArchivedGroup(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.group.ArchivedAt = &now

	_, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateExpenseInput{
		Description:    "Dinner",
		AmountCents:    1000,
		PaidByMemberID: f.admin.ID,
		SplitPolicy:    enums.SplitPolicyEqual,
		Participants:   []uuid.UUID{f.admin.ID},
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateExpenseRequiresMembership(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), f.group.ID, CreateExpenseInput{
		Description:    "Dinner",
		AmountCents:    1000,
		PaidByMemberID: f.admin.ID,
		SplitPolicy:    enums.SplitPolicyEqual,
		Participants:   []uuid.UUID{f.admin.ID},
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeleteExpenseCreatorOnly(t *testing.T) {
	f := newFixture(t)

	// Grace creates an expense through her own login.
	graceUserID := uuid.New()
	for i := range f.groups.members {
		if f.groups.members[i].ID == f.grace.ID {
			f.groups.members[i].UserID = &graceUserID
		}
	}

	dto, err := f.svc.Create(context.Background(), graceUserID, f.group.ID, CreateExpenseInput{
		Description:    "Taxi",
		AmountCents:    2000,
		PaidByMemberID: f.grace.ID,
		SplitPolicy:    enums.SplitPolicyEqual,
		Participants:   []uuid.UUID{f.grace.ID, f.henry.ID},
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	// Another member cannot delete it.
	otherUserID := uuid.New()
	for i := range f.groups.members {
		if f.groups.members[i].ID == f.henry.ID {
			f.groups.members[i].UserID = &otherUserID
		}
	}
	err = f.svc.Delete(context.Background(), otherUserID, f.group.ID, dto.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	// Neither can an admin who did not record it.
	err = f.svc.Delete(context.Background(), f.adminUserID, f.group.ID, dto.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	// The creator can.
	if err := f.svc.Delete(context.Background(), graceUserID, f.group.ID, dto.ID); err != nil {
		t.Fatalf("delete by creator: %v", err)
	}
}

func TestGetByIDScopedToGroup(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateExpenseInput{
		Description:    "Dinner",
		AmountCents:    1000,
		PaidByMemberID: f.admin.ID,
		SplitPolicy:    enums.SplitPolicyEqual,
		Participants:   []uuid.UUID{f.admin.ID},
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	got, err := f.svc.GetByID(context.Background(), f.adminUserID, f.group.ID, dto.ID)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if got.ID != dto.ID {
		t.Fatalf("expected expense %s, got %s", dto.ID, got.ID)
	}

	_, err = f.svc.GetByID(context.Background(), f.adminUserID, f.group.ID, uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestListRejectsBadCursor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), f.adminUserID, f.group.ID, pagination.Params{Cursor: "%%%"})
	assertCode(t, err, pkgerrors.CodeValidation)
}
