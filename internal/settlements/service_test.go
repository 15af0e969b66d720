package settlements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
	"github.com/tripledger/tripledger-backend/pkg/pagination"
)

type stubSettlementRepo struct {
	settlements []*models.Settlement
}

func (s *stubSettlementRepo) Create(_ context.Context, settlement *models.Settlement) error {
	settlement.ID = uuid.New()
	settlement.CreatedAt = time.Now().UTC()
	s.settlements = append(s.settlements, settlement)
	return nil
}

func (s *stubSettlementRepo) ListByGroup(_ context.Context, groupID uuid.UUID, limit int, _ *pagination.Cursor) ([]models.Settlement, error) {
	var out []models.Settlement
	for _, st := range s.settlements {
		if st.GroupID == groupID {
			out = append(out, *st)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
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

func (s *stubGroupSource) FindMemberByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	for i := range s.members {
		if s.members[i].ID == id {
			return &s.members[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fixture struct {
	svc         Service
	repo        *stubSettlementRepo
	group       *models.Group
	adminUserID uuid.UUID
	admin       models.Member
	grace       models.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	adminUserID := uuid.New()
	groupID := uuid.New()
	group := &models.Group{ID: groupID, Name: "Lisbon trip", Currency: "EUR", CreatedByUserID: adminUserID}
	admin := models.Member{ID: uuid.New(), GroupID: groupID, UserID: &adminUserID, DisplayName: "Ada", IsAdmin: true}
	grace := models.Member{ID: uuid.New(), GroupID: groupID, DisplayName: "Grace"}

	repo := &stubSettlementRepo{}
	svc, err := NewService(repo, &stubGroupSource{group: group, members: []models.Member{admin, grace}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &fixture{svc: svc, repo: repo, group: group, adminUserID: adminUserID, admin: admin, grace: grace}
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

func TestCreateSettlement(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateSettlementInput{
		FromMemberID: f.grace.ID,
		ToMemberID:   f.admin.ID,
		AmountCents:  5000,
		Notes:        "  cash after dinner  ",
	})
	if err != nil {
		t.Fatalf("create settlement: %v", err)
	}
	if dto.Amount != "50.00" {
		t.Fatalf("expected amount 50.00, got %q", dto.Amount)
	}
	if dto.Notes != "cash after dinner" {
		t.Fatalf("expected trimmed notes, got %q", dto.Notes)
	}
	if dto.CreatedByMemberID != f.admin.ID {
		t.Fatalf("expected recorder %s, got %s", f.admin.ID, dto.CreatedByMemberID)
	}
}

func TestCreateSettlementAllowedOnArchivedGroup(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.group.ArchivedAt = &now

	_, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateSettlementInput{
		FromMemberID: f.grace.ID,
		ToMemberID:   f.admin.ID,
		AmountCents:  5000,
	})
	if err != nil {
		t.Fatalf("expected settlement on archived group to succeed: %v", err)
	}
}

func TestCreateSettlementValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateSettlementInput{
		FromMemberID: f.grace.ID,
		ToMemberID:   f.admin.ID,
		AmountCents:  0,
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateSettlementInput{
		FromMemberID: f.grace.ID,
		ToMemberID:   f.grace.ID,
		AmountCents:  5000,
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateSettlementInput{
		FromMemberID: uuid.New(),
		ToMemberID:   f.admin.ID,
		AmountCents:  5000,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateSettlementRequiresMembership(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), f.group.ID, CreateSettlementInput{
		FromMemberID: f.grace.ID,
		ToMemberID:   f.admin.ID,
		AmountCents:  5000,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestListSettlements(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(context.Background(), f.adminUserID, f.group.ID, CreateSettlementInput{
			FromMemberID: f.grace.ID,
			ToMemberID:   f.admin.ID,
			AmountCents:  1000,
		})
		if err != nil {
			t.Fatalf("create settlement: %v", err)
		}
	}

	page, err := f.svc.List(context.Background(), f.adminUserID, f.group.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list settlements: %v", err)
	}
	if len(page.Settlements) != 3 {
		t.Fatalf("expected 3 settlements, got %d", len(page.Settlements))
	}
}
