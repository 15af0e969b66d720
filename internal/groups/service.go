package groups

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
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
	"github.com/tripledger/tripledger-backend/pkg/money"
)

const defaultCurrency = "EUR"

type groupRepository interface {
	CreateWithTx(tx *gorm.DB, group *models.Group, founder *models.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
	Archive(ctx context.Context, id uuid.UUID, at time.Time) error
	CreateMember(ctx context.Context, member *models.Member) error
	FindMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	FindMemberByUser(ctx context.Context, groupID, userID uuid.UUID) (*models.Member, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.Member, error)
	DeleteMember(ctx context.Context, groupID, memberID uuid.UUID) error
}

type expenseSource interface {
	ListForLedger(ctx context.Context, groupID uuid.UUID) ([]ledger.Expense, error)
}

type settlementSource interface {
	ListForLedger(ctx context.Context, groupID uuid.UUID) ([]ledger.Settlement, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes group and member operations plus the derived balance views.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateGroupInput) (*GroupDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]GroupDTO, error)
	GetByID(ctx context.Context, userID, groupID uuid.UUID) (*GroupDTO, error)
	Archive(ctx context.Context, userID, groupID uuid.UUID) error
	AddMember(ctx context.Context, userID, groupID uuid.UUID, input AddMemberInput) (*MemberDTO, error)
	ListMembers(ctx context.Context, userID, groupID uuid.UUID) ([]MemberDTO, error)
	RemoveMember(ctx context.Context, userID, groupID, memberID uuid.UUID) error
	Balances(ctx context.Context, userID, groupID uuid.UUID) (*BalanceSheetDTO, error)
	SettleUpPlan(ctx context.Context, userID, groupID uuid.UUID) (*SettleUpPlanDTO, error)
}

type service struct {
	repo        groupRepository
	expenses    expenseSource
	settlements settlementSource
	tx          txRunner
}

// NewService builds a group service with the provided repositories.
func NewService(repo groupRepository, expenses expenseSource, settlements settlementSource, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("group repository required")
	}
	if expenses == nil {
		return nil, fmt.Errorf("expense source required")
	}
	if settlements == nil {
		return nil, fmt.Errorf("settlement source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		expenses:    expenses,
		settlements: settlements,
		tx:          tx,
	}, nil
}

// CreateGroupInput captures creation-time data for a new group.
type CreateGroupInput struct {
	Name               string
	Currency           string
	CreatorDisplayName string
}

// AddMemberInput captures the data required to add a member.
type AddMemberInput struct {
	DisplayName string
	UserID      *uuid.UUID
	IsAdmin     bool
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateGroupInput) (*GroupDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group name is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) != 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3-letter ISO code")
	}
	displayName := strings.TrimSpace(input.CreatorDisplayName)
	if displayName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator display name is required")
	}

	group := &models.Group{
		Name:            name,
		Currency:        currency,
		CreatedByUserID: userID,
	}
	founder := &models.Member{
		UserID:      &userID,
		DisplayName: displayName,
		IsAdmin:     true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateWithTx(tx, group, founder)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create group")
	}

	return FromModel(group, []models.Member{*founder}), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]GroupDTO, error) {
	groups, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list groups")
	}
	dtos := make([]GroupDTO, 0, len(groups))
	for i := range groups {
		dtos = append(dtos, *FromModel(&groups[i], nil))
	}
	return dtos, nil
}

func (s *service) GetByID(ctx context.Context, userID, groupID uuid.UUID) (*GroupDTO, error) {
	group, _, err := s.loadGroupAsMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return FromModel(group, members), nil
}

func (s *service) Archive(ctx context.Context, userID, groupID uuid.UUID) error {
	group, actor, err := s.loadGroupAsMember(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only group admins can archive")
	}
	if group.IsArchived() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "group is already archived")
	}
	if err := s.repo.Archive(ctx, groupID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive group")
	}
	return nil
}

func (s *service) AddMember(ctx context.Context, userID, groupID uuid.UUID, input AddMemberInput) (*MemberDTO, error) {
	group, _, err := s.loadGroupAsMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if group.IsArchived() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "archived groups accept no new members")
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}
	if input.UserID != nil && *input.UserID != uuid.Nil {
		if existing, err := s.repo.FindMemberByUser(ctx, groupID, *input.UserID); err == nil && existing != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a group member")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}
	}

	member := &models.Member{
		GroupID:     groupID,
		UserID:      input.UserID,
		DisplayName: displayName,
		IsAdmin:     input.IsAdmin,
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
	}

	dto := MemberFromModel(member)
	return &dto, nil
}

func (s *service) ListMembers(ctx context.Context, userID, groupID uuid.UUID) ([]MemberDTO, error) {
	if _, _, err := s.loadGroupAsMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	dtos := make([]MemberDTO, 0, len(members))
	for i := range members {
		dtos = append(dtos, MemberFromModel(&members[i]))
	}
	return dtos, nil
}

func (s *service) RemoveMember(ctx context.Context, userID, groupID, memberID uuid.UUID) error {
	_, actor, err := s.loadGroupAsMember(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && actor.ID != memberID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only group admins can remove other members")
	}

	target, err := s.repo.FindMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if target.GroupID != groupID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}

	members, balances, err := s.balancesForGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if balances[memberID] != 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "member balance must be zero before removal").
			WithDetails(map[string]any{"balance_cents": balances[memberID]})
	}

	if target.IsAdmin && countAdmins(members) <= 1 {
		return pkgerrors.New(pkgerrors.CodeConflict, "cannot remove the last admin")
	}

	if err := s.repo.DeleteMember(ctx, groupID, memberID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete member")
	}
	return nil
}

func (s *service) Balances(ctx context.Context, userID, groupID uuid.UUID) (*BalanceSheetDTO, error) {
	if _, _, err := s.loadGroupAsMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	members, balances, err := s.balancesForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	sheet := &BalanceSheetDTO{FullySettled: ledger.FullySettled(balances)}
	for _, member := range members {
		cents := balances[member.ID]
		sheet.Balances = append(sheet.Balances, MemberBalanceDTO{
			MemberID:     member.ID,
			DisplayName:  member.DisplayName,
			BalanceCents: cents,
			Balance:      money.FormatCents(cents),
		})
	}
	return sheet, nil
}

func (s *service) SettleUpPlan(ctx context.Context, userID, groupID uuid.UUID) (*SettleUpPlanDTO, error) {
	if _, _, err := s.loadGroupAsMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	members, balances, err := s.balancesForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	order := make([]uuid.UUID, len(members))
	for i, member := range members {
		order[i] = member.ID
	}
	transfers, err := ledger.SimplifyDebts(balances, order)
	if err != nil {
		return nil, wrapLedgerErr(err, "simplify debts")
	}

	plan := &SettleUpPlanDTO{
		Transfers:    make([]TransferDTO, 0, len(transfers)),
		FullySettled: len(transfers) == 0,
	}
	for _, tr := range transfers {
		plan.Transfers = append(plan.Transfers, newTransferDTO(tr.FromMemberID, tr.ToMemberID, tr.AmountCents))
	}
	return plan, nil
}

func (s *service) loadGroupAsMember(ctx context.Context, userID, groupID uuid.UUID) (*models.Group, *models.Member, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}

	member, err := s.repo.FindMemberByUser(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a group member")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return group, member, nil
}

func (s *service) balancesForGroup(ctx context.Context, groupID uuid.UUID) ([]models.Member, map[uuid.UUID]int64, error) {
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}

	expenses, err := s.expenses.ListForLedger(ctx, groupID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expenses")
	}
	settlements, err := s.settlements.ListForLedger(ctx, groupID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settlements")
	}

	ids := make([]uuid.UUID, len(members))
	for i, member := range members {
		ids[i] = member.ID
	}
	balances, err := ledger.CalculateBalances(ids, expenses, settlements)
	if err != nil {
		return nil, nil, wrapLedgerErr(err, "calculate balances")
	}
	return members, balances, nil
}

func wrapLedgerErr(err error, message string) error {
	switch {
	case ledger.IsInvariantViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeInvariant, err, message)
	case ledger.IsValidation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
	}
}

func countAdmins(members []models.Member) int {
	var n int
	for _, member := range members {
		if member.IsAdmin {
			n++
		}
	}
	return n
}
