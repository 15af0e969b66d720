package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/api/responses"
	"github.com/tripledger/tripledger-backend/api/validators"
	"github.com/tripledger/tripledger-backend/internal/expenses"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
	"github.com/tripledger/tripledger-backend/pkg/logger"
	"github.com/tripledger/tripledger-backend/pkg/money"
)

// Amounts travel as decimal strings and are converted to cents at this
// boundary. Nothing past the controllers handles fractional currency.
type expenseCreateRequest struct {
	Description    string             `json:"description" validate:"required,min=1,max=255"`
	Category       string             `json:"category,omitempty"`
	Amount         string             `json:"amount" validate:"required"`
	PaidByMemberID string             `json:"paid_by_member_id" validate:"required,uuid"`
	SplitPolicy    string             `json:"split_policy" validate:"required"`
	Participants   []string           `json:"participants" validate:"required,min=1,dive,uuid"`
	CustomAmounts  map[string]string  `json:"custom_amounts,omitempty"`
	Percentages    map[string]float64 `json:"percentages,omitempty"`
	SpentAt        *time.Time         `json:"spent_at,omitempty"`
}

func (req expenseCreateRequest) toInput() (expenses.CreateExpenseInput, error) {
	amountCents, err := money.ParsePositiveCents(req.Amount)
	if err != nil {
		return expenses.CreateExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}

	paidBy, err := uuid.Parse(req.PaidByMemberID)
	if err != nil {
		return expenses.CreateExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payer member id")
	}

	policy, err := enums.ParseSplitPolicy(req.SplitPolicy)
	if err != nil {
		return expenses.CreateExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid split policy")
	}

	var category enums.ExpenseCategory
	if req.Category != "" {
		category, err = enums.ParseExpenseCategory(req.Category)
		if err != nil {
			return expenses.CreateExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
	}

	participants := make([]uuid.UUID, 0, len(req.Participants))
	for _, raw := range req.Participants {
		id, err := uuid.Parse(raw)
		if err != nil {
			return expenses.CreateExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid participant id")
		}
		participants = append(participants, id)
	}

	input := expenses.CreateExpenseInput{
		Description:    req.Description,
		Category:       category,
		AmountCents:    amountCents,
		PaidByMemberID: paidBy,
		SplitPolicy:    policy,
		Participants:   participants,
		SpentAt:        req.SpentAt,
	}

	if len(req.CustomAmounts) > 0 {
		input.CustomAmounts = make(map[uuid.UUID]int64, len(req.CustomAmounts))
		for rawID, rawAmount := range req.CustomAmounts {
			id, err := uuid.Parse(rawID)
			if err != nil {
				return expenses.CreateExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid custom amount member id")
			}
			cents, err := money.ParseCents(rawAmount)
			if err != nil {
				return expenses.CreateExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid custom amount")
			}
			input.CustomAmounts[id] = cents
		}
	}

	if len(req.Percentages) > 0 {
		input.Percentages = make(map[uuid.UUID]float64, len(req.Percentages))
		for rawID, pct := range req.Percentages {
			id, err := uuid.Parse(rawID)
			if err != nil {
				return expenses.CreateExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid percentage member id")
			}
			input.Percentages[id] = pct
		}
	}

	return input, nil
}

// ExpenseCreate books an expense and its computed splits atomically.
func ExpenseCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expense service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupID, err := validators.ParseUUIDParam(r, "groupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload expenseCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Create(r.Context(), userID, groupID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

// ExpenseList returns a cursor-paged page of group expenses, newest first.
func ExpenseList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expense service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupID, err := validators.ParseUUIDParam(r, "groupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), userID, groupID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ExpenseGet returns one expense with its splits.
func ExpenseGet(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expense service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupID, err := validators.ParseUUIDParam(r, "groupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expenseID, err := validators.ParseUUIDParam(r, "expenseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.GetByID(r.Context(), userID, groupID, expenseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, expense)
	}
}

// ExpenseDelete removes an expense. Only the member who recorded it may delete.
func ExpenseDelete(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expense service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupID, err := validators.ParseUUIDParam(r, "groupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expenseID, err := validators.ParseUUIDParam(r, "expenseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, groupID, expenseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
