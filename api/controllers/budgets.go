package controllers

import (
	"net/http"

	"github.com/tripledger/tripledger-backend/api/responses"
	"github.com/tripledger/tripledger-backend/api/validators"
	"github.com/tripledger/tripledger-backend/internal/budgets"
	"github.com/tripledger/tripledger-backend/pkg/enums"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
	"github.com/tripledger/tripledger-backend/pkg/logger"
	"github.com/tripledger/tripledger-backend/pkg/money"
)

type budgetUpsertRequest struct {
	Total          string            `json:"total" validate:"required"`
	CategoryLimits map[string]string `json:"category_limits,omitempty"`
}

func (req budgetUpsertRequest) toInput() (budgets.UpsertBudgetInput, error) {
	totalCents, err := money.ParsePositiveCents(req.Total)
	if err != nil {
		return budgets.UpsertBudgetInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid budget total")
	}

	input := budgets.UpsertBudgetInput{TotalCents: totalCents}
	if len(req.CategoryLimits) > 0 {
		input.CategoryLimits = make(map[enums.ExpenseCategory]int64, len(req.CategoryLimits))
		for rawCategory, rawLimit := range req.CategoryLimits {
			category, err := enums.ParseExpenseCategory(rawCategory)
			if err != nil {
				return budgets.UpsertBudgetInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid budget category")
			}
			cents, err := money.ParsePositiveCents(rawLimit)
			if err != nil {
				return budgets.UpsertBudgetInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category limit")
			}
			input.CategoryLimits[category] = cents
		}
	}
	return input, nil
}

// BudgetUpsert sets or replaces the group budget. Admin only.
func BudgetUpsert(svc budgets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "budget service unavailable"))
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

		var payload budgetUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		budget, err := svc.Upsert(r.Context(), userID, groupID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, budget)
	}
}

// BudgetGet returns the configured budget.
func BudgetGet(svc budgets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "budget service unavailable"))
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

		budget, err := svc.Get(r.Context(), userID, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, budget)
	}
}

// BudgetStatus returns spend against the budget plus warning and exceeded
// alerts.
func BudgetStatus(svc budgets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "budget service unavailable"))
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

		status, err := svc.Status(r.Context(), userID, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}
