package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/api/responses"
	"github.com/tripledger/tripledger-backend/api/validators"
	"github.com/tripledger/tripledger-backend/internal/settlements"
	pkgerrors "github.com/tripledger/tripledger-backend/pkg/errors"
	"github.com/tripledger/tripledger-backend/pkg/logger"
	"github.com/tripledger/tripledger-backend/pkg/money"
)

type settlementCreateRequest struct {
	FromMemberID string     `json:"from_member_id" validate:"required,uuid"`
	ToMemberID   string     `json:"to_member_id" validate:"required,uuid"`
	Amount       string     `json:"amount" validate:"required"`
	Notes        string     `json:"notes,omitempty" validate:"omitempty,max=500"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

func (req settlementCreateRequest) toInput() (settlements.CreateSettlementInput, error) {
	from, err := uuid.Parse(req.FromMemberID)
	if err != nil {
		return settlements.CreateSettlementInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payer member id")
	}
	to, err := uuid.Parse(req.ToMemberID)
	if err != nil {
		return settlements.CreateSettlementInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receiver member id")
	}
	cents, err := money.ParsePositiveCents(req.Amount)
	if err != nil {
		return settlements.CreateSettlementInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	return settlements.CreateSettlementInput{
		FromMemberID: from,
		ToMemberID:   to,
		AmountCents:  cents,
		Notes:        req.Notes,
		SettledAt:    req.SettledAt,
	}, nil
}

// SettlementCreate records a repayment between two members.
func SettlementCreate(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
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

		var payload settlementCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settlement, err := svc.Create(r.Context(), userID, groupID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, settlement)
	}
}

// SettlementList returns a cursor-paged page of settlements, newest first.
func SettlementList(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
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
