package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/api/responses"
	"github.com/dromero-dev/casagrande-backend/api/validators"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/creditrequests"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

type creditRequestCreateRequest struct {
	CustomerID      string `json:"customer_id" validate:"required"`
	RequestedAmount string `json:"requested_amount" validate:"required"`
	TermDays        int    `json:"term_days" validate:"required,gt=0"`
}

// CreditRequestCreate files a pending request for a credit line.
func CreditRequestCreate(svc creditrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload creditRequestCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := uuid.Parse(strings.TrimSpace(payload.CustomerID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id"))
			return
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(payload.RequestedAmount))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid requested_amount"))
			return
		}

		created, err := svc.Create(r.Context(), creditrequests.CreateInput{
			CustomerID:      customerID,
			RequestedAmount: amount,
			TermDays:        payload.TermDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, creditRequestResponseFromModel(created))
	}
}

type creditRequestDecideRequest struct {
	Verdict        string  `json:"verdict" validate:"required,oneof=approve reject"`
	ApprovedAmount *string `json:"approved_amount"`
	Note           *string `json:"note"`
}

type creditRequestDecideResponse struct {
	Request creditRequestResponse `json:"request"`
	Account *credit.Snapshot      `json:"account,omitempty"`
}

// CreditRequestDecide applies the one-shot approve/reject verdict. Approval
// opens the account in the same transaction.
func CreditRequestDecide(svc creditrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.UUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload creditRequestDecideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := creditrequests.DecideInput{
			RequestID:   requestID,
			Verdict:     creditrequests.Verdict(payload.Verdict),
			Note:        payload.Note,
			ActorUserID: actorID,
		}
		if payload.ApprovedAmount != nil {
			amount, err := decimal.NewFromString(strings.TrimSpace(*payload.ApprovedAmount))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid approved_amount"))
				return
			}
			input.ApprovedAmount = &amount
		}

		result, err := svc.Decide(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, creditRequestDecideResponse{
			Request: creditRequestResponseFromModel(result.Request),
			Account: result.Account,
		})
	}
}

type creditRequestResponse struct {
	ID                 uuid.UUID                 `json:"id"`
	CustomerID         uuid.UUID                 `json:"customer_id"`
	RequestedAmount    decimal.Decimal           `json:"requested_amount"`
	RequestedTermDays  int                       `json:"requested_term_days"`
	Status             enums.CreditRequestStatus `json:"status"`
	ApprovedAmount     *decimal.Decimal          `json:"approved_amount,omitempty"`
	DecisionNote       *string                   `json:"decision_note,omitempty"`
	DecidedBy          *uuid.UUID                `json:"decided_by,omitempty"`
	DecidedAt          *time.Time                `json:"decided_at,omitempty"`
	ResultingAccountID *uuid.UUID                `json:"resulting_account_id,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
}

func creditRequestResponseFromModel(m *models.CreditRequest) creditRequestResponse {
	return creditRequestResponse{
		ID:                 m.ID,
		CustomerID:         m.CustomerID,
		RequestedAmount:    m.RequestedAmount,
		RequestedTermDays:  m.RequestedTermDays,
		Status:             m.Status,
		ApprovedAmount:     m.ApprovedAmount,
		DecisionNote:       m.DecisionNote,
		DecidedBy:          m.DecidedBy,
		DecidedAt:          m.DecidedAt,
		ResultingAccountID: m.ResultingAccountID,
		CreatedAt:          m.CreatedAt,
	}
}
