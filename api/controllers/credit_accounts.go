package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/api/middleware"
	"github.com/dromero-dev/casagrande-backend/api/responses"
	"github.com/dromero-dev/casagrande-backend/api/validators"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/installments"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/pagination"
)

// CreditAccountSnapshot returns the derived balance view of one account.
func CreditAccountSnapshot(svc credit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := validators.UUIDParam(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

type installmentSubmitRequest struct {
	Amount        string  `json:"amount" validate:"required"`
	PaidOn        string  `json:"paid_on" validate:"required"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	ProofRef      string  `json:"proof_ref" validate:"required"`
	ProofNote     *string `json:"proof_note"`
}

func (req installmentSubmitRequest) toInput(accountID uuid.UUID) (installments.SubmitInput, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return installments.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}

	paidOn, err := time.Parse("2006-01-02", strings.TrimSpace(req.PaidOn))
	if err != nil {
		return installments.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paid_on, expected YYYY-MM-DD")
	}

	method, err := enums.ParsePaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if err != nil {
		return installments.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_method")
	}

	return installments.SubmitInput{
		AccountID:     accountID,
		Amount:        amount,
		PaidOn:        paidOn,
		PaymentMethod: method,
		ProofRef:      strings.TrimSpace(req.ProofRef),
		ProofNote:     req.ProofNote,
	}, nil
}

// InstallmentSubmit files a pending installment against an account.
func InstallmentSubmit(svc installments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := validators.UUIDParam(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload installmentSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, installmentResponseFromModel(created))
	}
}

type installmentListResponse struct {
	Items      []installmentResponse `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// InstallmentList returns one cursor page of installments filed against an
// account, newest first.
func InstallmentList(svc installments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := validators.UUIDParam(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByAccount(r.Context(), accountID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := installmentListResponse{
			Items:      make([]installmentResponse, 0, len(list.Items)),
			NextCursor: list.NextCursor,
		}
		for i := range list.Items {
			out.Items = append(out.Items, installmentResponseFromModel(&list.Items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type installmentResponse struct {
	ID              uuid.UUID               `json:"id"`
	AccountID       uuid.UUID               `json:"account_id"`
	Amount          decimal.Decimal         `json:"amount"`
	PaidOn          string                  `json:"paid_on"`
	PaymentMethod   enums.PaymentMethod     `json:"payment_method"`
	Status          enums.InstallmentStatus `json:"status"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
	DecidedBy       *uuid.UUID              `json:"decided_by,omitempty"`
	DecidedAt       *time.Time              `json:"decided_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

func installmentResponseFromModel(m *models.Installment) installmentResponse {
	return installmentResponse{
		ID:              m.ID,
		AccountID:       m.AccountID,
		Amount:          m.Amount,
		PaidOn:          m.PaidOn.Format("2006-01-02"),
		PaymentMethod:   m.PaymentMethod,
		Status:          m.Status,
		RejectionReason: m.RejectionReason,
		DecidedBy:       m.DecidedBy,
		DecidedAt:       m.DecidedAt,
		CreatedAt:       m.CreatedAt,
	}
}

func actorFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ActorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}
