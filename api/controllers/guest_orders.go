package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/api/responses"
	"github.com/dromero-dev/casagrande-backend/api/validators"
	"github.com/dromero-dev/casagrande-backend/internal/guestorders"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

type guestOrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type guestOrderCreateRequest struct {
	ContactName  string                  `json:"contact_name" validate:"required"`
	ContactPhone string                  `json:"contact_phone" validate:"required"`
	Lines        []guestOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type guestOrderCreateResponse struct {
	Order guestOrderResponse `json:"order"`
	// Token is shown exactly once; only its hash is stored.
	Token string `json:"token"`
}

// GuestOrderCreate opens an order, reserves its stock and issues the access
// token.
func GuestOrderCreate(svc guestorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload guestOrderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := guestorders.CreateInput{
			ContactName:  strings.TrimSpace(payload.ContactName),
			ContactPhone: strings.TrimSpace(payload.ContactPhone),
		}
		for _, line := range payload.Lines {
			productID, err := uuid.Parse(strings.TrimSpace(line.ProductID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id"))
				return
			}
			input.Lines = append(input.Lines, guestorders.CreateLineInput{
				ProductID: productID,
				Quantity:  line.Quantity,
			})
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, guestOrderCreateResponse{
			Order: guestOrderResponseFromModel(result.Order),
			Token: result.Token,
		})
	}
}

// GuestOrderGet resolves an order from its access token. Expired timeboxed
// orders come back already cancelled.
func GuestOrderGet(svc guestorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(chi.URLParam(r, "token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing token"))
			return
		}

		order, err := svc.GetByToken(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, guestOrderResponseFromModel(order))
	}
}

type guestOrderProofRequest struct {
	ObjectRef string  `json:"object_ref" validate:"required"`
	Note      *string `json:"note"`
}

// GuestOrderSubmitProof attaches a transfer proof through the access token.
func GuestOrderSubmitProof(svc guestorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(chi.URLParam(r, "token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing token"))
			return
		}

		var payload guestOrderProofRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		proof, err := svc.SubmitProof(r.Context(), guestorders.SubmitProofInput{
			Token:     token,
			ObjectRef: strings.TrimSpace(payload.ObjectRef),
			Note:      payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, proofResponseFromModel(proof))
	}
}

type guestOrderTimeboxRequest struct {
	Deadline *time.Time `json:"deadline"`
}

// GuestOrderTimebox arms the payment deadline. An omitted deadline falls back
// to the configured payment window.
func GuestOrderTimebox(svc guestorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload guestOrderTimeboxRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := guestorders.TimeboxInput{OrderID: orderID, ActorUserID: actorID}
		if payload.Deadline != nil {
			input.Deadline = *payload.Deadline
		}

		order, err := svc.Timebox(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, guestOrderResponseFromModel(order))
	}
}

type guestOrderVerifyPaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// GuestOrderVerifyPayment records an admin-verified payment amount and
// confirms the order once it is fully covered.
func GuestOrderVerifyPayment(svc guestorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload guestOrderVerifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(payload.Amount))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		order, err := svc.VerifyPayment(r.Context(), guestorders.VerifyPaymentInput{
			OrderID:     orderID,
			Amount:      amount,
			ActorUserID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, guestOrderResponseFromModel(order))
	}
}

type guestOrderCancelRequest struct {
	Reason *string `json:"reason"`
}

// GuestOrderCancel cancels an open order and releases its reserved stock.
func GuestOrderCancel(svc guestorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload guestOrderCancelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), guestorders.CancelInput{
			OrderID:     orderID,
			Reason:      payload.Reason,
			ActorUserID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, guestOrderResponseFromModel(order))
	}
}

// GuestOrderShip moves a confirmed order into fulfilment.
func GuestOrderShip(svc guestorders.Service, logg *logger.Logger) http.HandlerFunc {
	return fulfilmentHandler(svc.MarkShipped, logg)
}

// GuestOrderDeliver closes a shipped order.
func GuestOrderDeliver(svc guestorders.Service, logg *logger.Logger) http.HandlerFunc {
	return fulfilmentHandler(svc.MarkDelivered, logg)
}

func fulfilmentHandler(op func(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.GuestOrder, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := op(r.Context(), orderID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, guestOrderResponseFromModel(order))
	}
}

type guestOrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type proofResponse struct {
	ID          uuid.UUID `json:"id"`
	ObjectRef   string    `json:"object_ref"`
	Note        *string   `json:"note,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func proofResponseFromModel(m *models.PaymentProof) proofResponse {
	return proofResponse{
		ID:          m.ID,
		ObjectRef:   m.ObjectRef,
		Note:        m.Note,
		SubmittedAt: m.SubmittedAt,
	}
}

type guestOrderResponse struct {
	ID              uuid.UUID                `json:"id"`
	ContactName     string                   `json:"contact_name"`
	ContactPhone    string                   `json:"contact_phone"`
	Status          enums.GuestOrderStatus   `json:"status"`
	Total           decimal.Decimal          `json:"total"`
	VerifiedPaid    decimal.Decimal          `json:"verified_paid"`
	CreditUsed      decimal.Decimal          `json:"credit_used"`
	PaymentDeadline *time.Time               `json:"payment_deadline,omitempty"`
	LastProofAt     *time.Time               `json:"last_proof_at,omitempty"`
	CancelledAt     *time.Time               `json:"cancelled_at,omitempty"`
	Items           []guestOrderItemResponse `json:"items"`
	Proofs          []proofResponse          `json:"proofs,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

func guestOrderResponseFromModel(m *models.GuestOrder) guestOrderResponse {
	resp := guestOrderResponse{
		ID:              m.ID,
		ContactName:     m.ContactName,
		ContactPhone:    m.ContactPhone,
		Status:          m.Status,
		Total:           m.Total,
		VerifiedPaid:    m.VerifiedPaid,
		CreditUsed:      m.CreditUsed,
		PaymentDeadline: m.PaymentDeadline,
		LastProofAt:     m.LastProofAt,
		CancelledAt:     m.CancelledAt,
		CreatedAt:       m.CreatedAt,
	}
	for _, item := range m.Items {
		resp.Items = append(resp.Items, guestOrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	for i := range m.Proofs {
		resp.Proofs = append(resp.Proofs, proofResponseFromModel(&m.Proofs[i]))
	}
	return resp
}
