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
	"github.com/dromero-dev/casagrande-backend/internal/returns"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

type returnLineRequest struct {
	SaleItemID string `json:"sale_item_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	Reason     string `json:"reason" validate:"required"`
}

type exchangeLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type saleReturnCreateRequest struct {
	GeneralReason *string               `json:"general_reason"`
	Lines         []returnLineRequest   `json:"lines" validate:"required,min=1,dive"`
	Exchanges     []exchangeLineRequest `json:"exchanges" validate:"dive"`
	RefundMethod  *string               `json:"refund_method"`
	PaymentMethod *string               `json:"payment_method"`
}

func (req saleReturnCreateRequest) toInput(saleID, actorID uuid.UUID) (returns.CreateReturnInput, error) {
	input := returns.CreateReturnInput{
		SaleID:        saleID,
		GeneralReason: req.GeneralReason,
		ActorUserID:   actorID,
	}

	for _, line := range req.Lines {
		saleItemID, err := uuid.Parse(strings.TrimSpace(line.SaleItemID))
		if err != nil {
			return returns.CreateReturnInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale_item_id")
		}
		reason, err := enums.ParseReturnReason(strings.TrimSpace(line.Reason))
		if err != nil {
			return returns.CreateReturnInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reason")
		}
		input.Lines = append(input.Lines, returns.ReturnLineInput{
			SaleItemID: saleItemID,
			Quantity:   line.Quantity,
			Reason:     reason,
		})
	}

	for _, line := range req.Exchanges {
		productID, err := uuid.Parse(strings.TrimSpace(line.ProductID))
		if err != nil {
			return returns.CreateReturnInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id")
		}
		input.Exchanges = append(input.Exchanges, returns.ExchangeLineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	if req.RefundMethod != nil {
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(*req.RefundMethod))
		if err != nil {
			return returns.CreateReturnInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid refund_method")
		}
		input.RefundMethod = &method
	}
	if req.PaymentMethod != nil {
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(*req.PaymentMethod))
		if err != nil {
			return returns.CreateReturnInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_method")
		}
		input.PaymentMethod = &method
	}

	return input, nil
}

type settlementResponse struct {
	TotalReturned  decimal.Decimal           `json:"total_returned"`
	TotalExchanged decimal.Decimal           `json:"total_exchanged"`
	Amount         decimal.Decimal           `json:"amount"`
	Direction      enums.SettlementDirection `json:"direction"`
	ExchangeKind   enums.ExchangeKind        `json:"exchange_kind"`
}

type saleReturnCreateResponse struct {
	Return     saleReturnResponse `json:"return"`
	Settlement settlementResponse `json:"settlement"`
	Account    *credit.Snapshot   `json:"account,omitempty"`
}

// SaleReturnCreate settles returned and exchanged merchandise for one sale.
func SaleReturnCreate(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := validators.UUIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload saleReturnCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(saleID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateReturn(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, saleReturnCreateResponse{
			Return: saleReturnResponseFromModel(result.Return),
			Settlement: settlementResponse{
				TotalReturned:  result.Settlement.TotalReturned,
				TotalExchanged: result.Settlement.TotalExchanged,
				Amount:         result.Settlement.Amount,
				Direction:      result.Settlement.Direction,
				ExchangeKind:   result.Settlement.ExchangeKind,
			},
			Account: result.Account,
		})
	}
}

type returnItemResponse struct {
	ID               uuid.UUID          `json:"id"`
	SaleItemID       uuid.UUID          `json:"sale_item_id"`
	ProductID        uuid.UUID          `json:"product_id"`
	QuantityReturned int                `json:"quantity_returned"`
	UnitPrice        decimal.Decimal    `json:"unit_price"`
	Reason           enums.ReturnReason `json:"reason"`
}

type exchangeItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type saleReturnResponse struct {
	ID                  uuid.UUID                 `json:"id"`
	SaleID              uuid.UUID                 `json:"sale_id"`
	GeneralReason       *string                   `json:"general_reason,omitempty"`
	SettlementDirection enums.SettlementDirection `json:"settlement_direction"`
	SettlementAmount    decimal.Decimal           `json:"settlement_amount"`
	TotalReturned       decimal.Decimal           `json:"total_returned"`
	TotalExchanged      decimal.Decimal           `json:"total_exchanged"`
	ExchangeKind        enums.ExchangeKind        `json:"exchange_kind"`
	RefundMethod        *enums.PaymentMethod      `json:"refund_method,omitempty"`
	PaymentMethod       *enums.PaymentMethod      `json:"payment_method,omitempty"`
	ProcessedBy         uuid.UUID                 `json:"processed_by"`
	ReturnedItems       []returnItemResponse      `json:"returned_items"`
	ExchangeItems       []exchangeItemResponse    `json:"exchange_items,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
}

func saleReturnResponseFromModel(m *models.SaleReturn) saleReturnResponse {
	resp := saleReturnResponse{
		ID:                  m.ID,
		SaleID:              m.SaleID,
		GeneralReason:       m.GeneralReason,
		SettlementDirection: m.SettlementDirection,
		SettlementAmount:    m.SettlementAmount,
		TotalReturned:       m.TotalReturned,
		TotalExchanged:      m.TotalExchanged,
		ExchangeKind:        m.ExchangeKind,
		RefundMethod:        m.RefundMethod,
		PaymentMethod:       m.PaymentMethod,
		ProcessedBy:         m.ProcessedBy,
		CreatedAt:           m.CreatedAt,
	}
	for _, item := range m.ReturnedItems {
		resp.ReturnedItems = append(resp.ReturnedItems, returnItemResponse{
			ID:               item.ID,
			SaleItemID:       item.SaleItemID,
			ProductID:        item.ProductID,
			QuantityReturned: item.QuantityReturned,
			UnitPrice:        item.UnitPrice,
			Reason:           item.Reason,
		})
	}
	for _, item := range m.ExchangeItems {
		resp.ExchangeItems = append(resp.ExchangeItems, exchangeItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return resp
}
