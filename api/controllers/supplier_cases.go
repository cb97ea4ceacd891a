package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dromero-dev/casagrande-backend/api/responses"
	"github.com/dromero-dev/casagrande-backend/api/validators"
	"github.com/dromero-dev/casagrande-backend/internal/suppliercases"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

type supplierCaseShipLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type supplierCaseShipRequest struct {
	SupplierID string                        `json:"supplier_id" validate:"required"`
	Lines      []supplierCaseShipLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SupplierCaseShip records the defective batch leaving for the supplier.
func SupplierCaseShip(svc suppliercases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnID, err := validators.UUIDParam(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload supplierCaseShipRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := uuid.Parse(strings.TrimSpace(payload.SupplierID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier_id"))
			return
		}

		found, err := svc.GetByReturn(r.Context(), returnID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := suppliercases.ShipInput{
			CaseID:      found.ID,
			SupplierID:  supplierID,
			ActorUserID: actorID,
		}
		for _, line := range payload.Lines {
			productID, err := uuid.Parse(strings.TrimSpace(line.ProductID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id"))
				return
			}
			input.Lines = append(input.Lines, suppliercases.ShipLineInput{
				ProductID: productID,
				Quantity:  line.Quantity,
			})
		}

		shipped, err := svc.Ship(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, supplierCaseResponseFromModel(shipped))
	}
}

type supplierCaseReceiveLineRequest struct {
	LineID              string  `json:"line_id" validate:"required"`
	QuantityReceived    int     `json:"quantity_received" validate:"min=0"`
	SubstituteProductID *string `json:"substitute_product_id"`
	Notes               *string `json:"notes"`
}

type supplierCaseConfirmReceptionRequest struct {
	ReceptionDate string                           `json:"reception_date" validate:"required"`
	Lines         []supplierCaseReceiveLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SupplierCaseConfirmReception reconciles received against shipped and
// restocks what came back. One shot per case.
func SupplierCaseConfirmReception(svc suppliercases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnID, err := validators.UUIDParam(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload supplierCaseConfirmReceptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receptionDate, err := time.Parse("2006-01-02", strings.TrimSpace(payload.ReceptionDate))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reception_date, expected YYYY-MM-DD"))
			return
		}

		found, err := svc.GetByReturn(r.Context(), returnID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := suppliercases.ConfirmReceptionInput{
			CaseID:        found.ID,
			ReceptionDate: receptionDate,
			ActorUserID:   actorID,
		}
		for _, line := range payload.Lines {
			lineID, err := uuid.Parse(strings.TrimSpace(line.LineID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line_id"))
				return
			}
			receiveLine := suppliercases.ReceiveLineInput{
				LineID:           lineID,
				QuantityReceived: line.QuantityReceived,
				Notes:            line.Notes,
			}
			if line.SubstituteProductID != nil {
				substituteID, err := uuid.Parse(strings.TrimSpace(*line.SubstituteProductID))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid substitute_product_id"))
					return
				}
				receiveLine.SubstituteProductID = &substituteID
			}
			input.Lines = append(input.Lines, receiveLine)
		}

		reconciled, err := svc.ConfirmReception(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, supplierCaseResponseFromModel(reconciled))
	}
}

// SupplierCaseGet returns the case opened for one sale return.
func SupplierCaseGet(svc suppliercases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnID, err := validators.UUIDParam(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.GetByReturn(r.Context(), returnID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, supplierCaseResponseFromModel(found))
	}
}

type supplierCaseLineResponse struct {
	ID                  uuid.UUID  `json:"id"`
	ProductID           uuid.UUID  `json:"product_id"`
	QuantityShipped     int        `json:"quantity_shipped"`
	QuantityReceived    int        `json:"quantity_received"`
	SubstituteProductID *uuid.UUID `json:"substitute_product_id,omitempty"`
	ReceptionNotes      *string    `json:"reception_notes,omitempty"`
	ReceivedAt          *time.Time `json:"received_at,omitempty"`
}

type supplierCaseResponse struct {
	ID            uuid.UUID                  `json:"id"`
	ReturnID      uuid.UUID                  `json:"return_id"`
	SupplierID    *uuid.UUID                 `json:"supplier_id,omitempty"`
	Status        enums.SupplierCaseStatus   `json:"status"`
	ShippedAt     *time.Time                 `json:"shipped_at,omitempty"`
	ReconciledAt  *time.Time                 `json:"reconciled_at,omitempty"`
	ReceptionDate *string                    `json:"reception_date,omitempty"`
	Lines         []supplierCaseLineResponse `json:"lines"`
	CreatedAt     time.Time                  `json:"created_at"`
}

func supplierCaseResponseFromModel(m *models.SupplierReturnCase) supplierCaseResponse {
	resp := supplierCaseResponse{
		ID:           m.ID,
		ReturnID:     m.ReturnID,
		SupplierID:   m.SupplierID,
		Status:       m.Status,
		ShippedAt:    m.ShippedAt,
		ReconciledAt: m.ReconciledAt,
		CreatedAt:    m.CreatedAt,
	}
	if m.ReceptionDate != nil {
		formatted := m.ReceptionDate.Format("2006-01-02")
		resp.ReceptionDate = &formatted
	}
	for _, line := range m.Lines {
		resp.Lines = append(resp.Lines, supplierCaseLineResponse{
			ID:                  line.ID,
			ProductID:           line.ProductID,
			QuantityShipped:     line.QuantityShipped,
			QuantityReceived:    line.QuantityReceived,
			SubstituteProductID: line.SubstituteProductID,
			ReceptionNotes:      line.ReceptionNotes,
			ReceivedAt:          line.ReceivedAt,
		})
	}
	return resp
}
