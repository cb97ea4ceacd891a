package controllers

import (
	"net/http"

	"github.com/dromero-dev/casagrande-backend/api/responses"
	"github.com/dromero-dev/casagrande-backend/api/validators"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/installments"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

type installmentVerifyResponse struct {
	Installment installmentResponse `json:"installment"`
	Account     *credit.Snapshot    `json:"account"`
}

// InstallmentVerify applies the proofed payment to the account balance.
func InstallmentVerify(svc installments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		installmentID, err := validators.UUIDParam(r, "installmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), installments.DecideInput{
			InstallmentID: installmentID,
			ActorUserID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, installmentVerifyResponse{
			Installment: installmentResponseFromModel(result.Installment),
			Account:     result.Account,
		})
	}
}

type installmentRejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// InstallmentReject declines the proof without touching the balance.
func InstallmentReject(svc installments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		installmentID, err := validators.UUIDParam(r, "installmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload installmentRejectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rejected, err := svc.Reject(r.Context(), installments.DecideInput{
			InstallmentID: installmentID,
			ActorUserID:   actorID,
			Reason:        &payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, installmentResponseFromModel(rejected))
	}
}
