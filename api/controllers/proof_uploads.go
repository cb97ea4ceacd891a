package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dromero-dev/casagrande-backend/api/responses"
	"github.com/dromero-dev/casagrande-backend/api/validators"
	"github.com/dromero-dev/casagrande-backend/internal/guestorders"
	"github.com/dromero-dev/casagrande-backend/internal/proofs"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

type proofUploadRequest struct {
	SubjectType string `json:"subject_type" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// ProofUploadPresign hands staff a signed PUT URL for a proof image. The
// returned object_ref is what installment submission expects in proof_ref.
func ProofUploadPresign(planner proofs.UploadPlanner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if planner == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proof uploads unavailable"))
			return
		}

		var payload proofUploadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subjectType := enums.ProofSubjectType(strings.TrimSpace(payload.SubjectType))
		plan, err := planner.PlanUpload(subjectType, payload.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, plan)
	}
}

type guestProofUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

// GuestOrderProofUploadPresign is the guest-facing variant, authenticated by
// the order token like the rest of the guest surface.
func GuestOrderProofUploadPresign(svc guestorders.Service, planner proofs.UploadPlanner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if planner == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proof uploads unavailable"))
			return
		}

		token := chi.URLParam(r, "token")
		if _, err := svc.GetByToken(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload guestProofUploadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := planner.PlanUpload(enums.ProofSubjectGuestOrder, payload.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, plan)
	}
}
