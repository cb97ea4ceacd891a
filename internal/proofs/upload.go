package proofs

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
)

// Signer issues signed storage URLs. Satisfied by the GCS client.
type Signer interface {
	SignedURL(method, object, contentType string, expires time.Duration) (string, error)
}

// UploadPlan is everything a caller needs to PUT one proof image and then
// submit its object reference.
type UploadPlan struct {
	ObjectRef        string `json:"object_ref"`
	UploadURL        string `json:"upload_url"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

// UploadPlanner hands out one-shot signed upload slots for proof images.
type UploadPlanner interface {
	PlanUpload(subjectType enums.ProofSubjectType, contentType string) (*UploadPlan, error)
}

var uploadExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"application/pdf": "pdf",
}

type uploadPlanner struct {
	signer Signer
	expiry time.Duration
}

func NewUploadPlanner(signer Signer, expiry time.Duration) (UploadPlanner, error) {
	if signer == nil {
		return nil, fmt.Errorf("storage signer required")
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("upload expiry must be positive")
	}
	return &uploadPlanner{signer: signer, expiry: expiry}, nil
}

func (p *uploadPlanner) PlanUpload(subjectType enums.ProofSubjectType, contentType string) (*UploadPlan, error) {
	if !subjectType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid proof subject type")
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := uploadExtensions[contentType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported proof content type").
			WithDetails(map[string]any{"content_type": contentType})
	}

	object := fmt.Sprintf("proofs/%s/%s.%s", subjectType, uuid.NewString(), ext)
	uploadURL, err := p.signer.SignedURL(http.MethodPut, object, contentType, p.expiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &UploadPlan{
		ObjectRef:        object,
		UploadURL:        uploadURL,
		ExpiresInSeconds: int64(p.expiry / time.Second),
	}, nil
}
