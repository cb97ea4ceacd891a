package proofs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
)

// Service attaches proof-of-payment references to decidable subjects.
type Service interface {
	AttachTx(ctx context.Context, tx *gorm.DB, input AttachInput) (*models.PaymentProof, error)
	ListBySubject(ctx context.Context, subjectType enums.ProofSubjectType, subjectID uuid.UUID) ([]models.PaymentProof, error)
}

// AttachInput records one proof reference against a subject.
type AttachInput struct {
	SubjectType enums.ProofSubjectType
	SubjectID   uuid.UUID
	ObjectRef   string
	Note        *string
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ServiceParams wires the proof service dependencies.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("proof repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) AttachTx(ctx context.Context, tx *gorm.DB, input AttachInput) (*models.PaymentProof, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if !input.SubjectType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid proof subject type")
	}
	if input.SubjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof subject id is required")
	}
	if strings.TrimSpace(input.ObjectRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof object reference is required")
	}

	proof := &models.PaymentProof{
		ID:          uuid.New(),
		SubjectType: input.SubjectType,
		SubjectID:   input.SubjectID,
		ObjectRef:   strings.TrimSpace(input.ObjectRef),
		Note:        input.Note,
		SubmittedAt: s.now(),
	}
	if err := s.repo.WithTx(tx).Create(ctx, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

func (s *service) ListBySubject(ctx context.Context, subjectType enums.ProofSubjectType, subjectID uuid.UUID) ([]models.PaymentProof, error) {
	if !subjectType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid proof subject type")
	}
	if subjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof subject id is required")
	}
	return s.repo.ListBySubject(ctx, subjectType, subjectID)
}
