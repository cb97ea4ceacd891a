package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
)

// Recorder appends transition history inside the caller's transaction.
type Recorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error
}

// RecordInput captures one state transition.
type RecordInput struct {
	SubjectType string
	SubjectID   uuid.UUID
	FromState   string
	ToState     string
	ActorUserID *uuid.UUID
	Amount      *string
	Metadata    map[string]any
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ServiceParams wires the audit recorder dependencies.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

func NewService(params ServiceParams) (Recorder, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if input.SubjectType == "" || input.SubjectID == uuid.Nil {
		return fmt.Errorf("audit subject is required")
	}
	if input.ToState == "" {
		return fmt.Errorf("target state is required")
	}

	var metadata json.RawMessage
	if input.Metadata != nil {
		encoded, err := json.Marshal(input.Metadata)
		if err != nil {
			return err
		}
		metadata = encoded
	}

	event := &models.TransitionEvent{
		ID:          uuid.New(),
		SubjectType: input.SubjectType,
		SubjectID:   input.SubjectID,
		FromState:   input.FromState,
		ToState:     input.ToState,
		ActorUserID: input.ActorUserID,
		Amount:      input.Amount,
		Metadata:    metadata,
		OccurredAt:  s.now(),
	}
	return s.repo.WithTx(tx).Create(ctx, event)
}
