package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransitionEvent is one append-only row of the state transition history.
// Written in the same transaction as the transition it records.
type TransitionEvent struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubjectType string          `gorm:"column:subject_type;not null;index:idx_transition_events_subject"`
	SubjectID   uuid.UUID       `gorm:"column:subject_id;type:uuid;not null;index:idx_transition_events_subject"`
	FromState   string          `gorm:"column:from_state;not null"`
	ToState     string          `gorm:"column:to_state;not null"`
	ActorUserID *uuid.UUID      `gorm:"column:actor_user_id;type:uuid"`
	Amount      *string         `gorm:"column:amount"`
	Metadata    json.RawMessage `gorm:"column:metadata;type:jsonb"`
	OccurredAt  time.Time       `gorm:"column:occurred_at;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
