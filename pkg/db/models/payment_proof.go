package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// PaymentProof is an opaque blob-store reference supporting a pending
// payment. Multiple proofs may accumulate while the subject is undecided.
type PaymentProof struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubjectType enums.ProofSubjectType `gorm:"column:subject_type;type:text;not null;index:idx_payment_proofs_subject"`
	SubjectID   uuid.UUID              `gorm:"column:subject_id;type:uuid;not null;index:idx_payment_proofs_subject"`
	ObjectRef   string                 `gorm:"column:object_ref;not null"`
	Note        *string                `gorm:"column:note"`
	SubmittedAt time.Time              `gorm:"column:submitted_at;not null"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
