package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// Installment ("abono") is a customer payment toward a credit account. It has
// no ledger effect until verified, and its verdict is terminal.
type Installment struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID       uuid.UUID               `gorm:"column:account_id;type:uuid;not null;index"`
	Amount          decimal.Decimal         `gorm:"column:amount;type:numeric(14,2);not null"`
	PaidOn          time.Time               `gorm:"column:paid_on;type:date;not null"`
	PaymentMethod   enums.PaymentMethod     `gorm:"column:payment_method;type:text;not null"`
	Status          enums.InstallmentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	RejectionReason *string                 `gorm:"column:rejection_reason"`
	DecidedBy       *uuid.UUID              `gorm:"column:decided_by;type:uuid"`
	DecidedAt       *time.Time              `gorm:"column:decided_at"`
	Proofs          []PaymentProof          `gorm:"polymorphic:Subject;polymorphicValue:installment"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
