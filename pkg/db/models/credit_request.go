package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// CreditRequest precedes a CreditAccount. One decision, terminal afterwards.
type CreditRequest struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID         uuid.UUID                 `gorm:"column:customer_id;type:uuid;not null"`
	RequestedAmount    decimal.Decimal           `gorm:"column:requested_amount;type:numeric(14,2);not null"`
	RequestedTermDays  int                       `gorm:"column:requested_term_days;not null"`
	Status             enums.CreditRequestStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ApprovedAmount     *decimal.Decimal          `gorm:"column:approved_amount;type:numeric(14,2)"`
	DecisionNote       *string                   `gorm:"column:decision_note"`
	DecidedBy          *uuid.UUID                `gorm:"column:decided_by;type:uuid"`
	DecidedAt          *time.Time                `gorm:"column:decided_at"`
	ResultingAccountID *uuid.UUID                `gorm:"column:resulting_account_id;type:uuid"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
