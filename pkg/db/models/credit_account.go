package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// CreditAccount is one customer's revolving credit line. At most one account
// per customer may be active at a time (partial unique index in the schema).
type CreditAccount struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	ApprovedLimit   decimal.Decimal     `gorm:"column:approved_limit;type:numeric(14,2);not null"`
	PrincipalOwed   decimal.Decimal     `gorm:"column:principal_owed;type:numeric(14,2);not null;default:0"`
	AccruedInterest decimal.Decimal     `gorm:"column:accrued_interest;type:numeric(14,2);not null;default:0"`
	InterestRate    decimal.Decimal     `gorm:"column:interest_rate;type:numeric(8,6);not null"`
	Status          enums.AccountStatus `gorm:"column:status;type:text;not null;default:'active'"`
	TermDays        int                 `gorm:"column:term_days;not null"`
	GrantedAt       time.Time           `gorm:"column:granted_at;not null"`
	DueAt           time.Time           `gorm:"column:due_at;not null"`
	InterestAsOf    *time.Time          `gorm:"column:interest_as_of"`
	Version         int64               `gorm:"column:version;not null;default:0"`
	Installments    []Installment       `gorm:"foreignKey:AccountID;constraint:OnDelete:RESTRICT"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// AvailableForPurchase is the approved limit minus owed principal, clamped at zero.
func (a CreditAccount) AvailableForPurchase() decimal.Decimal {
	available := a.ApprovedLimit.Sub(a.PrincipalOwed)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// TotalPayable is owed principal plus accrued interest.
func (a CreditAccount) TotalPayable() decimal.Decimal {
	return a.PrincipalOwed.Add(a.AccruedInterest)
}
