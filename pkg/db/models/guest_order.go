package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// GuestOrder is a checkout that pays by transfer proof instead of an
// authenticated account. The access token secret is stored hashed; the
// public token id is what the URL carries.
type GuestOrder struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TokenID         string                 `gorm:"column:token_id;not null;uniqueIndex"`
	TokenSecretHash string                 `gorm:"column:token_secret_hash;not null"`
	ContactName     string                 `gorm:"column:contact_name;not null"`
	ContactPhone    string                 `gorm:"column:contact_phone;not null"`
	Status          enums.GuestOrderStatus `gorm:"column:status;type:text;not null;default:'awaiting_payment'"`
	Total           decimal.Decimal        `gorm:"column:total;type:numeric(14,2);not null"`
	VerifiedPaid    decimal.Decimal        `gorm:"column:verified_paid;type:numeric(14,2);not null;default:0"`
	CreditUsed      decimal.Decimal        `gorm:"column:credit_used;type:numeric(14,2);not null;default:0"`
	PaymentDeadline *time.Time             `gorm:"column:payment_deadline"`
	LastProofAt     *time.Time             `gorm:"column:last_proof_at"`
	TimeboxedAt     *time.Time             `gorm:"column:timeboxed_at"`
	CancelledAt     *time.Time             `gorm:"column:cancelled_at"`
	Version         int64                  `gorm:"column:version;not null;default:0"`
	Items           []GuestOrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Proofs          []PaymentProof         `gorm:"polymorphic:Subject;polymorphicValue:guest_order"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// GuestOrderItem is one reserved line of a guest order.
type GuestOrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
