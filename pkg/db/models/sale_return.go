package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// SaleReturn records the netted settlement of returned and exchanged
// merchandise for one sale. The unique index on sale_id enforces the
// one-return-per-sale rule at the storage layer.
type SaleReturn struct {
	ID                  uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID              uuid.UUID                 `gorm:"column:sale_id;type:uuid;not null;uniqueIndex"`
	GeneralReason       *string                   `gorm:"column:general_reason"`
	SettlementDirection enums.SettlementDirection `gorm:"column:settlement_direction;type:text;not null"`
	SettlementAmount    decimal.Decimal           `gorm:"column:settlement_amount;type:numeric(14,2);not null"`
	TotalReturned       decimal.Decimal           `gorm:"column:total_returned;type:numeric(14,2);not null"`
	TotalExchanged      decimal.Decimal           `gorm:"column:total_exchanged;type:numeric(14,2);not null"`
	ExchangeKind        enums.ExchangeKind        `gorm:"column:exchange_kind;type:text;not null;default:'none'"`
	RefundMethod        *enums.PaymentMethod      `gorm:"column:refund_method;type:text"`
	PaymentMethod       *enums.PaymentMethod      `gorm:"column:payment_method;type:text"`
	ProcessedBy         uuid.UUID                 `gorm:"column:processed_by;type:uuid;not null"`
	ReturnedItems       []ReturnItem              `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
	ExchangeItems       []ExchangeItem            `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
	SupplierCase        *SupplierReturnCase       `gorm:"foreignKey:ReturnID;constraint:OnDelete:RESTRICT"`
	CreatedAt           time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// ReturnItem is one returned line, bound to the original sale item.
type ReturnItem struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnID         uuid.UUID          `gorm:"column:return_id;type:uuid;not null;index"`
	SaleItemID       uuid.UUID          `gorm:"column:sale_item_id;type:uuid;not null"`
	ProductID        uuid.UUID          `gorm:"column:product_id;type:uuid;not null"`
	QuantityReturned int                `gorm:"column:quantity_returned;not null"`
	UnitPrice        decimal.Decimal    `gorm:"column:unit_price;type:numeric(14,2);not null"`
	Reason           enums.ReturnReason `gorm:"column:reason;type:text;not null"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// ExchangeItem is one replacement line handed out with the return.
type ExchangeItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnID  uuid.UUID       `gorm:"column:return_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
