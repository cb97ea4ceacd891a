package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry the engine prices sales, exchanges and
// supplier reconciliation against.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	SKU        string          `gorm:"column:sku;not null;uniqueIndex"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	Categories pq.StringArray  `gorm:"column:categories;type:text[]"`
	Active     bool            `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
