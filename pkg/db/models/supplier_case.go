package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// SupplierReturnCase tracks defective returned goods through the supplier
// reconciliation sub-workflow. At most one case per sale return.
type SupplierReturnCase struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnID       uuid.UUID                `gorm:"column:return_id;type:uuid;not null;uniqueIndex"`
	SupplierID     *uuid.UUID               `gorm:"column:supplier_id;type:uuid"`
	Status         enums.SupplierCaseStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ShippedAt      *time.Time               `gorm:"column:shipped_at"`
	ReconciledAt   *time.Time               `gorm:"column:reconciled_at"`
	ReceptionDate  *time.Time               `gorm:"column:reception_date;type:date"`
	Lines          []SupplierReturnLine     `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// SupplierReturnLine reconciles shipped vs. received quantities per product.
// The supplier may substitute a different product on reception.
type SupplierReturnLine struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID              uuid.UUID  `gorm:"column:case_id;type:uuid;not null;index"`
	ProductID           uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	QuantityShipped     int        `gorm:"column:quantity_shipped;not null"`
	QuantityReceived    int        `gorm:"column:quantity_received;not null;default:0"`
	SubstituteProductID *uuid.UUID `gorm:"column:substitute_product_id;type:uuid"`
	ReceptionNotes      *string    `gorm:"column:reception_notes"`
	ReceivedAt          *time.Time `gorm:"column:received_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
