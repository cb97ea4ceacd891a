package suppliercases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// Repository persists supplier return cases. Both lifecycle transitions are
// status-guarded updates so they land exactly once.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierReturnCase, error)
	FindByReturnID(ctx context.Context, returnID uuid.UUID) (*models.SupplierReturnCase, error)
	// ShipPending flips pending to shipped, stamping the supplier and
	// timestamp. Returns rows affected.
	ShipPending(ctx context.Context, caseID, supplierID uuid.UUID, shippedAt time.Time) (int64, error)
	CreateLines(ctx context.Context, lines []models.SupplierReturnLine) error
	// ReconcileShipped flips shipped to the reconciliation outcome. Returns
	// rows affected.
	ReconcileShipped(ctx context.Context, caseID uuid.UUID, outcome enums.SupplierCaseStatus, reconciledAt, receptionDate time.Time) (int64, error)
	SaveLineReception(ctx context.Context, line *models.SupplierReturnLine) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierReturnCase, error) {
	var supplierCase models.SupplierReturnCase
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&supplierCase).Error
	if err != nil {
		return nil, err
	}
	return &supplierCase, nil
}

func (r *repository) FindByReturnID(ctx context.Context, returnID uuid.UUID) (*models.SupplierReturnCase, error) {
	var supplierCase models.SupplierReturnCase
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("return_id = ?", returnID).
		First(&supplierCase).Error
	if err != nil {
		return nil, err
	}
	return &supplierCase, nil
}

func (r *repository) ShipPending(ctx context.Context, caseID, supplierID uuid.UUID, shippedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SupplierReturnCase{}).
		Where("id = ? AND status = ?", caseID, enums.SupplierCaseStatusPending).
		Updates(map[string]any{
			"status":      enums.SupplierCaseStatusShipped,
			"supplier_id": supplierID,
			"shipped_at":  shippedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.SupplierReturnLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) ReconcileShipped(ctx context.Context, caseID uuid.UUID, outcome enums.SupplierCaseStatus, reconciledAt, receptionDate time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SupplierReturnCase{}).
		Where("id = ? AND status = ?", caseID, enums.SupplierCaseStatusShipped).
		Updates(map[string]any{
			"status":         outcome,
			"reconciled_at":  reconciledAt,
			"reception_date": receptionDate,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) SaveLineReception(ctx context.Context, line *models.SupplierReturnLine) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierReturnLine{}).
		Where("id = ?", line.ID).
		Updates(map[string]any{
			"quantity_received":     line.QuantityReceived,
			"substitute_product_id": line.SubstituteProductID,
			"reception_notes":       line.ReceptionNotes,
			"received_at":           line.ReceivedAt,
		}).Error
}
