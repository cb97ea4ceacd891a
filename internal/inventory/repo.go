package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
)

// Repository persists per-product stock counters. The guarded updates return
// gorm.ErrRecordNotFound-free row counts so the service can distinguish a
// missing product from an insufficient balance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, productID uuid.UUID) (*models.InventoryItem, error)
	Upsert(ctx context.Context, item *models.InventoryItem) error
	// MoveAvailableToReserved decrements available and increments reserved,
	// guarded so available never drops below zero. Returns rows affected.
	MoveAvailableToReserved(ctx context.Context, productID uuid.UUID, qty int) (int64, error)
	// MoveReservedToAvailable is the inverse guard on the reserved counter.
	MoveReservedToAvailable(ctx context.Context, productID uuid.UUID, qty int) (int64, error)
	// ConsumeReserved burns reserved units without returning them to stock.
	ConsumeReserved(ctx context.Context, productID uuid.UUID, qty int) (int64, error)
	// AddAvailable increments available by delta; negative deltas are guarded
	// against underflow. Returns rows affected.
	AddAvailable(ctx context.Context, productID uuid.UUID, delta int) (int64, error)
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

func (r *repository) Find(ctx context.Context, productID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Upsert(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) MoveAvailableToReserved(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND available_qty >= ?", productID, qty).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty - ?", qty),
			"reserved_qty":  gorm.Expr("reserved_qty + ?", qty),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) MoveReservedToAvailable(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND reserved_qty >= ?", productID, qty).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty + ?", qty),
			"reserved_qty":  gorm.Expr("reserved_qty - ?", qty),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ConsumeReserved(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND reserved_qty >= ?", productID, qty).
		Update("reserved_qty", gorm.Expr("reserved_qty - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *repository) AddAvailable(ctx context.Context, productID uuid.UUID, delta int) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ?", productID)
	if delta < 0 {
		query = query.Where("available_qty >= ?", -delta)
	}
	res := query.Update("available_qty", gorm.Expr("available_qty + ?", delta))
	return res.RowsAffected, res.Error
}
