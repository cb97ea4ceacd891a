package guestorders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// Repository persists guest orders. Every status change goes through a
// guarded update so concurrent transitions resolve to exactly one winner.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.GuestOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GuestOrder, error)
	FindByTokenID(ctx context.Context, tokenID string) (*models.GuestOrder, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	// TransitionStatus applies updates only while the order sits in one of
	// the from statuses. Returns rows affected.
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from []enums.GuestOrderStatus, updates map[string]any) (int64, error)
	// ExpireTimeboxed cancels a timeboxed order unless a proof arrived after
	// the timebox was armed. Returns rows affected.
	ExpireTimeboxed(ctx context.Context, orderID uuid.UUID, cancelledAt time.Time) (int64, error)
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]models.GuestOrder, error)
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

func (r *repository) Create(ctx context.Context, order *models.GuestOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GuestOrder, error) {
	var order models.GuestOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Proofs").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByTokenID(ctx context.Context, tokenID string) (*models.GuestOrder, error) {
	var order models.GuestOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Proofs").
		Where("token_id = ?", tokenID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return byID, nil
}

func (r *repository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from []enums.GuestOrderStatus, updates map[string]any) (int64, error) {
	merged := make(map[string]any, len(updates)+1)
	for key, value := range updates {
		merged[key] = value
	}
	merged["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).
		Model(&models.GuestOrder{}).
		Where("id = ? AND status IN ?", orderID, from).
		Updates(merged)
	return res.RowsAffected, res.Error
}

func (r *repository) ExpireTimeboxed(ctx context.Context, orderID uuid.UUID, cancelledAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GuestOrder{}).
		Where("id = ? AND status = ?", orderID, enums.GuestOrderStatusAwaitingPaymentTimeboxed).
		Where("last_proof_at IS NULL OR last_proof_at <= timeboxed_at").
		Updates(map[string]any{
			"status":           enums.GuestOrderStatusCancelledByInactivity,
			"payment_deadline": nil,
			"cancelled_at":     cancelledAt,
			"version":          gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]models.GuestOrder, error) {
	var orders []models.GuestOrder
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", enums.GuestOrderStatusAwaitingPaymentTimeboxed).
		Where("payment_deadline < ?", now).
		Where("last_proof_at IS NULL OR last_proof_at <= timeboxed_at").
		Order("payment_deadline ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
