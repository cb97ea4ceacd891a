package returns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
)

// Repository persists sale returns and reads the sales they net against.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSale(ctx context.Context, saleID uuid.UUID) (*models.Sale, error)
	ExistsForSale(ctx context.Context, saleID uuid.UUID) (bool, error)
	Create(ctx context.Context, saleReturn *models.SaleReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SaleReturn, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
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

func (r *repository) FindSale(ctx context.Context, saleID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", saleID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) ExistsForSale(ctx context.Context, saleID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SaleReturn{}).
		Where("sale_id = ?", saleID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Create(ctx context.Context, saleReturn *models.SaleReturn) error {
	return r.db.WithContext(ctx).Create(saleReturn).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SaleReturn, error) {
	var saleReturn models.SaleReturn
	err := r.db.WithContext(ctx).
		Preload("ReturnedItems").
		Preload("ExchangeItems").
		Preload("SupplierCase").
		Where("id = ?", id).
		First(&saleReturn).Error
	if err != nil {
		return nil, err
	}
	return &saleReturn, nil
}

func (r *repository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
