package creditrequests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// Repository persists credit requests. The decision update is guarded on the
// pending status so only one verdict ever lands.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.CreditRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CreditRequest, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CreditRequest, error)
	HasPendingForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error)
	// DecidePending stamps the verdict fields on a still-pending request.
	// Returns rows affected: zero means the request was already decided.
	DecidePending(ctx context.Context, request *models.CreditRequest) (int64, error)
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

func (r *repository) Create(ctx context.Context, request *models.CreditRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CreditRequest, error) {
	var request models.CreditRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CreditRequest, error) {
	var rows []models.CreditRequest
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) HasPendingForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CreditRequest{}).
		Where("customer_id = ? AND status = ?", customerID, enums.CreditRequestStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) DecidePending(ctx context.Context, request *models.CreditRequest) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CreditRequest{}).
		Where("id = ? AND status = ?", request.ID, enums.CreditRequestStatusPending).
		Updates(map[string]any{
			"status":               request.Status,
			"approved_amount":      request.ApprovedAmount,
			"decision_note":        request.DecisionNote,
			"decided_by":           request.DecidedBy,
			"decided_at":           request.DecidedAt,
			"resulting_account_id": request.ResultingAccountID,
		})
	return res.RowsAffected, res.Error
}
