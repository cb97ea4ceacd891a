package installments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	"github.com/dromero-dev/casagrande-backend/pkg/pagination"
)

// Repository persists installments. Decisions go through a status-guarded
// update so only the first verdict lands.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, installment *models.Installment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Installment, error)
	ListByAccount(ctx context.Context, params listParams) ([]models.Installment, *pagination.Cursor, error)
	// DecidePending flips a pending installment to the verdict status and
	// stamps the decision fields. Returns rows affected: zero means the
	// installment was already decided (or does not exist).
	DecidePending(ctx context.Context, id uuid.UUID, verdict enums.InstallmentStatus, decidedBy uuid.UUID, decidedAt time.Time, rejectionReason *string) (int64, error)
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

func (r *repository) Create(ctx context.Context, installment *models.Installment) error {
	return r.db.WithContext(ctx).Create(installment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).
		Preload("Proofs").
		Where("id = ?", id).
		First(&installment).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

type listParams struct {
	AccountID uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

func (r *repository) ListByAccount(ctx context.Context, params listParams) ([]models.Installment, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("account_id = ?", params.AccountID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Installment
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repository) DecidePending(ctx context.Context, id uuid.UUID, verdict enums.InstallmentStatus, decidedBy uuid.UUID, decidedAt time.Time, rejectionReason *string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("id = ? AND status = ?", id, enums.InstallmentStatusPending).
		Updates(map[string]any{
			"status":           verdict,
			"decided_by":       decidedBy,
			"decided_at":       decidedAt,
			"rejection_reason": rejectionReason,
		})
	return res.RowsAffected, res.Error
}
