package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
)

// Repository persists transition history rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.TransitionEvent) error
	ListBySubject(ctx context.Context, subjectType string, subjectID uuid.UUID, limit int) ([]models.TransitionEvent, error)
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

func (r *repository) Create(ctx context.Context, event *models.TransitionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListBySubject(ctx context.Context, subjectType string, subjectID uuid.UUID, limit int) ([]models.TransitionEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.TransitionEvent
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("occurred_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
