package credit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// ErrStaleAccount signals that a version-checked save lost the race.
var ErrStaleAccount = errors.New("credit account version is stale")

// Repository persists credit accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.CreditAccount, error)
	FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CreditAccount, error)
	Create(ctx context.Context, account *models.CreditAccount) error
	Save(ctx context.Context, account *models.CreditAccount) error
	ListPastDueActive(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a credit account repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CreditAccount, error) {
	var account models.CreditAccount
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CreditAccount, error) {
	var account models.CreditAccount
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, enums.AccountStatusActive).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) Create(ctx context.Context, account *models.CreditAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// Save persists the mutated account guarded by its optimistic version. A
// concurrent writer that bumped the version first makes this save fail with
// ErrStaleAccount and no row change.
func (r *repository) Save(ctx context.Context, account *models.CreditAccount) error {
	currentVersion := account.Version
	res := r.db.WithContext(ctx).
		Model(&models.CreditAccount{}).
		Where("id = ? AND version = ?", account.ID, currentVersion).
		Updates(map[string]any{
			"principal_owed":   account.PrincipalOwed,
			"accrued_interest": account.AccruedInterest,
			"status":           account.Status,
			"interest_as_of":   account.InterestAsOf,
			"version":          currentVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleAccount
	}
	account.Version = currentVersion + 1
	return nil
}

func (r *repository) ListPastDueActive(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error) {
	var accounts []models.CreditAccount
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_at < ?", enums.AccountStatusActive, asOf).
		Order("due_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
