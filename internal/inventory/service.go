package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
)

// Service is the stock collaborator consumed by returns, supplier cases and
// guest orders. Guarded SQL updates keep both counters non-negative without
// row locks.
type Service interface {
	Stock(ctx context.Context, productID uuid.UUID) (*models.InventoryItem, error)
	ReserveTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	ReleaseTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	ConsumeReservedTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	AdjustTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error
}

type service struct {
	repo Repository
}

// ServiceParams wires the inventory service dependencies.
type ServiceParams struct {
	Repo Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: params.Repo}, nil
}

func errInsufficientStock(productID uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvariant, "insufficient stock").
		WithDetails(map[string]any{"product_id": productID})
}

func (s *service) Stock(ctx context.Context, productID uuid.UUID) (*models.InventoryItem, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	item, err := s.repo.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product has no inventory record")
		}
		return nil, err
	}
	return item, nil
}

func (s *service) ReserveTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if err := validateMove(tx, productID, qty); err != nil {
		return err
	}
	affected, err := s.repo.WithTx(tx).MoveAvailableToReserved(ctx, productID, qty)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.missingOrInsufficient(ctx, tx, productID)
	}
	return nil
}

func (s *service) ReleaseTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if err := validateMove(tx, productID, qty); err != nil {
		return err
	}
	affected, err := s.repo.WithTx(tx).MoveReservedToAvailable(ctx, productID, qty)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.missingOrInsufficient(ctx, tx, productID)
	}
	return nil
}

func (s *service) ConsumeReservedTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if err := validateMove(tx, productID, qty); err != nil {
		return err
	}
	affected, err := s.repo.WithTx(tx).ConsumeReserved(ctx, productID, qty)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.missingOrInsufficient(ctx, tx, productID)
	}
	return nil
}

func (s *service) AdjustTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if delta == 0 {
		return nil
	}
	affected, err := s.repo.WithTx(tx).AddAvailable(ctx, productID, delta)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.missingOrInsufficient(ctx, tx, productID)
	}
	return nil
}

func validateMove(tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}

// missingOrInsufficient disambiguates a zero-row guarded update.
func (s *service) missingOrInsufficient(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	_, err := s.repo.WithTx(tx).Find(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product has no inventory record")
	}
	if err != nil {
		return err
	}
	return errInsufficientStock(productID)
}
