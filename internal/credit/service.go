package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
)

// Service exposes credit account lifecycle and balance operations. Draw,
// Restore and ApplyInstallmentTx mutate inside a caller-owned transaction so
// sibling writes (returns, installments) commit atomically with the balance
// change.
type Service interface {
	GetAccount(ctx context.Context, accountID uuid.UUID) (*models.CreditAccount, error)
	GetActiveAccount(ctx context.Context, customerID uuid.UUID) (*models.CreditAccount, error)
	Snapshot(ctx context.Context, accountID uuid.UUID) (*Snapshot, error)
	OpenAccount(ctx context.Context, tx *gorm.DB, input OpenAccountInput) (*models.CreditAccount, error)
	DrawTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal) (*models.CreditAccount, error)
	RestoreTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal) (*models.CreditAccount, error)
	ApplyInstallmentTx(ctx context.Context, tx *gorm.DB, input ApplyInstallmentInput) (*models.CreditAccount, error)
	AccrueInterest(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*models.CreditAccount, error)
	ListPastDue(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	db     txRunner
	outbox outbox.Emitter
	cfg    config.CreditConfig
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams wires the credit service dependencies.
type ServiceParams struct {
	Repo   Repository
	DB     txRunner
	Outbox outbox.Emitter
	Config config.CreditConfig
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService validates dependencies and builds the credit service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("credit repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   params.Repo,
		db:     params.DB,
		outbox: params.Outbox,
		cfg:    params.Config,
		logg:   params.Logger,
		now:    now,
	}, nil
}

// Snapshot is the read model served to controllers: stored balances plus the
// derived figures.
type Snapshot struct {
	AccountID            uuid.UUID           `json:"account_id"`
	CustomerID           uuid.UUID           `json:"customer_id"`
	Status               enums.AccountStatus `json:"status"`
	ApprovedLimit        decimal.Decimal     `json:"approved_limit"`
	PrincipalOwed        decimal.Decimal     `json:"principal_owed"`
	AccruedInterest      decimal.Decimal     `json:"accrued_interest"`
	AvailableForPurchase decimal.Decimal     `json:"available_for_purchase"`
	TotalPayable         decimal.Decimal     `json:"total_payable"`
	InterestRate         decimal.Decimal     `json:"interest_rate"`
	TermDays             int                 `json:"term_days"`
	GrantedAt            time.Time           `json:"granted_at"`
	DueAt                time.Time           `json:"due_at"`
	InterestAsOf         *time.Time          `json:"interest_as_of,omitempty"`
}

// OpenAccountInput provisions a credit line from an approved request.
type OpenAccountInput struct {
	CustomerID    uuid.UUID
	ApprovedLimit decimal.Decimal
	TermDays      int
	ActorUserID   uuid.UUID
}

// ApplyInstallmentInput applies a verified installment to the account balance.
type ApplyInstallmentInput struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	ActorUserID uuid.UUID
}

func (s *service) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.CreditAccount, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "credit account not found")
		}
		return nil, err
	}
	return account, nil
}

func (s *service) GetActiveAccount(ctx context.Context, customerID uuid.UUID) (*models.CreditAccount, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	account, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active credit account for customer")
		}
		return nil, err
	}
	return account, nil
}

func (s *service) Snapshot(ctx context.Context, accountID uuid.UUID) (*Snapshot, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return SnapshotOf(account), nil
}

// SnapshotOf derives the read model from an already loaded account.
func SnapshotOf(account *models.CreditAccount) *Snapshot {
	return &Snapshot{
		AccountID:            account.ID,
		CustomerID:           account.CustomerID,
		Status:               account.Status,
		ApprovedLimit:        account.ApprovedLimit,
		PrincipalOwed:        account.PrincipalOwed,
		AccruedInterest:      account.AccruedInterest,
		AvailableForPurchase: account.AvailableForPurchase(),
		TotalPayable:         account.TotalPayable(),
		InterestRate:         account.InterestRate,
		TermDays:             account.TermDays,
		GrantedAt:            account.GrantedAt,
		DueAt:                account.DueAt,
		InterestAsOf:         account.InterestAsOf,
	}
}

func (s *service) OpenAccount(ctx context.Context, tx *gorm.DB, input OpenAccountInput) (*models.CreditAccount, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if !input.ApprovedLimit.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approved limit must be positive")
	}
	termDays := input.TermDays
	if termDays <= 0 {
		termDays = s.cfg.DefaultTermDays
	}
	if termDays > s.cfg.MaxTermDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "term exceeds the maximum allowed").
			WithDetails(map[string]any{"max_term_days": s.cfg.MaxTermDays})
	}

	repo := s.repo.WithTx(tx)
	if _, err := repo.FindActiveByCustomer(ctx, input.CustomerID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer already has an active credit account")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	grantedAt := s.now()
	account := &models.CreditAccount{
		ID:              uuid.New(),
		CustomerID:      input.CustomerID,
		ApprovedLimit:   input.ApprovedLimit.Round(2),
		PrincipalOwed:   decimal.Zero,
		AccruedInterest: decimal.Zero,
		InterestRate:    s.cfg.InterestRate(),
		Status:          enums.AccountStatusActive,
		TermDays:        termDays,
		GrantedAt:       grantedAt,
		DueAt:           grantedAt.AddDate(0, 0, termDays),
	}
	if err := repo.Create(ctx, account); err != nil {
		return nil, err
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventCreditAccountOpened,
		AggregateType: enums.AggregateCreditAccount,
		AggregateID:   account.ID,
		Actor:         actorRef(input.ActorUserID),
		Data: map[string]any{
			"customer_id":    account.CustomerID,
			"approved_limit": account.ApprovedLimit.StringFixed(2),
			"term_days":      account.TermDays,
			"due_at":         account.DueAt,
		},
		Version: 1,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) DrawTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal) (*models.CreditAccount, error) {
	return s.mutateTx(ctx, tx, accountID, func(account *models.CreditAccount) error {
		return Draw(account, amount)
	})
}

func (s *service) RestoreTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal) (*models.CreditAccount, error) {
	return s.mutateTx(ctx, tx, accountID, func(account *models.CreditAccount) error {
		return Restore(account, amount)
	})
}

func (s *service) ApplyInstallmentTx(ctx context.Context, tx *gorm.DB, input ApplyInstallmentInput) (*models.CreditAccount, error) {
	account, err := s.mutateTx(ctx, tx, input.AccountID, func(account *models.CreditAccount) error {
		return ApplyInstallment(account, input.Amount)
	})
	if err != nil {
		return nil, err
	}
	if account.Status == enums.AccountStatusPaidOff {
		event := outbox.DomainEvent{
			EventType:     enums.EventCreditAccountPaidOff,
			AggregateType: enums.AggregateCreditAccount,
			AggregateID:   account.ID,
			Actor:         actorRef(input.ActorUserID),
			Data: map[string]any{
				"customer_id": account.CustomerID,
			},
			Version: 1,
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return nil, err
		}
	}
	return account, nil
}

func (s *service) mutateTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, mutate func(*models.CreditAccount) error) (*models.CreditAccount, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	repo := s.repo.WithTx(tx)
	account, err := repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "credit account not found")
		}
		return nil, err
	}
	if err := mutate(account); err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, account); err != nil {
		if errors.Is(err, ErrStaleAccount) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "credit account was modified concurrently")
		}
		return nil, err
	}
	return account, nil
}

// AccrueInterest recomputes interest for a single account as of the provided
// instant and persists the result in its own transaction.
func (s *service) AccrueInterest(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*models.CreditAccount, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	var updated *models.CreditAccount
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account, err := repo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "credit account not found")
			}
			return err
		}
		if account.Status != enums.AccountStatusActive {
			updated = account
			return nil
		}

		before := account.AccruedInterest
		interest := AccrueInterest(account, account.InterestRate, asOf)
		if err := repo.Save(ctx, account); err != nil {
			if errors.Is(err, ErrStaleAccount) {
				return pkgerrors.New(pkgerrors.CodeConflict, "credit account was modified concurrently")
			}
			return err
		}
		if !interest.Equal(before) {
			event := outbox.DomainEvent{
				EventType:     enums.EventInterestAccrued,
				AggregateType: enums.AggregateCreditAccount,
				AggregateID:   account.ID,
				Data: map[string]any{
					"accrued_interest": interest.StringFixed(2),
					"as_of":            asOf,
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListPastDue(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	return s.repo.ListPastDueActive(ctx, asOf)
}

func actorRef(userID uuid.UUID) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID}
}
