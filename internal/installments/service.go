package installments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/internal/audit"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/proofs"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
	"github.com/dromero-dev/casagrande-backend/pkg/pagination"
)

const auditSubjectType = "installment"

// Service covers the installment ("abono") verification workflow: customers
// submit a payment with proof, staff verify or reject it once.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Installment, error)
	Verify(ctx context.Context, input DecideInput) (*VerifyResult, error)
	Reject(ctx context.Context, input DecideInput) (*models.Installment, error)
	Get(ctx context.Context, installmentID uuid.UUID) (*models.Installment, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*InstallmentList, error)
}

// InstallmentList is one cursor page of installments, newest first.
type InstallmentList struct {
	Items      []models.Installment
	NextCursor string
}

// SubmitInput files a new pending installment against an active account.
type SubmitInput struct {
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	PaidOn        time.Time
	PaymentMethod enums.PaymentMethod
	ProofRef      string
	ProofNote     *string
}

// DecideInput carries a one-shot verdict. Reason is required for rejections.
type DecideInput struct {
	InstallmentID uuid.UUID
	ActorUserID   uuid.UUID
	Reason        *string
}

// VerifyResult returns the decided installment together with the account
// balance it produced.
type VerifyResult struct {
	Installment *models.Installment `json:"installment"`
	Account     *credit.Snapshot    `json:"account"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	credit credit.Service
	proofs proofs.Service
	outbox outbox.Emitter
	audit  audit.Recorder
	db     txRunner
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams wires the installment service dependencies.
type ServiceParams struct {
	Repo   Repository
	Credit credit.Service
	Proofs proofs.Service
	Outbox outbox.Emitter
	Audit  audit.Recorder
	DB     txRunner
	Logger *logger.Logger
	Now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("installment repository required")
	}
	if params.Credit == nil {
		return nil, fmt.Errorf("credit service required")
	}
	if params.Proofs == nil {
		return nil, fmt.Errorf("proof service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
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
		credit: params.Credit,
		proofs: params.Proofs,
		outbox: params.Outbox,
		audit:  params.Audit,
		db:     params.DB,
		logg:   params.Logger,
		now:    now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Installment, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "installment amount must be positive")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if strings.TrimSpace(input.ProofRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof of payment is required")
	}

	account, err := s.credit.GetAccount(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Status != enums.AccountStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeInvariant, "account is not active")
	}

	paidOn := input.PaidOn
	if paidOn.IsZero() {
		paidOn = s.now()
	}

	installment := &models.Installment{
		ID:            uuid.New(),
		AccountID:     input.AccountID,
		Amount:        input.Amount.Round(2),
		PaidOn:        paidOn,
		PaymentMethod: input.PaymentMethod,
		Status:        enums.InstallmentStatusPending,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, installment); err != nil {
			return err
		}
		proof, err := s.proofs.AttachTx(ctx, tx, proofs.AttachInput{
			SubjectType: enums.ProofSubjectInstallment,
			SubjectID:   installment.ID,
			ObjectRef:   input.ProofRef,
			Note:        input.ProofNote,
		})
		if err != nil {
			return err
		}
		installment.Proofs = []models.PaymentProof{*proof}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   installment.ID,
			ToState:     string(enums.InstallmentStatusPending),
			Amount:      amountPtr(installment.Amount),
			Metadata: map[string]any{
				"account_id":     installment.AccountID,
				"payment_method": installment.PaymentMethod,
			},
		}); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInstallmentSubmitted,
			AggregateType: enums.AggregateInstallment,
			AggregateID:   installment.ID,
			Data: map[string]any{
				"account_id": installment.AccountID,
				"amount":     installment.Amount.StringFixed(2),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return installment, nil
}

func (s *service) Verify(ctx context.Context, input DecideInput) (*VerifyResult, error) {
	if err := validateDecideInput(input); err != nil {
		return nil, err
	}

	var result VerifyResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		installment, err := repo.FindByID(ctx, input.InstallmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "installment not found")
			}
			return err
		}

		decidedAt := s.now()
		affected, err := repo.DecidePending(ctx, installment.ID, enums.InstallmentStatusVerified, input.ActorUserID, decidedAt, nil)
		if err != nil {
			return err
		}
		if affected == 0 {
			return proofs.ErrAlreadyDecided(auditSubjectType)
		}

		account, err := s.credit.ApplyInstallmentTx(ctx, tx, credit.ApplyInstallmentInput{
			AccountID:   installment.AccountID,
			Amount:      installment.Amount,
			ActorUserID: input.ActorUserID,
		})
		if err != nil {
			return err
		}

		installment.Status = enums.InstallmentStatusVerified
		installment.DecidedBy = &input.ActorUserID
		installment.DecidedAt = &decidedAt

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   installment.ID,
			FromState:   string(enums.InstallmentStatusPending),
			ToState:     string(enums.InstallmentStatusVerified),
			ActorUserID: &input.ActorUserID,
			Amount:      amountPtr(installment.Amount),
		}); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInstallmentVerified,
			AggregateType: enums.AggregateInstallment,
			AggregateID:   installment.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: map[string]any{
				"account_id":     installment.AccountID,
				"amount":         installment.Amount.StringFixed(2),
				"account_status": account.Status,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		result.Installment = installment
		result.Account = credit.SnapshotOf(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) Reject(ctx context.Context, input DecideInput) (*models.Installment, error) {
	if err := validateDecideInput(input); err != nil {
		return nil, err
	}
	if input.Reason == nil || strings.TrimSpace(*input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	var rejected *models.Installment
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		installment, err := repo.FindByID(ctx, input.InstallmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "installment not found")
			}
			return err
		}

		decidedAt := s.now()
		affected, err := repo.DecidePending(ctx, installment.ID, enums.InstallmentStatusRejected, input.ActorUserID, decidedAt, input.Reason)
		if err != nil {
			return err
		}
		if affected == 0 {
			return proofs.ErrAlreadyDecided(auditSubjectType)
		}

		installment.Status = enums.InstallmentStatusRejected
		installment.RejectionReason = input.Reason
		installment.DecidedBy = &input.ActorUserID
		installment.DecidedAt = &decidedAt

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   installment.ID,
			FromState:   string(enums.InstallmentStatusPending),
			ToState:     string(enums.InstallmentStatusRejected),
			ActorUserID: &input.ActorUserID,
			Metadata:    map[string]any{"reason": *input.Reason},
		}); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInstallmentRejected,
			AggregateType: enums.AggregateInstallment,
			AggregateID:   installment.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: map[string]any{
				"account_id": installment.AccountID,
				"reason":     *input.Reason,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		rejected = installment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *service) Get(ctx context.Context, installmentID uuid.UUID) (*models.Installment, error) {
	if installmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "installment id is required")
	}
	installment, err := s.repo.FindByID(ctx, installmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "installment not found")
		}
		return nil, err
	}
	return installment, nil
}

func (s *service) ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*InstallmentList, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListByAccount(ctx, listParams{
		AccountID: accountID,
		Limit:     params.Limit,
		Cursor:    cursor,
	})
	if err != nil {
		return nil, err
	}

	list := &InstallmentList{Items: rows}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func validateDecideInput(input DecideInput) error {
	if input.InstallmentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "installment id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	return nil
}

func amountPtr(amount decimal.Decimal) *string {
	value := amount.StringFixed(2)
	return &value
}
