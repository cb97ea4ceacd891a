package creditrequests

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
	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
)

const auditSubjectType = "credit_request"

// Verdict is the approval decision on a credit request.
type Verdict string

const (
	VerdictApprove Verdict = "approve"
	VerdictReject  Verdict = "reject"
)

// Service covers credit line requests: customers file them, staff decide them
// once, approval provisions the account.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.CreditRequest, error)
	Decide(ctx context.Context, input DecideInput) (*DecideResult, error)
	Get(ctx context.Context, requestID uuid.UUID) (*models.CreditRequest, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CreditRequest, error)
}

// CreateInput files a new pending credit request.
type CreateInput struct {
	CustomerID      uuid.UUID
	RequestedAmount decimal.Decimal
	TermDays        int
}

// DecideInput carries the one-shot verdict. ApprovedAmount defaults to the
// requested amount and may be overridden in either direction.
type DecideInput struct {
	RequestID      uuid.UUID
	Verdict        Verdict
	ApprovedAmount *decimal.Decimal
	Note           *string
	ActorUserID    uuid.UUID
}

// DecideResult returns the decided request and, on approval, the opened
// account.
type DecideResult struct {
	Request *models.CreditRequest `json:"request"`
	Account *credit.Snapshot      `json:"account,omitempty"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	credit credit.Service
	outbox outbox.Emitter
	audit  audit.Recorder
	db     txRunner
	cfg    config.CreditConfig
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams wires the credit request service dependencies.
type ServiceParams struct {
	Repo   Repository
	Credit credit.Service
	Outbox outbox.Emitter
	Audit  audit.Recorder
	DB     txRunner
	Config config.CreditConfig
	Logger *logger.Logger
	Now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("credit request repository required")
	}
	if params.Credit == nil {
		return nil, fmt.Errorf("credit service required")
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
		outbox: params.Outbox,
		audit:  params.Audit,
		db:     params.DB,
		cfg:    params.Config,
		logg:   params.Logger,
		now:    now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.CreditRequest, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if !input.RequestedAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested amount must be positive")
	}
	if input.RequestedAmount.GreaterThan(s.cfg.MaxAmount()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested amount exceeds the maximum").
			WithDetails(map[string]any{"max_amount": s.cfg.MaxAmount().StringFixed(2)})
	}
	termDays := input.TermDays
	if termDays <= 0 {
		termDays = s.cfg.DefaultTermDays
	}
	if termDays > s.cfg.MaxTermDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "term exceeds the maximum allowed").
			WithDetails(map[string]any{"max_term_days": s.cfg.MaxTermDays})
	}

	pending, err := s.repo.HasPendingForCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer already has a pending credit request")
	}

	request := &models.CreditRequest{
		ID:                uuid.New(),
		CustomerID:        input.CustomerID,
		RequestedAmount:   input.RequestedAmount.Round(2),
		RequestedTermDays: termDays,
		Status:            enums.CreditRequestStatusPending,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return err
		}
		return s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   request.ID,
			ToState:     string(enums.CreditRequestStatusPending),
			Amount:      amountPtr(request.RequestedAmount),
			Metadata:    map[string]any{"customer_id": request.CustomerID},
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *service) Decide(ctx context.Context, input DecideInput) (*DecideResult, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	if input.Verdict != VerdictApprove && input.Verdict != VerdictReject {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verdict must be approve or reject")
	}
	if input.Verdict == VerdictReject && (input.Note == nil || strings.TrimSpace(*input.Note) == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection note is required")
	}

	var result DecideResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindByID(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "credit request not found")
			}
			return err
		}

		if request.Status != enums.CreditRequestStatusPending {
			return proofs.ErrAlreadyDecided(auditSubjectType)
		}

		decidedAt := s.now()
		request.DecidedBy = &input.ActorUserID
		request.DecidedAt = &decidedAt
		request.DecisionNote = input.Note

		var account *models.CreditAccount
		switch input.Verdict {
		case VerdictApprove:
			approved := request.RequestedAmount
			if input.ApprovedAmount != nil {
				approved = input.ApprovedAmount.Round(2)
			}
			if !approved.IsPositive() {
				return pkgerrors.New(pkgerrors.CodeValidation, "approved amount must be positive")
			}
			account, err = s.credit.OpenAccount(ctx, tx, credit.OpenAccountInput{
				CustomerID:    request.CustomerID,
				ApprovedLimit: approved,
				TermDays:      request.RequestedTermDays,
				ActorUserID:   input.ActorUserID,
			})
			if err != nil {
				return err
			}
			request.Status = enums.CreditRequestStatusApproved
			request.ApprovedAmount = &approved
			request.ResultingAccountID = &account.ID
		case VerdictReject:
			request.Status = enums.CreditRequestStatusRejected
		}

		affected, err := repo.DecidePending(ctx, request)
		if err != nil {
			return err
		}
		if affected == 0 {
			return proofs.ErrAlreadyDecided(auditSubjectType)
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   request.ID,
			FromState:   string(enums.CreditRequestStatusPending),
			ToState:     string(request.Status),
			ActorUserID: &input.ActorUserID,
			Metadata:    decisionMetadata(request),
		}); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCreditRequestDecided,
			AggregateType: enums.AggregateCreditRequest,
			AggregateID:   request.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data:          decisionMetadata(request),
			Version:       1,
		}); err != nil {
			return err
		}

		result.Request = request
		if account != nil {
			result.Account = credit.SnapshotOf(account)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) Get(ctx context.Context, requestID uuid.UUID) (*models.CreditRequest, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "credit request not found")
		}
		return nil, err
	}
	return request, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CreditRequest, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

func decisionMetadata(request *models.CreditRequest) map[string]any {
	metadata := map[string]any{
		"customer_id": request.CustomerID,
		"status":      request.Status,
	}
	if request.ApprovedAmount != nil {
		metadata["approved_amount"] = request.ApprovedAmount.StringFixed(2)
	}
	if request.ResultingAccountID != nil {
		metadata["resulting_account_id"] = request.ResultingAccountID
	}
	return metadata
}

func amountPtr(amount decimal.Decimal) *string {
	value := amount.StringFixed(2)
	return &value
}
