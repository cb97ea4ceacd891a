package guestorders

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
	"github.com/dromero-dev/casagrande-backend/internal/inventory"
	"github.com/dromero-dev/casagrande-backend/internal/proofs"
	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
	"github.com/dromero-dev/casagrande-backend/pkg/security"
)

const auditSubjectType = "guest_order"

// ErrInvalidToken covers unknown token ids and wrong secrets alike, so the
// response does not reveal which half failed.
var ErrInvalidToken = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid order access token")

// Service runs the guest checkout payment workflow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	// GetByToken resolves an order from its access token. Expired timeboxed
	// orders are cancelled on read.
	GetByToken(ctx context.Context, token string) (*models.GuestOrder, error)
	SubmitProof(ctx context.Context, input SubmitProofInput) (*models.PaymentProof, error)
	Timebox(ctx context.Context, input TimeboxInput) (*models.GuestOrder, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.GuestOrder, error)
	Cancel(ctx context.Context, input CancelInput) (*models.GuestOrder, error)
	MarkShipped(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.GuestOrder, error)
	MarkDelivered(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.GuestOrder, error)
	// ExpireDue cancels every timeboxed order past its deadline. Returns the
	// number of orders cancelled.
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)
}

// CreateLineInput is one requested product line.
type CreateLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInput opens a guest order and reserves its stock.
type CreateInput struct {
	ContactName  string
	ContactPhone string
	Lines        []CreateLineInput
}

// CreateResult carries the raw access token. It is shown exactly once; only
// the hash survives.
type CreateResult struct {
	Order *models.GuestOrder
	Token string
}

// SubmitProofInput attaches a payment proof through the access token.
type SubmitProofInput struct {
	Token     string
	ObjectRef string
	Note      *string
}

// TimeboxInput arms the payment deadline. A zero Deadline falls back to the
// configured payment window.
type TimeboxInput struct {
	OrderID     uuid.UUID
	Deadline    time.Time
	ActorUserID uuid.UUID
}

// VerifyPaymentInput records an admin-verified payment amount.
type VerifyPaymentInput struct {
	OrderID     uuid.UUID
	Amount      decimal.Decimal
	ActorUserID uuid.UUID
}

// CancelInput cancels an open order, releasing its reserved stock.
type CancelInput struct {
	OrderID     uuid.UUID
	Reason      *string
	ActorUserID uuid.UUID
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo      Repository
	inventory inventory.Service
	proofs    proofs.Service
	outbox    outbox.Emitter
	audit     audit.Recorder
	db        txRunner
	security  config.SecurityConfig
	orders    config.OrdersConfig
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams wires the guest order service dependencies.
type ServiceParams struct {
	Repo      Repository
	Inventory inventory.Service
	Proofs    proofs.Service
	Outbox    outbox.Emitter
	Audit     audit.Recorder
	DB        txRunner
	Security  config.SecurityConfig
	Orders    config.OrdersConfig
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("guest order repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
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
		repo:      params.Repo,
		inventory: params.Inventory,
		proofs:    params.Proofs,
		outbox:    params.Outbox,
		audit:     params.Audit,
		db:        params.DB,
		security:  params.Security,
		orders:    params.Orders,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if strings.TrimSpace(input.ContactName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact name is required")
	}
	if strings.TrimSpace(input.ContactPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact phone is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order line is required")
	}
	productIDs := make([]uuid.UUID, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		productIDs = append(productIDs, line.ProductID)
	}

	products, err := s.repo.FindProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	secret, err := security.NewSecret()
	if err != nil {
		return nil, err
	}
	secretHash, err := security.HashSecret(secret, s.security)
	if err != nil {
		return nil, err
	}

	order := &models.GuestOrder{
		ID:              uuid.New(),
		TokenID:         uuid.NewString(),
		TokenSecretHash: secretHash,
		ContactName:     strings.TrimSpace(input.ContactName),
		ContactPhone:    strings.TrimSpace(input.ContactPhone),
		Status:          enums.GuestOrderStatusAwaitingPayment,
		Total:           decimal.Zero,
		VerifiedPaid:    decimal.Zero,
		CreditUsed:      decimal.Zero,
	}
	for _, line := range input.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		order.Items = append(order.Items, models.GuestOrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: product.UnitPrice,
		})
		order.Total = order.Total.Add(product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))).Round(2)
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := s.inventory.ReserveTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   order.ID,
			ToState:     string(enums.GuestOrderStatusAwaitingPayment),
			Amount:      amountPtr(order.Total),
			Metadata:    map[string]any{"lines": len(order.Items)},
		}); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGuestOrderCreated,
			AggregateType: enums.AggregateGuestOrder,
			AggregateID:   order.ID,
			Data: map[string]any{
				"total": order.Total.StringFixed(2),
				"lines": len(order.Items),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	return &CreateResult{Order: order, Token: order.TokenID + "." + secret}, nil
}

func (s *service) GetByToken(ctx context.Context, token string) (*models.GuestOrder, error) {
	order, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.expireIfDue(ctx, order)
}

func (s *service) SubmitProof(ctx context.Context, input SubmitProofInput) (*models.PaymentProof, error) {
	order, err := s.resolveToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	order, err = s.expireIfDue(ctx, order)
	if err != nil {
		return nil, err
	}
	if !order.Status.AcceptsProofs() {
		return nil, proofs.ErrAlreadyDecided(auditSubjectType)
	}

	submittedAt := s.now()
	var proof *models.PaymentProof
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.proofs.AttachTx(ctx, tx, proofs.AttachInput{
			SubjectType: enums.ProofSubjectGuestOrder,
			SubjectID:   order.ID,
			ObjectRef:   input.ObjectRef,
			Note:        input.Note,
		})
		if err != nil {
			return err
		}

		updates := map[string]any{"last_proof_at": submittedAt}
		target := order.Status
		if order.Status == enums.GuestOrderStatusAwaitingPayment ||
			order.Status == enums.GuestOrderStatusAwaitingPaymentTimeboxed {
			target = enums.GuestOrderStatusInVerification
			updates["status"] = target
			updates["payment_deadline"] = nil
		}
		affected, err := s.repo.WithTx(tx).TransitionStatus(ctx, order.ID, acceptingStatuses(), updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			return proofs.ErrAlreadyDecided(auditSubjectType)
		}

		if target != order.Status {
			if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
				SubjectType: auditSubjectType,
				SubjectID:   order.ID,
				FromState:   string(order.Status),
				ToState:     string(target),
			}); err != nil {
				return err
			}
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGuestOrderProofSubmitted,
			AggregateType: enums.AggregateGuestOrder,
			AggregateID:   order.ID,
			Data:          map[string]any{"proof_id": created.ID},
			Version:       1,
		}); err != nil {
			return err
		}

		proof = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proof, nil
}

func (s *service) Timebox(ctx context.Context, input TimeboxInput) (*models.GuestOrder, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	timeboxedAt := s.now()
	deadline := input.Deadline
	if deadline.IsZero() {
		deadline = timeboxedAt.Add(s.orders.PaymentWindow)
	}
	if !deadline.After(timeboxedAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment deadline must be in the future")
	}

	return s.transition(ctx, input.OrderID, transitionSpec{
		From: []enums.GuestOrderStatus{enums.GuestOrderStatusAwaitingPayment},
		To:   enums.GuestOrderStatusAwaitingPaymentTimeboxed,
		Updates: map[string]any{
			"payment_deadline": deadline,
			"timeboxed_at":     timeboxedAt,
		},
		Actor:    &input.ActorUserID,
		Metadata: map[string]any{"payment_deadline": deadline},
	})
}

func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.GuestOrder, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verified amount must be positive")
	}

	var verified *models.GuestOrder
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "guest order not found")
			}
			return err
		}
		if order.Status != enums.GuestOrderStatusInVerification &&
			order.Status != enums.GuestOrderStatusPartiallyPaid {
			return proofs.ErrAlreadyDecided(auditSubjectType)
		}

		newPaid := order.VerifiedPaid.Add(input.Amount).Round(2)
		target := enums.GuestOrderStatusPartiallyPaid
		if newPaid.Add(order.CreditUsed).GreaterThanOrEqual(order.Total) {
			target = enums.GuestOrderStatusConfirmed
		}

		affected, err := repo.TransitionStatus(ctx, order.ID,
			[]enums.GuestOrderStatus{enums.GuestOrderStatusInVerification, enums.GuestOrderStatusPartiallyPaid},
			map[string]any{
				"status":        target,
				"verified_paid": newPaid,
			})
		if err != nil {
			return err
		}
		if affected == 0 {
			return proofs.ErrAlreadyDecided(auditSubjectType)
		}

		if target == enums.GuestOrderStatusConfirmed {
			for _, item := range order.Items {
				if err := s.inventory.ConsumeReservedTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   order.ID,
			FromState:   string(order.Status),
			ToState:     string(target),
			ActorUserID: &input.ActorUserID,
			Amount:      amountPtr(input.Amount),
			Metadata:    map[string]any{"verified_paid": newPaid.StringFixed(2)},
		}); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGuestOrderPaymentVerified,
			AggregateType: enums.AggregateGuestOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: map[string]any{
				"amount":        input.Amount.StringFixed(2),
				"verified_paid": newPaid.StringFixed(2),
				"status":        target,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		order.Status = target
		order.VerifiedPaid = newPaid
		verified = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verified, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.GuestOrder, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}

	cancelledAt := s.now()
	var cancelled *models.GuestOrder
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "guest order not found")
			}
			return err
		}
		if !cancellable(order.Status) {
			return pkgerrors.New(pkgerrors.CodeConflict, "guest order can no longer be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		affected, err := repo.TransitionStatus(ctx, order.ID, cancellableStatuses(), map[string]any{
			"status":           enums.GuestOrderStatusCancelled,
			"payment_deadline": nil,
			"cancelled_at":     cancelledAt,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "guest order can no longer be cancelled")
		}

		for _, item := range order.Items {
			if err := s.inventory.ReleaseTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		metadata := map[string]any{}
		if input.Reason != nil {
			metadata["reason"] = *input.Reason
		}
		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   order.ID,
			FromState:   string(order.Status),
			ToState:     string(enums.GuestOrderStatusCancelled),
			ActorUserID: &input.ActorUserID,
			Metadata:    metadata,
		}); err != nil {
			return err
		}

		order.Status = enums.GuestOrderStatusCancelled
		order.PaymentDeadline = nil
		order.CancelledAt = &cancelledAt
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) MarkShipped(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.GuestOrder, error) {
	return s.fulfil(ctx, orderID, actorUserID, enums.GuestOrderStatusConfirmed, enums.GuestOrderStatusShipped)
}

func (s *service) MarkDelivered(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.GuestOrder, error) {
	return s.fulfil(ctx, orderID, actorUserID, enums.GuestOrderStatusShipped, enums.GuestOrderStatusDelivered)
}

func (s *service) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := s.repo.ListExpirable(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range due {
		won, err := s.expireOrder(ctx, &due[i])
		if err != nil {
			s.logg.Error(ctx, "expiring guest order", err)
			continue
		}
		if won {
			expired++
		}
	}
	return expired, nil
}

func (s *service) fulfil(ctx context.Context, orderID, actorUserID uuid.UUID, from, to enums.GuestOrderStatus) (*models.GuestOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if actorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	return s.transition(ctx, orderID, transitionSpec{
		From:    []enums.GuestOrderStatus{from},
		To:      to,
		Updates: map[string]any{},
		Actor:   &actorUserID,
	})
}

type transitionSpec struct {
	From     []enums.GuestOrderStatus
	To       enums.GuestOrderStatus
	Updates  map[string]any
	Actor    *uuid.UUID
	Metadata map[string]any
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, spec transitionSpec) (*models.GuestOrder, error) {
	var result *models.GuestOrder
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "guest order not found")
			}
			return err
		}
		if !statusIn(order.Status, spec.From) {
			return pkgerrors.New(pkgerrors.CodeConflict, "guest order is not in a valid state for this transition").
				WithDetails(map[string]any{"status": order.Status})
		}

		updates := map[string]any{"status": spec.To}
		for key, value := range spec.Updates {
			updates[key] = value
		}
		affected, err := repo.TransitionStatus(ctx, order.ID, spec.From, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "guest order is not in a valid state for this transition")
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   order.ID,
			FromState:   string(order.Status),
			ToState:     string(spec.To),
			ActorUserID: spec.Actor,
			Metadata:    spec.Metadata,
		}); err != nil {
			return err
		}

		order.Status = spec.To
		if deadline, ok := spec.Updates["payment_deadline"].(time.Time); ok {
			order.PaymentDeadline = &deadline
		}
		if timeboxedAt, ok := spec.Updates["timeboxed_at"].(time.Time); ok {
			order.TimeboxedAt = &timeboxedAt
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// expireIfDue applies the deadline rule on the read path. The cron sweep runs
// the same guarded transition, so both produce identical outcomes.
func (s *service) expireIfDue(ctx context.Context, order *models.GuestOrder) (*models.GuestOrder, error) {
	if !proofs.InactivityExpired(order.TimeboxedAt, order.LastProofAt, order.PaymentDeadline, s.now()) {
		return order, nil
	}
	if _, err := s.expireOrder(ctx, order); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, order.ID)
}

// expireOrder reports whether this call won the terminal transition. A lost
// race is not an error; the order is already expired or got a late proof.
func (s *service) expireOrder(ctx context.Context, order *models.GuestOrder) (bool, error) {
	cancelledAt := s.now()
	won := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.ExpireTimeboxed(ctx, order.ID, cancelledAt)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		won = true

		for _, item := range order.Items {
			if err := s.inventory.ReleaseTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   order.ID,
			FromState:   string(enums.GuestOrderStatusAwaitingPaymentTimeboxed),
			ToState:     string(enums.GuestOrderStatusCancelledByInactivity),
		}); err != nil {
			return err
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGuestOrderExpired,
			AggregateType: enums.AggregateGuestOrder,
			AggregateID:   order.ID,
			Version:       1,
		})
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

func (s *service) resolveToken(ctx context.Context, token string) (*models.GuestOrder, error) {
	tokenID, secret, ok := splitToken(token)
	if !ok {
		return nil, ErrInvalidToken
	}
	order, err := s.repo.FindByTokenID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	match, err := security.VerifySecret(secret, order.TokenSecretHash)
	if err != nil || !match {
		return nil, ErrInvalidToken
	}
	return order, nil
}

func splitToken(token string) (tokenID, secret string, ok bool) {
	tokenID, secret, found := strings.Cut(token, ".")
	if !found || tokenID == "" || secret == "" {
		return "", "", false
	}
	return tokenID, secret, true
}

func acceptingStatuses() []enums.GuestOrderStatus {
	return []enums.GuestOrderStatus{
		enums.GuestOrderStatusAwaitingPayment,
		enums.GuestOrderStatusAwaitingPaymentTimeboxed,
		enums.GuestOrderStatusInVerification,
		enums.GuestOrderStatusPartiallyPaid,
	}
}

func cancellableStatuses() []enums.GuestOrderStatus {
	return []enums.GuestOrderStatus{
		enums.GuestOrderStatusAwaitingPayment,
		enums.GuestOrderStatusAwaitingPaymentTimeboxed,
		enums.GuestOrderStatusInVerification,
		enums.GuestOrderStatusPartiallyPaid,
	}
}

func cancellable(status enums.GuestOrderStatus) bool {
	return statusIn(status, cancellableStatuses())
}

func statusIn(status enums.GuestOrderStatus, set []enums.GuestOrderStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}

func amountPtr(value decimal.Decimal) *string {
	s := value.StringFixed(2)
	return &s
}
