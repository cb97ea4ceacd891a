package guestorders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/internal/audit"
	"github.com/dromero-dev/casagrande-backend/internal/proofs"
	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
)

type fakeRepo struct {
	orders   map[uuid.UUID]*models.GuestOrder
	byToken  map[string]uuid.UUID
	products map[uuid.UUID]models.Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:   map[uuid.UUID]*models.GuestOrder{},
		byToken:  map[string]uuid.UUID{},
		products: map[uuid.UUID]models.Product{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, order *models.GuestOrder) error {
	f.orders[order.ID] = order
	f.byToken[order.TokenID] = order.ID
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.GuestOrder, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeRepo) FindByTokenID(ctx context.Context, tokenID string) (*models.GuestOrder, error) {
	id, ok := f.byToken[tokenID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.orders[id], nil
}

func (f *fakeRepo) FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	byID := map[uuid.UUID]models.Product{}
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			byID[id] = product
		}
	}
	return byID, nil
}

func (f *fakeRepo) TransitionStatus(ctx context.Context, orderID uuid.UUID, from []enums.GuestOrderStatus, updates map[string]any) (int64, error) {
	order, ok := f.orders[orderID]
	if !ok || !statusIn(order.Status, from) {
		return 0, nil
	}
	for key, value := range updates {
		switch key {
		case "status":
			order.Status = value.(enums.GuestOrderStatus)
		case "verified_paid":
			order.VerifiedPaid = value.(decimal.Decimal)
		case "last_proof_at":
			at := value.(time.Time)
			order.LastProofAt = &at
		case "payment_deadline":
			if value == nil {
				order.PaymentDeadline = nil
			} else {
				at := value.(time.Time)
				order.PaymentDeadline = &at
			}
		case "timeboxed_at":
			at := value.(time.Time)
			order.TimeboxedAt = &at
		case "cancelled_at":
			at := value.(time.Time)
			order.CancelledAt = &at
		}
	}
	order.Version++
	return 1, nil
}

func (f *fakeRepo) ExpireTimeboxed(ctx context.Context, orderID uuid.UUID, cancelledAt time.Time) (int64, error) {
	order, ok := f.orders[orderID]
	if !ok || order.Status != enums.GuestOrderStatusAwaitingPaymentTimeboxed {
		return 0, nil
	}
	if order.LastProofAt != nil && order.TimeboxedAt != nil && order.LastProofAt.After(*order.TimeboxedAt) {
		return 0, nil
	}
	order.Status = enums.GuestOrderStatusCancelledByInactivity
	order.PaymentDeadline = nil
	order.CancelledAt = &cancelledAt
	order.Version++
	return 1, nil
}

func (f *fakeRepo) ListExpirable(ctx context.Context, now time.Time, limit int) ([]models.GuestOrder, error) {
	var due []models.GuestOrder
	for _, order := range f.orders {
		if order.Status != enums.GuestOrderStatusAwaitingPaymentTimeboxed {
			continue
		}
		if order.PaymentDeadline == nil || !order.PaymentDeadline.Before(now) {
			continue
		}
		if order.LastProofAt != nil && order.TimeboxedAt != nil && order.LastProofAt.After(*order.TimeboxedAt) {
			continue
		}
		due = append(due, *order)
	}
	return due, nil
}

type fakeInventory struct {
	reserved map[uuid.UUID]int
	released map[uuid.UUID]int
	consumed map[uuid.UUID]int
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		reserved: map[uuid.UUID]int{},
		released: map[uuid.UUID]int{},
		consumed: map[uuid.UUID]int{},
	}
}

func (f *fakeInventory) Stock(ctx context.Context, productID uuid.UUID) (*models.InventoryItem, error) {
	return &models.InventoryItem{ProductID: productID}, nil
}

func (f *fakeInventory) ReserveTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	f.reserved[productID] += qty
	return nil
}

func (f *fakeInventory) ReleaseTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	f.released[productID] += qty
	return nil
}

func (f *fakeInventory) ConsumeReservedTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	f.consumed[productID] += qty
	return nil
}

func (f *fakeInventory) AdjustTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error {
	return nil
}

type fakeProofs struct {
	attached []proofs.AttachInput
}

func (f *fakeProofs) AttachTx(ctx context.Context, tx *gorm.DB, input proofs.AttachInput) (*models.PaymentProof, error) {
	f.attached = append(f.attached, input)
	return &models.PaymentProof{
		ID:          uuid.New(),
		SubjectType: input.SubjectType,
		SubjectID:   input.SubjectID,
		ObjectRef:   input.ObjectRef,
	}, nil
}

func (f *fakeProofs) ListBySubject(ctx context.Context, subjectType enums.ProofSubjectType, subjectID uuid.UUID) ([]models.PaymentProof, error) {
	return nil, nil
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEmitter) countByType(eventType enums.OutboxEventType) int {
	count := 0
	for _, event := range f.events {
		if event.EventType == eventType {
			count++
		}
	}
	return count
}

type fakeRecorder struct{}

func (fakeRecorder) RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error {
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fixture struct {
	svc     Service
	repo    *fakeRepo
	inv     *fakeInventory
	emitter *fakeEmitter
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    newFakeRepo(),
		inv:     newFakeInventory(),
		emitter: &fakeEmitter{},
		now:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(ServiceParams{
		Repo:      f.repo,
		Inventory: f.inv,
		Proofs:    &fakeProofs{},
		Outbox:    f.emitter,
		Audit:     fakeRecorder{},
		DB:        fakeTxRunner{},
		Security: config.SecurityConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     8,
			ArgonKeyLen:      16,
		},
		Orders: config.OrdersConfig{PaymentWindow: 48 * time.Hour},
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Now:    func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) seedProduct(t *testing.T, price string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.repo.products[id] = models.Product{ID: id, UnitPrice: decimal.RequireFromString(price)}
	return id
}

func (f *fixture) createOrder(t *testing.T, productID uuid.UUID, qty int) *CreateResult {
	t.Helper()
	result, err := f.svc.Create(context.Background(), CreateInput{
		ContactName:  "Maria Lopez",
		ContactPhone: "3001234567",
		Lines:        []CreateLineInput{{ProductID: productID, Quantity: qty}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return result
}

func TestCreateReservesStockAndIssuesToken(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "60000")

	result := f.createOrder(t, productID, 2)

	if result.Order.Status != enums.GuestOrderStatusAwaitingPayment {
		t.Fatalf("status = %s, want awaiting_payment", result.Order.Status)
	}
	if got := result.Order.Total.String(); got != "120000" {
		t.Fatalf("total = %s, want 120000", got)
	}
	if f.inv.reserved[productID] != 2 {
		t.Fatalf("reserved = %d, want 2", f.inv.reserved[productID])
	}
	if f.emitter.countByType(enums.EventGuestOrderCreated) != 1 {
		t.Fatal("expected guest_order_created event")
	}

	fetched, err := f.svc.GetByToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("GetByToken error: %v", err)
	}
	if fetched.ID != result.Order.ID {
		t.Fatal("token resolved the wrong order")
	}
}

func TestGetByTokenRejectsWrongSecret(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "10000")
	result := f.createOrder(t, productID, 1)

	_, err := f.svc.GetByToken(context.Background(), result.Order.TokenID+".wrong-secret")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestTimeboxArmsDeadline(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "10000")
	result := f.createOrder(t, productID, 1)

	order, err := f.svc.Timebox(context.Background(), TimeboxInput{
		OrderID:     result.Order.ID,
		ActorUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Timebox error: %v", err)
	}
	if order.Status != enums.GuestOrderStatusAwaitingPaymentTimeboxed {
		t.Fatalf("status = %s, want awaiting_payment_timeboxed", order.Status)
	}
	if order.PaymentDeadline == nil || !order.PaymentDeadline.Equal(f.now.Add(48*time.Hour)) {
		t.Fatalf("deadline = %v, want now+48h", order.PaymentDeadline)
	}
}

func TestSubmitProofMovesToVerification(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "10000")
	result := f.createOrder(t, productID, 1)
	if _, err := f.svc.Timebox(context.Background(), TimeboxInput{OrderID: result.Order.ID, ActorUserID: uuid.New()}); err != nil {
		t.Fatalf("Timebox error: %v", err)
	}

	f.now = f.now.Add(time.Hour)
	if _, err := f.svc.SubmitProof(context.Background(), SubmitProofInput{
		Token:     result.Token,
		ObjectRef: "proofs/receipt-1.jpg",
	}); err != nil {
		t.Fatalf("SubmitProof error: %v", err)
	}

	order := f.repo.orders[result.Order.ID]
	if order.Status != enums.GuestOrderStatusInVerification {
		t.Fatalf("status = %s, want in_verification", order.Status)
	}
	if order.PaymentDeadline != nil {
		t.Fatal("deadline must be cleared on leaving the timeboxed state")
	}
	if order.LastProofAt == nil {
		t.Fatal("last proof timestamp must be set")
	}
	if f.emitter.countByType(enums.EventGuestOrderProofSubmitted) != 1 {
		t.Fatal("expected guest_order_proof_submitted event")
	}
}

func TestGetByTokenExpiresPastDeadline(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "10000")
	result := f.createOrder(t, productID, 1)
	if _, err := f.svc.Timebox(context.Background(), TimeboxInput{OrderID: result.Order.ID, ActorUserID: uuid.New()}); err != nil {
		t.Fatalf("Timebox error: %v", err)
	}

	f.now = f.now.Add(49 * time.Hour)
	order, err := f.svc.GetByToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("GetByToken error: %v", err)
	}
	if order.Status != enums.GuestOrderStatusCancelledByInactivity {
		t.Fatalf("status = %s, want cancelled_by_inactivity", order.Status)
	}
	if f.inv.released[productID] != 1 {
		t.Fatalf("released = %d, want 1", f.inv.released[productID])
	}

	// Re-reading an expired order is a no-op.
	if _, err := f.svc.GetByToken(context.Background(), result.Token); err != nil {
		t.Fatalf("second GetByToken error: %v", err)
	}
	if f.inv.released[productID] != 1 {
		t.Fatal("stock must be released exactly once")
	}
	if f.emitter.countByType(enums.EventGuestOrderExpired) != 1 {
		t.Fatal("expected exactly one guest_order_expired event")
	}
}

func TestExpireDueSkipsOrdersWithLateProof(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "10000")

	stale := f.createOrder(t, productID, 1)
	active := f.createOrder(t, productID, 1)
	for _, result := range []*CreateResult{stale, active} {
		if _, err := f.svc.Timebox(context.Background(), TimeboxInput{OrderID: result.Order.ID, ActorUserID: uuid.New()}); err != nil {
			t.Fatalf("Timebox error: %v", err)
		}
	}

	// A proof after the timebox moves the order out of the expirable set.
	f.now = f.now.Add(time.Hour)
	if _, err := f.svc.SubmitProof(context.Background(), SubmitProofInput{
		Token:     active.Token,
		ObjectRef: "proofs/receipt-2.jpg",
	}); err != nil {
		t.Fatalf("SubmitProof error: %v", err)
	}

	f.now = f.now.Add(72 * time.Hour)
	expired, err := f.svc.ExpireDue(context.Background(), f.now, 100)
	if err != nil {
		t.Fatalf("ExpireDue error: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expired = %d, want 1", expired)
	}
	if got := f.repo.orders[stale.Order.ID].Status; got != enums.GuestOrderStatusCancelledByInactivity {
		t.Fatalf("stale order status = %s, want cancelled_by_inactivity", got)
	}
	if got := f.repo.orders[active.Order.ID].Status; got != enums.GuestOrderStatusInVerification {
		t.Fatalf("active order status = %s, want in_verification", got)
	}
}

func TestVerifyPaymentPartialThenFull(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "120000")
	result := f.createOrder(t, productID, 1)
	if _, err := f.svc.SubmitProof(context.Background(), SubmitProofInput{
		Token:     result.Token,
		ObjectRef: "proofs/receipt-3.jpg",
	}); err != nil {
		t.Fatalf("SubmitProof error: %v", err)
	}

	actor := uuid.New()
	order, err := f.svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID:     result.Order.ID,
		Amount:      decimal.RequireFromString("50000"),
		ActorUserID: actor,
	})
	if err != nil {
		t.Fatalf("VerifyPayment error: %v", err)
	}
	if order.Status != enums.GuestOrderStatusPartiallyPaid {
		t.Fatalf("status = %s, want partially_paid", order.Status)
	}
	if f.inv.consumed[productID] != 0 {
		t.Fatal("partial payment must not consume reserved stock")
	}

	order, err = f.svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID:     result.Order.ID,
		Amount:      decimal.RequireFromString("70000"),
		ActorUserID: actor,
	})
	if err != nil {
		t.Fatalf("VerifyPayment error: %v", err)
	}
	if order.Status != enums.GuestOrderStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", order.Status)
	}
	if got := order.VerifiedPaid.String(); got != "120000" {
		t.Fatalf("verified paid = %s, want 120000", got)
	}
	if f.inv.consumed[productID] != 1 {
		t.Fatalf("consumed = %d, want 1", f.inv.consumed[productID])
	}
	if f.emitter.countByType(enums.EventGuestOrderPaymentVerified) != 2 {
		t.Fatal("expected two guest_order_payment_verified events")
	}
}

func TestVerifyPaymentRequiresVerificationState(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "10000")
	result := f.createOrder(t, productID, 1)

	_, err := f.svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID:     result.Order.ID,
		Amount:      decimal.RequireFromString("10000"),
		ActorUserID: uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict before any proof, got %v", err)
	}
}

func TestCancelReleasesStock(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "10000")
	result := f.createOrder(t, productID, 2)

	order, err := f.svc.Cancel(context.Background(), CancelInput{
		OrderID:     result.Order.ID,
		ActorUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if order.Status != enums.GuestOrderStatusCancelled {
		t.Fatalf("status = %s, want cancelled", order.Status)
	}
	if f.inv.released[productID] != 2 {
		t.Fatalf("released = %d, want 2", f.inv.released[productID])
	}

	_, err = f.svc.Cancel(context.Background(), CancelInput{
		OrderID:     result.Order.ID,
		ActorUserID: uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict cancelling twice, got %v", err)
	}
}

func TestFulfilmentTransitions(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, "10000")
	result := f.createOrder(t, productID, 1)
	if _, err := f.svc.SubmitProof(context.Background(), SubmitProofInput{
		Token:     result.Token,
		ObjectRef: "proofs/receipt-4.jpg",
	}); err != nil {
		t.Fatalf("SubmitProof error: %v", err)
	}
	actor := uuid.New()
	if _, err := f.svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID:     result.Order.ID,
		Amount:      decimal.RequireFromString("10000"),
		ActorUserID: actor,
	}); err != nil {
		t.Fatalf("VerifyPayment error: %v", err)
	}

	if _, err := f.svc.MarkDelivered(context.Background(), result.Order.ID, actor); err == nil {
		t.Fatal("expected conflict delivering before shipping")
	}
	order, err := f.svc.MarkShipped(context.Background(), result.Order.ID, actor)
	if err != nil {
		t.Fatalf("MarkShipped error: %v", err)
	}
	if order.Status != enums.GuestOrderStatusShipped {
		t.Fatalf("status = %s, want shipped", order.Status)
	}
	order, err = f.svc.MarkDelivered(context.Background(), result.Order.ID, actor)
	if err != nil {
		t.Fatalf("MarkDelivered error: %v", err)
	}
	if order.Status != enums.GuestOrderStatusDelivered {
		t.Fatalf("status = %s, want delivered", order.Status)
	}
}
