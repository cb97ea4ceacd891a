package creditrequests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/internal/audit"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
)

type fakeRepo struct {
	requests map[uuid.UUID]*models.CreditRequest
}

func newFakeRepo(rows ...*models.CreditRequest) *fakeRepo {
	repo := &fakeRepo{requests: map[uuid.UUID]*models.CreditRequest{}}
	for _, row := range rows {
		repo.requests[row.ID] = row
	}
	return repo
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, request *models.CreditRequest) error {
	f.requests[request.ID] = request
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CreditRequest, error) {
	row, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CreditRequest, error) {
	var out []models.CreditRequest
	for _, row := range f.requests {
		if row.CustomerID == customerID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepo) HasPendingForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	for _, row := range f.requests {
		if row.CustomerID == customerID && row.Status == enums.CreditRequestStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) DecidePending(ctx context.Context, request *models.CreditRequest) (int64, error) {
	stored, ok := f.requests[request.ID]
	if !ok || stored.Status != enums.CreditRequestStatusPending {
		return 0, nil
	}
	*stored = *request
	return 1, nil
}

type fakeCredit struct {
	opened []credit.OpenAccountInput
}

func (f *fakeCredit) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.CreditAccount, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "credit account not found")
}

func (f *fakeCredit) GetActiveAccount(ctx context.Context, customerID uuid.UUID) (*models.CreditAccount, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active credit account for customer")
}

func (f *fakeCredit) Snapshot(ctx context.Context, accountID uuid.UUID) (*credit.Snapshot, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "credit account not found")
}

func (f *fakeCredit) OpenAccount(ctx context.Context, tx *gorm.DB, input credit.OpenAccountInput) (*models.CreditAccount, error) {
	f.opened = append(f.opened, input)
	grantedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &models.CreditAccount{
		ID:              uuid.New(),
		CustomerID:      input.CustomerID,
		ApprovedLimit:   input.ApprovedLimit,
		PrincipalOwed:   decimal.Zero,
		AccruedInterest: decimal.Zero,
		InterestRate:    decimal.RequireFromString("0.24"),
		Status:          enums.AccountStatusActive,
		TermDays:        input.TermDays,
		GrantedAt:       grantedAt,
		DueAt:           grantedAt.AddDate(0, 0, input.TermDays),
	}, nil
}

func (f *fakeCredit) DrawTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal) (*models.CreditAccount, error) {
	return nil, nil
}

func (f *fakeCredit) RestoreTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal) (*models.CreditAccount, error) {
	return nil, nil
}

func (f *fakeCredit) ApplyInstallmentTx(ctx context.Context, tx *gorm.DB, input credit.ApplyInstallmentInput) (*models.CreditAccount, error) {
	return nil, nil
}

func (f *fakeCredit) AccrueInterest(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*models.CreditAccount, error) {
	return nil, nil
}

func (f *fakeCredit) ListPastDue(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error) {
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

type fakeRecorder struct{}

func (fakeRecorder) RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error {
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func testConfig() config.CreditConfig {
	return config.CreditConfig{
		AnnualInterestRate: "0.24",
		DefaultTermDays:    90,
		MaxRequestAmount:   "5000000",
		MaxTermDays:        365,
	}
}

func newTestService(t *testing.T, repo *fakeRepo, creditSvc *fakeCredit, emitter *fakeEmitter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Credit: creditSvc,
		Outbox: emitter,
		Audit:  fakeRecorder{},
		DB:     fakeTxRunner{},
		Config: testConfig(),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func pendingRequest(amount string, termDays int) *models.CreditRequest {
	return &models.CreditRequest{
		ID:                uuid.New(),
		CustomerID:        uuid.New(),
		RequestedAmount:   decimal.RequireFromString(amount),
		RequestedTermDays: termDays,
		Status:            enums.CreditRequestStatusPending,
	}
}

func TestCreateValidatesBounds(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeCredit{}, &fakeEmitter{})

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID:      uuid.New(),
		RequestedAmount: decimal.RequireFromString("5000001"),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error above the cap, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		CustomerID:      uuid.New(),
		RequestedAmount: decimal.RequireFromString("100000"),
		TermDays:        400,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error above max term, got %v", err)
	}
}

func TestCreateDefaultsTermDays(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeCredit{}, &fakeEmitter{})

	request, err := svc.Create(context.Background(), CreateInput{
		CustomerID:      uuid.New(),
		RequestedAmount: decimal.RequireFromString("100000"),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if request.RequestedTermDays != 90 {
		t.Fatalf("term days = %d, want default 90", request.RequestedTermDays)
	}
	if request.Status != enums.CreditRequestStatusPending {
		t.Fatalf("status = %s, want pending", request.Status)
	}
}

func TestCreateRejectsSecondPending(t *testing.T) {
	existing := pendingRequest("100000", 90)
	svc := newTestService(t, newFakeRepo(existing), &fakeCredit{}, &fakeEmitter{})

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID:      existing.CustomerID,
		RequestedAmount: decimal.RequireFromString("200000"),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDecideApproveOpensAccount(t *testing.T) {
	request := pendingRequest("1000000", 90)
	creditSvc := &fakeCredit{}
	emitter := &fakeEmitter{}
	svc := newTestService(t, newFakeRepo(request), creditSvc, emitter)

	result, err := svc.Decide(context.Background(), DecideInput{
		RequestID:   request.ID,
		Verdict:     VerdictApprove,
		ActorUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if result.Request.Status != enums.CreditRequestStatusApproved {
		t.Fatalf("status = %s, want approved", result.Request.Status)
	}
	if result.Request.ApprovedAmount == nil || result.Request.ApprovedAmount.String() != "1000000" {
		t.Fatalf("approved amount should default to requested, got %v", result.Request.ApprovedAmount)
	}
	if result.Request.ResultingAccountID == nil {
		t.Fatal("resulting account id must be stamped")
	}
	if result.Account == nil || !result.Account.ApprovedLimit.Equal(decimal.RequireFromString("1000000")) {
		t.Fatalf("expected account snapshot with approved limit, got %+v", result.Account)
	}
	if len(creditSvc.opened) != 1 {
		t.Fatalf("expected exactly one account opened, got %d", len(creditSvc.opened))
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventCreditRequestDecided {
		t.Fatalf("expected credit_request_decided event, got %+v", emitter.events)
	}
}

func TestDecideApproveOverridesAmount(t *testing.T) {
	request := pendingRequest("1000000", 90)
	creditSvc := &fakeCredit{}
	svc := newTestService(t, newFakeRepo(request), creditSvc, &fakeEmitter{})

	override := decimal.RequireFromString("750000")
	result, err := svc.Decide(context.Background(), DecideInput{
		RequestID:      request.ID,
		Verdict:        VerdictApprove,
		ApprovedAmount: &override,
		ActorUserID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if result.Request.ApprovedAmount.String() != "750000" {
		t.Fatalf("approved amount = %s, want 750000", result.Request.ApprovedAmount)
	}
	if !creditSvc.opened[0].ApprovedLimit.Equal(override) {
		t.Fatalf("account opened with %s, want 750000", creditSvc.opened[0].ApprovedLimit)
	}
}

func TestDecideRejectRequiresNote(t *testing.T) {
	request := pendingRequest("1000000", 90)
	svc := newTestService(t, newFakeRepo(request), &fakeCredit{}, &fakeEmitter{})

	_, err := svc.Decide(context.Background(), DecideInput{
		RequestID:   request.ID,
		Verdict:     VerdictReject,
		ActorUserID: uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecideTwiceConflicts(t *testing.T) {
	request := pendingRequest("1000000", 90)
	creditSvc := &fakeCredit{}
	svc := newTestService(t, newFakeRepo(request), creditSvc, &fakeEmitter{})

	note := "insufficient history"
	if _, err := svc.Decide(context.Background(), DecideInput{
		RequestID:   request.ID,
		Verdict:     VerdictReject,
		Note:        &note,
		ActorUserID: uuid.New(),
	}); err != nil {
		t.Fatalf("first Decide error: %v", err)
	}

	_, err := svc.Decide(context.Background(), DecideInput{
		RequestID:   request.ID,
		Verdict:     VerdictApprove,
		ActorUserID: uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on second decision, got %v", err)
	}
}
