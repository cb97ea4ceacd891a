package credit

import (
	"context"
	"testing"
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

type fakeRepository struct {
	accounts map[uuid.UUID]*models.CreditAccount
	saved    []*models.CreditAccount
	saveErr  error
}

func newFakeRepository(accounts ...*models.CreditAccount) *fakeRepository {
	repo := &fakeRepository{accounts: map[uuid.UUID]*models.CreditAccount{}}
	for _, account := range accounts {
		repo.accounts[account.ID] = account
	}
	return repo
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CreditAccount, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *account
	return &copied, nil
}

func (f *fakeRepository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CreditAccount, error) {
	for _, account := range f.accounts {
		if account.CustomerID == customerID && account.Status == enums.AccountStatusActive {
			copied := *account
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) Create(ctx context.Context, account *models.CreditAccount) error {
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeRepository) Save(ctx context.Context, account *models.CreditAccount) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *account
	f.accounts[account.ID] = &copied
	f.saved = append(f.saved, &copied)
	return nil
}

func (f *fakeRepository) ListPastDueActive(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error) {
	var out []models.CreditAccount
	for _, account := range f.accounts {
		if account.Status == enums.AccountStatusActive && account.DueAt.Before(asOf) {
			out = append(out, *account)
		}
	}
	return out, nil
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	for _, existing := range f.events {
		if existing.EventType == event.EventType && existing.AggregateID == event.AggregateID {
			return nil
		}
	}
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

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func testCreditConfig() config.CreditConfig {
	return config.CreditConfig{
		AnnualInterestRate: "0.24",
		DefaultTermDays:    90,
		MaxRequestAmount:   "5000000",
		MaxTermDays:        365,
	}
}

func newTestService(t *testing.T, repo *fakeRepository, emitter *fakeEmitter, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		DB:     fakeTxRunner{},
		Outbox: emitter,
		Config: testCreditConfig(),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func storedAccount(limit, principal string) *models.CreditAccount {
	return &models.CreditAccount{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		ApprovedLimit:   decimal.RequireFromString(limit),
		PrincipalOwed:   decimal.RequireFromString(principal),
		AccruedInterest: decimal.Zero,
		InterestRate:    decimal.RequireFromString("0.24"),
		Status:          enums.AccountStatusActive,
		TermDays:        90,
		GrantedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DueAt:           time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestServiceOpenAccount(t *testing.T) {
	repo := newFakeRepository()
	emitter := &fakeEmitter{}
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, repo, emitter, now)

	account, err := svc.OpenAccount(context.Background(), &gorm.DB{}, OpenAccountInput{
		CustomerID:    uuid.New(),
		ApprovedLimit: decimal.RequireFromString("1000000"),
		ActorUserID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("OpenAccount error: %v", err)
	}
	if account.Status != enums.AccountStatusActive {
		t.Fatalf("status = %s, want active", account.Status)
	}
	if account.TermDays != 90 {
		t.Fatalf("term days = %d, want default 90", account.TermDays)
	}
	wantDue := now.AddDate(0, 0, 90)
	if !account.DueAt.Equal(wantDue) {
		t.Fatalf("due at = %s, want %s", account.DueAt, wantDue)
	}
	if emitter.countByType(enums.EventCreditAccountOpened) != 1 {
		t.Fatal("expected credit_account_opened event")
	}
}

func TestServiceOpenAccountRejectsSecondActive(t *testing.T) {
	existing := storedAccount("1000000", "0")
	repo := newFakeRepository(existing)
	svc := newTestService(t, repo, &fakeEmitter{}, time.Now())

	_, err := svc.OpenAccount(context.Background(), &gorm.DB{}, OpenAccountInput{
		CustomerID:    existing.CustomerID,
		ApprovedLimit: decimal.RequireFromString("500000"),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceDrawTx(t *testing.T) {
	account := storedAccount("1000000", "400000")
	repo := newFakeRepository(account)
	svc := newTestService(t, repo, &fakeEmitter{}, time.Now())

	updated, err := svc.DrawTx(context.Background(), &gorm.DB{}, account.ID, decimal.RequireFromString("100000"))
	if err != nil {
		t.Fatalf("DrawTx error: %v", err)
	}
	if got := updated.PrincipalOwed.String(); got != "500000" {
		t.Fatalf("principal = %s, want 500000", got)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(repo.saved))
	}
}

func TestServiceDrawTxStaleVersion(t *testing.T) {
	account := storedAccount("1000000", "0")
	repo := newFakeRepository(account)
	repo.saveErr = ErrStaleAccount
	svc := newTestService(t, repo, &fakeEmitter{}, time.Now())

	_, err := svc.DrawTx(context.Background(), &gorm.DB{}, account.ID, decimal.NewFromInt(100))
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on stale version, got %v", err)
	}
}

func TestServiceApplyInstallmentTxEmitsPaidOff(t *testing.T) {
	account := storedAccount("1000000", "400000")
	repo := newFakeRepository(account)
	emitter := &fakeEmitter{}
	svc := newTestService(t, repo, emitter, time.Now())

	_, err := svc.ApplyInstallmentTx(context.Background(), &gorm.DB{}, ApplyInstallmentInput{
		AccountID:   account.ID,
		Amount:      decimal.RequireFromString("500000"),
		ActorUserID: uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvariant) {
		t.Fatalf("expected overpayment rejection, got %v", err)
	}

	updated, err := svc.ApplyInstallmentTx(context.Background(), &gorm.DB{}, ApplyInstallmentInput{
		AccountID:   account.ID,
		Amount:      decimal.RequireFromString("400000"),
		ActorUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("ApplyInstallmentTx error: %v", err)
	}
	if updated.Status != enums.AccountStatusPaidOff {
		t.Fatalf("status = %s, want paid_off", updated.Status)
	}
	if emitter.countByType(enums.EventCreditAccountPaidOff) != 1 {
		t.Fatal("expected credit_account_paid_off event")
	}
}

func TestServiceAccrueInterest(t *testing.T) {
	account := storedAccount("1000000", "500000")
	repo := newFakeRepository(account)
	emitter := &fakeEmitter{}
	asOf := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, repo, emitter, asOf)

	updated, err := svc.AccrueInterest(context.Background(), account.ID, asOf)
	if err != nil {
		t.Fatalf("AccrueInterest error: %v", err)
	}
	// 30 days past the 2026-04-01 due date: 500000 * 0.24 * 30 / 365
	if got := updated.AccruedInterest.String(); got != "9863.01" {
		t.Fatalf("accrued interest = %s, want 9863.01", got)
	}
	if emitter.countByType(enums.EventInterestAccrued) != 1 {
		t.Fatal("expected interest_accrued event")
	}
}

func TestServiceAccrueInterestSkipsTerminalAccounts(t *testing.T) {
	account := storedAccount("1000000", "0")
	account.Status = enums.AccountStatusPaidOff
	repo := newFakeRepository(account)
	emitter := &fakeEmitter{}
	svc := newTestService(t, repo, emitter, time.Now())

	if _, err := svc.AccrueInterest(context.Background(), account.ID, time.Now()); err != nil {
		t.Fatalf("AccrueInterest error: %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatal("terminal accounts must not be rewritten")
	}
	if len(emitter.events) != 0 {
		t.Fatal("terminal accounts must not emit events")
	}
}

func TestServiceSnapshot(t *testing.T) {
	account := storedAccount("1000000", "400000")
	account.AccruedInterest = decimal.RequireFromString("2000")
	repo := newFakeRepository(account)
	svc := newTestService(t, repo, &fakeEmitter{}, time.Now())

	snap, err := svc.Snapshot(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if got := snap.AvailableForPurchase.String(); got != "600000" {
		t.Fatalf("available = %s, want 600000", got)
	}
	if got := snap.TotalPayable.String(); got != "402000" {
		t.Fatalf("total payable = %s, want 402000", got)
	}
}
