package installments

import (
	"context"
	"testing"
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

type fakeRepo struct {
	installments map[uuid.UUID]*models.Installment
}

func newFakeRepo(rows ...*models.Installment) *fakeRepo {
	repo := &fakeRepo{installments: map[uuid.UUID]*models.Installment{}}
	for _, row := range rows {
		repo.installments[row.ID] = row
	}
	return repo
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, installment *models.Installment) error {
	f.installments[installment.ID] = installment
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	row, ok := f.installments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepo) ListByAccount(ctx context.Context, params listParams) ([]models.Installment, *pagination.Cursor, error) {
	var out []models.Installment
	for _, row := range f.installments {
		if row.AccountID == params.AccountID {
			out = append(out, *row)
		}
	}
	return out, nil, nil
}

func (f *fakeRepo) DecidePending(ctx context.Context, id uuid.UUID, verdict enums.InstallmentStatus, decidedBy uuid.UUID, decidedAt time.Time, rejectionReason *string) (int64, error) {
	row, ok := f.installments[id]
	if !ok || row.Status != enums.InstallmentStatusPending {
		return 0, nil
	}
	row.Status = verdict
	row.DecidedBy = &decidedBy
	row.DecidedAt = &decidedAt
	row.RejectionReason = rejectionReason
	return 1, nil
}

type fakeCredit struct {
	accounts map[uuid.UUID]*models.CreditAccount
}

func newFakeCredit(accounts ...*models.CreditAccount) *fakeCredit {
	fc := &fakeCredit{accounts: map[uuid.UUID]*models.CreditAccount{}}
	for _, account := range accounts {
		fc.accounts[account.ID] = account
	}
	return fc
}

func (f *fakeCredit) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.CreditAccount, error) {
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "credit account not found")
	}
	return account, nil
}

func (f *fakeCredit) GetActiveAccount(ctx context.Context, customerID uuid.UUID) (*models.CreditAccount, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active credit account for customer")
}

func (f *fakeCredit) Snapshot(ctx context.Context, accountID uuid.UUID) (*credit.Snapshot, error) {
	account, err := f.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return credit.SnapshotOf(account), nil
}

func (f *fakeCredit) OpenAccount(ctx context.Context, tx *gorm.DB, input credit.OpenAccountInput) (*models.CreditAccount, error) {
	return nil, nil
}

func (f *fakeCredit) DrawTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal) (*models.CreditAccount, error) {
	account, err := f.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := credit.Draw(account, amount); err != nil {
		return nil, err
	}
	return account, nil
}

func (f *fakeCredit) RestoreTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal) (*models.CreditAccount, error) {
	account, err := f.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := credit.Restore(account, amount); err != nil {
		return nil, err
	}
	return account, nil
}

func (f *fakeCredit) ApplyInstallmentTx(ctx context.Context, tx *gorm.DB, input credit.ApplyInstallmentInput) (*models.CreditAccount, error) {
	account, err := f.GetAccount(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := credit.ApplyInstallment(account, input.Amount); err != nil {
		return nil, err
	}
	return account, nil
}

func (f *fakeCredit) AccrueInterest(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*models.CreditAccount, error) {
	return f.GetAccount(ctx, accountID)
}

func (f *fakeCredit) ListPastDue(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error) {
	return nil, nil
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
		Note:        input.Note,
		SubmittedAt: time.Now(),
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

type fakeRecorder struct {
	records []audit.RecordInput
}

func (f *fakeRecorder) RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error {
	f.records = append(f.records, input)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func activeAccount(limit, principal string) *models.CreditAccount {
	return &models.CreditAccount{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		ApprovedLimit:   decimal.RequireFromString(limit),
		PrincipalOwed:   decimal.RequireFromString(principal),
		AccruedInterest: decimal.Zero,
		InterestRate:    decimal.RequireFromString("0.24"),
		Status:          enums.AccountStatusActive,
	}
}

type testDeps struct {
	repo    *fakeRepo
	credit  *fakeCredit
	proofs  *fakeProofs
	emitter *fakeEmitter
	audit   *fakeRecorder
}

func newTestService(t *testing.T, deps testDeps) Service {
	t.Helper()
	if deps.repo == nil {
		deps.repo = newFakeRepo()
	}
	if deps.credit == nil {
		deps.credit = newFakeCredit()
	}
	if deps.proofs == nil {
		deps.proofs = &fakeProofs{}
	}
	if deps.emitter == nil {
		deps.emitter = &fakeEmitter{}
	}
	if deps.audit == nil {
		deps.audit = &fakeRecorder{}
	}
	svc, err := NewService(ServiceParams{
		Repo:   deps.repo,
		Credit: deps.credit,
		Proofs: deps.proofs,
		Outbox: deps.emitter,
		Audit:  deps.audit,
		DB:     fakeTxRunner{},
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func TestSubmitCreatesPendingInstallmentWithProof(t *testing.T) {
	account := activeAccount("1000000", "400000")
	deps := testDeps{
		repo:    newFakeRepo(),
		credit:  newFakeCredit(account),
		proofs:  &fakeProofs{},
		emitter: &fakeEmitter{},
	}
	svc := newTestService(t, deps)

	installment, err := svc.Submit(context.Background(), SubmitInput{
		AccountID:     account.ID,
		Amount:        decimal.RequireFromString("100000"),
		PaymentMethod: enums.PaymentMethodTransfer,
		ProofRef:      "proofs/2026/transfer-001.jpg",
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if installment.Status != enums.InstallmentStatusPending {
		t.Fatalf("status = %s, want pending", installment.Status)
	}
	if len(deps.proofs.attached) != 1 {
		t.Fatalf("expected one proof attached, got %d", len(deps.proofs.attached))
	}
	if deps.proofs.attached[0].SubjectType != enums.ProofSubjectInstallment {
		t.Fatalf("proof subject type = %s", deps.proofs.attached[0].SubjectType)
	}
	if len(deps.emitter.events) != 1 || deps.emitter.events[0].EventType != enums.EventInstallmentSubmitted {
		t.Fatalf("expected installment_submitted event, got %+v", deps.emitter.events)
	}
}

func TestSubmitRequiresProof(t *testing.T) {
	account := activeAccount("1000000", "0")
	svc := newTestService(t, testDeps{credit: newFakeCredit(account)})

	_, err := svc.Submit(context.Background(), SubmitInput{
		AccountID:     account.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: enums.PaymentMethodCash,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitRejectsInactiveAccount(t *testing.T) {
	account := activeAccount("1000000", "0")
	account.Status = enums.AccountStatusCancelled
	svc := newTestService(t, testDeps{credit: newFakeCredit(account)})

	_, err := svc.Submit(context.Background(), SubmitInput{
		AccountID:     account.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: enums.PaymentMethodCash,
		ProofRef:      "proofs/x.jpg",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvariant) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

func TestVerifyAppliesAmountToLedger(t *testing.T) {
	account := activeAccount("1000000", "400000")
	installment := &models.Installment{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("400000"),
		Status:    enums.InstallmentStatusPending,
	}
	deps := testDeps{
		repo:    newFakeRepo(installment),
		credit:  newFakeCredit(account),
		emitter: &fakeEmitter{},
	}
	svc := newTestService(t, deps)

	result, err := svc.Verify(context.Background(), DecideInput{
		InstallmentID: installment.ID,
		ActorUserID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if result.Installment.Status != enums.InstallmentStatusVerified {
		t.Fatalf("installment status = %s, want verified", result.Installment.Status)
	}
	if result.Account.Status != enums.AccountStatusPaidOff {
		t.Fatalf("account status = %s, want paid_off", result.Account.Status)
	}
	if !result.Account.PrincipalOwed.IsZero() {
		t.Fatalf("principal = %s, want 0", result.Account.PrincipalOwed)
	}
}

func TestVerifyRejectsOverpayment(t *testing.T) {
	account := activeAccount("1000000", "400000")
	installment := &models.Installment{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("500000"),
		Status:    enums.InstallmentStatusPending,
	}
	svc := newTestService(t, testDeps{
		repo:   newFakeRepo(installment),
		credit: newFakeCredit(account),
	})

	_, err := svc.Verify(context.Background(), DecideInput{
		InstallmentID: installment.ID,
		ActorUserID:   uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvariant) {
		t.Fatalf("expected overpayment rejection, got %v", err)
	}
}

func TestVerifyTwiceConflicts(t *testing.T) {
	account := activeAccount("1000000", "400000")
	installment := &models.Installment{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("100000"),
		Status:    enums.InstallmentStatusPending,
	}
	svc := newTestService(t, testDeps{
		repo:   newFakeRepo(installment),
		credit: newFakeCredit(account),
	})

	if _, err := svc.Verify(context.Background(), DecideInput{InstallmentID: installment.ID, ActorUserID: uuid.New()}); err != nil {
		t.Fatalf("first Verify error: %v", err)
	}
	_, err := svc.Verify(context.Background(), DecideInput{InstallmentID: installment.ID, ActorUserID: uuid.New()})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on second decision, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	installment := &models.Installment{
		ID:     uuid.New(),
		Status: enums.InstallmentStatusPending,
	}
	svc := newTestService(t, testDeps{repo: newFakeRepo(installment)})

	_, err := svc.Reject(context.Background(), DecideInput{
		InstallmentID: installment.ID,
		ActorUserID:   uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRejectHasNoLedgerEffect(t *testing.T) {
	account := activeAccount("1000000", "400000")
	installment := &models.Installment{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("100000"),
		Status:    enums.InstallmentStatusPending,
	}
	svc := newTestService(t, testDeps{
		repo:   newFakeRepo(installment),
		credit: newFakeCredit(account),
	})

	reason := "amount does not match the receipt"
	rejected, err := svc.Reject(context.Background(), DecideInput{
		InstallmentID: installment.ID,
		ActorUserID:   uuid.New(),
		Reason:        &reason,
	})
	if err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	if rejected.Status != enums.InstallmentStatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
	if got := account.PrincipalOwed.String(); got != "400000" {
		t.Fatalf("rejection must not touch the ledger, principal = %s", got)
	}
}
