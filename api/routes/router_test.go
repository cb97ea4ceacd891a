package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/creditrequests"
	"github.com/dromero-dev/casagrande-backend/internal/guestorders"
	"github.com/dromero-dev/casagrande-backend/internal/installments"
	"github.com/dromero-dev/casagrande-backend/internal/proofs"
	"github.com/dromero-dev/casagrande-backend/internal/returns"
	"github.com/dromero-dev/casagrande-backend/internal/suppliercases"
	pkgauth "github.com/dromero-dev/casagrande-backend/pkg/auth"
	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubUploadPlanner struct{}

func (stubUploadPlanner) PlanUpload(enums.ProofSubjectType, string) (*proofs.UploadPlan, error) {
	return &proofs.UploadPlan{ObjectRef: "proofs/installment/stub.png"}, nil
}

type stubCreditService struct{}

func (stubCreditService) GetAccount(context.Context, uuid.UUID) (*models.CreditAccount, error) {
	panic("unimplemented")
}

func (stubCreditService) GetActiveAccount(context.Context, uuid.UUID) (*models.CreditAccount, error) {
	panic("unimplemented")
}

func (stubCreditService) Snapshot(context.Context, uuid.UUID) (*credit.Snapshot, error) {
	return &credit.Snapshot{AccountID: uuid.New()}, nil
}

func (stubCreditService) OpenAccount(context.Context, *gorm.DB, credit.OpenAccountInput) (*models.CreditAccount, error) {
	panic("unimplemented")
}

func (stubCreditService) DrawTx(context.Context, *gorm.DB, uuid.UUID, decimal.Decimal) (*models.CreditAccount, error) {
	panic("unimplemented")
}

func (stubCreditService) RestoreTx(context.Context, *gorm.DB, uuid.UUID, decimal.Decimal) (*models.CreditAccount, error) {
	panic("unimplemented")
}

func (stubCreditService) ApplyInstallmentTx(context.Context, *gorm.DB, credit.ApplyInstallmentInput) (*models.CreditAccount, error) {
	panic("unimplemented")
}

func (stubCreditService) AccrueInterest(context.Context, uuid.UUID, time.Time) (*models.CreditAccount, error) {
	panic("unimplemented")
}

func (stubCreditService) ListPastDue(context.Context, time.Time) ([]models.CreditAccount, error) {
	panic("unimplemented")
}

type stubInstallmentsService struct{}

func (stubInstallmentsService) Submit(context.Context, installments.SubmitInput) (*models.Installment, error) {
	panic("unimplemented")
}

func (stubInstallmentsService) Verify(ctx context.Context, input installments.DecideInput) (*installments.VerifyResult, error) {
	return &installments.VerifyResult{
		Installment: &models.Installment{ID: input.InstallmentID, Status: enums.InstallmentStatusVerified},
	}, nil
}

func (stubInstallmentsService) Reject(context.Context, installments.DecideInput) (*models.Installment, error) {
	panic("unimplemented")
}

func (stubInstallmentsService) Get(context.Context, uuid.UUID) (*models.Installment, error) {
	panic("unimplemented")
}

func (stubInstallmentsService) ListByAccount(context.Context, uuid.UUID, pagination.Params) (*installments.InstallmentList, error) {
	return &installments.InstallmentList{}, nil
}

type stubCreditRequestsService struct{}

func (stubCreditRequestsService) Create(context.Context, creditrequests.CreateInput) (*models.CreditRequest, error) {
	panic("unimplemented")
}

func (stubCreditRequestsService) Decide(context.Context, creditrequests.DecideInput) (*creditrequests.DecideResult, error) {
	panic("unimplemented")
}

func (stubCreditRequestsService) Get(context.Context, uuid.UUID) (*models.CreditRequest, error) {
	panic("unimplemented")
}

func (stubCreditRequestsService) ListByCustomer(context.Context, uuid.UUID) ([]models.CreditRequest, error) {
	panic("unimplemented")
}

type stubReturnsService struct{}

func (stubReturnsService) CreateReturn(context.Context, returns.CreateReturnInput) (*returns.Result, error) {
	panic("unimplemented")
}

func (stubReturnsService) Get(context.Context, uuid.UUID) (*models.SaleReturn, error) {
	panic("unimplemented")
}

type stubSupplierCasesService struct{}

func (stubSupplierCasesService) Ship(context.Context, suppliercases.ShipInput) (*models.SupplierReturnCase, error) {
	panic("unimplemented")
}

func (stubSupplierCasesService) ConfirmReception(context.Context, suppliercases.ConfirmReceptionInput) (*models.SupplierReturnCase, error) {
	panic("unimplemented")
}

func (stubSupplierCasesService) Get(context.Context, uuid.UUID) (*models.SupplierReturnCase, error) {
	panic("unimplemented")
}

func (stubSupplierCasesService) GetByReturn(ctx context.Context, returnID uuid.UUID) (*models.SupplierReturnCase, error) {
	return &models.SupplierReturnCase{ID: uuid.New(), ReturnID: returnID, Status: enums.SupplierCaseStatusPending}, nil
}

type stubGuestOrdersService struct{}

func (stubGuestOrdersService) Create(context.Context, guestorders.CreateInput) (*guestorders.CreateResult, error) {
	panic("unimplemented")
}

func (stubGuestOrdersService) GetByToken(ctx context.Context, token string) (*models.GuestOrder, error) {
	return &models.GuestOrder{ID: uuid.New(), Status: enums.GuestOrderStatusAwaitingPayment}, nil
}

func (stubGuestOrdersService) SubmitProof(context.Context, guestorders.SubmitProofInput) (*models.PaymentProof, error) {
	panic("unimplemented")
}

func (stubGuestOrdersService) Timebox(context.Context, guestorders.TimeboxInput) (*models.GuestOrder, error) {
	panic("unimplemented")
}

func (stubGuestOrdersService) VerifyPayment(ctx context.Context, input guestorders.VerifyPaymentInput) (*models.GuestOrder, error) {
	return &models.GuestOrder{ID: input.OrderID, Status: enums.GuestOrderStatusConfirmed}, nil
}

func (stubGuestOrdersService) Cancel(context.Context, guestorders.CancelInput) (*models.GuestOrder, error) {
	panic("unimplemented")
}

func (stubGuestOrdersService) MarkShipped(context.Context, uuid.UUID, uuid.UUID) (*models.GuestOrder, error) {
	panic("unimplemented")
}

func (stubGuestOrdersService) MarkDelivered(context.Context, uuid.UUID, uuid.UUID) (*models.GuestOrder, error) {
	panic("unimplemented")
}

func (stubGuestOrdersService) ExpireDue(context.Context, time.Time, int) (int, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			VerificationSecret: "router-test-secret",
			Issuer:             "casagrande-idp",
			Audience:           "casagrande-backend",
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		stubCreditService{},
		stubInstallmentsService{},
		stubCreditRequestsService{},
		stubReturnsService{},
		stubSupplierCasesService{},
		stubGuestOrdersService{},
		stubUploadPlanner{},
	)
}

func mintToken(t *testing.T, cfg *config.Config, caps []enums.Capability) string {
	t.Helper()
	signed, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), uuid.New(), caps, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return signed
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestStaffRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/credit-accounts/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestStaffRouteSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/credit-accounts/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInstallmentVerifyRequiresCapability(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/installments/" + uuid.NewString() + "/verify"

	resp := httptest.NewRecorder()
	noCap := httptest.NewRequest(http.MethodPost, target, nil)
	noCap.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, nil))
	router.ServeHTTP(resp, noCap)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without capability, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	withCap := httptest.NewRequest(http.MethodPost, target, nil)
	withCap.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, []enums.Capability{enums.CapVerifyInstallments}))
	router.ServeHTTP(resp, withCap)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with capability, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGuestOrderRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guest-orders/some-token.secret", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestProofUploadPresignRequiresJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := strings.NewReader(`{"subject_type":"installment","content_type":"image/png"}`)

	resp := httptest.NewRecorder()
	anon := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/proofs", body)
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	body = strings.NewReader(`{"subject_type":"installment","content_type":"image/png"}`)
	authed := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/proofs", body)
	authed.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, nil))
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGuestOrderRouteRequiresCapability(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/admin/guest-orders/" + uuid.NewString() + "/verify-payment"

	resp := httptest.NewRecorder()
	noCap := httptest.NewRequest(http.MethodPost, target, nil)
	noCap.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, nil))
	router.ServeHTTP(resp, noCap)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without capability, got %d", resp.Code)
	}
}
