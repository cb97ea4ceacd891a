package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dromero-dev/casagrande-backend/api/controllers"
	"github.com/dromero-dev/casagrande-backend/api/middleware"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/creditrequests"
	"github.com/dromero-dev/casagrande-backend/internal/guestorders"
	"github.com/dromero-dev/casagrande-backend/internal/installments"
	"github.com/dromero-dev/casagrande-backend/internal/proofs"
	"github.com/dromero-dev/casagrande-backend/internal/returns"
	"github.com/dromero-dev/casagrande-backend/internal/suppliercases"
	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	creditService credit.Service,
	installmentsService installments.Service,
	creditRequestsService creditrequests.Service,
	returnsService returns.Service,
	supplierCasesService suppliercases.Service,
	guestOrdersService guestorders.Service,
	proofPlanner proofs.UploadPlanner,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// A typed nil *redis.Client would slip past the middleware's nil check.
	var (
		idemStore redis.IdempotencyStore
		redisP    db.Pinger
	)
	if redisClient != nil {
		idemStore = redisClient
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	// Guest surface: authenticated by the order token itself.
	r.Route("/api/v1/guest-orders", func(r chi.Router) {
		r.Post("/", controllers.GuestOrderCreate(guestOrdersService, logg))
		r.Get("/{token}", controllers.GuestOrderGet(guestOrdersService, logg))
		r.Post("/{token}/proofs", controllers.GuestOrderSubmitProof(guestOrdersService, logg))
		r.Post("/{token}/proof-uploads", controllers.GuestOrderProofUploadPresign(guestOrdersService, proofPlanner, logg))
	})

	// Staff surface: bearer token + capability per operation.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Post("/uploads/proofs", controllers.ProofUploadPresign(proofPlanner, logg))

		r.Route("/credit-accounts/{accountId}", func(r chi.Router) {
			r.Get("/", controllers.CreditAccountSnapshot(creditService, logg))
			r.Get("/installments", controllers.InstallmentList(installmentsService, logg))
			r.Post("/installments", controllers.InstallmentSubmit(installmentsService, logg))
		})

		r.Route("/installments/{installmentId}", func(r chi.Router) {
			r.Use(middleware.RequireCapability(enums.CapVerifyInstallments, logg))
			r.Post("/verify", controllers.InstallmentVerify(installmentsService, logg))
			r.Post("/reject", controllers.InstallmentReject(installmentsService, logg))
		})

		r.Route("/credit-requests", func(r chi.Router) {
			r.Post("/", controllers.CreditRequestCreate(creditRequestsService, logg))
			r.With(middleware.RequireCapability(enums.CapDecideCreditRequests, logg)).
				Post("/{requestId}/decide", controllers.CreditRequestDecide(creditRequestsService, logg))
		})

		r.With(middleware.RequireCapability(enums.CapProcessReturns, logg)).
			Post("/sales/{saleId}/returns", controllers.SaleReturnCreate(returnsService, logg))

		r.Route("/returns/{returnId}/supplier-case", func(r chi.Router) {
			r.Get("/", controllers.SupplierCaseGet(supplierCasesService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(enums.CapManageSupplierCases, logg))
				r.Post("/ship", controllers.SupplierCaseShip(supplierCasesService, logg))
				r.Post("/confirm-reception", controllers.SupplierCaseConfirmReception(supplierCasesService, logg))
			})
		})

		// Admin prefix keeps the {orderId} routes clear of the public
		// {token} routes.
		r.Route("/admin/guest-orders/{orderId}", func(r chi.Router) {
			r.Use(middleware.RequireCapability(enums.CapVerifyOrderPayments, logg))
			r.Post("/timebox", controllers.GuestOrderTimebox(guestOrdersService, logg))
			r.Post("/verify-payment", controllers.GuestOrderVerifyPayment(guestOrdersService, logg))
			r.Post("/cancel", controllers.GuestOrderCancel(guestOrdersService, logg))
			r.Post("/ship", controllers.GuestOrderShip(guestOrdersService, logg))
			r.Post("/deliver", controllers.GuestOrderDeliver(guestOrdersService, logg))
		})
	})

	return r
}
