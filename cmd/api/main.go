package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dromero-dev/casagrande-backend/api/routes"
	"github.com/dromero-dev/casagrande-backend/internal/audit"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/creditrequests"
	"github.com/dromero-dev/casagrande-backend/internal/guestorders"
	"github.com/dromero-dev/casagrande-backend/internal/installments"
	"github.com/dromero-dev/casagrande-backend/internal/inventory"
	"github.com/dromero-dev/casagrande-backend/internal/proofs"
	"github.com/dromero-dev/casagrande-backend/internal/returns"
	"github.com/dromero-dev/casagrande-backend/internal/suppliercases"
	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/migrate"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
	"github.com/dromero-dev/casagrande-backend/pkg/redis"
	"github.com/dromero-dev/casagrande-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	// Proof uploads are optional in local setups without a bucket. The
	// presign controllers guard against the nil planner.
	var proofPlanner proofs.UploadPlanner
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing gcs client", err)
			}
		}()

		proofPlanner, err = proofs.NewUploadPlanner(gcsClient, cfg.GCS.UploadURLExpiry)
		if err != nil {
			logg.Error(context.Background(), "failed to create upload planner", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, proof uploads disabled")
	}

	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	auditRecorder, err := audit.NewService(audit.ServiceParams{
		Repo: audit.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create audit recorder", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo: inventory.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	proofService, err := proofs.NewService(proofs.ServiceParams{
		Repo: proofs.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create proof service", err)
		os.Exit(1)
	}

	creditService, err := credit.NewService(credit.ServiceParams{
		Repo:   credit.NewRepository(dbClient.DB()),
		DB:     dbClient,
		Outbox: emitter,
		Config: cfg.Credit,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create credit service", err)
		os.Exit(1)
	}

	installmentsService, err := installments.NewService(installments.ServiceParams{
		Repo:   installments.NewRepository(dbClient.DB()),
		Credit: creditService,
		Proofs: proofService,
		Outbox: emitter,
		Audit:  auditRecorder,
		DB:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create installments service", err)
		os.Exit(1)
	}

	creditRequestsService, err := creditrequests.NewService(creditrequests.ServiceParams{
		Repo:   creditrequests.NewRepository(dbClient.DB()),
		Credit: creditService,
		Outbox: emitter,
		Audit:  auditRecorder,
		DB:     dbClient,
		Config: cfg.Credit,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create credit request service", err)
		os.Exit(1)
	}

	returnsService, err := returns.NewService(returns.ServiceParams{
		Repo:      returns.NewRepository(dbClient.DB()),
		Inventory: inventoryService,
		Credit:    creditService,
		Outbox:    emitter,
		Audit:     auditRecorder,
		DB:        dbClient,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}

	supplierCasesService, err := suppliercases.NewService(suppliercases.ServiceParams{
		Repo:      suppliercases.NewRepository(dbClient.DB()),
		Inventory: inventoryService,
		Outbox:    emitter,
		Audit:     auditRecorder,
		DB:        dbClient,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier case service", err)
		os.Exit(1)
	}

	guestOrdersService, err := guestorders.NewService(guestorders.ServiceParams{
		Repo:      guestorders.NewRepository(dbClient.DB()),
		Inventory: inventoryService,
		Proofs:    proofService,
		Outbox:    emitter,
		Audit:     auditRecorder,
		DB:        dbClient,
		Security:  cfg.Security,
		Orders:    cfg.Orders,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create guest order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			creditService,
			installmentsService,
			creditRequestsService,
			returnsService,
			supplierCasesService,
			guestOrdersService,
			proofPlanner,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
