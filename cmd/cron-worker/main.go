package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dromero-dev/casagrande-backend/internal/audit"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/cron"
	"github.com/dromero-dev/casagrande-backend/internal/guestorders"
	"github.com/dromero-dev/casagrande-backend/internal/inventory"
	"github.com/dromero-dev/casagrande-backend/internal/proofs"
	"github.com/dromero-dev/casagrande-backend/pkg/config"
	"github.com/dromero-dev/casagrande-backend/pkg/db"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/metrics"
	"github.com/dromero-dev/casagrande-backend/pkg/migrate"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
	"github.com/dromero-dev/casagrande-backend/pkg/redis"
)

const deadlineBatchSize = 200

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	outboxRepo := outbox.NewRepository(dbClient.DB())
	emitter := outbox.NewService(outboxRepo, logg)

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

	deadlineJob, err := cron.NewPaymentDeadlineJob(cron.PaymentDeadlineJobParams{
		Logger:    logg,
		Orders:    guestOrdersService,
		BatchSize: deadlineBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment deadline job", err)
		os.Exit(1)
	}

	accrualJob, err := cron.NewInterestAccrualJob(cron.InterestAccrualJobParams{
		Logger: logg,
		Credit: creditService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create interest accrual job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outboxRepo,
		Retention:  cfg.Outbox.RetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(deadlineJob, accrualJob, retentionJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
