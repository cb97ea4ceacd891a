package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

const paymentDeadlineBatchSize = 200

type deadlineExpirer interface {
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)
}

// PaymentDeadlineJobParams configure the guest order deadline sweep.
type PaymentDeadlineJobParams struct {
	Logger    *logger.Logger
	Orders    deadlineExpirer
	BatchSize int
}

// NewPaymentDeadlineJob builds the sweep that cancels timeboxed guest orders
// past their payment deadline. The sweep reuses the same guarded transition
// as the lazy read-path check, so running both never double-cancels.
func NewPaymentDeadlineJob(params PaymentDeadlineJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("guest order service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = paymentDeadlineBatchSize
	}
	return &paymentDeadlineJob{
		logg:      params.Logger,
		orders:    params.Orders,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type paymentDeadlineJob struct {
	logg      *logger.Logger
	orders    deadlineExpirer
	batchSize int
	now       func() time.Time
}

func (j *paymentDeadlineJob) Name() string { return "payment-deadline" }

func (j *paymentDeadlineJob) Run(ctx context.Context) error {
	expired, err := j.orders.ExpireDue(ctx, j.now().UTC(), j.batchSize)
	if err != nil {
		return fmt.Errorf("payment deadline sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "orders_expired", expired)
	j.logg.Info(logCtx, "payment deadline sweep complete")
	return nil
}
