package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

type interestAccruer interface {
	ListPastDue(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error)
	AccrueInterest(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*models.CreditAccount, error)
}

// InterestAccrualJobParams configure the overdue interest recomputation.
type InterestAccrualJobParams struct {
	Logger *logger.Logger
	Credit interestAccruer
}

// NewInterestAccrualJob builds the job that recomputes accrued interest for
// every active account past its due date. Accrual is a recomputation, so
// running the job twice on the same day changes nothing.
func NewInterestAccrualJob(params InterestAccrualJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Credit == nil {
		return nil, fmt.Errorf("credit service required")
	}
	return &interestAccrualJob{
		logg:   params.Logger,
		credit: params.Credit,
		now:    time.Now,
	}, nil
}

type interestAccrualJob struct {
	logg   *logger.Logger
	credit interestAccruer
	now    func() time.Time
}

func (j *interestAccrualJob) Name() string { return "interest-accrual" }

func (j *interestAccrualJob) Run(ctx context.Context) error {
	asOf := j.now().UTC()
	accounts, err := j.credit.ListPastDue(ctx, asOf)
	if err != nil {
		return fmt.Errorf("list past due accounts: %w", err)
	}

	accrued := 0
	var errs []error
	for _, account := range accounts {
		if _, err := j.credit.AccrueInterest(ctx, account.ID, asOf); err != nil {
			accountCtx := j.logg.WithField(ctx, "account_id", account.ID)
			j.logg.Error(accountCtx, "accruing interest", err)
			errs = append(errs, fmt.Errorf("account %s: %w", account.ID, err))
			continue
		}
		accrued++
	}
	if len(errs) > 0 {
		return multierr.Combine(errs...)
	}

	logCtx := j.logg.WithField(ctx, "accounts_accrued", accrued)
	j.logg.Info(logCtx, "interest accrual complete")
	return nil
}
