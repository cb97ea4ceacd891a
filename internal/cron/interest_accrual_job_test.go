package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
)

type fakeInterestAccruer struct {
	accounts []models.CreditAccount
	accrued  []uuid.UUID
	failFor  uuid.UUID
	listErr  error
}

func (f *fakeInterestAccruer) ListPastDue(ctx context.Context, asOf time.Time) ([]models.CreditAccount, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.accounts, nil
}

func (f *fakeInterestAccruer) AccrueInterest(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*models.CreditAccount, error) {
	if accountID == f.failFor {
		return nil, errors.New("accrual failed")
	}
	f.accrued = append(f.accrued, accountID)
	return &models.CreditAccount{ID: accountID}, nil
}

func TestInterestAccrualJobAccruesEveryPastDueAccount(t *testing.T) {
	accounts := []models.CreditAccount{{ID: uuid.New()}, {ID: uuid.New()}}
	credit := &fakeInterestAccruer{accounts: accounts}
	job := newInterestAccrualJob(t, credit)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(credit.accrued) != 2 {
		t.Fatalf("expected 2 accounts accrued, got %d", len(credit.accrued))
	}
}

func TestInterestAccrualJobContinuesPastFailures(t *testing.T) {
	healthy := uuid.New()
	broken := uuid.New()
	credit := &fakeInterestAccruer{
		accounts: []models.CreditAccount{{ID: broken}, {ID: healthy}},
		failFor:  broken,
	}
	job := newInterestAccrualJob(t, credit)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error reporting the failed account")
	}
	if len(credit.accrued) != 1 || credit.accrued[0] != healthy {
		t.Fatalf("expected healthy account accrued despite failure, got %v", credit.accrued)
	}
}

func TestInterestAccrualJobPropagatesListError(t *testing.T) {
	credit := &fakeInterestAccruer{listErr: errors.New("boom")}
	job := newInterestAccrualJob(t, credit)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newInterestAccrualJob(t *testing.T, credit *fakeInterestAccruer) *interestAccrualJob {
	t.Helper()
	jobIface, err := NewInterestAccrualJob(InterestAccrualJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Credit: credit,
	})
	if err != nil {
		t.Fatalf("NewInterestAccrualJob: %v", err)
	}
	job, ok := jobIface.(*interestAccrualJob)
	if !ok {
		t.Fatalf("expected interestAccrualJob, got %T", jobIface)
	}
	return job
}
