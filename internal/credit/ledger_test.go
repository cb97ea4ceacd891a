package credit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
)

func activeAccount(limit, principal string) *models.CreditAccount {
	return &models.CreditAccount{
		ApprovedLimit:   decimal.RequireFromString(limit),
		PrincipalOwed:   decimal.RequireFromString(principal),
		AccruedInterest: decimal.Zero,
		Status:          enums.AccountStatusActive,
	}
}

func TestDraw(t *testing.T) {
	account := activeAccount("1000000", "400000")

	if err := Draw(account, decimal.RequireFromString("250000")); err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	if got := account.PrincipalOwed.String(); got != "650000" {
		t.Fatalf("principal owed = %s, want 650000", got)
	}
	if got := account.AvailableForPurchase().String(); got != "350000" {
		t.Fatalf("available = %s, want 350000", got)
	}
}

func TestDrawInsufficientCredit(t *testing.T) {
	account := activeAccount("1000000", "400000")

	err := Draw(account, decimal.RequireFromString("600000.01"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvariant) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	if got := account.PrincipalOwed.String(); got != "400000" {
		t.Fatalf("failed draw must not mutate the account, principal = %s", got)
	}
}

func TestDrawRejectsInactiveAccount(t *testing.T) {
	account := activeAccount("1000000", "0")
	account.Status = enums.AccountStatusPaidOff

	if err := Draw(account, decimal.NewFromInt(100)); err == nil {
		t.Fatal("expected error drawing on a paid off account")
	}
}

func TestDrawRejectsNonPositiveAmount(t *testing.T) {
	account := activeAccount("1000000", "0")

	err := Draw(account, decimal.Zero)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRestoreClampsAtZero(t *testing.T) {
	account := activeAccount("1000000", "30000")

	if err := Restore(account, decimal.RequireFromString("50000")); err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if !account.PrincipalOwed.IsZero() {
		t.Fatalf("principal owed = %s, want 0", account.PrincipalOwed)
	}
	if got := account.AvailableForPurchase().String(); got != "1000000" {
		t.Fatalf("available must never exceed the limit, got %s", got)
	}
}

func TestApplyInstallmentOverpaymentRejected(t *testing.T) {
	account := activeAccount("1000000", "400000")

	err := ApplyInstallment(account, decimal.RequireFromString("500000"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvariant) {
		t.Fatalf("expected overpayment rejection, got %v", err)
	}
	if got := account.PrincipalOwed.String(); got != "400000" {
		t.Fatalf("rejected installment must not mutate the account, principal = %s", got)
	}
	if account.Status != enums.AccountStatusActive {
		t.Fatalf("status = %s, want active", account.Status)
	}
}

func TestApplyInstallmentPaysOffAccount(t *testing.T) {
	account := activeAccount("1000000", "400000")

	if err := ApplyInstallment(account, decimal.RequireFromString("400000")); err != nil {
		t.Fatalf("ApplyInstallment error: %v", err)
	}
	if !account.PrincipalOwed.IsZero() {
		t.Fatalf("principal owed = %s, want 0", account.PrincipalOwed)
	}
	if account.Status != enums.AccountStatusPaidOff {
		t.Fatalf("status = %s, want paid_off", account.Status)
	}
}

func TestApplyInstallmentPrincipalFirst(t *testing.T) {
	account := activeAccount("1000000", "100000")
	account.AccruedInterest = decimal.RequireFromString("8000")

	if err := ApplyInstallment(account, decimal.RequireFromString("104000")); err != nil {
		t.Fatalf("ApplyInstallment error: %v", err)
	}
	if !account.PrincipalOwed.IsZero() {
		t.Fatalf("principal owed = %s, want 0", account.PrincipalOwed)
	}
	if got := account.AccruedInterest.String(); got != "4000" {
		t.Fatalf("accrued interest = %s, want 4000", got)
	}
	if account.Status != enums.AccountStatusActive {
		t.Fatalf("status = %s, want active while interest remains", account.Status)
	}
}

func TestApplyInstallmentCoversInterestExactly(t *testing.T) {
	account := activeAccount("1000000", "100000")
	account.AccruedInterest = decimal.RequireFromString("8000")

	if err := ApplyInstallment(account, decimal.RequireFromString("108000")); err != nil {
		t.Fatalf("ApplyInstallment error: %v", err)
	}
	if account.Status != enums.AccountStatusPaidOff {
		t.Fatalf("status = %s, want paid_off", account.Status)
	}
}

func TestAccrueInterestBeforeDueDate(t *testing.T) {
	account := activeAccount("1000000", "500000")
	account.DueAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	got := AccrueInterest(account, decimal.RequireFromString("0.24"), asOf)
	if !got.IsZero() {
		t.Fatalf("interest before due date = %s, want 0", got)
	}
	if account.InterestAsOf == nil || !account.InterestAsOf.Equal(asOf) {
		t.Fatalf("interest_as_of not stamped: %v", account.InterestAsOf)
	}
}

func TestAccrueInterestPastDue(t *testing.T) {
	account := activeAccount("1000000", "500000")
	account.DueAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)

	// 500000 * 0.24 * 30 / 365 = 9863.0136..., rounded to 9863.01
	got := AccrueInterest(account, decimal.RequireFromString("0.24"), asOf)
	if got.String() != "9863.01" {
		t.Fatalf("interest = %s, want 9863.01", got)
	}
	if account.AccruedInterest.String() != "9863.01" {
		t.Fatalf("accrued interest not stored: %s", account.AccruedInterest)
	}
}

func TestAccrueInterestIsRecomputedNotAccumulated(t *testing.T) {
	account := activeAccount("1000000", "500000")
	account.DueAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	first := AccrueInterest(account, decimal.RequireFromString("0.24"), asOf)
	second := AccrueInterest(account, decimal.RequireFromString("0.24"), asOf)
	if !first.Equal(second) {
		t.Fatalf("accrual is not idempotent: %s then %s", first, second)
	}
}

func TestAccrueInterestIgnoresTimezoneOffsets(t *testing.T) {
	account := activeAccount("1000000", "500000")
	account.DueAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	zone := time.FixedZone("UTC-6", -6*60*60)
	local := AccrueInterest(account, decimal.RequireFromString("0.24"), time.Date(2026, 3, 31, 22, 0, 0, 0, zone))

	fresh := activeAccount("1000000", "500000")
	fresh.DueAt = account.DueAt
	utc := AccrueInterest(fresh, decimal.RequireFromString("0.24"), time.Date(2026, 3, 31, 4, 0, 0, 0, time.UTC))

	if !local.Equal(utc) {
		t.Fatalf("calendar-day accrual differs across zones: %s vs %s", local, utc)
	}
}
