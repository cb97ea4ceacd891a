package credit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
)

const daysPerYear = 365

// ErrInsufficientCredit is returned when a draw exceeds the available balance.
func ErrInsufficientCredit(available decimal.Decimal) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvariant, "insufficient credit available").
		WithDetails(map[string]any{"available": available.StringFixed(2)})
}

// ErrOverpaymentRejected is returned when an installment exceeds the payable debt.
func ErrOverpaymentRejected(payable decimal.Decimal) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvariant, "installment exceeds total payable").
		WithDetails(map[string]any{"total_payable": payable.StringFixed(2)})
}

// Draw reserves amount against the account's available balance, increasing
// owed principal. The account is left untouched on failure.
func Draw(account *models.CreditAccount, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "draw amount must be positive")
	}
	if account.Status != enums.AccountStatusActive {
		return pkgerrors.New(pkgerrors.CodeInvariant, "account is not active")
	}
	available := account.AvailableForPurchase()
	if amount.GreaterThan(available) {
		return ErrInsufficientCredit(available)
	}
	account.PrincipalOwed = account.PrincipalOwed.Add(amount).Round(2)
	return nil
}

// Restore returns amount to the available balance after a settlement in the
// customer's favor. The available balance never exceeds the approved limit,
// so owed principal is clamped at zero.
func Restore(account *models.CreditAccount, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "restore amount must be positive")
	}
	if account.Status != enums.AccountStatusActive {
		return pkgerrors.New(pkgerrors.CodeInvariant, "account is not active")
	}
	principal := account.PrincipalOwed.Sub(amount)
	if principal.IsNegative() {
		principal = decimal.Zero
	}
	account.PrincipalOwed = principal.Round(2)
	return nil
}

// ApplyInstallment reduces the debt by amount, principal first, then accrued
// interest. An amount above the total payable rejects the whole operation
// with no partial application.
func ApplyInstallment(account *models.CreditAccount, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "installment amount must be positive")
	}
	if account.Status != enums.AccountStatusActive {
		return pkgerrors.New(pkgerrors.CodeInvariant, "account is not active")
	}
	payable := account.TotalPayable()
	if amount.GreaterThan(payable) {
		return ErrOverpaymentRejected(payable)
	}

	principal := account.PrincipalOwed.Sub(amount)
	interest := account.AccruedInterest
	if principal.IsNegative() {
		interest = interest.Add(principal)
		principal = decimal.Zero
	}
	account.PrincipalOwed = principal.Round(2)
	account.AccruedInterest = interest.Round(2)

	if account.TotalPayable().IsZero() {
		account.Status = enums.AccountStatusPaidOff
	}
	return nil
}

// AccrueInterest recomputes accrued interest from the stored principal and
// the elapsed time past the due date: simple interest, ACT/365, whole
// calendar days, timezone-naive. It is a deterministic function of the
// stored state and asOf, and is only ever invoked explicitly.
func AccrueInterest(account *models.CreditAccount, annualRate decimal.Decimal, asOf time.Time) decimal.Decimal {
	days := daysPastDue(account.DueAt, asOf)
	if days <= 0 || annualRate.IsZero() {
		account.AccruedInterest = decimal.Zero
		account.InterestAsOf = &asOf
		return decimal.Zero
	}
	interest := account.PrincipalOwed.
		Mul(annualRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(daysPerYear)).
		Round(2)
	account.AccruedInterest = interest
	account.InterestAsOf = &asOf
	return interest
}

// daysPastDue counts whole calendar days between the due date and asOf,
// ignoring time-of-day and zone offsets.
func daysPastDue(dueAt, asOf time.Time) int {
	due := time.Date(dueAt.Year(), dueAt.Month(), dueAt.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(now.Sub(due).Hours() / 24)
}
