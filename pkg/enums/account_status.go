package enums

import "fmt"

// AccountStatus tracks the lifecycle of a customer credit account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusPaidOff   AccountStatus = "paid_off"
	AccountStatusDefaulted AccountStatus = "defaulted"
	AccountStatusCancelled AccountStatus = "cancelled"
)

var validAccountStatuses = []AccountStatus{
	AccountStatusActive,
	AccountStatusPaidOff,
	AccountStatusDefaulted,
	AccountStatusCancelled,
}

// String implements fmt.Stringer.
func (a AccountStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountStatus.
func (a AccountStatus) IsValid() bool {
	for _, candidate := range validAccountStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the account can no longer change state.
func (a AccountStatus) IsTerminal() bool {
	return a == AccountStatusPaidOff || a == AccountStatusDefaulted || a == AccountStatusCancelled
}

// ParseAccountStatus converts raw input into an AccountStatus.
func ParseAccountStatus(value string) (AccountStatus, error) {
	for _, candidate := range validAccountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account status %q", value)
}
