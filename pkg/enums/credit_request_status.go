package enums

import "fmt"

// CreditRequestStatus tracks a credit line request toward its single decision.
type CreditRequestStatus string

const (
	CreditRequestStatusPending  CreditRequestStatus = "pending"
	CreditRequestStatusApproved CreditRequestStatus = "approved"
	CreditRequestStatusRejected CreditRequestStatus = "rejected"
)

var validCreditRequestStatuses = []CreditRequestStatus{
	CreditRequestStatusPending,
	CreditRequestStatusApproved,
	CreditRequestStatusRejected,
}

// String implements fmt.Stringer.
func (c CreditRequestStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CreditRequestStatus.
func (c CreditRequestStatus) IsValid() bool {
	for _, candidate := range validCreditRequestStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCreditRequestStatus converts raw input into a CreditRequestStatus.
func ParseCreditRequestStatus(value string) (CreditRequestStatus, error) {
	for _, candidate := range validCreditRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit request status %q", value)
}
