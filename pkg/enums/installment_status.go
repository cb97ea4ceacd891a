package enums

import "fmt"

// InstallmentStatus tracks an abono through the verification workflow.
type InstallmentStatus string

const (
	InstallmentStatusPending  InstallmentStatus = "pending"
	InstallmentStatusVerified InstallmentStatus = "verified"
	InstallmentStatusRejected InstallmentStatus = "rejected"
)

var validInstallmentStatuses = []InstallmentStatus{
	InstallmentStatusPending,
	InstallmentStatusVerified,
	InstallmentStatusRejected,
}

// String implements fmt.Stringer.
func (i InstallmentStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InstallmentStatus.
func (i InstallmentStatus) IsValid() bool {
	for _, candidate := range validInstallmentStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsDecided reports whether the installment already received its one-shot verdict.
func (i InstallmentStatus) IsDecided() bool {
	return i == InstallmentStatusVerified || i == InstallmentStatusRejected
}

// ParseInstallmentStatus converts raw input into an InstallmentStatus.
func ParseInstallmentStatus(value string) (InstallmentStatus, error) {
	for _, candidate := range validInstallmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid installment status %q", value)
}
