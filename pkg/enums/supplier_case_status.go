package enums

import "fmt"

// SupplierCaseStatus tracks defective merchandise shipped back to its supplier.
type SupplierCaseStatus string

const (
	SupplierCaseStatusPending           SupplierCaseStatus = "pending"
	SupplierCaseStatusShipped           SupplierCaseStatus = "shipped"
	SupplierCaseStatusPartiallyReceived SupplierCaseStatus = "partially_received"
	SupplierCaseStatusCompleted         SupplierCaseStatus = "completed"
)

var validSupplierCaseStatuses = []SupplierCaseStatus{
	SupplierCaseStatusPending,
	SupplierCaseStatusShipped,
	SupplierCaseStatusPartiallyReceived,
	SupplierCaseStatusCompleted,
}

// String implements fmt.Stringer.
func (s SupplierCaseStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupplierCaseStatus.
func (s SupplierCaseStatus) IsValid() bool {
	for _, candidate := range validSupplierCaseStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsReconciled reports whether reception was already confirmed for the case.
func (s SupplierCaseStatus) IsReconciled() bool {
	return s == SupplierCaseStatusPartiallyReceived || s == SupplierCaseStatusCompleted
}

// ParseSupplierCaseStatus converts raw input into a SupplierCaseStatus.
func ParseSupplierCaseStatus(value string) (SupplierCaseStatus, error) {
	for _, candidate := range validSupplierCaseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier case status %q", value)
}
