package enums

import "fmt"

// SettlementDirection classifies who owes money after netting a return
// against its exchange. Exactly one resolution method field is populated
// per direction; "none" carries neither.
type SettlementDirection string

const (
	SettlementDirectionNone           SettlementDirection = "none"
	SettlementDirectionOwedToCustomer SettlementDirection = "owed_to_customer"
	SettlementDirectionOwedByCustomer SettlementDirection = "owed_by_customer"
)

var validSettlementDirections = []SettlementDirection{
	SettlementDirectionNone,
	SettlementDirectionOwedToCustomer,
	SettlementDirectionOwedByCustomer,
}

// String implements fmt.Stringer.
func (s SettlementDirection) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SettlementDirection.
func (s SettlementDirection) IsValid() bool {
	for _, candidate := range validSettlementDirections {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSettlementDirection converts raw input into a SettlementDirection.
func ParseSettlementDirection(value string) (SettlementDirection, error) {
	for _, candidate := range validSettlementDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement direction %q", value)
}
