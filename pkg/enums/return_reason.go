package enums

import "fmt"

// ReturnReason classifies why a sold item came back.
type ReturnReason string

const (
	ReturnReasonWrongItem ReturnReason = "wrong_item"
	ReturnReasonNotNeeded ReturnReason = "not_needed"
	ReturnReasonDefective ReturnReason = "defective"
)

var validReturnReasons = []ReturnReason{
	ReturnReasonWrongItem,
	ReturnReasonNotNeeded,
	ReturnReasonDefective,
}

// String implements fmt.Stringer.
func (r ReturnReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReturnReason.
func (r ReturnReason) IsValid() bool {
	for _, candidate := range validReturnReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReturnReason converts raw input into a ReturnReason.
func ParseReturnReason(value string) (ReturnReason, error) {
	for _, candidate := range validReturnReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return reason %q", value)
}
