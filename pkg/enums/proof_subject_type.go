package enums

import "fmt"

// ProofSubjectType names the entity a payment proof supports.
type ProofSubjectType string

const (
	ProofSubjectInstallment ProofSubjectType = "installment"
	ProofSubjectGuestOrder  ProofSubjectType = "guest_order"
)

var validProofSubjectTypes = []ProofSubjectType{
	ProofSubjectInstallment,
	ProofSubjectGuestOrder,
}

// String implements fmt.Stringer.
func (p ProofSubjectType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProofSubjectType.
func (p ProofSubjectType) IsValid() bool {
	for _, candidate := range validProofSubjectTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProofSubjectType converts raw input into a ProofSubjectType.
func ParseProofSubjectType(value string) (ProofSubjectType, error) {
	for _, candidate := range validProofSubjectTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid proof subject type %q", value)
}
