package enums

import "fmt"

// PaymentMethod enumerates how money moves in or out of the store.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodTransfer      PaymentMethod = "transfer"
	PaymentMethodCreditAccount PaymentMethod = "credit_account"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodTransfer,
	PaymentMethodCreditAccount,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsRefundMethod reports whether the method may settle money owed to the
// customer. Transfers are accepted inbound only.
func (p PaymentMethod) IsRefundMethod() bool {
	return p == PaymentMethodCash || p == PaymentMethodCreditAccount
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
