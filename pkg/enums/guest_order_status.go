package enums

import "fmt"

// GuestOrderStatus tracks the guest checkout payment workflow.
type GuestOrderStatus string

const (
	GuestOrderStatusAwaitingPayment          GuestOrderStatus = "awaiting_payment"
	GuestOrderStatusAwaitingPaymentTimeboxed GuestOrderStatus = "awaiting_payment_timeboxed"
	GuestOrderStatusInVerification           GuestOrderStatus = "in_verification"
	GuestOrderStatusPartiallyPaid            GuestOrderStatus = "partially_paid"
	GuestOrderStatusConfirmed                GuestOrderStatus = "confirmed"
	GuestOrderStatusShipped                  GuestOrderStatus = "shipped"
	GuestOrderStatusDelivered                GuestOrderStatus = "delivered"
	GuestOrderStatusCancelled                GuestOrderStatus = "cancelled"
	GuestOrderStatusCancelledByInactivity    GuestOrderStatus = "cancelled_by_inactivity"
)

var validGuestOrderStatuses = []GuestOrderStatus{
	GuestOrderStatusAwaitingPayment,
	GuestOrderStatusAwaitingPaymentTimeboxed,
	GuestOrderStatusInVerification,
	GuestOrderStatusPartiallyPaid,
	GuestOrderStatusConfirmed,
	GuestOrderStatusShipped,
	GuestOrderStatusDelivered,
	GuestOrderStatusCancelled,
	GuestOrderStatusCancelledByInactivity,
}

// String implements fmt.Stringer.
func (g GuestOrderStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GuestOrderStatus.
func (g GuestOrderStatus) IsValid() bool {
	for _, candidate := range validGuestOrderStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// AcceptsProofs reports whether the order may still receive payment proofs.
func (g GuestOrderStatus) AcceptsProofs() bool {
	switch g {
	case GuestOrderStatusAwaitingPayment,
		GuestOrderStatusAwaitingPaymentTimeboxed,
		GuestOrderStatusInVerification,
		GuestOrderStatusPartiallyPaid:
		return true
	}
	return false
}

// IsTerminal reports whether the order reached a final state.
func (g GuestOrderStatus) IsTerminal() bool {
	switch g {
	case GuestOrderStatusDelivered,
		GuestOrderStatusCancelled,
		GuestOrderStatusCancelledByInactivity:
		return true
	}
	return false
}

// ParseGuestOrderStatus converts raw input into a GuestOrderStatus.
func ParseGuestOrderStatus(value string) (GuestOrderStatus, error) {
	for _, candidate := range validGuestOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid guest order status %q", value)
}
