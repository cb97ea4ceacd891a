package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateCreditAccount OutboxAggregateType = "credit_account"
	AggregateCreditRequest OutboxAggregateType = "credit_request"
	AggregateInstallment   OutboxAggregateType = "installment"
	AggregateSaleReturn    OutboxAggregateType = "sale_return"
	AggregateSupplierCase  OutboxAggregateType = "supplier_case"
	AggregateGuestOrder    OutboxAggregateType = "guest_order"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCreditAccount,
	AggregateCreditRequest,
	AggregateInstallment,
	AggregateSaleReturn,
	AggregateSupplierCase,
	AggregateGuestOrder,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventCreditRequestDecided      OutboxEventType = "credit_request_decided"
	EventCreditAccountOpened       OutboxEventType = "credit_account_opened"
	EventCreditAccountPaidOff      OutboxEventType = "credit_account_paid_off"
	EventInterestAccrued           OutboxEventType = "interest_accrued"
	EventInstallmentSubmitted      OutboxEventType = "installment_submitted"
	EventInstallmentVerified       OutboxEventType = "installment_verified"
	EventInstallmentRejected       OutboxEventType = "installment_rejected"
	EventReturnSettled             OutboxEventType = "return_settled"
	EventSupplierCaseShipped       OutboxEventType = "supplier_case_shipped"
	EventSupplierCaseReconciled    OutboxEventType = "supplier_case_reconciled"
	EventGuestOrderCreated         OutboxEventType = "guest_order_created"
	EventGuestOrderProofSubmitted  OutboxEventType = "guest_order_proof_submitted"
	EventGuestOrderPaymentVerified OutboxEventType = "guest_order_payment_verified"
	EventGuestOrderExpired         OutboxEventType = "guest_order_expired"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCreditRequestDecided,
	EventCreditAccountOpened,
	EventCreditAccountPaidOff,
	EventInterestAccrued,
	EventInstallmentSubmitted,
	EventInstallmentVerified,
	EventInstallmentRejected,
	EventReturnSettled,
	EventSupplierCaseShipped,
	EventSupplierCaseReconciled,
	EventGuestOrderCreated,
	EventGuestOrderProofSubmitted,
	EventGuestOrderPaymentVerified,
	EventGuestOrderExpired,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
