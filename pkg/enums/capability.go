package enums

// Capability names a permission the external identity provider may grant an
// actor. Decisions take the acting capability set explicitly instead of
// reading ambient session state.
type Capability string

const (
	CapVerifyInstallments   Capability = "installments:verify"
	CapDecideCreditRequests Capability = "credit_requests:decide"
	CapProcessReturns       Capability = "returns:process"
	CapManageSupplierCases  Capability = "supplier_cases:manage"
	CapVerifyOrderPayments  Capability = "guest_orders:verify_payment"
)

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}
