package enums

// ExchangeKind tags how the exchange relates to the returned merchandise.
// Informational only; it never participates in the settlement math.
type ExchangeKind string

const (
	ExchangeKindNone             ExchangeKind = "none"
	ExchangeKindSameProduct      ExchangeKind = "same_product"
	ExchangeKindDifferentProduct ExchangeKind = "different_product"
)

var validExchangeKinds = []ExchangeKind{
	ExchangeKindNone,
	ExchangeKindSameProduct,
	ExchangeKindDifferentProduct,
}

// String implements fmt.Stringer.
func (e ExchangeKind) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExchangeKind.
func (e ExchangeKind) IsValid() bool {
	for _, candidate := range validExchangeKinds {
		if candidate == e {
			return true
		}
	}
	return false
}
