package returns

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

func TestComputeExchangeExceedsReturn(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()

	// 1×A @ 50,000 returned, 1×B @ 60,000 handed out.
	settlement := Compute(
		[]ReturnedLine{{ProductID: productA, Quantity: 1, UnitPrice: decimal.RequireFromString("50000"), Reason: enums.ReturnReasonDefective}},
		[]ExchangeLine{{ProductID: productB, Quantity: 1, UnitPrice: decimal.RequireFromString("60000")}},
	)

	if got := settlement.TotalReturned.String(); got != "50000" {
		t.Fatalf("total returned = %s, want 50000", got)
	}
	if got := settlement.TotalExchanged.String(); got != "60000" {
		t.Fatalf("total exchanged = %s, want 60000", got)
	}
	if settlement.Direction != enums.SettlementDirectionOwedByCustomer {
		t.Fatalf("direction = %s, want owed_by_customer", settlement.Direction)
	}
	if got := settlement.Amount.String(); got != "10000" {
		t.Fatalf("amount = %s, want 10000", got)
	}
	if settlement.ExchangeKind != enums.ExchangeKindDifferentProduct {
		t.Fatalf("exchange kind = %s, want different_product", settlement.ExchangeKind)
	}
}

func TestComputeReturnExceedsExchange(t *testing.T) {
	productA := uuid.New()

	settlement := Compute(
		[]ReturnedLine{{ProductID: productA, Quantity: 2, UnitPrice: decimal.RequireFromString("50000"), Reason: enums.ReturnReasonNotNeeded}},
		nil,
	)

	if settlement.Direction != enums.SettlementDirectionOwedToCustomer {
		t.Fatalf("direction = %s, want owed_to_customer", settlement.Direction)
	}
	if got := settlement.Amount.String(); got != "100000" {
		t.Fatalf("amount = %s, want 100000", got)
	}
	if settlement.ExchangeKind != enums.ExchangeKindNone {
		t.Fatalf("exchange kind = %s, want none", settlement.ExchangeKind)
	}
}

func TestComputeBalancedSameProduct(t *testing.T) {
	productA := uuid.New()

	settlement := Compute(
		[]ReturnedLine{{ProductID: productA, Quantity: 1, UnitPrice: decimal.RequireFromString("50000"), Reason: enums.ReturnReasonWrongItem}},
		[]ExchangeLine{{ProductID: productA, Quantity: 1, UnitPrice: decimal.RequireFromString("50000")}},
	)

	if settlement.Direction != enums.SettlementDirectionNone {
		t.Fatalf("direction = %s, want none", settlement.Direction)
	}
	if !settlement.Amount.IsZero() {
		t.Fatalf("amount = %s, want 0", settlement.Amount)
	}
	if settlement.ExchangeKind != enums.ExchangeKindSameProduct {
		t.Fatalf("exchange kind = %s, want same_product", settlement.ExchangeKind)
	}
}

func TestComputeMixedExchangeIsDifferentProduct(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()

	settlement := Compute(
		[]ReturnedLine{{ProductID: productA, Quantity: 1, UnitPrice: decimal.RequireFromString("10000"), Reason: enums.ReturnReasonWrongItem}},
		[]ExchangeLine{
			{ProductID: productA, Quantity: 1, UnitPrice: decimal.RequireFromString("10000")},
			{ProductID: productB, Quantity: 1, UnitPrice: decimal.RequireFromString("5000")},
		},
	)

	if settlement.ExchangeKind != enums.ExchangeKindDifferentProduct {
		t.Fatalf("exchange kind = %s, want different_product", settlement.ExchangeKind)
	}
}
