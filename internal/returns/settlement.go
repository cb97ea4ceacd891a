package returns

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// ReturnedLine is one returned position priced at the original sale price.
type ReturnedLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Reason    enums.ReturnReason
}

// ExchangeLine is one replacement position priced at the current price.
type ExchangeLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// Settlement is the netted outcome of a return-plus-exchange.
type Settlement struct {
	TotalReturned  decimal.Decimal
	TotalExchanged decimal.Decimal
	Amount         decimal.Decimal
	Direction      enums.SettlementDirection
	ExchangeKind   enums.ExchangeKind
}

// Compute nets the exchanged value against the returned value. A positive
// balance is owed by the customer, a negative one is owed to the customer.
// The exchange kind is informational and never affects the amounts.
func Compute(returned []ReturnedLine, exchanged []ExchangeLine) Settlement {
	totalReturned := decimal.Zero
	for _, line := range returned {
		totalReturned = totalReturned.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	totalExchanged := decimal.Zero
	for _, line := range exchanged {
		totalExchanged = totalExchanged.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	balance := totalExchanged.Sub(totalReturned)
	settlement := Settlement{
		TotalReturned:  totalReturned.Round(2),
		TotalExchanged: totalExchanged.Round(2),
		Amount:         balance.Abs().Round(2),
		Direction:      enums.SettlementDirectionNone,
		ExchangeKind:   exchangeKind(returned, exchanged),
	}
	switch {
	case balance.IsPositive():
		settlement.Direction = enums.SettlementDirectionOwedByCustomer
	case balance.IsNegative():
		settlement.Direction = enums.SettlementDirectionOwedToCustomer
	}
	return settlement
}

func exchangeKind(returned []ReturnedLine, exchanged []ExchangeLine) enums.ExchangeKind {
	if len(exchanged) == 0 {
		return enums.ExchangeKindNone
	}
	returnedProducts := make(map[uuid.UUID]struct{}, len(returned))
	for _, line := range returned {
		returnedProducts[line.ProductID] = struct{}{}
	}
	for _, line := range exchanged {
		if _, ok := returnedProducts[line.ProductID]; !ok {
			return enums.ExchangeKindDifferentProduct
		}
	}
	return enums.ExchangeKindSameProduct
}
