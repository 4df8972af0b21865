package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Order is a buy or sell executed at a series index. Orders are values and
// never change once built.
type Order struct {
	Index  int             // Series index the order was executed at
	Type   OrderType       // BUY or SELL
	Price  decimal.Decimal // Execution price
	Amount decimal.Decimal // Traded quantity
}

// BuyAt returns a BUY order.
func BuyAt(index int, price, amount decimal.Decimal) Order {
	return Order{Index: index, Type: Buy, Price: price, Amount: amount}
}

// SellAt returns a SELL order.
func SellAt(index int, price, amount decimal.Decimal) Order {
	return Order{Index: index, Type: Sell, Price: price, Amount: amount}
}

// Value is price * amount.
func (o Order) Value() decimal.Decimal {
	return o.Price.Mul(o.Amount)
}

func (o Order) String() string {
	return fmt.Sprintf("%s@%d %s x %s", o.Type, o.Index, o.Price, o.Amount)
}
