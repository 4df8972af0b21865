package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Trade pairs an entry order with an optional exit order.
// A trade without exit is open; the owning TradingRecord closes it.
type Trade struct {
	entry Order
	exit  *Order
}

func newTrade(entry Order) *Trade {
	return &Trade{entry: entry}
}

// Entry returns the order that opened the trade.
func (t *Trade) Entry() Order {
	return t.entry
}

// Exit returns the closing order, if any.
func (t *Trade) Exit() (Order, bool) {
	if t.exit == nil {
		return Order{}, false
	}
	return *t.exit, true
}

// StartingType is the side of the entry order.
func (t *Trade) StartingType() OrderType {
	return t.entry.Type
}

// IsOpen reports whether the trade still waits for its exit.
func (t *Trade) IsOpen() bool {
	return t.exit == nil
}

// IsClosed reports whether the trade has an exit order.
func (t *Trade) IsClosed() bool {
	return t.exit != nil
}

// Profit is the realised profit of a closed trade: (exit-entry)*amount for
// trades started with BUY, (entry-exit)*amount for trades started with SELL.
// Open trades report false.
func (t *Trade) Profit() (decimal.Decimal, bool) {
	if t.exit == nil {
		return decimal.Zero, false
	}
	diff := t.exit.Price.Sub(t.entry.Price)
	if t.entry.Type == Sell {
		diff = diff.Neg()
	}
	return diff.Mul(t.entry.Amount), true
}

func (t *Trade) String() string {
	if t.exit == nil {
		return fmt.Sprintf("Trade{entry: %s, open}", t.entry)
	}
	return fmt.Sprintf("Trade{entry: %s, exit: %s}", t.entry, *t.exit)
}
