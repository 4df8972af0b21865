package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptoTA/internal/ports"
	"cryptoTA/internal/utils"
)

// TradesRecord is the read side shared by a single TradingRecord and a
// Portfolio of records.
type TradesRecord interface {
	// Iterator walks the closed trades.
	Iterator() utils.Iterator[*Trade]
	// OpenTrades walks the trades still waiting for an exit.
	OpenTrades() utils.Iterator[*Trade]
	// TradeCount is the number of closed trades.
	TradeCount() int
}

// TradingRecord is the ledger of one trading session. Orders alternate
// between the starting type (entry) and its complement (exit); at most one
// trade is open at any time. The record is written by a single strategy
// runner and is not safe for concurrent use.
type TradingRecord struct {
	id           uuid.UUID
	startingType OrderType
	orders       []Order
	trades       []*Trade // closed trades, in order
	current      *Trade   // open trade or nil
}

// NewTradingRecord creates a ledger whose trades start with startingType and
// replays orders into it.
func NewTradingRecord(startingType OrderType, orders ...Order) (*TradingRecord, error) {
	return RestoreTradingRecord(uuid.New(), startingType, orders...)
}

// RestoreTradingRecord rebuilds a stored ledger under its original id.
func RestoreTradingRecord(id uuid.UUID, startingType OrderType, orders ...Order) (*TradingRecord, error) {
	if !startingType.Valid() {
		return nil, fmt.Errorf("starting type %q: %w", startingType, ports.ErrConfigurationError)
	}
	r := &TradingRecord{id: id, startingType: startingType}
	for _, o := range orders {
		if err := r.Append(o); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ID identifies the trading session.
func (r *TradingRecord) ID() uuid.UUID {
	return r.id
}

// StartingType is the side of every entry order.
func (r *TradingRecord) StartingType() OrderType {
	return r.startingType
}

// Append records order. It opens a trade when none is open and closes the
// open trade otherwise. An order breaking the alternation, or not placed after
// the previous order, is rejected and the ledger is left untouched.
func (r *TradingRecord) Append(order Order) error {
	if order.Index < 0 {
		return fmt.Errorf("order %s: negative index: %w", order, ports.ErrInvalidOrderSequence)
	}
	if last, ok := r.LastOrder(); ok && order.Index <= last.Index {
		return fmt.Errorf("order %s not after previous order %s: %w", order, last, ports.ErrInvalidOrderSequence)
	}

	if r.current == nil {
		if order.Type != r.startingType {
			return fmt.Errorf("order %s: no open trade, expected a %s entry: %w",
				order, r.startingType, ports.ErrInvalidOrderSequence)
		}
		r.current = newTrade(order)
		r.orders = append(r.orders, order)
		return nil
	}

	if order.Type != r.startingType.Complement() {
		return fmt.Errorf("order %s: trade opened at %d is still open, expected a %s exit: %w",
			order, r.current.entry.Index, r.startingType.Complement(), ports.ErrInvalidOrderSequence)
	}
	exit := order
	r.current.exit = &exit
	r.trades = append(r.trades, r.current)
	r.current = nil
	r.orders = append(r.orders, order)
	return nil
}

// Enter opens a trade at index.
func (r *TradingRecord) Enter(index int, price, amount decimal.Decimal) error {
	return r.Append(Order{Index: index, Type: r.startingType, Price: price, Amount: amount})
}

// Exit closes the open trade at index.
func (r *TradingRecord) Exit(index int, price, amount decimal.Decimal) error {
	return r.Append(Order{Index: index, Type: r.startingType.Complement(), Price: price, Amount: amount})
}

// Operate enters when no trade is open and exits otherwise.
func (r *TradingRecord) Operate(index int, price, amount decimal.Decimal) error {
	if r.current == nil {
		return r.Enter(index, price, amount)
	}
	return r.Exit(index, price, amount)
}

// CurrentTrade returns the open trade, if any.
func (r *TradingRecord) CurrentTrade() (*Trade, bool) {
	return r.current, r.current != nil
}

// IsClosed reports whether no trade is open.
func (r *TradingRecord) IsClosed() bool {
	return r.current == nil
}

// LastOrder returns the most recent order.
func (r *TradingRecord) LastOrder() (Order, bool) {
	if len(r.orders) == 0 {
		return Order{}, false
	}
	return r.orders[len(r.orders)-1], true
}

// Orders returns a copy of every recorded order.
func (r *TradingRecord) Orders() []Order {
	out := make([]Order, len(r.orders))
	copy(out, r.orders)
	return out
}

// TradeCount is the number of closed trades.
func (r *TradingRecord) TradeCount() int {
	return len(r.trades)
}

// Trades returns a copy of the closed trades.
func (r *TradingRecord) Trades() []*Trade {
	out := make([]*Trade, len(r.trades))
	copy(out, r.trades)
	return out
}

// Iterator walks the trades closed so far.
func (r *TradingRecord) Iterator() utils.Iterator[*Trade] {
	return utils.NewSliceIterator(r.trades[:len(r.trades):len(r.trades)])
}

// OpenTrades yields the open trade, if there is one.
func (r *TradingRecord) OpenTrades() utils.Iterator[*Trade] {
	if r.current == nil {
		return utils.NewSliceIterator[*Trade](nil)
	}
	return utils.NewSliceIterator([]*Trade{r.current})
}
