package domain

// OrderType represents the side of an order (BUY or SELL).
type OrderType string

const (
	Buy  OrderType = "BUY"
	Sell OrderType = "SELL"
)

// Complement returns the opposite side.
func (t OrderType) Complement() OrderType {
	if t == Buy {
		return Sell
	}
	return Buy
}

// Valid reports whether t is BUY or SELL.
func (t OrderType) Valid() bool {
	return t == Buy || t == Sell
}

// Trend is the direction followed by trend-following indicators.
type Trend string

const (
	Up   Trend = "UP"
	Down Trend = "DOWN"
)

// Reverse returns the opposite trend.
func (t Trend) Reverse() Trend {
	if t == Up {
		return Down
	}
	return Up
}
