package strategies

import (
	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
)

// Strategy decides, tick by tick, when a trading record enters and exits.
// A strategy is built for one series and reads its indicators at the index
// being replayed; it must not look at later indices.
type Strategy interface {
	// ShouldEnter reports whether a trade should be opened at index.
	ShouldEnter(index int, record *domain.TradingRecord) (bool, error)

	// ShouldExit reports whether the open trade should be closed at index.
	ShouldExit(index int, record *domain.TradingRecord) (bool, error)

	// Unstable returns the number of leading ticks on which the strategy
	// gives no signal.
	Unstable() int

	// Name returns the name of the strategy
	Name() string
}

// Factory builds a strategy for a series. Indicators are not shared between
// series, so each series gets its own instance.
type Factory func(series *domain.TimeSeries) (Strategy, error)

// BaseStrategy provides common functionality for strategies
type BaseStrategy struct {
	series *domain.TimeSeries
	logger ports.Logger
}

// NewBaseStrategy creates a new base strategy instance
func NewBaseStrategy(series *domain.TimeSeries, logger ports.Logger) *BaseStrategy {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &BaseStrategy{series: series, logger: logger}
}

// Series returns the series the strategy runs on.
func (b *BaseStrategy) Series() *domain.TimeSeries {
	return b.series
}

// crossedOver reports whether a was at or below b at index-1 and is above it at index.
func crossedOver(a, b func(int) (decimal.Decimal, error), index int) (bool, error) {
	if index < 1 {
		return false, nil
	}
	prevA, err := a(index - 1)
	if err != nil {
		return false, err
	}
	prevB, err := b(index - 1)
	if err != nil {
		return false, err
	}
	curA, err := a(index)
	if err != nil {
		return false, err
	}
	curB, err := b(index)
	if err != nil {
		return false, err
	}
	return prevA.LessThanOrEqual(prevB) && curA.GreaterThan(curB), nil
}

// crossedUnder is crossedOver with the arguments swapped.
func crossedUnder(a, b func(int) (decimal.Decimal, error), index int) (bool, error) {
	return crossedOver(b, a, index)
}
