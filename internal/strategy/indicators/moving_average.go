package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA indicators.
//
// The SMA at i averages the last Period input values (fewer near the start of
// the series) and is stateless. The EMA is seeded with the first input value
// and then follows ema[i] = ema[i-1] + k*(v[i]-ema[i-1]) with k = 2/(Period+1),
// so it uses a recursive cache.
type MovingAverage struct {
	input      Num
	config     MovingAverageConfig
	multiplier decimal.Decimal
	cache      *Cache[decimal.Decimal]
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(input Num, config MovingAverageConfig) (*MovingAverage, error) {
	if input == nil {
		return nil, fmt.Errorf("%s: nil input indicator: %w", config.Type, ports.ErrConfigurationError)
	}
	m := &MovingAverage{input: input, config: config}
	if err := config.validate(m.Name()); err != nil {
		return nil, err
	}

	switch config.Type {
	case SimpleMovingAverage:
		m.cache = NewCache(input.Series(), m.calculateSMA)
	case ExponentialMovingAverage:
		k, err := num.Div(num.Two, num.OfInt(int64(config.Period+1)))
		if err != nil {
			return nil, err
		}
		m.multiplier = k
		m.cache = NewRecursiveCache(input.Series(), m.calculateEMA)
	default:
		return nil, fmt.Errorf("unsupported moving average type %q: %w", config.Type, ports.ErrConfigurationError)
	}
	return m, nil
}

// Name returns the name of the indicator
func (m *MovingAverage) Name() string {
	return fmt.Sprintf("%s(%s,%d)", m.config.Type, m.input.Name(), m.config.Period)
}

func (m *MovingAverage) Dependencies() []Source {
	return []Source{m.input}
}

func (m *MovingAverage) Series() *domain.TimeSeries {
	return m.input.Series()
}

// Value returns the moving average at index.
func (m *MovingAverage) Value(index int) (decimal.Decimal, error) {
	return m.cache.Value(index)
}

func (m *MovingAverage) calculateSMA(index int) (decimal.Decimal, error) {
	start := index - m.config.Period + 1
	if start < 0 {
		start = 0
	}
	total := decimal.Zero
	for i := start; i <= index; i++ {
		v, err := m.input.Value(i)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return num.Div(total, num.OfInt(int64(index-start+1)))
}

func (m *MovingAverage) calculateEMA(index int) (decimal.Decimal, error) {
	v, err := m.input.Value(index)
	if err != nil {
		return decimal.Zero, err
	}
	if index == 0 {
		return v, nil
	}
	prev, err := m.cache.Value(index - 1)
	if err != nil {
		return decimal.Zero, err
	}
	return prev.Add(m.multiplier.Mul(v.Sub(prev))), nil
}
