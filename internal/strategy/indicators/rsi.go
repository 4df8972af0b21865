package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
)

// RSIConfig holds configuration for the RSI indicator
type RSIConfig struct {
	IndicatorConfig
	Overbought decimal.Decimal
	Oversold   decimal.Decimal
}

type rsiState struct {
	avgGain decimal.Decimal
	avgLoss decimal.Decimal
	value   decimal.Decimal
}

// RSI implements the Relative Strength Index with Wilder's smoothing of the
// average gain and loss. Flat input gives 50, input without losses gives 100.
type RSI struct {
	input  Num
	config RSIConfig
	cache  *Cache[rsiState]
}

// NewRSI creates a new RSI indicator instance
func NewRSI(input Num, config RSIConfig) (*RSI, error) {
	if input == nil {
		return nil, fmt.Errorf("RSI: nil input indicator: %w", ports.ErrConfigurationError)
	}
	r := &RSI{input: input, config: config}
	if err := config.validate(r.Name()); err != nil {
		return nil, err
	}
	if config.Overbought.LessThanOrEqual(config.Oversold) {
		return nil, fmt.Errorf("%s: overbought %s must exceed oversold %s: %w",
			r.Name(), config.Overbought, config.Oversold, ports.ErrConfigurationError)
	}
	r.cache = NewRecursiveCache(input.Series(), r.calculate)
	return r, nil
}

// Name returns the name of the indicator
func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%s,%d)", r.input.Name(), r.config.Period)
}

func (r *RSI) Dependencies() []Source {
	return []Source{r.input}
}

func (r *RSI) Series() *domain.TimeSeries {
	return r.input.Series()
}

func (r *RSI) Value(index int) (decimal.Decimal, error) {
	s, err := r.cache.Value(index)
	if err != nil {
		return decimal.Zero, err
	}
	return s.value, nil
}

func (r *RSI) calculate(index int) (rsiState, error) {
	if index == 0 {
		return rsiState{value: decimal.NewFromInt(50)}, nil
	}
	prev, err := r.cache.Value(index - 1)
	if err != nil {
		return rsiState{}, err
	}
	cur, err := r.input.Value(index)
	if err != nil {
		return rsiState{}, err
	}
	before, err := r.input.Value(index - 1)
	if err != nil {
		return rsiState{}, err
	}

	change := cur.Sub(before)
	gain, loss := decimal.Zero, decimal.Zero
	if change.IsPositive() {
		gain = change
	} else {
		loss = change.Neg()
	}

	n := num.OfInt(int64(r.config.Period))
	avgGain, err := num.Div(prev.avgGain.Mul(n.Sub(num.One)).Add(gain), n)
	if err != nil {
		return rsiState{}, err
	}
	avgLoss, err := num.Div(prev.avgLoss.Mul(n.Sub(num.One)).Add(loss), n)
	if err != nil {
		return rsiState{}, err
	}

	s := rsiState{avgGain: avgGain, avgLoss: avgLoss}
	switch {
	case avgLoss.IsZero() && avgGain.IsZero():
		s.value = decimal.NewFromInt(50)
	case avgLoss.IsZero():
		s.value = num.Hundred
	default:
		rs, err := num.Div(avgGain, avgLoss)
		if err != nil {
			return rsiState{}, err
		}
		q, err := num.Div(num.Hundred, num.One.Add(rs))
		if err != nil {
			return rsiState{}, err
		}
		s.value = num.Hundred.Sub(q)
	}
	return s, nil
}

// IsOverbought checks if the RSI value indicates an overbought condition
func (r *RSI) IsOverbought(value decimal.Decimal) bool {
	return value.GreaterThanOrEqual(r.config.Overbought)
}

// IsOversold checks if the RSI value indicates an oversold condition
func (r *RSI) IsOversold(value decimal.Decimal) bool {
	return value.LessThanOrEqual(r.config.Oversold)
}
