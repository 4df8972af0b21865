package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
)

// WindowExtreme is the highest or lowest value of an input indicator over
// the last Period indices, the current one included. Near the start of the
// series the window is truncated.
type WindowExtreme struct {
	name    string
	input   Num
	config  IndicatorConfig
	highest bool
	cache   *Cache[decimal.Decimal]
}

// NewHighestValue returns the rolling maximum of input.
func NewHighestValue(input Num, config IndicatorConfig) (*WindowExtreme, error) {
	return newWindowExtreme("Highest", input, config, true)
}

// NewLowestValue returns the rolling minimum of input.
func NewLowestValue(input Num, config IndicatorConfig) (*WindowExtreme, error) {
	return newWindowExtreme("Lowest", input, config, false)
}

func newWindowExtreme(kind string, input Num, config IndicatorConfig, highest bool) (*WindowExtreme, error) {
	if input == nil {
		return nil, fmt.Errorf("%s: nil input indicator: %w", kind, ports.ErrConfigurationError)
	}
	name := fmt.Sprintf("%s(%s,%d)", kind, input.Name(), config.Period)
	if err := config.validate(name); err != nil {
		return nil, err
	}
	w := &WindowExtreme{name: name, input: input, config: config, highest: highest}
	w.cache = NewCache(input.Series(), w.calculate)
	return w, nil
}

func (w *WindowExtreme) calculate(index int) (decimal.Decimal, error) {
	start := index - w.config.Period + 1
	if start < 0 {
		start = 0
	}
	extreme, err := w.input.Value(start)
	if err != nil {
		return decimal.Zero, err
	}
	for i := start + 1; i <= index; i++ {
		v, err := w.input.Value(i)
		if err != nil {
			return decimal.Zero, err
		}
		if w.highest {
			extreme = num.Max(extreme, v)
		} else {
			extreme = num.Min(extreme, v)
		}
	}
	return extreme, nil
}

func (w *WindowExtreme) Name() string { return w.name }
func (w *WindowExtreme) Dependencies() []Source { return []Source{w.input} }
func (w *WindowExtreme) Series() *domain.TimeSeries { return w.input.Series() }
func (w *WindowExtreme) Value(index int) (decimal.Decimal, error) { return w.cache.Value(index) }
