package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
)

// ATRConfig holds configuration for the Average True Range indicator
type ATRConfig struct {
	IndicatorConfig
}

// ATR implements the Average True Range indicator with Wilder's smoothing:
// atr[0] = tr[0], atr[i] = (atr[i-1]*(n-1) + tr[i]) / n.
type ATR struct {
	series *domain.TimeSeries
	config ATRConfig
	cache  *Cache[decimal.Decimal]
}

// NewATR creates a new Average True Range indicator instance
func NewATR(series *domain.TimeSeries, config ATRConfig) (*ATR, error) {
	if err := requireInput("ATR", series); err != nil {
		return nil, err
	}
	a := &ATR{series: series, config: config}
	if err := config.validate(a.Name()); err != nil {
		return nil, err
	}
	a.cache = NewRecursiveCache(series, a.calculate)
	return a, nil
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.config.Period)
}

func (a *ATR) Dependencies() []Source {
	return nil
}

func (a *ATR) Series() *domain.TimeSeries {
	return a.series
}

func (a *ATR) Value(index int) (decimal.Decimal, error) {
	return a.cache.Value(index)
}

// TrueRange is the greatest of high-low, |high-prevClose| and |low-prevClose|.
// The first tick has no previous close and uses high-low.
func (a *ATR) TrueRange(index int) (decimal.Decimal, error) {
	tick, err := a.series.Tick(index)
	if err != nil {
		return decimal.Zero, err
	}
	tr := tick.High.Sub(tick.Low)
	if index == 0 {
		return tr, nil
	}
	prev, err := a.series.Tick(index - 1)
	if err != nil {
		return decimal.Zero, err
	}
	tr = num.Max(tr, tick.High.Sub(prev.Close).Abs())
	tr = num.Max(tr, tick.Low.Sub(prev.Close).Abs())
	return tr, nil
}

func (a *ATR) calculate(index int) (decimal.Decimal, error) {
	tr, err := a.TrueRange(index)
	if err != nil {
		return decimal.Zero, err
	}
	if index == 0 {
		return tr, nil
	}
	prev, err := a.cache.Value(index - 1)
	if err != nil {
		return decimal.Zero, err
	}
	n := num.OfInt(int64(a.config.Period))
	return num.Div(prev.Mul(n.Sub(num.One)).Add(tr), n)
}
