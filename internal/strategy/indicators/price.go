package indicators

import (
	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
)

// PriceIndicator reads one field of each tick.
type PriceIndicator struct {
	name   string
	series *domain.TimeSeries
	cache  *Cache[decimal.Decimal]
}

func newPriceIndicator(name string, series *domain.TimeSeries, field func(domain.Tick) decimal.Decimal) *PriceIndicator {
	p := &PriceIndicator{name: name, series: series}
	p.cache = NewCache(series, func(index int) (decimal.Decimal, error) {
		tick, err := series.Tick(index)
		if err != nil {
			return decimal.Zero, err
		}
		return field(tick), nil
	})
	return p
}

// ClosePrice returns the close of each tick.
func ClosePrice(series *domain.TimeSeries) *PriceIndicator {
	return newPriceIndicator("Close", series, func(t domain.Tick) decimal.Decimal { return t.Close })
}

// OpenPrice returns the open of each tick.
func OpenPrice(series *domain.TimeSeries) *PriceIndicator {
	return newPriceIndicator("Open", series, func(t domain.Tick) decimal.Decimal { return t.Open })
}

// HighPrice returns the high of each tick.
func HighPrice(series *domain.TimeSeries) *PriceIndicator {
	return newPriceIndicator("High", series, func(t domain.Tick) decimal.Decimal { return t.High })
}

// LowPrice returns the low of each tick.
func LowPrice(series *domain.TimeSeries) *PriceIndicator {
	return newPriceIndicator("Low", series, func(t domain.Tick) decimal.Decimal { return t.Low })
}

// Volume returns the volume of each tick.
func Volume(series *domain.TimeSeries) *PriceIndicator {
	return newPriceIndicator("Volume", series, func(t domain.Tick) decimal.Decimal { return t.Volume })
}

func (p *PriceIndicator) Name() string { return p.name }
func (p *PriceIndicator) Dependencies() []Source { return nil }
func (p *PriceIndicator) Series() *domain.TimeSeries { return p.series }
func (p *PriceIndicator) Value(index int) (decimal.Decimal, error) { return p.cache.Value(index) }
