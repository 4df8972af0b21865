package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
)

// ParabolicSARConfig holds configuration for the Parabolic SAR indicator.
type ParabolicSARConfig struct {
	// Window is the number of ticks the extreme point is taken over.
	Window              int
	InitialAcceleration decimal.Decimal
	AccelerationStep    decimal.Decimal
	MaxAcceleration     decimal.Decimal
}

// DefaultParabolicSARConfig returns the usual 0.02 / 0.02 / 0.2 setup with a
// one-tick extreme point window.
func DefaultParabolicSARConfig() ParabolicSARConfig {
	return ParabolicSARConfig{
		Window:              1,
		InitialAcceleration: num.MustParse("0.02"),
		AccelerationStep:    num.MustParse("0.02"),
		MaxAcceleration:     num.MustParse("0.2"),
	}
}

// Validate reports an ErrConfigurationError for unusable parameters.
func (c ParabolicSARConfig) Validate() error {
	switch {
	case c.Window <= 0:
		return fmt.Errorf("parabolic SAR: window must be positive, got %d: %w", c.Window, ports.ErrConfigurationError)
	case !c.InitialAcceleration.IsPositive():
		return fmt.Errorf("parabolic SAR: initial acceleration must be positive, got %s: %w", c.InitialAcceleration, ports.ErrConfigurationError)
	case !c.AccelerationStep.IsPositive():
		return fmt.Errorf("parabolic SAR: acceleration step must be positive, got %s: %w", c.AccelerationStep, ports.ErrConfigurationError)
	case c.MaxAcceleration.LessThan(c.InitialAcceleration):
		return fmt.Errorf("parabolic SAR: max acceleration %s below initial %s: %w", c.MaxAcceleration, c.InitialAcceleration, ports.ErrConfigurationError)
	}
	return nil
}

// SARState is the state carried from one tick to the next.
type SARState struct {
	Trend domain.Trend
	SAR   decimal.Decimal
	// ExtremePoint is the highest high (up trend) or lowest low (down trend)
	// over the configured window. It drives the SAR formula and the
	// acceleration.
	ExtremePoint decimal.Decimal
	// TrendExtreme is the most extreme price since the trend started. The SAR
	// jumps to it when the trend reverses.
	TrendExtreme decimal.Decimal
	Acceleration decimal.Decimal
}

// ParabolicSAR implements the stop-and-reverse indicator.
//
// Ticks 0 and 1 seed the indicator with their close; the initial trend is up
// unless the second close is below the first. From tick 2 on:
//
//	sar = prevSar + acceleration * (extremePoint - prevSar)
//
// where the acceleration grows by one step, up to the maximum, every time the
// extreme point changes. In an up trend the SAR never exceeds the lows of the
// two previous ticks (highs, in a down trend); the seed tick 0 is left out of
// that bound. A low below the SAR (high above, in a down trend) reverses the
// trend: the SAR becomes the trend extreme and the acceleration is reset.
type ParabolicSAR struct {
	series  *domain.TimeSeries
	config  ParabolicSARConfig
	highest *WindowExtreme
	lowest  *WindowExtreme
	cache   *Cache[SARState]
}

// NewParabolicSAR creates a new Parabolic SAR over series.
func NewParabolicSAR(series *domain.TimeSeries, config ParabolicSARConfig) (*ParabolicSAR, error) {
	if err := requireInput("parabolic SAR", series); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	window := IndicatorConfig{Period: config.Window}
	highest, err := NewHighestValue(HighPrice(series), window)
	if err != nil {
		return nil, err
	}
	lowest, err := NewLowestValue(LowPrice(series), window)
	if err != nil {
		return nil, err
	}
	p := &ParabolicSAR{series: series, config: config, highest: highest, lowest: lowest}
	p.cache = NewRecursiveCache(series, p.calculate)
	return p, nil
}

func (p *ParabolicSAR) Name() string {
	return fmt.Sprintf("ParabolicSAR(%d,%s,%s,%s)", p.config.Window,
		p.config.InitialAcceleration, p.config.AccelerationStep, p.config.MaxAcceleration)
}

func (p *ParabolicSAR) Dependencies() []Source {
	return []Source{p.highest, p.lowest}
}

func (p *ParabolicSAR) Series() *domain.TimeSeries {
	return p.series
}

// Value returns the SAR at index.
func (p *ParabolicSAR) Value(index int) (decimal.Decimal, error) {
	s, err := p.cache.Value(index)
	if err != nil {
		return decimal.Zero, err
	}
	return s.SAR, nil
}

// State returns the full indicator state at index.
func (p *ParabolicSAR) State(index int) (SARState, error) {
	return p.cache.Value(index)
}

func (p *ParabolicSAR) extremePoint(trend domain.Trend, index int) (decimal.Decimal, error) {
	if trend == domain.Up {
		return p.highest.Value(index)
	}
	return p.lowest.Value(index)
}

func tickExtreme(trend domain.Trend, tick domain.Tick) decimal.Decimal {
	if trend == domain.Up {
		return tick.High
	}
	return tick.Low
}

func (p *ParabolicSAR) calculate(index int) (SARState, error) {
	tick, err := p.series.Tick(index)
	if err != nil {
		return SARState{}, err
	}
	if index == 0 {
		return SARState{
			Trend:        domain.Up,
			SAR:          tick.Close,
			ExtremePoint: tick.High,
			TrendExtreme: tick.High,
			Acceleration: p.config.InitialAcceleration,
		}, nil
	}

	prev, err := p.cache.Value(index - 1)
	if err != nil {
		return SARState{}, err
	}

	if index == 1 {
		first, err := p.series.Tick(0)
		if err != nil {
			return SARState{}, err
		}
		trend := domain.Up
		if tick.Close.LessThan(first.Close) {
			trend = domain.Down
		}
		ep, err := p.extremePoint(trend, index)
		if err != nil {
			return SARState{}, err
		}
		return SARState{
			Trend:        trend,
			SAR:          tick.Close,
			ExtremePoint: ep,
			TrendExtreme: tickExtreme(trend, tick),
			Acceleration: p.config.InitialAcceleration,
		}, nil
	}

	ep, err := p.extremePoint(prev.Trend, index)
	if err != nil {
		return SARState{}, err
	}
	acceleration := prev.Acceleration
	if !ep.Equal(prev.ExtremePoint) {
		acceleration = num.Min(acceleration.Add(p.config.AccelerationStep), p.config.MaxAcceleration)
	}

	trendExtreme := num.Max(prev.TrendExtreme, tick.High)
	if prev.Trend == domain.Down {
		trendExtreme = num.Min(prev.TrendExtreme, tick.Low)
	}

	sar := prev.SAR.Add(acceleration.Mul(ep.Sub(prev.SAR)))
	for i := index - 1; i >= index-2 && i >= 1; i-- {
		before, err := p.series.Tick(i)
		if err != nil {
			return SARState{}, err
		}
		if prev.Trend == domain.Up {
			sar = num.Min(sar, before.Low)
		} else {
			sar = num.Max(sar, before.High)
		}
	}

	reversed := (prev.Trend == domain.Up && tick.Low.LessThan(sar)) ||
		(prev.Trend == domain.Down && tick.High.GreaterThan(sar))
	if !reversed {
		return SARState{
			Trend:        prev.Trend,
			SAR:          sar,
			ExtremePoint: ep,
			TrendExtreme: trendExtreme,
			Acceleration: acceleration,
		}, nil
	}

	trend := prev.Trend.Reverse()
	newEP, err := p.extremePoint(trend, index)
	if err != nil {
		return SARState{}, err
	}
	return SARState{
		Trend:        trend,
		SAR:          trendExtreme,
		ExtremePoint: newEP,
		TrendExtreme: tickExtreme(trend, tick),
		Acceleration: p.config.InitialAcceleration,
	}, nil
}
