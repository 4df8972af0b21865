package strategies

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/indicators"
)

// MACrossoverConfig holds configuration for the MA Crossover strategy
type MACrossoverConfig struct {
	FastMAPeriod  int             // Fast EMA period (e.g., 8)
	SlowMAPeriod  int             // Slow EMA period (e.g., 21)
	ATRPeriod     int             // ATR period for the volatility stop (e.g., 14)
	ATRMultiplier decimal.Decimal // Stop distance in ATRs (e.g., 2.5)
	RSIPeriod     int             // RSI period for the entry filter (e.g., 14)
	RSIOverbought decimal.Decimal // No entries at or above this RSI (e.g., 70)
}

// DefaultMACrossoverConfig returns the 8/21 EMA setup with a 2.5 ATR stop.
func DefaultMACrossoverConfig() MACrossoverConfig {
	return MACrossoverConfig{
		FastMAPeriod:  8,
		SlowMAPeriod:  21,
		ATRPeriod:     14,
		ATRMultiplier: num.MustParse("2.5"),
		RSIPeriod:     14,
		RSIOverbought: num.OfInt(70),
	}
}

// MACrossover enters when the fast EMA crosses above the slow one, unless the
// RSI says the market is overbought. It exits on the opposite cross or when
// the close falls more than ATRMultiplier ATRs below the entry price.
type MACrossover struct {
	*BaseStrategy
	config MACrossoverConfig
	close  *indicators.PriceIndicator
	fastMA *indicators.MovingAverage
	slowMA *indicators.MovingAverage
	atr    *indicators.ATR
	rsi    *indicators.RSI
}

// NewMACrossover creates a new MA Crossover strategy instance
func NewMACrossover(series *domain.TimeSeries, config MACrossoverConfig, logger ports.Logger) (*MACrossover, error) {
	// Validate configuration
	if config.FastMAPeriod <= 0 || config.SlowMAPeriod <= 0 || config.ATRPeriod <= 0 || config.RSIPeriod <= 0 {
		return nil, fmt.Errorf("strategy periods must be positive: %w", ports.ErrConfigurationError)
	}
	if config.FastMAPeriod >= config.SlowMAPeriod {
		return nil, fmt.Errorf("fast MA period must be less than slow MA period: %w", ports.ErrConfigurationError)
	}
	if !config.ATRMultiplier.IsPositive() {
		return nil, fmt.Errorf("ATR multiplier must be positive: %w", ports.ErrConfigurationError)
	}

	closePrice := indicators.ClosePrice(series)
	fastMA, err := indicators.NewMovingAverage(closePrice, indicators.MovingAverageConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: config.FastMAPeriod},
		Type:            indicators.ExponentialMovingAverage,
	})
	if err != nil {
		return nil, err
	}
	slowMA, err := indicators.NewMovingAverage(closePrice, indicators.MovingAverageConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: config.SlowMAPeriod},
		Type:            indicators.ExponentialMovingAverage,
	})
	if err != nil {
		return nil, err
	}
	atr, err := indicators.NewATR(series, indicators.ATRConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: config.ATRPeriod},
	})
	if err != nil {
		return nil, err
	}
	rsi, err := indicators.NewRSI(closePrice, indicators.RSIConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: config.RSIPeriod},
		Overbought:      config.RSIOverbought,
		Oversold:        num.Hundred.Sub(config.RSIOverbought),
	})
	if err != nil {
		return nil, err
	}

	return &MACrossover{
		BaseStrategy: NewBaseStrategy(series, logger),
		config:       config,
		close:        closePrice,
		fastMA:       fastMA,
		slowMA:       slowMA,
		atr:          atr,
		rsi:          rsi,
	}, nil
}

// MACrossoverFactory returns a Factory building MACrossover strategies with config.
func MACrossoverFactory(config MACrossoverConfig, logger ports.Logger) Factory {
	return func(series *domain.TimeSeries) (Strategy, error) {
		return NewMACrossover(series, config, logger)
	}
}

func (m *MACrossover) Name() string {
	return fmt.Sprintf("MACrossover(%d,%d)", m.config.FastMAPeriod, m.config.SlowMAPeriod)
}

// Unstable returns the slow period: before it the slow EMA is mostly its seed.
func (m *MACrossover) Unstable() int {
	return m.config.SlowMAPeriod
}

func (m *MACrossover) ShouldEnter(index int, record *domain.TradingRecord) (bool, error) {
	if index < m.Unstable() {
		return false, nil
	}
	crossed, err := crossedOver(m.fastMA.Value, m.slowMA.Value, index)
	if err != nil || !crossed {
		return false, err
	}
	rsi, err := m.rsi.Value(index)
	if err != nil {
		return false, err
	}
	if m.rsi.IsOverbought(rsi) {
		m.logger.Debug(context.Background(), "Skipping entry, RSI overbought", map[string]interface{}{
			"index": index,
			"rsi":   rsi.StringFixed(2),
		})
		return false, nil
	}
	return true, nil
}

func (m *MACrossover) ShouldExit(index int, record *domain.TradingRecord) (bool, error) {
	if index < m.Unstable() {
		return false, nil
	}
	if trade, open := record.CurrentTrade(); open {
		stop, err := m.stopPrice(trade)
		if err != nil {
			return false, err
		}
		closePrice, err := m.close.Value(index)
		if err != nil {
			return false, err
		}
		if closePrice.LessThan(stop) {
			m.logger.Debug(context.Background(), "ATR stop hit", map[string]interface{}{
				"index": index,
				"stop":  stop.String(),
			})
			return true, nil
		}
	}
	return crossedUnder(m.fastMA.Value, m.slowMA.Value, index)
}

// stopPrice is the entry price minus ATRMultiplier times the ATR at entry.
func (m *MACrossover) stopPrice(trade *domain.Trade) (decimal.Decimal, error) {
	entry := trade.Entry()
	atr, err := m.atr.Value(entry.Index)
	if err != nil {
		return decimal.Zero, err
	}
	return entry.Price.Sub(atr.Mul(m.config.ATRMultiplier)), nil
}
