package backtesting

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/strategies"
)

// BacktestConfig holds configuration for backtesting
type BacktestConfig struct {
	Amount       decimal.Decimal  // Quantity of every order
	StartingType domain.OrderType // BUY for long-only runs, SELL for short-only runs
	Logger       ports.Logger     // Optional
}

func (c BacktestConfig) validate() error {
	if !c.Amount.IsPositive() {
		return fmt.Errorf("order amount must be positive, got %s: %w", c.Amount, ports.ErrConfigurationError)
	}
	if !c.StartingType.Valid() {
		return fmt.Errorf("starting type %q: %w", c.StartingType, ports.ErrConfigurationError)
	}
	return nil
}

func (c BacktestConfig) logger() ports.Logger {
	if c.Logger == nil {
		return ports.NopLogger{}
	}
	return c.Logger
}

// Run replays series through strategy and records the resulting orders at the
// close price of each signalling tick. The first strategy.Unstable() ticks are
// skipped. A trade still open after the last tick is left open.
func Run(ctx context.Context, series *domain.TimeSeries, strategy strategies.Strategy, config BacktestConfig) (*domain.TradingRecord, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if series == nil || strategy == nil {
		return nil, fmt.Errorf("series and strategy are required: %w", ports.ErrInvalidRequest)
	}
	record, err := domain.NewTradingRecord(config.StartingType)
	if err != nil {
		return nil, err
	}

	for i := strategy.Unstable(); i < series.TickCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tick, err := series.Tick(i)
		if err != nil {
			return nil, err
		}

		if record.IsClosed() {
			enter, err := strategy.ShouldEnter(i, record)
			if err != nil {
				return nil, fmt.Errorf("%s at %d: %w", strategy.Name(), i, err)
			}
			if enter {
				if err := record.Enter(i, tick.Close, config.Amount); err != nil {
					return nil, err
				}
			}
			continue
		}

		exit, err := strategy.ShouldExit(i, record)
		if err != nil {
			return nil, fmt.Errorf("%s at %d: %w", strategy.Name(), i, err)
		}
		if exit {
			if err := record.Exit(i, tick.Close, config.Amount); err != nil {
				return nil, err
			}
		}
	}

	config.logger().Info(ctx, "Backtest finished", map[string]interface{}{
		"series":   series.Name(),
		"strategy": strategy.Name(),
		"period":   series.PeriodDescription(),
		"trades":   record.TradeCount(),
		"open":     !record.IsClosed(),
	})
	return record, nil
}

// RunPortfolio runs one backtest per series, each with a fresh strategy from
// newStrategy, and gathers the records in a portfolio in series order.
func RunPortfolio(ctx context.Context, series []*domain.TimeSeries, newStrategy strategies.Factory, config BacktestConfig) (*domain.Portfolio, error) {
	portfolio := domain.NewPortfolio()
	for _, s := range series {
		strategy, err := newStrategy(s)
		if err != nil {
			return nil, fmt.Errorf("building strategy for %s: %w", s.Name(), err)
		}
		record, err := Run(ctx, s, strategy, config)
		if err != nil {
			return nil, fmt.Errorf("backtesting %s: %w", s.Name(), err)
		}
		portfolio.Add(record)
	}
	return portfolio, nil
}
