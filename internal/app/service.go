package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/analytics"
	"cryptoTA/internal/strategy/backtesting"
	"cryptoTA/internal/strategy/strategies"
)

// SeriesSource downloads historical ticks, e.g. from an exchange.
type SeriesSource interface {
	FetchSeries(ctx context.Context, symbol, interval string, start, end time.Time) (*domain.TimeSeries, error)
}

// SeriesStore persists time series.
type SeriesStore interface {
	SaveSeries(ctx context.Context, symbol, interval string, series *domain.TimeSeries) error
	LoadSeries(ctx context.Context, symbol, interval string) (*domain.TimeSeries, error)
}

// RecordStore persists backtest results.
type RecordStore interface {
	SaveRecord(ctx context.Context, symbol string, record *domain.TradingRecord) error
}

// AnalysisService orchestrates data synchronisation and strategy backtests.
type AnalysisService struct {
	logger  ports.Logger
	source  SeriesSource // nil when running offline
	series  SeriesStore
	records RecordStore // optional
	now     func() time.Time
}

// SymbolReport is the outcome of one symbol's backtest.
type SymbolReport struct {
	Symbol   string
	Series   *domain.TimeSeries
	Strategy string
	Record   *domain.TradingRecord
	Summary  *analytics.Summary
}

// Report gathers every symbol's outcome and the portfolio-wide view.
type Report struct {
	Symbols   []SymbolReport
	Portfolio *domain.Portfolio
	Total     *analytics.Summary
}

// NewAnalysisService creates a new application service instance.
func NewAnalysisService(logger ports.Logger, source SeriesSource, series SeriesStore, records RecordStore) (*AnalysisService, error) {
	if logger == nil || series == nil {
		return nil, fmt.Errorf("missing required dependencies for AnalysisService: %w", ports.ErrConfigurationError)
	}
	return &AnalysisService{
		logger:  logger,
		source:  source,
		series:  series,
		records: records,
		now:     time.Now,
	}, nil
}

// Sync downloads the last lookback of every symbol and stores it. Series are
// returned in symbol order.
func (s *AnalysisService) Sync(ctx context.Context, symbols []string, interval string, lookback time.Duration) ([]*domain.TimeSeries, error) {
	if s.source == nil {
		return nil, fmt.Errorf("sync needs a series source: %w", ports.ErrConfigurationError)
	}
	end := s.now()
	start := end.Add(-lookback)

	out := make([]*domain.TimeSeries, 0, len(symbols))
	for _, symbol := range symbols {
		series, err := s.source.FetchSeries(ctx, symbol, interval, start, end)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to fetch series", map[string]interface{}{"symbol": symbol, "interval": interval})
			return nil, fmt.Errorf("fetching %s %s: %w", symbol, interval, err)
		}
		if err := s.series.SaveSeries(ctx, symbol, interval, series); err != nil {
			return nil, fmt.Errorf("saving %s %s: %w", symbol, interval, err)
		}
		s.logger.Info(ctx, "Series synchronised", map[string]interface{}{
			"symbol": symbol,
			"ticks":  series.TickCount(),
			"period": series.PeriodDescription(),
		})
		out = append(out, series)
	}
	return out, nil
}

// LoadSeries reads the stored series of every symbol. Symbols with no stored
// data are skipped with a warning; it is an error when none has data.
func (s *AnalysisService) LoadSeries(ctx context.Context, symbols []string, interval string) ([]string, []*domain.TimeSeries, error) {
	var (
		found  []string
		series []*domain.TimeSeries
	)
	for _, symbol := range symbols {
		ts, err := s.series.LoadSeries(ctx, symbol, interval)
		if errors.Is(err, ports.ErrNotFound) {
			s.logger.Warn(ctx, "No stored series, skipping", map[string]interface{}{"symbol": symbol, "interval": interval})
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("loading %s %s: %w", symbol, interval, err)
		}
		found = append(found, symbol)
		series = append(series, ts)
	}
	if len(series) == 0 {
		return nil, nil, fmt.Errorf("no stored series for %v at %s: %w", symbols, interval, ports.ErrNotFound)
	}
	return found, series, nil
}

// Analyze backtests the stored series of every symbol with a fresh strategy
// per symbol and saves the resulting records when a RecordStore is set.
func (s *AnalysisService) Analyze(ctx context.Context, symbols []string, interval string, newStrategy strategies.Factory, config backtesting.BacktestConfig) (*Report, error) {
	found, series, err := s.LoadSeries(ctx, symbols, interval)
	if err != nil {
		return nil, err
	}
	return s.Backtest(ctx, found, series, newStrategy, config)
}

// Backtest runs newStrategy over already loaded series. symbols[i] names series[i].
func (s *AnalysisService) Backtest(ctx context.Context, symbols []string, series []*domain.TimeSeries, newStrategy strategies.Factory, config backtesting.BacktestConfig) (*Report, error) {
	if len(symbols) != len(series) {
		return nil, fmt.Errorf("%d symbols for %d series: %w", len(symbols), len(series), ports.ErrInvalidRequest)
	}
	if config.Logger == nil {
		config.Logger = s.logger
	}

	report := &Report{Portfolio: domain.NewPortfolio()}
	for i, ts := range series {
		strategy, err := newStrategy(ts)
		if err != nil {
			return nil, fmt.Errorf("building strategy for %s: %w", symbols[i], err)
		}
		record, err := backtesting.Run(ctx, ts, strategy, config)
		if err != nil {
			return nil, fmt.Errorf("backtesting %s: %w", symbols[i], err)
		}
		report.Portfolio.Add(record)
		report.Symbols = append(report.Symbols, SymbolReport{
			Symbol:   symbols[i],
			Series:   ts,
			Strategy: strategy.Name(),
			Record:   record,
			Summary:  analytics.Analyze(record),
		})
		if s.records == nil {
			continue
		}
		if err := s.records.SaveRecord(ctx, symbols[i], record); err != nil {
			return nil, fmt.Errorf("saving record for %s: %w", symbols[i], err)
		}
	}
	report.Total = analytics.Analyze(report.Portfolio)

	s.logger.Info(ctx, "Analysis finished", map[string]interface{}{
		"symbols":    len(symbols),
		"trades":     report.Total.TotalTrades,
		"net_profit": report.Total.NetProfit.String(),
	})
	return report, nil
}
