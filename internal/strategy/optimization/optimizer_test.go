package optimization

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/analytics"
	"cryptoTA/internal/strategy/backtesting"
	"cryptoTA/internal/strategy/indicators"
	"cryptoTA/internal/strategy/strategies"
)

func zigzag(t *testing.T, name string, n int) *domain.TimeSeries {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := make([]domain.Tick, n)
	for i := range ticks {
		// a sawtooth with a period of 7 ticks
		c := num.OfInt(int64(100 + 3*(i%7) - (i/7)%2*5))
		ticks[i] = domain.NewTick(start.Add(time.Duration(i)*time.Minute),
			c, c.Add(num.One), c.Sub(num.One), c, num.One)
	}
	s, err := domain.NewTimeSeries(name, ticks)
	require.NoError(t, err)
	return s
}

func dec(s string) decimal.Decimal {
	return num.MustParse(s)
}

func backtestConfig() backtesting.BacktestConfig {
	return backtesting.BacktestConfig{Amount: num.One, StartingType: domain.Buy}
}

func TestGenerateParameterCombinations(t *testing.T) {
	o, err := NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{
			{Name: ParamWindow, Min: dec("1"), Max: dec("3"), Step: dec("1"), IsInt: true},
			{Name: ParamInitial, Min: dec("0.01"), Max: dec("0.03"), Step: dec("0.01")},
		},
		Build: SARReversalBuilder(nil),
	})
	require.NoError(t, err)

	combinations := o.generateParameterCombinations()
	require.Len(t, combinations, 9)
	assert.Equal(t, "initial=0.01 window=1", combinations[0].String())
	assert.Equal(t, "initial=0.03 window=3", combinations[8].String())
}

func TestNewOptimizer_Config(t *testing.T) {
	_, err := NewOptimizer(OptimizerConfig{})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{{Name: ParamStep, Min: dec("0.1"), Max: dec("0.2"), Step: num.Zero}},
		Build:           SARReversalBuilder(nil),
	})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestOptimize(t *testing.T) {
	series := []*domain.TimeSeries{zigzag(t, "a", 60), zigzag(t, "b", 45)}

	o, err := NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{
			{Name: ParamWindow, Min: dec("1"), Max: dec("2"), Step: dec("1"), IsInt: true},
			// 0.22 is above the default maximum and gets skipped
			{Name: ParamInitial, Min: dec("0.02"), Max: dec("0.22"), Step: dec("0.1")},
		},
		Backtest: backtestConfig(),
		Build:    SARReversalBuilder(nil),
		Workers:  3,
	})
	require.NoError(t, err)

	results, err := o.Optimize(context.Background(), series)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i := 1; i < len(results); i++ {
		assert.True(t, results[i-1].Score.GreaterThanOrEqual(results[i].Score))
	}

	// every result matches a sequential run with the same parameters
	for _, r := range results {
		cfg := indicators.DefaultParabolicSARConfig()
		cfg.Window = int(r.Parameters[ParamWindow].IntPart())
		cfg.InitialAcceleration = r.Parameters[ParamInitial]
		portfolio, err := backtesting.RunPortfolio(context.Background(), series,
			strategies.SARReversalFactory(cfg, nil), backtestConfig())
		require.NoError(t, err)

		want := analytics.Analyze(portfolio)
		assert.Equal(t, want.TotalTrades, r.Summary.TotalTrades, r.Parameters.String())
		assert.True(t, want.NetProfit.Equal(r.Summary.NetProfit), r.Parameters.String())
	}
}

func TestOptimize_BuildError(t *testing.T) {
	boom := errors.New("boom")
	o, err := NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{{Name: ParamWindow, Min: dec("1"), Max: dec("5"), Step: dec("1"), IsInt: true}},
		Backtest:        backtestConfig(),
		Build: func(Parameters) (strategies.Factory, error) {
			return nil, boom
		},
	})
	require.NoError(t, err)

	_, err = o.Optimize(context.Background(), []*domain.TimeSeries{zigzag(t, "a", 10)})
	assert.ErrorIs(t, err, boom)
}

func TestOptimize_Canceled(t *testing.T) {
	o, err := NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{{Name: ParamWindow, Min: dec("1"), Max: dec("5"), Step: dec("1"), IsInt: true}},
		Backtest:        backtestConfig(),
		Build:           SARReversalBuilder(nil),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.Optimize(ctx, []*domain.TimeSeries{zigzag(t, "a", 10)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortResultsByScore(t *testing.T) {
	results := []OptimizationResult{
		{Parameters: Parameters{"x": dec("2")}, Score: dec("1")},
		{Parameters: Parameters{"x": dec("1")}, Score: dec("3")},
		{Parameters: Parameters{"x": dec("0")}, Score: dec("1")},
	}
	sortResultsByScore(results)
	assert.Equal(t, "x=1", results[0].Parameters.String())
	assert.Equal(t, "x=0", results[1].Parameters.String())
	assert.Equal(t, "x=2", results[2].Parameters.String())
}

func TestDefaultScoreFunction(t *testing.T) {
	tests := []struct {
		name    string
		summary *analytics.Summary
		want    string
	}{
		{"win rate breaks ties", &analytics.Summary{NetProfit: num.OfInt(25), WinRate: num.MustParse("66.666666666666667")}, "25.6667"},
		{"all winners add one", &analytics.Summary{NetProfit: num.OfInt(-3), WinRate: num.Hundred}, "-2"},
		{"no trades", &analytics.Summary{}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultScoreFunction(tt.summary).Round(4).String())
		})
	}
}
