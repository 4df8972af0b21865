package backtesting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/indicators"
	"cryptoTA/internal/strategy/strategies"
)

// scriptedStrategy signals at fixed indices.
type scriptedStrategy struct {
	enters   map[int]bool
	exits    map[int]bool
	unstable int
	err      error
	asked    []int
}

func (s *scriptedStrategy) ShouldEnter(index int, record *domain.TradingRecord) (bool, error) {
	s.asked = append(s.asked, index)
	return s.enters[index], s.err
}

func (s *scriptedStrategy) ShouldExit(index int, record *domain.TradingRecord) (bool, error) {
	s.asked = append(s.asked, index)
	return s.exits[index], s.err
}

func (s *scriptedStrategy) Unstable() int { return s.unstable }
func (s *scriptedStrategy) Name() string  { return "scripted" }

func closeSeries(t *testing.T, name string, closes ...float64) *domain.TimeSeries {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := make([]domain.Tick, len(closes))
	for i, c := range closes {
		v := num.Of(c)
		ticks[i] = domain.NewTick(start.Add(time.Duration(i)*time.Minute), v, v, v, v, num.One)
	}
	s, err := domain.NewTimeSeries(name, ticks)
	require.NoError(t, err)
	return s
}

func longConfig() BacktestConfig {
	return BacktestConfig{Amount: num.OfInt(2), StartingType: domain.Buy}
}

func TestRun(t *testing.T) {
	series := closeSeries(t, "test", 100, 101, 102, 103, 104, 105)

	tests := []struct {
		name     string
		strategy *scriptedStrategy
		config   BacktestConfig
		orders   []domain.Order
		trades   int
		open     bool
	}{
		{
			name: "one closed trade",
			strategy: &scriptedStrategy{
				enters: map[int]bool{1: true},
				exits:  map[int]bool{3: true},
			},
			config: longConfig(),
			orders: []domain.Order{
				domain.BuyAt(1, num.OfInt(101), num.OfInt(2)),
				domain.SellAt(3, num.OfInt(103), num.OfInt(2)),
			},
			trades: 1,
		},
		{
			name: "exit signal without open trade is ignored",
			strategy: &scriptedStrategy{
				enters: map[int]bool{4: true},
				exits:  map[int]bool{2: true},
			},
			config: longConfig(),
			orders: []domain.Order{domain.BuyAt(4, num.OfInt(104), num.OfInt(2))},
			open:   true,
		},
		{
			name: "unstable ticks are skipped",
			strategy: &scriptedStrategy{
				enters:   map[int]bool{0: true, 2: true},
				exits:    map[int]bool{5: true},
				unstable: 1,
			},
			config: longConfig(),
			orders: []domain.Order{
				domain.BuyAt(2, num.OfInt(102), num.OfInt(2)),
				domain.SellAt(5, num.OfInt(105), num.OfInt(2)),
			},
			trades: 1,
		},
		{
			name: "short run",
			strategy: &scriptedStrategy{
				enters: map[int]bool{0: true},
				exits:  map[int]bool{1: true},
			},
			config: BacktestConfig{Amount: num.One, StartingType: domain.Sell},
			orders: []domain.Order{
				domain.SellAt(0, num.OfInt(100), num.One),
				domain.BuyAt(1, num.OfInt(101), num.One),
			},
			trades: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := Run(context.Background(), series, tt.strategy, tt.config)
			require.NoError(t, err)

			require.Len(t, record.Orders(), len(tt.orders))
			for i, want := range tt.orders {
				got := record.Orders()[i]
				assert.Equal(t, want.Index, got.Index)
				assert.Equal(t, want.Type, got.Type)
				assert.True(t, want.Price.Equal(got.Price), "price %s", got.Price)
				assert.True(t, want.Amount.Equal(got.Amount), "amount %s", got.Amount)
			}
			assert.Equal(t, tt.trades, record.TradeCount())
			assert.Equal(t, tt.open, !record.IsClosed())
		})
	}
}

func TestRun_UnstableIndicesNeverQueried(t *testing.T) {
	series := closeSeries(t, "test", 1, 2, 3, 4)
	s := &scriptedStrategy{unstable: 2}

	_, err := Run(context.Background(), series, s, longConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, s.asked)
}

func TestRun_Errors(t *testing.T) {
	series := closeSeries(t, "test", 1, 2, 3)

	_, err := Run(context.Background(), series, &scriptedStrategy{}, BacktestConfig{StartingType: domain.Buy})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = Run(context.Background(), series, &scriptedStrategy{}, BacktestConfig{Amount: num.One, StartingType: "HOLD"})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = Run(context.Background(), nil, &scriptedStrategy{}, longConfig())
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)

	boom := errors.New("boom")
	_, err = Run(context.Background(), series, &scriptedStrategy{err: boom}, longConfig())
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, series, &scriptedStrategy{}, longConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunPortfolio(t *testing.T) {
	series := []*domain.TimeSeries{
		closeSeries(t, "flat", 5, 5, 5),
		seriesOfBars(t),
	}
	factory := strategies.SARReversalFactory(indicators.DefaultParabolicSARConfig(), nil)

	portfolio, err := RunPortfolio(context.Background(), series, factory, longConfig())
	require.NoError(t, err)

	require.Len(t, portfolio.Records(), 2)
	assert.Equal(t, 0, portfolio.Records()[0].TradeCount())
	assert.Equal(t, 1, portfolio.Records()[1].TradeCount())
	assert.Equal(t, 1, portfolio.TradeCount())

	trades := 0
	it := portfolio.Iterator()
	for it.HasNext() {
		trade, ok := it.Next()
		require.True(t, ok)
		profit, closed := trade.Profit()
		require.True(t, closed)
		assert.Equal(t, "-4", profit.String())
		trades++
	}
	assert.Equal(t, 1, trades)
}

func TestRunPortfolio_FactoryError(t *testing.T) {
	cfg := indicators.DefaultParabolicSARConfig()
	cfg.Window = 0
	_, err := RunPortfolio(context.Background(),
		[]*domain.TimeSeries{closeSeries(t, "a", 1, 2)},
		strategies.SARReversalFactory(cfg, nil), longConfig())
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

// seriesOfBars enters at 2 (close 12 over SAR 10.32) and exits at 3 (close 10
// under SAR 18).
func seriesOfBars(t *testing.T) *domain.TimeSeries {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := [][3]float64{{10, 13, 11}, {10, 15, 13}, {12, 18, 11}, {10, 15, 9}, {9, 15, 9}}
	ticks := make([]domain.Tick, len(bars))
	for i, b := range bars {
		ticks[i] = domain.NewTick(start.Add(time.Duration(i)*time.Minute),
			num.Of(b[0]), num.Of(b[1]), num.Of(b[2]), num.Of(b[0]), num.One)
	}
	s, err := domain.NewTimeSeries("sar", ticks)
	require.NoError(t, err)
	return s
}
