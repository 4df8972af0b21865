package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTA/internal/app"
	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/strategy/analytics"
	"cryptoTA/internal/strategy/indicators"
	"cryptoTA/internal/strategy/optimization"
)

func testSeries(t *testing.T, closes ...int64) *domain.TimeSeries {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ticks := make([]domain.Tick, len(closes))
	for i, c := range closes {
		v := num.OfInt(c)
		ticks[i] = domain.NewTick(start.Add(time.Duration(i+1)*time.Hour), v, v.Add(num.One), v.Sub(num.One), v, num.One)
	}
	s, err := domain.NewTimeSeries("BTCUSDT-1h", ticks)
	require.NoError(t, err)
	return s
}

func TestPrintSAR_LastTicks(t *testing.T) {
	series := testSeries(t, 10, 11, 12, 13, 14)
	sar, err := indicators.NewParabolicSAR(series, indicators.DefaultParabolicSARConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).PrintSAR("BTCUSDT", sar, 2))

	out := buf.String()
	assert.Contains(t, out, "BTCUSDT ParabolicSAR(1,0.02,0.02,0.2)")
	assert.Contains(t, out, "2024-03-01 05:00")
	assert.Contains(t, out, "2024-03-01 04:00")
	assert.NotContains(t, out, "2024-03-01 03:00")
	assert.Contains(t, out, "UP")
}

func TestPrintReport(t *testing.T) {
	record, err := domain.NewTradingRecord(domain.Buy,
		domain.BuyAt(1, num.OfInt(100), num.One),
		domain.SellAt(2, num.OfInt(110), num.One),
		domain.BuyAt(3, num.OfInt(105), num.One),
	)
	require.NoError(t, err)
	portfolio := domain.NewPortfolio(record)
	rep := &app.Report{
		Symbols: []app.SymbolReport{{
			Symbol:   "ETHUSDT",
			Strategy: "SARReversal",
			Record:   record,
			Summary:  analytics.Analyze(record),
		}},
		Portfolio: portfolio,
		Total:     analytics.Analyze(portfolio),
	}

	var buf bytes.Buffer
	console := NewConsole(&buf)
	require.NoError(t, console.PrintReport(rep))
	require.NoError(t, console.PrintTrades(rep))

	out := buf.String()
	assert.Contains(t, out, "ETHUSDT")
	assert.Contains(t, out, "SARReversal")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "open")
}

func TestPrintReport_WinRateAsPercent(t *testing.T) {
	record, err := domain.NewTradingRecord(domain.Buy,
		domain.BuyAt(0, num.OfInt(10), num.One), domain.SellAt(1, num.OfInt(20), num.One),
		domain.BuyAt(2, num.OfInt(10), num.One), domain.SellAt(3, num.OfInt(5), num.One),
		domain.BuyAt(4, num.OfInt(10), num.One), domain.SellAt(5, num.OfInt(30), num.One),
	)
	require.NoError(t, err)
	summary := analytics.Analyze(record)
	rep := &app.Report{
		Symbols:   []app.SymbolReport{{Symbol: "BTCUSDT", Strategy: "s", Record: record, Summary: summary}},
		Portfolio: domain.NewPortfolio(record),
		Total:     summary,
	}

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).PrintReport(rep))

	out := buf.String()
	assert.Contains(t, out, "66.67")
	assert.NotContains(t, out, "0.67")
}

func TestPrintOptimization_Top(t *testing.T) {
	results := []optimization.OptimizationResult{
		{Parameters: optimization.Parameters{"max": num.MustParse("0.2")}, Score: num.OfInt(3), Summary: &analytics.Summary{TotalTrades: 4}},
		{Parameters: optimization.Parameters{"max": num.MustParse("0.3")}, Score: num.OfInt(1), Summary: &analytics.Summary{TotalTrades: 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).PrintOptimization(results, 1))

	out := buf.String()
	assert.Contains(t, out, "max=0.2")
	assert.NotContains(t, out, "max=0.3")
}
