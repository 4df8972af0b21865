package indicators

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
)

type bar struct {
	open, close, high, low float64
}

var testStart = time.Date(2017, 4, 27, 8, 0, 0, 0, time.UTC)

func seriesOf(t *testing.T, bars ...bar) *domain.TimeSeries {
	t.Helper()
	ticks := make([]domain.Tick, len(bars))
	for i, b := range bars {
		ticks[i] = domain.NewTick(testStart.Add(time.Duration(i)*time.Minute),
			num.Of(b.open), num.Of(b.high), num.Of(b.low), num.Of(b.close), num.OfInt(1))
	}
	s, err := domain.NewTimeSeries("test", ticks)
	require.NoError(t, err)
	return s
}

func closeSeries(t *testing.T, closes ...float64) *domain.TimeSeries {
	t.Helper()
	bars := make([]bar, len(closes))
	for i, c := range closes {
		bars[i] = bar{open: c, close: c, high: c, low: c}
	}
	return seriesOf(t, bars...)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, num.MustParse(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// assertClose compares to the given number of fractional digits.
func assertClose(t *testing.T, expected string, actual decimal.Decimal, places int32) {
	t.Helper()
	assert.Equal(t, num.MustParse(expected).Round(places).String(), actual.Round(places).String())
}
