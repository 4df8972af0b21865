package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTA/internal/ports"
)

func testTicks(t *testing.T, closes ...int64) []Tick {
	t.Helper()
	start := time.Date(2017, 4, 27, 8, 0, 0, 0, time.UTC)
	ticks := make([]Tick, len(closes))
	for i, c := range closes {
		p := decimal.NewFromInt(c)
		ticks[i] = NewTick(start.Add(time.Duration(i)*time.Minute), p, p, p, p, decimal.NewFromInt(1))
		ticks[i].Period = time.Minute
	}
	return ticks
}

func TestNewTimeSeries(t *testing.T) {
	series, err := NewTimeSeries("ftse", testTicks(t, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, "ftse", series.Name())
	assert.Equal(t, 3, series.TickCount())
	assert.False(t, series.IsEmpty())

	first, err := series.FirstTick()
	require.NoError(t, err)
	assert.True(t, first.Close.Equal(decimal.NewFromInt(1)))
	last, err := series.LastTick()
	require.NoError(t, err)
	assert.True(t, last.Close.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, last.EndTime.Add(-time.Minute), last.BeginTime())
}

func TestNewTimeSeries_RejectsUnorderedTicks(t *testing.T) {
	ticks := testTicks(t, 1, 2, 3)
	ticks[2].EndTime = ticks[1].EndTime

	_, err := NewTimeSeries("bad", ticks)
	assert.ErrorIs(t, err, ports.ErrMalformedSeries)
}

func TestNewTimeSeries_CopiesInput(t *testing.T) {
	ticks := testTicks(t, 1, 2)
	series, err := NewTimeSeries("copy", ticks)
	require.NoError(t, err)

	ticks[0].Close = decimal.NewFromInt(99)
	tick, err := series.Tick(0)
	require.NoError(t, err)
	assert.True(t, tick.Close.Equal(decimal.NewFromInt(1)))
}

func TestTimeSeries_TickOutOfRange(t *testing.T) {
	series, err := NewTimeSeries("s", testTicks(t, 1, 2))
	require.NoError(t, err)

	for _, index := range []int{-1, 2, 10} {
		_, err := series.Tick(index)
		assert.ErrorIs(t, err, ports.ErrOutOfRange, "index %d", index)
	}
}

func TestTimeSeries_Empty(t *testing.T) {
	series, err := NewTimeSeries("empty", nil)
	require.NoError(t, err)
	assert.True(t, series.IsEmpty())
	assert.Equal(t, "", series.PeriodDescription())

	_, err = series.FirstTick()
	assert.ErrorIs(t, err, ports.ErrMalformedSeries)
	_, err = series.LastTick()
	assert.ErrorIs(t, err, ports.ErrMalformedSeries)
}

func TestTimeSeries_SubSeries(t *testing.T) {
	series, err := NewTimeSeries("s", testTicks(t, 10, 11, 12, 13, 14))
	require.NoError(t, err)

	sub, err := series.SubSeries(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.TickCount())

	tick, err := sub.Tick(0)
	require.NoError(t, err)
	assert.True(t, tick.Close.Equal(decimal.NewFromInt(11)))

	_, err = sub.Tick(3)
	assert.ErrorIs(t, err, ports.ErrOutOfRange)

	nested, err := sub.SubSeries(1, 2)
	require.NoError(t, err)
	tick, err = nested.Tick(0)
	require.NoError(t, err)
	assert.True(t, tick.Close.Equal(decimal.NewFromInt(12)))

	assert.Same(t, &series.ticks[0], &sub.ticks[0], "sub-series must share the backing array")

	_, err = series.SubSeries(3, 2)
	assert.ErrorIs(t, err, ports.ErrOutOfRange)
	_, err = series.SubSeries(0, 6)
	assert.ErrorIs(t, err, ports.ErrOutOfRange)
}

func TestTimeSeries_PeriodDescription(t *testing.T) {
	series, err := NewTimeSeries("s", testTicks(t, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, "2017-04-27T08:00:00Z - 2017-04-27T08:02:00Z", series.PeriodDescription())
}
