package indicators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
)

type countingCalc struct {
	calls map[int]int
	order []int
}

func newCountingCalc() *countingCalc {
	return &countingCalc{calls: make(map[int]int)}
}

func (c *countingCalc) calculate(index int) (int, error) {
	c.calls[index]++
	c.order = append(c.order, index)
	return index * 10, nil
}

func TestCache_ComputesOnce(t *testing.T) {
	series := closeSeries(t, 1, 2, 3, 4, 5)
	calc := newCountingCalc()
	cache := NewCache(series, calc.calculate)

	for i := 0; i < 3; i++ {
		v, err := cache.Value(2)
		require.NoError(t, err)
		assert.Equal(t, 20, v)
	}
	assert.Equal(t, 1, calc.calls[2])
	assert.Equal(t, 1, cache.Resolved())
}

func TestCache_StatelessComputesOnlyRequested(t *testing.T) {
	series := closeSeries(t, 1, 2, 3, 4, 5)
	calc := newCountingCalc()
	cache := NewCache(series, calc.calculate)

	_, err := cache.Value(4)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, calc.order)
}

func TestCache_RecursiveFillsGap(t *testing.T) {
	series := closeSeries(t, 1, 2, 3, 4, 5, 6)
	calc := newCountingCalc()
	cache := NewRecursiveCache(series, calc.calculate)

	_, err := cache.Value(2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, calc.order)

	_, err = cache.Value(5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, calc.order)

	_, err = cache.Value(1)
	require.NoError(t, err)
	assert.Len(t, calc.order, 6)
	assert.Equal(t, 6, cache.Resolved())
}

func TestCache_OutOfRangeLeavesCacheUntouched(t *testing.T) {
	series := closeSeries(t, 1, 2, 3)
	calc := newCountingCalc()
	cache := NewRecursiveCache(series, calc.calculate)

	for _, index := range []int{-1, 3, 100} {
		_, err := cache.Value(index)
		assert.ErrorIs(t, err, ports.ErrOutOfRange, "index %d", index)
	}
	assert.Empty(t, calc.order)
	assert.Equal(t, 0, cache.Resolved())
}

func TestCache_EmptySeries(t *testing.T) {
	series, err := domain.NewTimeSeries("empty", nil)
	require.NoError(t, err)
	cache := NewCache(series, newCountingCalc().calculate)

	_, err = cache.Value(0)
	assert.ErrorIs(t, err, ports.ErrMalformedSeries)
}

func TestCache_NilSeries(t *testing.T) {
	cache := NewCache[int](nil, newCountingCalc().calculate)
	_, err := cache.Value(0)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	for _, p := range []*PriceIndicator{ClosePrice(nil), OpenPrice(nil), HighPrice(nil), LowPrice(nil), Volume(nil)} {
		_, err := p.Value(0)
		assert.ErrorIs(t, err, ports.ErrConfigurationError, p.Name())
	}
}

func TestCache_ErrorNotCached(t *testing.T) {
	series := closeSeries(t, 1, 2, 3)
	fail := true
	calls := 0
	cache := NewCache(series, func(index int) (int, error) {
		calls++
		if fail {
			return 0, ports.ErrDivisionByZero
		}
		return index, nil
	})

	_, err := cache.Value(1)
	assert.ErrorIs(t, err, ports.ErrDivisionByZero)

	fail = false
	v, err := cache.Value(1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, calls)
}

func TestCache_ReentrantRequestIsCyclic(t *testing.T) {
	series := closeSeries(t, 1, 2, 3)
	var cache *Cache[int]
	cache = NewCache(series, func(index int) (int, error) {
		return cache.Value(index)
	})

	_, err := cache.Value(1)
	assert.ErrorIs(t, err, ports.ErrCyclicDependency)
	assert.Equal(t, 0, cache.Resolved())
}

func TestDeferred_RejectsCycle(t *testing.T) {
	series := closeSeries(t, 1, 2, 3, 4)
	self := NewDeferred[decimal.Decimal]("self", series)

	ema, err := NewMovingAverage(self, MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: 3},
		Type:            ExponentialMovingAverage,
	})
	require.NoError(t, err)

	err = self.Bind(ema)
	assert.ErrorIs(t, err, ports.ErrCyclicDependency)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
	assert.Empty(t, self.Dependencies())

	_, err = self.Value(0)
	assert.ErrorIs(t, err, ports.ErrIndicatorNotBound)
}

func TestDeferred_Forwards(t *testing.T) {
	series := closeSeries(t, 1, 2, 3, 4)
	d := NewDeferred[decimal.Decimal]("close", series)
	require.NoError(t, d.Bind(ClosePrice(series)))

	v, err := d.Value(2)
	require.NoError(t, err)
	assertDecimal(t, "3", v)

	assert.ErrorIs(t, d.Bind(ClosePrice(series)), ports.ErrConfigurationError)

	other := closeSeries(t, 1, 2)
	d2 := NewDeferred[decimal.Decimal]("other", series)
	assert.ErrorIs(t, d2.Bind(ClosePrice(other)), ports.ErrConfigurationError)
}
