package indicators

import (
	"fmt"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
)

// Cache memoizes the values of one indicator, one slot per series index.
// It is owned by that indicator and never shared.
type Cache[T any] struct {
	series    *domain.TimeSeries
	calculate func(index int) (T, error)
	recursive bool

	results   []T
	resolved  []bool
	computing []bool
	highest   int // highest resolved index in recursive mode, -1 when empty
}

// NewCache returns a cache that computes only the requested index on a miss.
func NewCache[T any](series *domain.TimeSeries, calculate func(index int) (T, error)) *Cache[T] {
	return &Cache[T]{series: series, calculate: calculate, highest: -1}
}

// NewRecursiveCache returns a cache for indicators whose value at i needs
// their own state at i-1. A miss at index resolves every index from the
// lowest unresolved one up to index, in order.
func NewRecursiveCache[T any](series *domain.TimeSeries, calculate func(index int) (T, error)) *Cache[T] {
	c := NewCache(series, calculate)
	c.recursive = true
	return c
}

// Value returns the value at index, computing it if needed. Out of range
// requests fail before the cache is touched.
func (c *Cache[T]) Value(index int) (T, error) {
	var zero T
	if c.series == nil {
		return zero, fmt.Errorf("indicator has no series: %w", ports.ErrConfigurationError)
	}
	count := c.series.TickCount()
	if count == 0 {
		return zero, fmt.Errorf("series %q is empty: %w", c.series.Name(), ports.ErrMalformedSeries)
	}
	if index < 0 || index >= count {
		return zero, fmt.Errorf("index %d of %d: %w", index, count, ports.ErrOutOfRange)
	}
	if c.results == nil {
		c.results = make([]T, count)
		c.resolved = make([]bool, count)
		c.computing = make([]bool, count)
	}
	if c.resolved[index] {
		return c.results[index], nil
	}

	from := index
	if c.recursive {
		from = c.highest + 1
	}
	for i := from; i <= index; i++ {
		if err := c.resolve(i); err != nil {
			return zero, err
		}
	}
	return c.results[index], nil
}

func (c *Cache[T]) resolve(i int) error {
	if c.computing[i] {
		return fmt.Errorf("index %d requested while being computed: %w", i, ports.ErrCyclicDependency)
	}
	c.computing[i] = true
	v, err := c.calculate(i)
	c.computing[i] = false
	if err != nil {
		return fmt.Errorf("computing index %d: %w", i, err)
	}
	c.results[i] = v
	c.resolved[i] = true
	if i > c.highest {
		c.highest = i
	}
	return nil
}

// Resolved returns how many indices hold a cached value.
func (c *Cache[T]) Resolved() int {
	n := 0
	for _, ok := range c.resolved {
		if ok {
			n++
		}
	}
	return n
}
