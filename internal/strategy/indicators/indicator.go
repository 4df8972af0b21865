// Package indicators evaluates technical indicators over a domain.TimeSeries.
//
// Every indicator owns a Cache: a value is computed at most once per index.
// Stateful indicators use a recursive cache that resolves indices in
// ascending order, so values do not depend on the order callers query them in.
// Indicators are not safe for concurrent use; share the series, not the
// indicator.
package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
)

// Source is a node of an indicator graph.
type Source interface {
	// Name returns the name of the indicator
	Name() string
	// Dependencies returns the indicators this one reads from.
	Dependencies() []Source
}

// Indicator produces a value of type T for each index of its series.
type Indicator[T any] interface {
	Source
	// Value returns the value at index. Repeated calls return the cached value.
	Value(index int) (T, error)
	// Series returns the series the indicator is computed over.
	Series() *domain.TimeSeries
}

// Num is a decimal-valued indicator.
type Num = Indicator[decimal.Decimal]

// IndicatorConfig holds common configuration for windowed indicators
type IndicatorConfig struct {
	Period int
}

func (c IndicatorConfig) validate(name string) error {
	if c.Period <= 0 {
		return fmt.Errorf("%s: period must be positive, got %d: %w", name, c.Period, ports.ErrConfigurationError)
	}
	return nil
}

// ValidateAcyclic walks the dependency graph below root and fails when an
// indicator can reach itself.
func ValidateAcyclic(root Source) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[Source]int)

	var visit func(s Source, path []string) error
	visit = func(s Source, path []string) error {
		path = append(path, s.Name())
		switch state[s] {
		case visiting:
			return fmt.Errorf("%v: %w: %w", path, ports.ErrConfigurationError, ports.ErrCyclicDependency)
		case done:
			return nil
		}
		state[s] = visiting
		for _, dep := range s.Dependencies() {
			if dep == nil {
				continue
			}
			if err := visit(dep, path); err != nil {
				return err
			}
		}
		state[s] = done
		return nil
	}
	return visit(root, nil)
}

func requireInput(name string, series *domain.TimeSeries, inputs ...Source) error {
	if series == nil {
		return fmt.Errorf("%s: nil series: %w", name, ports.ErrConfigurationError)
	}
	for _, in := range inputs {
		if in == nil {
			return fmt.Errorf("%s: nil input indicator: %w", name, ports.ErrConfigurationError)
		}
	}
	return nil
}

// Deferred stands in for an indicator that is built later, which allows
// self-referencing definitions to be expressed and rejected. Bind refuses any
// target that would close a cycle.
type Deferred[T any] struct {
	name   string
	series *domain.TimeSeries
	target Indicator[T]
}

// NewDeferred returns an unbound placeholder over series.
func NewDeferred[T any](name string, series *domain.TimeSeries) *Deferred[T] {
	return &Deferred[T]{name: name, series: series}
}

// Bind sets the indicator d forwards to.
func (d *Deferred[T]) Bind(target Indicator[T]) error {
	if target == nil {
		return fmt.Errorf("%s: nil target: %w", d.name, ports.ErrConfigurationError)
	}
	if d.target != nil {
		return fmt.Errorf("%s: already bound to %s: %w", d.name, d.target.Name(), ports.ErrConfigurationError)
	}
	if target.Series() != d.series {
		return fmt.Errorf("%s: target %s uses another series: %w", d.name, target.Name(), ports.ErrConfigurationError)
	}
	d.target = target
	if err := ValidateAcyclic(d); err != nil {
		d.target = nil
		return err
	}
	return nil
}

func (d *Deferred[T]) Name() string {
	return d.name
}

func (d *Deferred[T]) Dependencies() []Source {
	if d.target == nil {
		return nil
	}
	return []Source{d.target}
}

func (d *Deferred[T]) Series() *domain.TimeSeries {
	return d.series
}

func (d *Deferred[T]) Value(index int) (T, error) {
	if d.target == nil {
		var zero T
		return zero, fmt.Errorf("%s: %w: %w", d.name, ports.ErrConfigurationError, ports.ErrIndicatorNotBound)
	}
	return d.target.Value(index)
}
