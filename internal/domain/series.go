package domain

import (
	"fmt"
	"time"

	"cryptoTA/internal/ports"
)

// TimeSeries is an ordered, read-only sequence of ticks addressed by a
// 0-based index. A sub-series shares the backing array of its parent and only
// narrows the bounds.
type TimeSeries struct {
	name  string
	ticks []Tick // backing array, shared with sub-series
	begin int    // first backing index visible through this series
	end   int    // one past the last visible backing index
}

// NewTimeSeries copies ticks into a new series. End times must be strictly
// increasing.
func NewTimeSeries(name string, ticks []Tick) (*TimeSeries, error) {
	for i := 1; i < len(ticks); i++ {
		if !ticks[i].EndTime.After(ticks[i-1].EndTime) {
			return nil, fmt.Errorf("series %q: tick %d ends at %s, not after tick %d (%s): %w",
				name, i, ticks[i].EndTime.Format(time.RFC3339), i-1,
				ticks[i-1].EndTime.Format(time.RFC3339), ports.ErrMalformedSeries)
		}
	}
	owned := make([]Tick, len(ticks))
	copy(owned, ticks)
	return &TimeSeries{name: name, ticks: owned, begin: 0, end: len(owned)}, nil
}

// Name returns the series name.
func (s *TimeSeries) Name() string {
	return s.name
}

// TickCount returns the number of visible ticks.
func (s *TimeSeries) TickCount() int {
	return s.end - s.begin
}

// IsEmpty reports whether the series has no ticks.
func (s *TimeSeries) IsEmpty() bool {
	return s.TickCount() == 0
}

// Tick returns the tick at index.
func (s *TimeSeries) Tick(index int) (Tick, error) {
	if index < 0 || index >= s.TickCount() {
		return Tick{}, fmt.Errorf("series %q: tick %d of %d: %w", s.name, index, s.TickCount(), ports.ErrOutOfRange)
	}
	return s.ticks[s.begin+index], nil
}

// FirstTick returns the first visible tick.
func (s *TimeSeries) FirstTick() (Tick, error) {
	if s.IsEmpty() {
		return Tick{}, fmt.Errorf("series %q has no first tick: %w", s.name, ports.ErrMalformedSeries)
	}
	return s.ticks[s.begin], nil
}

// LastTick returns the last visible tick.
func (s *TimeSeries) LastTick() (Tick, error) {
	if s.IsEmpty() {
		return Tick{}, fmt.Errorf("series %q has no last tick: %w", s.name, ports.ErrMalformedSeries)
	}
	return s.ticks[s.end-1], nil
}

// SubSeries returns a view over [begin, end) of this series. Index 0 of the
// view is index begin of s. No tick is copied.
func (s *TimeSeries) SubSeries(begin, end int) (*TimeSeries, error) {
	if begin < 0 || end > s.TickCount() || begin > end {
		return nil, fmt.Errorf("series %q: sub-series [%d, %d) of %d ticks: %w",
			s.name, begin, end, s.TickCount(), ports.ErrOutOfRange)
	}
	return &TimeSeries{
		name:  s.name,
		ticks: s.ticks,
		begin: s.begin + begin,
		end:   s.begin + end,
	}, nil
}

// PeriodDescription describes the covered time span, e.g.
// "2017-04-27T08:00:00Z - 2017-04-27T09:00:00Z".
func (s *TimeSeries) PeriodDescription() string {
	if s.IsEmpty() {
		return ""
	}
	first, _ := s.FirstTick()
	last, _ := s.LastTick()
	return first.EndTime.Format(time.RFC3339) + " - " + last.EndTime.Format(time.RFC3339)
}
