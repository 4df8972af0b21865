package utils

import "iter"

// Iterator is a single-pass, pull-style cursor.
type Iterator[T any] interface {
	// HasNext reports whether Next would return a value.
	HasNext() bool
	// Next returns the next value, or false once the iterator is exhausted.
	Next() (T, bool)
}

// SliceIterator walks a slice from front to back.
type SliceIterator[T any] struct {
	items []T
	pos   int
}

// NewSliceIterator returns an iterator over items. The slice is not copied.
func NewSliceIterator[T any](items []T) *SliceIterator[T] {
	return &SliceIterator[T]{items: items}
}

func (s *SliceIterator[T]) HasNext() bool {
	return s.pos < len(s.items)
}

func (s *SliceIterator[T]) Next() (T, bool) {
	if s.pos >= len(s.items) {
		var zero T
		return zero, false
	}
	v := s.items[s.pos]
	s.pos++
	return v, true
}

// ExtendableIterator concatenates iterators lazily. It keeps a FIFO queue of
// sources and only ever pulls from the front one; exhausted sources are
// dropped, so the front of the queue always has a next element.
type ExtendableIterator[T any] struct {
	queue []Iterator[T]
}

// NewExtendableIterator returns a concatenation of its, in order.
func NewExtendableIterator[T any](its ...Iterator[T]) *ExtendableIterator[T] {
	e := &ExtendableIterator[T]{}
	for _, it := range its {
		e.Extend(it)
	}
	return e
}

// Extend appends it to the queue. Empty or nil iterators are ignored.
func (e *ExtendableIterator[T]) Extend(it Iterator[T]) {
	if it == nil || !it.HasNext() {
		return
	}
	e.queue = append(e.queue, it)
}

func (e *ExtendableIterator[T]) HasNext() bool {
	return len(e.queue) > 0
}

func (e *ExtendableIterator[T]) Next() (T, bool) {
	if len(e.queue) == 0 {
		var zero T
		return zero, false
	}
	front := e.queue[0]
	v, ok := front.Next()
	if !front.HasNext() {
		e.queue[0] = nil
		e.queue = e.queue[1:]
	}
	return v, ok
}

// Seq adapts it for range-over-func. The iterator is consumed.
func Seq[T any](it Iterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for it.HasNext() {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Collect drains it into a slice.
func Collect[T any](it Iterator[T]) []T {
	var out []T
	for v := range Seq(it) {
		out = append(out, v)
	}
	return out
}
