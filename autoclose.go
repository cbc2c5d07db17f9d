package mutablestream

import (
	"context"
	"io"
)

// autoClosingStream is a Stream that releases its resources once a terminal operation has finished.
// All streams derived from it share its resources, which are released at most once.
type autoClosingStream[T any] struct {
	inner    Stream[T]
	registry *closeRegistry
}

// AutoClose returns a stream that releases the resources of s when a terminal operation on it, or on any
// stream derived from it, has finished, successfully or not. The resources are the source of s if it
// implements io.Closer, followed by resources.
//
// Iterator and Spliterator of the returned stream fail with ErrUnsupportedOperation, since pull-based
// consumption has no point at which resources could be released.
func AutoClose[T any](s Stream[T], resources ...io.Closer) Stream[T] {
	if ac, ok := s.(*autoClosingStream[T]); ok {
		ac.registry.register(resources...)
		return ac
	}

	return &autoClosingStream[T]{
		inner:    s,
		registry: newCloseRegistry(append(originClosers(s.Pipeline()), resources...)...),
	}
}

// originClosers returns the source of p if it implements io.Closer.
func originClosers(p *Pipeline) []io.Closer {
	if closer, ok := p.Origin().(io.Closer); ok {
		return []io.Closer{closer}
	}

	return nil
}

// wrapReference wraps s into an auto-closing stream sharing registry, unless s already is auto-closing.
func wrapReference[T any](registry *closeRegistry, s Stream[T]) Stream[T] {
	if ac, ok := s.(*autoClosingStream[T]); ok {
		return ac
	}

	return &autoClosingStream[T]{
		inner:    s,
		registry: registry,
	}
}

// IsParallel implements BaseStream.
func (s *autoClosingStream[T]) IsParallel() bool {
	return s.inner.IsParallel()
}

// Pipeline implements BaseStream.
func (s *autoClosingStream[T]) Pipeline() *Pipeline {
	return s.inner.Pipeline()
}

// OnClose implements BaseStream.
func (s *autoClosingStream[T]) OnClose(_ func()) error {
	return unsupported("OnClose")
}

// Close implements BaseStream.
func (s *autoClosingStream[T]) Close() error {
	return s.registry.close()
}

// Filter implements Stream.
func (s *autoClosingStream[T]) Filter(pred func(T) bool) Stream[T] {
	return wrapReference(s.registry, s.inner.Filter(pred))
}

// Map implements Stream.
func (s *autoClosingStream[T]) Map(mapp func(T) T) Stream[T] {
	return wrapReference(s.registry, s.inner.Map(mapp))
}

// MapToInt implements Stream.
func (s *autoClosingStream[T]) MapToInt(mapp func(T) int32) NumberStream[int32] {
	return wrapNumber(s.registry, s.inner.MapToInt(mapp))
}

// MapToLong implements Stream.
func (s *autoClosingStream[T]) MapToLong(mapp func(T) int64) NumberStream[int64] {
	return wrapNumber(s.registry, s.inner.MapToLong(mapp))
}

// MapToDouble implements Stream.
func (s *autoClosingStream[T]) MapToDouble(mapp func(T) float64) NumberStream[float64] {
	return wrapNumber(s.registry, s.inner.MapToDouble(mapp))
}

// FlatMap implements Stream.
func (s *autoClosingStream[T]) FlatMap(mapp func(T) Stream[T]) Stream[T] {
	return wrapReference(s.registry, s.inner.FlatMap(mapp))
}

// FlatMapToInt implements Stream.
func (s *autoClosingStream[T]) FlatMapToInt(mapp func(T) NumberStream[int32]) NumberStream[int32] {
	return wrapNumber(s.registry, s.inner.FlatMapToInt(mapp))
}

// FlatMapToLong implements Stream.
func (s *autoClosingStream[T]) FlatMapToLong(mapp func(T) NumberStream[int64]) NumberStream[int64] {
	return wrapNumber(s.registry, s.inner.FlatMapToLong(mapp))
}

// FlatMapToDouble implements Stream.
func (s *autoClosingStream[T]) FlatMapToDouble(mapp func(T) NumberStream[float64]) NumberStream[float64] {
	return wrapNumber(s.registry, s.inner.FlatMapToDouble(mapp))
}

// Distinct implements Stream.
func (s *autoClosingStream[T]) Distinct() Stream[T] {
	return wrapReference(s.registry, s.inner.Distinct())
}

// Sorted implements Stream.
func (s *autoClosingStream[T]) Sorted() Stream[T] {
	return wrapReference(s.registry, s.inner.Sorted())
}

// SortedFunc implements Stream.
func (s *autoClosingStream[T]) SortedFunc(compare func(a T, b T) int) Stream[T] {
	return wrapReference(s.registry, s.inner.SortedFunc(compare))
}

// Limit implements Stream.
func (s *autoClosingStream[T]) Limit(maxSize int64) Stream[T] {
	return wrapReference(s.registry, s.inner.Limit(maxSize))
}

// Skip implements Stream.
func (s *autoClosingStream[T]) Skip(num int64) Stream[T] {
	return wrapReference(s.registry, s.inner.Skip(num))
}

// Peek implements Stream.
func (s *autoClosingStream[T]) Peek(_ func(T)) Stream[T] {
	return s
}

// Sequential implements Stream.
func (s *autoClosingStream[T]) Sequential() Stream[T] {
	return wrapReference(s.registry, s.inner.Sequential())
}

// Parallel implements Stream.
func (s *autoClosingStream[T]) Parallel() Stream[T] {
	return wrapReference(s.registry, s.inner.Parallel())
}

// Unordered implements Stream.
func (s *autoClosingStream[T]) Unordered() Stream[T] {
	return s
}

// ForEach implements Stream.
func (s *autoClosingStream[T]) ForEach(ctx context.Context, action func(T)) error {
	_, err := autoTerminal(s.registry, func() (struct{}, error) {
		return struct{}{}, s.inner.ForEach(ctx, action)
	})

	return err
}

// ForEachOrdered implements Stream.
func (s *autoClosingStream[T]) ForEachOrdered(ctx context.Context, action func(T)) error {
	_, err := autoTerminal(s.registry, func() (struct{}, error) {
		return struct{}{}, s.inner.ForEachOrdered(ctx, action)
	})

	return err
}

// ToSlice implements Stream.
func (s *autoClosingStream[T]) ToSlice(ctx context.Context) ([]T, error) {
	return autoTerminal(s.registry, func() ([]T, error) {
		return s.inner.ToSlice(ctx)
	})
}

// Reduce implements Stream.
func (s *autoClosingStream[T]) Reduce(ctx context.Context, identity T, op func(a T, b T) T) (T, error) {
	return autoTerminal(s.registry, func() (T, error) {
		return s.inner.Reduce(ctx, identity, op)
	})
}

// ReduceOptional implements Stream.
func (s *autoClosingStream[T]) ReduceOptional(ctx context.Context, op func(a T, b T) T) (T, bool, error) {
	return autoOptional(s.registry, func() (T, bool, error) {
		return s.inner.ReduceOptional(ctx, op)
	})
}

// Min implements Stream.
func (s *autoClosingStream[T]) Min(ctx context.Context, compare func(a T, b T) int) (T, bool, error) {
	return autoOptional(s.registry, func() (T, bool, error) {
		return s.inner.Min(ctx, compare)
	})
}

// Max implements Stream.
func (s *autoClosingStream[T]) Max(ctx context.Context, compare func(a T, b T) int) (T, bool, error) {
	return autoOptional(s.registry, func() (T, bool, error) {
		return s.inner.Max(ctx, compare)
	})
}

// Count implements Stream.
func (s *autoClosingStream[T]) Count(ctx context.Context) (int64, error) {
	return autoTerminal(s.registry, func() (int64, error) {
		return s.inner.Count(ctx)
	})
}

// AnyMatch implements Stream.
func (s *autoClosingStream[T]) AnyMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return autoTerminal(s.registry, func() (bool, error) {
		return s.inner.AnyMatch(ctx, pred)
	})
}

// AllMatch implements Stream.
func (s *autoClosingStream[T]) AllMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return autoTerminal(s.registry, func() (bool, error) {
		return s.inner.AllMatch(ctx, pred)
	})
}

// NoneMatch implements Stream.
func (s *autoClosingStream[T]) NoneMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return autoTerminal(s.registry, func() (bool, error) {
		return s.inner.NoneMatch(ctx, pred)
	})
}

// FindFirst implements Stream.
func (s *autoClosingStream[T]) FindFirst(ctx context.Context) (T, bool, error) {
	return autoOptional(s.registry, func() (T, bool, error) {
		return s.inner.FindFirst(ctx)
	})
}

// FindAny implements Stream.
func (s *autoClosingStream[T]) FindAny(ctx context.Context) (T, bool, error) {
	return autoOptional(s.registry, func() (T, bool, error) {
		return s.inner.FindAny(ctx)
	})
}

// Iterator implements Stream. It always returns ErrUnsupportedOperation.
func (s *autoClosingStream[T]) Iterator() (Iterator[T], error) {
	return nil, breaksAutoClose("Iterator")
}

// Spliterator implements Stream. It always returns ErrUnsupportedOperation.
func (s *autoClosingStream[T]) Spliterator() (Spliterator[T], error) {
	return nil, breaksAutoClose("Spliterator")
}

// iterate returns an iterator over the inner stream. The caller becomes responsible for closing s.
func (s *autoClosingStream[T]) iterate() (*iterator[T], error) {
	return s.inner.iterate()
}

// autoOptional is autoTerminal for operations returning an optional result.
func autoOptional[T any](r *closeRegistry, run func() (T, bool, error)) (T, bool, error) {
	result, err := autoTerminal(r, func() (optional[T], error) {
		value, ok, err := run()
		return optional[T]{value: value, ok: ok}, err
	})

	return result.value, result.ok, err
}
