package mutablestream

import (
	"context"
	"io"
)

// autoClosingNumberStream is the NumberStream variant of autoClosingStream.
type autoClosingNumberStream[N Number] struct {
	inner    NumberStream[N]
	registry *closeRegistry
}

// AutoCloseNumbers is the NumberStream variant of AutoClose.
func AutoCloseNumbers[N Number](s NumberStream[N], resources ...io.Closer) NumberStream[N] {
	if ac, ok := s.(*autoClosingNumberStream[N]); ok {
		ac.registry.register(resources...)
		return ac
	}

	return &autoClosingNumberStream[N]{
		inner:    s,
		registry: newCloseRegistry(append(originClosers(s.Pipeline()), resources...)...),
	}
}

// wrapNumber wraps s into an auto-closing stream sharing registry, unless s already is auto-closing.
func wrapNumber[N Number](registry *closeRegistry, s NumberStream[N]) NumberStream[N] {
	if ac, ok := s.(*autoClosingNumberStream[N]); ok {
		return ac
	}

	return &autoClosingNumberStream[N]{
		inner:    s,
		registry: registry,
	}
}

// IsParallel implements BaseStream.
func (s *autoClosingNumberStream[N]) IsParallel() bool {
	return s.inner.IsParallel()
}

// Pipeline implements BaseStream.
func (s *autoClosingNumberStream[N]) Pipeline() *Pipeline {
	return s.inner.Pipeline()
}

// OnClose implements BaseStream.
func (s *autoClosingNumberStream[N]) OnClose(_ func()) error {
	return unsupported("OnClose")
}

// Close implements BaseStream.
func (s *autoClosingNumberStream[N]) Close() error {
	return s.registry.close()
}

// Filter implements NumberStream.
func (s *autoClosingNumberStream[N]) Filter(pred func(N) bool) NumberStream[N] {
	return wrapNumber(s.registry, s.inner.Filter(pred))
}

// Map implements NumberStream.
func (s *autoClosingNumberStream[N]) Map(mapp func(N) N) NumberStream[N] {
	return wrapNumber(s.registry, s.inner.Map(mapp))
}

// MapToInt implements NumberStream.
func (s *autoClosingNumberStream[N]) MapToInt(mapp func(N) int32) NumberStream[int32] {
	return wrapNumber(s.registry, s.inner.MapToInt(mapp))
}

// MapToLong implements NumberStream.
func (s *autoClosingNumberStream[N]) MapToLong(mapp func(N) int64) NumberStream[int64] {
	return wrapNumber(s.registry, s.inner.MapToLong(mapp))
}

// MapToDouble implements NumberStream.
func (s *autoClosingNumberStream[N]) MapToDouble(mapp func(N) float64) NumberStream[float64] {
	return wrapNumber(s.registry, s.inner.MapToDouble(mapp))
}

// FlatMap implements NumberStream.
func (s *autoClosingNumberStream[N]) FlatMap(mapp func(N) NumberStream[N]) NumberStream[N] {
	return wrapNumber(s.registry, s.inner.FlatMap(mapp))
}

// Boxed implements NumberStream.
func (s *autoClosingNumberStream[N]) Boxed() Stream[N] {
	return wrapReference(s.registry, s.inner.Boxed())
}

// AsLongStream implements NumberStream.
func (s *autoClosingNumberStream[N]) AsLongStream() NumberStream[int64] {
	return wrapNumber(s.registry, s.inner.AsLongStream())
}

// AsDoubleStream implements NumberStream.
func (s *autoClosingNumberStream[N]) AsDoubleStream() NumberStream[float64] {
	return wrapNumber(s.registry, s.inner.AsDoubleStream())
}

// Distinct implements NumberStream.
func (s *autoClosingNumberStream[N]) Distinct() NumberStream[N] {
	return wrapNumber(s.registry, s.inner.Distinct())
}

// Sorted implements NumberStream.
func (s *autoClosingNumberStream[N]) Sorted() NumberStream[N] {
	return wrapNumber(s.registry, s.inner.Sorted())
}

// Limit implements NumberStream.
func (s *autoClosingNumberStream[N]) Limit(maxSize int64) NumberStream[N] {
	return wrapNumber(s.registry, s.inner.Limit(maxSize))
}

// Skip implements NumberStream.
func (s *autoClosingNumberStream[N]) Skip(num int64) NumberStream[N] {
	return wrapNumber(s.registry, s.inner.Skip(num))
}

// Peek implements NumberStream.
func (s *autoClosingNumberStream[N]) Peek(_ func(N)) NumberStream[N] {
	return s
}

// Sequential implements NumberStream.
func (s *autoClosingNumberStream[N]) Sequential() NumberStream[N] {
	return wrapNumber(s.registry, s.inner.Sequential())
}

// Parallel implements NumberStream.
func (s *autoClosingNumberStream[N]) Parallel() NumberStream[N] {
	return wrapNumber(s.registry, s.inner.Parallel())
}

// Unordered implements NumberStream.
func (s *autoClosingNumberStream[N]) Unordered() NumberStream[N] {
	return s
}

// ForEach implements NumberStream.
func (s *autoClosingNumberStream[N]) ForEach(ctx context.Context, action func(N)) error {
	_, err := autoTerminal(s.registry, func() (struct{}, error) {
		return struct{}{}, s.inner.ForEach(ctx, action)
	})

	return err
}

// ForEachOrdered implements NumberStream.
func (s *autoClosingNumberStream[N]) ForEachOrdered(ctx context.Context, action func(N)) error {
	_, err := autoTerminal(s.registry, func() (struct{}, error) {
		return struct{}{}, s.inner.ForEachOrdered(ctx, action)
	})

	return err
}

// ToSlice implements NumberStream.
func (s *autoClosingNumberStream[N]) ToSlice(ctx context.Context) ([]N, error) {
	return autoTerminal(s.registry, func() ([]N, error) {
		return s.inner.ToSlice(ctx)
	})
}

// Reduce implements NumberStream.
func (s *autoClosingNumberStream[N]) Reduce(ctx context.Context, identity N, op func(a N, b N) N) (N, error) {
	return autoTerminal(s.registry, func() (N, error) {
		return s.inner.Reduce(ctx, identity, op)
	})
}

// ReduceOptional implements NumberStream.
func (s *autoClosingNumberStream[N]) ReduceOptional(ctx context.Context, op func(a N, b N) N) (N, bool, error) {
	return autoOptional(s.registry, func() (N, bool, error) {
		return s.inner.ReduceOptional(ctx, op)
	})
}

// Sum implements NumberStream.
func (s *autoClosingNumberStream[N]) Sum(ctx context.Context) (N, error) {
	return autoTerminal(s.registry, func() (N, error) {
		return s.inner.Sum(ctx)
	})
}

// Min implements NumberStream.
func (s *autoClosingNumberStream[N]) Min(ctx context.Context) (N, bool, error) {
	return autoOptional(s.registry, func() (N, bool, error) {
		return s.inner.Min(ctx)
	})
}

// Max implements NumberStream.
func (s *autoClosingNumberStream[N]) Max(ctx context.Context) (N, bool, error) {
	return autoOptional(s.registry, func() (N, bool, error) {
		return s.inner.Max(ctx)
	})
}

// Count implements NumberStream.
func (s *autoClosingNumberStream[N]) Count(ctx context.Context) (int64, error) {
	return autoTerminal(s.registry, func() (int64, error) {
		return s.inner.Count(ctx)
	})
}

// Average implements NumberStream.
func (s *autoClosingNumberStream[N]) Average(ctx context.Context) (float64, bool, error) {
	return autoOptional(s.registry, func() (float64, bool, error) {
		return s.inner.Average(ctx)
	})
}

// SummaryStatistics implements NumberStream.
func (s *autoClosingNumberStream[N]) SummaryStatistics(ctx context.Context) (SummaryStatistics[N], error) {
	return autoTerminal(s.registry, func() (SummaryStatistics[N], error) {
		return s.inner.SummaryStatistics(ctx)
	})
}

// AnyMatch implements NumberStream.
func (s *autoClosingNumberStream[N]) AnyMatch(ctx context.Context, pred func(N) bool) (bool, error) {
	return autoTerminal(s.registry, func() (bool, error) {
		return s.inner.AnyMatch(ctx, pred)
	})
}

// AllMatch implements NumberStream.
func (s *autoClosingNumberStream[N]) AllMatch(ctx context.Context, pred func(N) bool) (bool, error) {
	return autoTerminal(s.registry, func() (bool, error) {
		return s.inner.AllMatch(ctx, pred)
	})
}

// NoneMatch implements NumberStream.
func (s *autoClosingNumberStream[N]) NoneMatch(ctx context.Context, pred func(N) bool) (bool, error) {
	return autoTerminal(s.registry, func() (bool, error) {
		return s.inner.NoneMatch(ctx, pred)
	})
}

// FindFirst implements NumberStream.
func (s *autoClosingNumberStream[N]) FindFirst(ctx context.Context) (N, bool, error) {
	return autoOptional(s.registry, func() (N, bool, error) {
		return s.inner.FindFirst(ctx)
	})
}

// FindAny implements NumberStream.
func (s *autoClosingNumberStream[N]) FindAny(ctx context.Context) (N, bool, error) {
	return autoOptional(s.registry, func() (N, bool, error) {
		return s.inner.FindAny(ctx)
	})
}

// Iterator implements NumberStream. It always returns ErrUnsupportedOperation.
func (s *autoClosingNumberStream[N]) Iterator() (Iterator[N], error) {
	return nil, breaksAutoClose("Iterator")
}

// Spliterator implements NumberStream. It always returns ErrUnsupportedOperation.
func (s *autoClosingNumberStream[N]) Spliterator() (Spliterator[N], error) {
	return nil, breaksAutoClose("Spliterator")
}

func (s *autoClosingNumberStream[N]) iterate() (*iterator[N], error) {
	return s.inner.iterate()
}
