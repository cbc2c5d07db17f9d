package mutablestream

import (
	"context"
	"fmt"
)

// referencePipeline is the Stream backed by a Pipeline.
type referencePipeline[T any] struct {
	facade
}

func newReference[T any](p *Pipeline, parallel bool) *referencePipeline[T] {
	return &referencePipeline[T]{facade: newFacade(p, parallel)}
}

func (s *referencePipeline[T]) then(action Action) Stream[T] {
	return &referencePipeline[T]{facade: s.derive(action)}
}

// Filter implements Stream.
func (s *referencePipeline[T]) Filter(pred func(T) bool) Stream[T] {
	return s.then(filterAction(Reference, pred))
}

// Map implements Stream.
func (s *referencePipeline[T]) Map(mapp func(T) T) Stream[T] {
	return s.then(mapAction(Reference, Reference, mapp))
}

// MapToInt implements Stream.
func (s *referencePipeline[T]) MapToInt(mapp func(T) int32) NumberStream[int32] {
	return &numberPipeline[int32]{facade: s.derive(mapAction(Reference, Int, mapp))}
}

// MapToLong implements Stream.
func (s *referencePipeline[T]) MapToLong(mapp func(T) int64) NumberStream[int64] {
	return &numberPipeline[int64]{facade: s.derive(mapAction(Reference, Long, mapp))}
}

// MapToDouble implements Stream.
func (s *referencePipeline[T]) MapToDouble(mapp func(T) float64) NumberStream[float64] {
	return &numberPipeline[float64]{facade: s.derive(mapAction(Reference, Double, mapp))}
}

// FlatMap implements Stream.
func (s *referencePipeline[T]) FlatMap(mapp func(T) Stream[T]) Stream[T] {
	return s.then(flatMapAction(Reference, Reference, mapp, func(elem T) (*cursor, error) {
		return subStreamCursor[T](mapp(elem))
	}))
}

// FlatMapToInt implements Stream.
func (s *referencePipeline[T]) FlatMapToInt(mapp func(T) NumberStream[int32]) NumberStream[int32] {
	return &numberPipeline[int32]{facade: s.derive(flatMapAction(Reference, Int, mapp, func(elem T) (*cursor, error) {
		return subStreamCursor[int32](mapp(elem))
	}))}
}

// FlatMapToLong implements Stream.
func (s *referencePipeline[T]) FlatMapToLong(mapp func(T) NumberStream[int64]) NumberStream[int64] {
	return &numberPipeline[int64]{facade: s.derive(flatMapAction(Reference, Long, mapp, func(elem T) (*cursor, error) {
		return subStreamCursor[int64](mapp(elem))
	}))}
}

// FlatMapToDouble implements Stream.
func (s *referencePipeline[T]) FlatMapToDouble(mapp func(T) NumberStream[float64]) NumberStream[float64] {
	return &numberPipeline[float64]{facade: s.derive(flatMapAction(Reference, Double, mapp, func(elem T) (*cursor, error) {
		return subStreamCursor[float64](mapp(elem))
	}))}
}

// Distinct implements Stream.
func (s *referencePipeline[T]) Distinct() Stream[T] {
	return s.then(distinctAction(Reference))
}

// Sorted implements Stream.
func (s *referencePipeline[T]) Sorted() Stream[T] {
	return s.then(sortedAction(Reference, nil, naturalOrder[T]()))
}

// SortedFunc implements Stream.
func (s *referencePipeline[T]) SortedFunc(compare func(a T, b T) int) Stream[T] {
	return s.then(sortedAction(Reference, compare, comparatorOrder(compare)))
}

// Limit implements Stream.
func (s *referencePipeline[T]) Limit(maxSize int64) Stream[T] {
	return s.then(limitAction(Reference, maxSize))
}

// Skip implements Stream.
func (s *referencePipeline[T]) Skip(num int64) Stream[T] {
	return s.then(skipAction(Reference, num))
}

// Peek implements Stream.
func (s *referencePipeline[T]) Peek(_ func(T)) Stream[T] {
	return s
}

// Sequential implements Stream.
func (s *referencePipeline[T]) Sequential() Stream[T] {
	return &referencePipeline[T]{facade: s.withParallel(false)}
}

// Parallel implements Stream.
func (s *referencePipeline[T]) Parallel() Stream[T] {
	return &referencePipeline[T]{facade: s.withParallel(true)}
}

// Unordered implements Stream.
func (s *referencePipeline[T]) Unordered() Stream[T] {
	return s
}

// ForEach implements Stream.
func (s *referencePipeline[T]) ForEach(ctx context.Context, action func(T)) error {
	_, err := executeTerminal(ctx, &s.facade, forEachTerminator(s.parallel, action))
	return err
}

// ForEachOrdered implements Stream.
func (s *referencePipeline[T]) ForEachOrdered(ctx context.Context, action func(T)) error {
	_, err := executeTerminal(ctx, &s.facade, forEachOrderedTerminator(s.parallel, action))
	return err
}

// ToSlice implements Stream.
func (s *referencePipeline[T]) ToSlice(ctx context.Context) ([]T, error) {
	return executeTerminal(ctx, &s.facade, toSliceTerminator[T](s.parallel))
}

// Reduce implements Stream.
func (s *referencePipeline[T]) Reduce(ctx context.Context, identity T, op func(a T, b T) T) (T, error) {
	return executeTerminal(ctx, &s.facade, foldTerminator(TerminalReduce, s.parallel, op,
		func() T {
			return identity
		},
		op, op))
}

// ReduceOptional implements Stream.
func (s *referencePipeline[T]) ReduceOptional(ctx context.Context, op func(a T, b T) T) (T, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, optionalTerminator(TerminalReduce, s.parallel, op, op))
	return result.value, result.ok, err
}

// Min implements Stream.
func (s *referencePipeline[T]) Min(ctx context.Context, compare func(a T, b T) int) (T, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, minTerminator(s.parallel, compare, compare))
	return result.value, result.ok, err
}

// Max implements Stream.
func (s *referencePipeline[T]) Max(ctx context.Context, compare func(a T, b T) int) (T, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, maxTerminator(s.parallel, compare, compare))
	return result.value, result.ok, err
}

// Count implements Stream.
func (s *referencePipeline[T]) Count(ctx context.Context) (int64, error) {
	return executeTerminal(ctx, &s.facade, countTerminator(s.parallel))
}

// AnyMatch implements Stream.
func (s *referencePipeline[T]) AnyMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return executeTerminal(ctx, &s.facade, anyMatchTerminator(s.parallel, pred))
}

// AllMatch implements Stream.
func (s *referencePipeline[T]) AllMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return executeTerminal(ctx, &s.facade, allMatchTerminator(s.parallel, pred))
}

// NoneMatch implements Stream.
func (s *referencePipeline[T]) NoneMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return executeTerminal(ctx, &s.facade, noneMatchTerminator(s.parallel, pred))
}

// FindFirst implements Stream.
func (s *referencePipeline[T]) FindFirst(ctx context.Context) (T, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, findTerminator[T](TerminalFindFirst, s.parallel))
	return result.value, result.ok, err
}

// FindAny implements Stream.
func (s *referencePipeline[T]) FindAny(ctx context.Context) (T, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, findTerminator[T](TerminalFindAny, s.parallel))
	return result.value, result.ok, err
}

// Iterator implements Stream.
func (s *referencePipeline[T]) Iterator() (Iterator[T], error) {
	it, err := s.iterate()
	if err != nil {
		return nil, err
	}

	return it, nil
}

// Spliterator implements Stream.
func (s *referencePipeline[T]) Spliterator() (Spliterator[T], error) {
	return newSpliterator[T](&s.facade)
}

func (s *referencePipeline[T]) iterate() (*iterator[T], error) {
	return executeTerminal(context.Background(), &s.facade, iteratorTerminator[T](TerminalIterator, s.parallel))
}

func newSpliterator[T any](f *facade) (Spliterator[T], error) {
	size := f.pipeline.exactSize()

	it, err := executeTerminal(context.Background(), f, iteratorTerminator[T](TerminalSpliterator, f.parallel))
	if err != nil {
		return nil, err
	}

	return &spliterator[T]{it: it, size: size}, nil
}

// MapTo returns a stream of the results of applying mapp to each element of s.
func MapTo[T any, U any](s Stream[T], mapp func(T) U) Stream[U] {
	return deriveReference[T, U](s, mapAction(Reference, Reference, mapp))
}

// FlatMapTo returns a stream of the elements of the streams mapp returns for each element of s.
// Each of those streams is closed after its elements have been consumed. A nil stream counts as empty.
func FlatMapTo[T any, U any](s Stream[T], mapp func(T) Stream[U]) Stream[U] {
	return deriveReference[T, U](s, flatMapAction(Reference, Reference, mapp, func(elem T) (*cursor, error) {
		return subStreamCursor[U](mapp(elem))
	}))
}

// ReduceTo folds all elements of s into identity using acc.
// Parallel streams fold chunks of elements separately, starting each from identity, and merge the results
// using combine. combine may be nil for sequential streams.
func ReduceTo[T any, U any](ctx context.Context, s Stream[T], identity U, acc func(U, T) U, combine func(U, U) U) (U, error) {
	return terminateReference(ctx, s, func(parallel bool) Terminator[U] {
		return foldTerminator(TerminalReduce, parallel, acc,
			func() U {
				return identity
			},
			acc, combine)
	})
}

// Collect performs a mutable reduction of the elements of s.
// Each chunk of elements is accumulated into a new container returned by supplier.
// Parallel streams merge the containers using combine. combine may be nil for sequential streams.
func Collect[T any, R any](ctx context.Context, s Stream[T], supplier func() R, acc func(R, T) R, combine func(R, R) R) (R, error) {
	return terminateReference(ctx, s, func(parallel bool) Terminator[R] {
		return foldTerminator(TerminalCollect, parallel, acc, supplier, acc, combine)
	})
}

// CollectWith performs a mutable reduction of the elements of s using coll.
func CollectWith[T any, A any, R any](ctx context.Context, s Stream[T], coll Collector[T, A, R]) (R, error) {
	acc, err := terminateReference(ctx, s, func(parallel bool) Terminator[A] {
		return foldTerminator(TerminalCollect, parallel, coll, coll.Supplier, coll.Accumulator, coll.Combiner)
	})
	if err != nil {
		var zero R
		return zero, err
	}

	return coll.finish(acc)
}

// deriveReference appends action to the pipeline of s, and returns a stream of its results.
// Streams derived from auto-closing streams share their resources.
func deriveReference[T any, U any](s Stream[T], action Action) Stream[U] {
	switch s := s.(type) {
	case *autoClosingStream[T]:
		return wrapReference(s.registry, deriveReference[T, U](s.inner, action))

	case *referencePipeline[T]:
		return &referencePipeline[U]{facade: s.derive(action)}

	default:
		panic(fmt.Sprintf("mutablestream: unknown stream implementation %T", s))
	}
}

// terminateReference executes a terminal operation on s.
// Auto-closing streams release their resources afterwards.
func terminateReference[T any, R any](ctx context.Context, s Stream[T], terminator func(parallel bool) Terminator[R]) (R, error) {
	switch s := s.(type) {
	case *autoClosingStream[T]:
		return autoTerminal(s.registry, func() (R, error) {
			return terminateReference(ctx, s.inner, terminator)
		})

	case *referencePipeline[T]:
		return executeTerminal(ctx, &s.facade, terminator(s.parallel))

	default:
		panic(fmt.Sprintf("mutablestream: unknown stream implementation %T", s))
	}
}
