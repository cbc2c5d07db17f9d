package mutablestream

import (
	"context"
	"fmt"
	"math"
)

// Number is the set of element types of numeric streams.
type Number interface {
	int32 | int64 | float64
}

// Integer is the set of integer element types of numeric streams.
type Integer interface {
	int32 | int64
}

type (
	// IntStream is a stream of int32 elements.
	IntStream = NumberStream[int32]

	// LongStream is a stream of int64 elements.
	LongStream = NumberStream[int64]

	// DoubleStream is a stream of float64 elements.
	DoubleStream = NumberStream[float64]
)

// NumberStream is a lazy, single-use sequence of numbers. It works like Stream, and adds numeric
// terminal operations such as Sum and Average.
//
// Conversions to other number types follow Go's conversion rules, except that converting a float64
// to an integer saturates: NaN converts to 0, and values out of range convert to the closest bound.
type NumberStream[N Number] interface {
	BaseStream

	// Filter returns a stream of the elements that match pred.
	Filter(pred func(N) bool) NumberStream[N]

	// Map returns a stream of the results of applying mapp to each element.
	Map(mapp func(N) N) NumberStream[N]

	// MapToInt returns an IntStream of the results of applying mapp to each element.
	MapToInt(mapp func(N) int32) NumberStream[int32]

	// MapToLong returns a LongStream of the results of applying mapp to each element.
	MapToLong(mapp func(N) int64) NumberStream[int64]

	// MapToDouble returns a DoubleStream of the results of applying mapp to each element.
	MapToDouble(mapp func(N) float64) NumberStream[float64]

	// FlatMap returns a stream of the elements of the streams mapp returns for each element.
	FlatMap(mapp func(N) NumberStream[N]) NumberStream[N]

	// Boxed returns a Stream of the elements.
	Boxed() Stream[N]

	// AsLongStream returns the elements converted to int64.
	AsLongStream() NumberStream[int64]

	// AsDoubleStream returns the elements converted to float64.
	AsDoubleStream() NumberStream[float64]

	// Distinct returns a stream of the elements, skipping elements equal to an earlier element.
	Distinct() NumberStream[N]

	// Sorted returns a stream of the elements in ascending order. NaN sorts last.
	Sorted() NumberStream[N]

	// Limit returns a stream of at most maxSize elements. It panics if maxSize is negative.
	Limit(maxSize int64) NumberStream[N]

	// Skip returns a stream of the elements after the first num. It panics if num is negative.
	Skip(num int64) NumberStream[N]

	// Peek returns the stream itself. action is never called, see Stream.Peek.
	Peek(action func(N)) NumberStream[N]

	// Sequential returns a stream over the same pipeline whose terminal operations run sequentially.
	Sequential() NumberStream[N]

	// Parallel returns a stream over the same pipeline whose terminal operations may run concurrently.
	Parallel() NumberStream[N]

	// Unordered returns the stream itself.
	Unordered() NumberStream[N]

	// ForEach calls action for each element. Parallel streams call action concurrently, in undefined order.
	ForEach(ctx context.Context, action func(N)) error

	// ForEachOrdered calls action for each element, in encounter order.
	ForEachOrdered(ctx context.Context, action func(N)) error

	// ToSlice returns all elements.
	ToSlice(ctx context.Context) ([]N, error)

	// Reduce folds all elements into identity using op.
	Reduce(ctx context.Context, identity N, op func(a N, b N) N) (N, error)

	// ReduceOptional folds all elements using op. It returns false if there are no elements.
	ReduceOptional(ctx context.Context, op func(a N, b N) N) (N, bool, error)

	// Sum returns the sum of all elements, or 0 if there are none.
	// Integer sums wrap around on overflow, float64 sums are compensated for rounding errors.
	Sum(ctx context.Context) (N, error)

	// Min returns the smallest element. It returns false if there are no elements.
	Min(ctx context.Context) (N, bool, error)

	// Max returns the largest element. It returns false if there are no elements.
	Max(ctx context.Context) (N, bool, error)

	// Count returns the number of elements.
	Count(ctx context.Context) (int64, error)

	// Average returns the arithmetic mean of all elements. It returns false if there are no elements.
	Average(ctx context.Context) (float64, bool, error)

	// SummaryStatistics returns count, sum, minimum, maximum, and average of all elements.
	SummaryStatistics(ctx context.Context) (SummaryStatistics[N], error)

	// AnyMatch returns true as soon as an element matches pred.
	AnyMatch(ctx context.Context, pred func(N) bool) (bool, error)

	// AllMatch returns false as soon as an element does not match pred.
	AllMatch(ctx context.Context, pred func(N) bool) (bool, error)

	// NoneMatch returns false as soon as an element matches pred.
	NoneMatch(ctx context.Context, pred func(N) bool) (bool, error)

	// FindFirst returns the first element. It returns false if there are no elements.
	FindFirst(ctx context.Context) (N, bool, error)

	// FindAny returns any element. It returns false if there are no elements.
	FindAny(ctx context.Context) (N, bool, error)

	// Iterator returns an iterator over the elements.
	Iterator() (Iterator[N], error)

	// Spliterator returns a spliterator over the elements.
	Spliterator() (Spliterator[N], error)

	iterate() (*iterator[N], error)
}

// numberPipeline is the NumberStream backed by a Pipeline.
type numberPipeline[N Number] struct {
	facade
}

func newNumber[N Number](p *Pipeline, parallel bool) *numberPipeline[N] {
	return &numberPipeline[N]{facade: newFacade(p, parallel)}
}

// kindOf returns the ElementKind of N.
func kindOf[N Number]() ElementKind {
	var zero N

	switch any(zero).(type) {
	case int32:
		return Int
	case int64:
		return Long
	default:
		return Double
	}
}

func (s *numberPipeline[N]) then(action Action) NumberStream[N] {
	return &numberPipeline[N]{facade: s.derive(action)}
}

// Filter implements NumberStream.
func (s *numberPipeline[N]) Filter(pred func(N) bool) NumberStream[N] {
	return s.then(filterAction(kindOf[N](), pred))
}

// Map implements NumberStream.
func (s *numberPipeline[N]) Map(mapp func(N) N) NumberStream[N] {
	return s.then(mapAction(kindOf[N](), kindOf[N](), mapp))
}

// MapToInt implements NumberStream.
func (s *numberPipeline[N]) MapToInt(mapp func(N) int32) NumberStream[int32] {
	return &numberPipeline[int32]{facade: s.derive(mapAction(kindOf[N](), Int, mapp))}
}

// MapToLong implements NumberStream.
func (s *numberPipeline[N]) MapToLong(mapp func(N) int64) NumberStream[int64] {
	return &numberPipeline[int64]{facade: s.derive(mapAction(kindOf[N](), Long, mapp))}
}

// MapToDouble implements NumberStream.
func (s *numberPipeline[N]) MapToDouble(mapp func(N) float64) NumberStream[float64] {
	return &numberPipeline[float64]{facade: s.derive(mapAction(kindOf[N](), Double, mapp))}
}

// FlatMap implements NumberStream.
func (s *numberPipeline[N]) FlatMap(mapp func(N) NumberStream[N]) NumberStream[N] {
	return s.then(flatMapAction(kindOf[N](), kindOf[N](), mapp, func(elem N) (*cursor, error) {
		return subStreamCursor[N](mapp(elem))
	}))
}

// Boxed implements NumberStream.
func (s *numberPipeline[N]) Boxed() Stream[N] {
	return &referencePipeline[N]{facade: s.derive(boxAction[N]())}
}

// AsLongStream implements NumberStream.
func (s *numberPipeline[N]) AsLongStream() NumberStream[int64] {
	return &numberPipeline[int64]{facade: s.derive(mapAction(kindOf[N](), Long, convertNumber[N, int64]))}
}

// AsDoubleStream implements NumberStream.
func (s *numberPipeline[N]) AsDoubleStream() NumberStream[float64] {
	return &numberPipeline[float64]{facade: s.derive(mapAction(kindOf[N](), Double, convertNumber[N, float64]))}
}

// Distinct implements NumberStream.
func (s *numberPipeline[N]) Distinct() NumberStream[N] {
	return s.then(distinctAction(kindOf[N]()))
}

// Sorted implements NumberStream.
func (s *numberPipeline[N]) Sorted() NumberStream[N] {
	return s.then(sortedAction(kindOf[N](), nil, func(a any, b any) (int, error) {
		return compareNumbers(unbox[N](a), unbox[N](b)), nil
	}))
}

// Limit implements NumberStream.
func (s *numberPipeline[N]) Limit(maxSize int64) NumberStream[N] {
	return s.then(limitAction(kindOf[N](), maxSize))
}

// Skip implements NumberStream.
func (s *numberPipeline[N]) Skip(num int64) NumberStream[N] {
	return s.then(skipAction(kindOf[N](), num))
}

// Peek implements NumberStream.
func (s *numberPipeline[N]) Peek(_ func(N)) NumberStream[N] {
	return s
}

// Sequential implements NumberStream.
func (s *numberPipeline[N]) Sequential() NumberStream[N] {
	return &numberPipeline[N]{facade: s.withParallel(false)}
}

// Parallel implements NumberStream.
func (s *numberPipeline[N]) Parallel() NumberStream[N] {
	return &numberPipeline[N]{facade: s.withParallel(true)}
}

// Unordered implements NumberStream.
func (s *numberPipeline[N]) Unordered() NumberStream[N] {
	return s
}

// ForEach implements NumberStream.
func (s *numberPipeline[N]) ForEach(ctx context.Context, action func(N)) error {
	_, err := executeTerminal(ctx, &s.facade, forEachTerminator(s.parallel, action))
	return err
}

// ForEachOrdered implements NumberStream.
func (s *numberPipeline[N]) ForEachOrdered(ctx context.Context, action func(N)) error {
	_, err := executeTerminal(ctx, &s.facade, forEachOrderedTerminator(s.parallel, action))
	return err
}

// ToSlice implements NumberStream.
func (s *numberPipeline[N]) ToSlice(ctx context.Context) ([]N, error) {
	return executeTerminal(ctx, &s.facade, toSliceTerminator[N](s.parallel))
}

// Reduce implements NumberStream.
func (s *numberPipeline[N]) Reduce(ctx context.Context, identity N, op func(a N, b N) N) (N, error) {
	return executeTerminal(ctx, &s.facade, foldTerminator(TerminalReduce, s.parallel, op,
		func() N {
			return identity
		},
		op, op))
}

// ReduceOptional implements NumberStream.
func (s *numberPipeline[N]) ReduceOptional(ctx context.Context, op func(a N, b N) N) (N, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, optionalTerminator(TerminalReduce, s.parallel, op, op))
	return result.value, result.ok, err
}

// Sum implements NumberStream.
func (s *numberPipeline[N]) Sum(ctx context.Context) (N, error) {
	stats, err := executeTerminal(ctx, &s.facade, statisticsTerminator[N](TerminalSum, s.parallel))
	return stats.Sum(), err
}

// Min implements NumberStream.
func (s *numberPipeline[N]) Min(ctx context.Context) (N, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, minTerminator(s.parallel, nil, compareNumbers[N]))
	return result.value, result.ok, err
}

// Max implements NumberStream.
func (s *numberPipeline[N]) Max(ctx context.Context) (N, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, maxTerminator(s.parallel, nil, compareNumbers[N]))
	return result.value, result.ok, err
}

// Count implements NumberStream.
func (s *numberPipeline[N]) Count(ctx context.Context) (int64, error) {
	return executeTerminal(ctx, &s.facade, countTerminator(s.parallel))
}

// Average implements NumberStream.
func (s *numberPipeline[N]) Average(ctx context.Context) (float64, bool, error) {
	stats, err := executeTerminal(ctx, &s.facade, statisticsTerminator[N](TerminalAverage, s.parallel))
	return stats.Average(), stats.Count > 0, err
}

// SummaryStatistics implements NumberStream.
func (s *numberPipeline[N]) SummaryStatistics(ctx context.Context) (SummaryStatistics[N], error) {
	return executeTerminal(ctx, &s.facade, statisticsTerminator[N](TerminalSummaryStatistics, s.parallel))
}

// AnyMatch implements NumberStream.
func (s *numberPipeline[N]) AnyMatch(ctx context.Context, pred func(N) bool) (bool, error) {
	return executeTerminal(ctx, &s.facade, anyMatchTerminator(s.parallel, pred))
}

// AllMatch implements NumberStream.
func (s *numberPipeline[N]) AllMatch(ctx context.Context, pred func(N) bool) (bool, error) {
	return executeTerminal(ctx, &s.facade, allMatchTerminator(s.parallel, pred))
}

// NoneMatch implements NumberStream.
func (s *numberPipeline[N]) NoneMatch(ctx context.Context, pred func(N) bool) (bool, error) {
	return executeTerminal(ctx, &s.facade, noneMatchTerminator(s.parallel, pred))
}

// FindFirst implements NumberStream.
func (s *numberPipeline[N]) FindFirst(ctx context.Context) (N, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, findTerminator[N](TerminalFindFirst, s.parallel))
	return result.value, result.ok, err
}

// FindAny implements NumberStream.
func (s *numberPipeline[N]) FindAny(ctx context.Context) (N, bool, error) {
	result, err := executeTerminal(ctx, &s.facade, findTerminator[N](TerminalFindAny, s.parallel))
	return result.value, result.ok, err
}

// Iterator implements NumberStream.
func (s *numberPipeline[N]) Iterator() (Iterator[N], error) {
	it, err := s.iterate()
	if err != nil {
		return nil, err
	}

	return it, nil
}

// Spliterator implements NumberStream.
func (s *numberPipeline[N]) Spliterator() (Spliterator[N], error) {
	return newSpliterator[N](&s.facade)
}

func (s *numberPipeline[N]) iterate() (*iterator[N], error) {
	return executeTerminal(context.Background(), &s.facade, iteratorTerminator[N](TerminalIterator, s.parallel))
}

// MapToObj returns a stream of the results of applying mapp to each element of s.
func MapToObj[N Number, U any](s NumberStream[N], mapp func(N) U) Stream[U] {
	return deriveBoxed[N, U](s, mapAction(kindOf[N](), Reference, mapp))
}

// CollectNumbers performs a mutable reduction of the elements of s, see Collect.
func CollectNumbers[N Number, R any](ctx context.Context, s NumberStream[N], supplier func() R, acc func(R, N) R, combine func(R, R) R) (R, error) {
	return terminateNumber(ctx, s, func(parallel bool) Terminator[R] {
		return foldTerminator(TerminalCollect, parallel, acc, supplier, acc, combine)
	})
}

func boxAction[N Number]() Action {
	return mapAction(kindOf[N](), Reference, func(elem N) N {
		return elem
	})
}

// deriveBoxed appends action, which must produce reference elements, to the pipeline of s.
func deriveBoxed[N Number, U any](s NumberStream[N], action Action) Stream[U] {
	switch s := s.(type) {
	case *autoClosingNumberStream[N]:
		return wrapReference(s.registry, deriveBoxed[N, U](s.inner, action))

	case *numberPipeline[N]:
		return &referencePipeline[U]{facade: s.derive(action)}

	default:
		panic(fmt.Sprintf("mutablestream: unknown stream implementation %T", s))
	}
}

// terminateNumber executes a terminal operation on s.
// Auto-closing streams release their resources afterwards.
func terminateNumber[N Number, R any](ctx context.Context, s NumberStream[N], terminator func(parallel bool) Terminator[R]) (R, error) {
	switch s := s.(type) {
	case *autoClosingNumberStream[N]:
		return autoTerminal(s.registry, func() (R, error) {
			return terminateNumber(ctx, s.inner, terminator)
		})

	case *numberPipeline[N]:
		return executeTerminal(ctx, &s.facade, terminator(s.parallel))

	default:
		panic(fmt.Sprintf("mutablestream: unknown stream implementation %T", s))
	}
}

// convertNumber converts v to To. float64 values are saturated when converted to an integer type.
func convertNumber[From Number, To Number](v From) To {
	f, ok := any(v).(float64)
	if !ok {
		return To(v)
	}

	var zero To

	switch any(zero).(type) {
	case int32:
		return To(saturate(f, math.MinInt32, math.MaxInt32))
	case int64:
		return To(saturate(f, math.MinInt64, math.MaxInt64))
	default:
		return To(f)
	}
}

// saturate truncates f toward zero, clamping it to [lo, hi]. NaN saturates to 0.
func saturate(f float64, lo int64, hi int64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f <= float64(lo):
		return lo
	case f >= float64(hi):
		return hi
	default:
		return int64(f)
	}
}
