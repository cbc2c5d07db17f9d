package mutablestream

import (
	"context"
)

// Source produces the elements of a stream, one at a time.
// Next returns ok == false once the source is exhausted.
// An error returned by Next is returned unchanged by the terminal operation that is running.
//
// Sources that hold resources should implement io.Closer. They are then closed by auto-closing streams
// (see AutoClose), or by calling Close on the stream.
type Source[T any] interface {
	Next(ctx context.Context) (elem T, ok bool, err error)
}

// Iterator provides pull-based access to the elements of a stream.
// An iterator releases its resources once it is exhausted or has failed. Close releases them early.
// Iterators also satisfy Source.
type Iterator[T any] interface {
	Source[T]

	// Close releases the iterator's resources.
	Close() error
}

// Spliterator is an Iterator that can traverse its elements in bulk and knows their number when possible.
type Spliterator[T any] interface {
	// TryAdvance calls action for the next element, if any, and returns whether there was an element.
	TryAdvance(ctx context.Context, action func(T)) (bool, error)

	// ForEachRemaining calls action for each remaining element.
	ForEachRemaining(ctx context.Context, action func(T)) error

	// TrySplit splits off a Spliterator covering some of the elements. It returns nil if the
	// elements cannot be split.
	TrySplit() Spliterator[T]

	// EstimateSize returns the number of remaining elements, or -1 if it is unknown.
	EstimateSize() int64

	// Close releases the spliterator's resources.
	Close() error
}

// BaseStream contains the operations shared by all streams.
type BaseStream interface {
	// IsParallel returns true if terminal operations may process elements concurrently.
	IsParallel() bool

	// Pipeline returns the recorded pipeline of the stream, for inspection.
	Pipeline() *Pipeline

	// OnClose always returns ErrUnsupportedOperation. Close handlers cannot be honored,
	// since releasing resources is the responsibility of auto-closing streams.
	OnClose(handler func()) error

	// Close closes the stream's source if it implements io.Closer.
	// For auto-closing streams, it releases all resources shared with sibling streams, at most once.
	Close() error
}

// Stream is a lazy, single-use sequence of elements of type T.
//
// Intermediate operations such as Filter and Map record an Action in the stream's Pipeline and return
// a new stream; nothing is executed until a terminal operation such as ToSlice or Count is called.
// A stream may be used as the receiver of several intermediate operations, but only of one terminal
// operation. Calling another terminal operation returns ErrPipelineReuse.
//
// Operations that change the element type are package functions, see MapTo, FlatMapTo, ReduceTo, Collect,
// and CollectWith.
type Stream[T any] interface {
	BaseStream

	// Filter returns a stream of the elements that match pred.
	Filter(pred func(T) bool) Stream[T]

	// Map returns a stream of the results of applying mapp to each element.
	Map(mapp func(T) T) Stream[T]

	// MapToInt returns an IntStream of the results of applying mapp to each element.
	MapToInt(mapp func(T) int32) NumberStream[int32]

	// MapToLong returns a LongStream of the results of applying mapp to each element.
	MapToLong(mapp func(T) int64) NumberStream[int64]

	// MapToDouble returns a DoubleStream of the results of applying mapp to each element.
	MapToDouble(mapp func(T) float64) NumberStream[float64]

	// FlatMap returns a stream of the elements of the streams mapp returns for each element.
	// Each of those streams is closed after its elements have been consumed. A nil stream counts as empty.
	FlatMap(mapp func(T) Stream[T]) Stream[T]

	// FlatMapToInt is the IntStream variant of FlatMap.
	FlatMapToInt(mapp func(T) NumberStream[int32]) NumberStream[int32]

	// FlatMapToLong is the LongStream variant of FlatMap.
	FlatMapToLong(mapp func(T) NumberStream[int64]) NumberStream[int64]

	// FlatMapToDouble is the DoubleStream variant of FlatMap.
	FlatMapToDouble(mapp func(T) NumberStream[float64]) NumberStream[float64]

	// Distinct returns a stream of the elements, skipping elements equal to an earlier element.
	// Terminal operations fail with ErrNotComparable if an element cannot be compared using ==.
	Distinct() Stream[T]

	// Sorted returns a stream of the elements in natural order. Elements with a Compare(T) int method
	// are ordered by that method; integers, floats, and strings by their value.
	// Terminal operations fail with ErrNotComparable if elements have no natural order.
	// Sorting is stable, and always consumes all elements first.
	Sorted() Stream[T]

	// SortedFunc returns a stream of the elements sorted using compare.
	SortedFunc(compare func(a T, b T) int) Stream[T]

	// Limit returns a stream of at most maxSize elements. It panics if maxSize is negative.
	Limit(maxSize int64) Stream[T]

	// Skip returns a stream of the elements after the first num. It panics if num is negative.
	Skip(num int64) Stream[T]

	// Peek returns the stream itself. action is never called: a recorded pipeline may be rewritten
	// into an access strategy that never pulls the elements through this stream.
	Peek(action func(T)) Stream[T]

	// Sequential returns a stream over the same pipeline whose terminal operations run sequentially.
	Sequential() Stream[T]

	// Parallel returns a stream over the same pipeline whose terminal operations may run concurrently.
	Parallel() Stream[T]

	// Unordered returns the stream itself.
	Unordered() Stream[T]

	// ForEach calls action for each element. Parallel streams call action concurrently, in undefined order.
	ForEach(ctx context.Context, action func(T)) error

	// ForEachOrdered calls action for each element, in encounter order.
	ForEachOrdered(ctx context.Context, action func(T)) error

	// ToSlice returns all elements.
	ToSlice(ctx context.Context) ([]T, error)

	// Reduce folds all elements into identity using op.
	Reduce(ctx context.Context, identity T, op func(a T, b T) T) (T, error)

	// ReduceOptional folds all elements using op. It returns false if there are no elements.
	ReduceOptional(ctx context.Context, op func(a T, b T) T) (T, bool, error)

	// Min returns the minimum element according to compare. It returns false if there are no elements.
	Min(ctx context.Context, compare func(a T, b T) int) (T, bool, error)

	// Max returns the maximum element according to compare. It returns false if there are no elements.
	Max(ctx context.Context, compare func(a T, b T) int) (T, bool, error)

	// Count returns the number of elements.
	Count(ctx context.Context) (int64, error)

	// AnyMatch returns true as soon as an element matches pred.
	AnyMatch(ctx context.Context, pred func(T) bool) (bool, error)

	// AllMatch returns false as soon as an element does not match pred.
	AllMatch(ctx context.Context, pred func(T) bool) (bool, error)

	// NoneMatch returns false as soon as an element matches pred.
	NoneMatch(ctx context.Context, pred func(T) bool) (bool, error)

	// FindFirst returns the first element. It returns false if there are no elements.
	FindFirst(ctx context.Context) (T, bool, error)

	// FindAny returns any element. It returns false if there are no elements.
	FindAny(ctx context.Context) (T, bool, error)

	// Iterator returns an iterator over the elements.
	Iterator() (Iterator[T], error)

	// Spliterator returns a spliterator over the elements.
	Spliterator() (Spliterator[T], error)

	// iterate is Iterator without the auto-close restriction.
	iterate() (*iterator[T], error)
}

// iterator is the Iterator returned by streams. It owns the cursor of an executed pipeline.
type iterator[T any] struct {
	cur  *cursor
	done bool
}

// Next implements Source.
func (it *iterator[T]) Next(ctx context.Context) (T, bool, error) {
	elem, ok, err := it.next(ctx)
	return unbox[T](elem), ok, err
}

func (it *iterator[T]) next(ctx context.Context) (any, bool, error) {
	if it.done {
		return nil, false, nil
	}

	if err := contextErr(ctx); err != nil {
		return nil, false, err
	}

	elem, ok, err := it.cur.next(ctx)
	if err != nil || !ok {
		return nil, false, aggregate(err, it.Close())
	}

	return elem, true, nil
}

// Close implements Iterator.
func (it *iterator[T]) Close() error {
	it.done = true
	return it.cur.close()
}

// spliterator is the Spliterator returned by streams.
type spliterator[T any] struct {
	it   *iterator[T]
	size int64
}

// TryAdvance implements Spliterator.
func (s *spliterator[T]) TryAdvance(ctx context.Context, action func(T)) (bool, error) {
	elem, ok, err := s.it.Next(ctx)
	if err != nil || !ok {
		s.size = 0
		return false, err
	}

	if s.size > 0 {
		s.size--
	}

	action(elem)

	return true, nil
}

// ForEachRemaining implements Spliterator.
func (s *spliterator[T]) ForEachRemaining(ctx context.Context, action func(T)) error {
	for {
		ok, err := s.TryAdvance(ctx, action)
		if err != nil || !ok {
			return err
		}
	}
}

// TrySplit implements Spliterator. Pipelines are pulled through a single cursor, so it always returns nil.
func (s *spliterator[T]) TrySplit() Spliterator[T] {
	return nil
}

// EstimateSize implements Spliterator.
func (s *spliterator[T]) EstimateSize() int64 {
	return s.size
}

// Close implements Spliterator.
func (s *spliterator[T]) Close() error {
	return s.it.Close()
}

// iterable is implemented by all streams producing elements of type T.
type iterable[T any] interface {
	iterate() (*iterator[T], error)
	IsParallel() bool
	Close() error
}

// subStreamCursor opens a cursor over the elements of sub, closing sub once the cursor is released.
// It returns a nil cursor if sub is nil.
func subStreamCursor[T any](sub iterable[T]) (*cursor, error) {
	if sub == nil {
		return nil, nil
	}

	it, err := sub.iterate()
	if err != nil {
		return nil, err
	}

	return subCursor(it, sub), nil
}
