package mutablestream

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
	xslices "golang.org/x/exp/slices"
)

var errBoom = errors.New("boom")

// fakeSource is a Source that counts pulls and closes.
type fakeSource[T any] struct {
	elems    []T
	pulls    int
	err      error
	closed   atomic.Int32
	closeErr error
	onClose  func()
}

func newFakeSource[T any](elems ...T) *fakeSource[T] {
	return &fakeSource[T]{
		elems: elems,
	}
}

func (s *fakeSource[T]) Next(_ context.Context) (T, bool, error) {
	if s.pulls < len(s.elems) {
		elem := s.elems[s.pulls]
		s.pulls++

		return elem, true, nil
	}

	var zero T

	return zero, false, s.err
}

func (s *fakeSource[T]) Close() error {
	s.closed.Add(1)

	if s.onClose != nil {
		s.onClose()
	}

	return s.closeErr
}

func TestFromSlice(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := FromSlice([]int{1, 2}, []int{}, []int{3, 4, 5})

	result, err := ints.ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{1, 2, 3, 4, 5})
}

func TestFromSlice_Rewind(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := FromSlice([]int{1, 2, 3})

	doubled, err := ints.Map(func(elem int) int {
		return elem * 2
	}).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(doubled, []int{2, 4, 6})

	count, err := ints.Filter(func(elem int) bool {
		return elem > 1
	}).Count(ctx)

	is.NoErr(err)
	is.Equal(count, int64(2))
}

func TestFromSource_Shared(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	src := newFakeSource(1, 2, 3, 4)

	ints := FromSource[int](src)

	first, ok, err := ints.Limit(1).FindFirst(ctx)

	is.NoErr(err)
	is.True(ok)
	is.Equal(first, 1)

	rest, err := ints.Skip(0).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(rest, []int{2, 3, 4})
	is.Equal(src.closed.Load(), int32(0))
}

func TestFromSource_Error(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	src := newFakeSource(1, 2)
	src.err = errBoom

	result, err := FromSource[int](src).ToSlice(ctx)

	is.True(errors.Is(err, errBoom))
	is.Equal(result, nil)
}

func TestFromIterator(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	it, err := Of(1, 2, 3).Iterator()
	is.NoErr(err)

	result, err := FromIterator(it).Map(func(elem int) int {
		return elem + 1
	}).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{2, 3, 4})
}

func TestFromSeq(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := FromSeq(slices.Values([]int{1, 2, 3, 4, 5}))

	first, ok, err := ints.Filter(func(elem int) bool {
		return elem > 3
	}).FindFirst(ctx)

	is.NoErr(err)
	is.True(ok)
	is.Equal(first, 4)

	count, err := ints.Count(ctx)

	is.NoErr(err)
	is.Equal(count, int64(5))
}

func TestFromChannel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ch1 := make(chan int, 3)
	ch2 := make(chan int, 2)

	ch1 <- 1
	ch1 <- 2
	ch1 <- 3
	ch2 <- 4
	ch2 <- 5

	close(ch1)
	close(ch2)

	result, err := FromChannel(ch1, ch2).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{1, 2, 3, 4, 5})
}

func TestFromChannel_Cancel(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	ch := make(chan int)

	go func() {
		ch <- 1
		cancel(errBoom)
	}()

	result, err := FromChannel(ch).ToSlice(ctx)

	is.True(errors.Is(err, errBoom))
	is.Equal(result, nil)
}

func TestMergeChannels(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ch1 := make(chan int)
	ch2 := make(chan int)

	go func() {
		defer close(ch1)

		for i := 1; i <= 3; i++ {
			ch1 <- i
		}
	}()

	go func() {
		defer close(ch2)

		for i := 4; i <= 6; i++ {
			ch2 <- i
		}
	}()

	result, err := MergeChannels(ch1, ch2).ToSlice(ctx)

	is.NoErr(err)

	xslices.Sort(result)

	is.Equal(result, []int{1, 2, 3, 4, 5, 6})
}

func TestMergeChannels_Release(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ch := make(chan int)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := 0; ; i++ {
			select {
			case ch <- i:
			case <-time.After(50 * time.Millisecond):
				return
			}
		}
	}()

	result, err := MergeChannels(ch).Limit(3).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(len(result), 3)

	<-done
}

func TestGenerate(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	calls := 0

	result, err := Generate(func() int {
		calls++
		return calls
	}).Limit(3).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{1, 2, 3})
	is.Equal(calls, 3)
}

func TestIterate(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := Iterate(1, func(elem int) int {
		return elem * 2
	}).Skip(1).Limit(4).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{2, 4, 8, 16})
}

func TestEmpty(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := Empty[string]().ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []string{})
}

func TestRange(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := Range[int32](1, 5).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int32{1, 2, 3, 4})

	result, err = Range[int32](5, 1).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int32{})
}

func TestRangeClosed(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	sum, err := RangeClosed[int64](1, 100).Sum(ctx)

	is.NoErr(err)
	is.Equal(sum, int64(5050))

	result, err := RangeClosed[int32](math.MaxInt32-1, math.MaxInt32).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int32{math.MaxInt32 - 1, math.MaxInt32})
}

func TestRangeClosed_Size(t *testing.T) {
	is := is.New(t)

	split, err := RangeClosed[int64](-5, 5).Spliterator()

	is.NoErr(err)
	is.Equal(split.EstimateSize(), int64(11))
	is.NoErr(split.Close())

	split, err = RangeClosed[int64](math.MinInt64, math.MaxInt64).Spliterator()

	is.NoErr(err)
	is.Equal(split.EstimateSize(), int64(-1))

	var first int64

	ok, err := split.TryAdvance(context.Background(), func(elem int64) {
		first = elem
	})

	is.NoErr(err)
	is.True(ok)
	is.Equal(first, int64(math.MinInt64))
	is.NoErr(split.Close())

	split, err = RangeClosed[int64](-1, math.MaxInt64-1).Spliterator()

	is.NoErr(err)
	is.Equal(split.EstimateSize(), int64(-1))
	is.NoErr(split.Close())
}

func TestGenerateNumbers(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := IterateNumbers(1.0, func(elem float64) float64 {
		return elem / 2
	}).Limit(3).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []float64{1, 0.5, 0.25})

	count, err := GenerateNumbers(func() int64 {
		return 7
	}).Limit(5).Count(ctx)

	is.NoErr(err)
	is.Equal(count, int64(5))
}
