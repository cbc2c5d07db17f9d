package mutablestream

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matryer/is"
	"golang.org/x/exp/slices"
)

type version struct {
	major int
	minor int
}

func (v version) Compare(other version) int {
	if v.major != other.major {
		return compareOrdered(v.major, other.major)
	}

	return compareOrdered(v.minor, other.minor)
}

func TestStream_FilterMap(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := Of(1, 2, 3, 4, 5).
		Filter(func(elem int) bool {
			return elem > 2
		}).
		Map(func(elem int) int {
			return elem * 10
		}).
		ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{30, 40, 50})
}

func TestStream_Sorted(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints, err := Of(3, 1, 2).Sorted().ToSlice(ctx)

	is.NoErr(err)
	is.Equal(ints, []int{1, 2, 3})

	strs, err := Of("b", "c", "a").Sorted().ToSlice(ctx)

	is.NoErr(err)
	is.Equal(strs, []string{"a", "b", "c"})

	versions, err := Of(version{2, 0}, version{1, 10}, version{1, 2}).Sorted().ToSlice(ctx)

	is.NoErr(err)
	is.Equal(versions, []version{{1, 2}, {1, 10}, {2, 0}})
}

func TestStream_Sorted_NotComparable(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	type point struct {
		x int
		y int
	}

	result, err := Of(point{2, 1}, point{1, 2}).Sorted().ToSlice(ctx)

	is.True(errors.Is(err, ErrNotComparable))
	is.Equal(result, nil)
}

func TestStream_SortedFunc(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := Of("bb", "a", "cc", "d").SortedFunc(func(a string, b string) int {
		return len(a) - len(b)
	}).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []string{"a", "d", "bb", "cc"})
}

func TestStream_FindFirst_StopsPulling(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	src := newFakeSource(1, 2, 3, 4, 5)

	first, ok, err := FromSource[int](src).Filter(func(elem int) bool {
		return elem > 2
	}).FindFirst(ctx)

	is.NoErr(err)
	is.True(ok)
	is.Equal(first, 3)
	is.Equal(src.pulls, 3)
}

func TestStream_Limit_StopsPulling(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	src := newFakeSource(1, 2, 3, 4, 5)

	result, err := FromSource[int](src).Limit(2).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{1, 2})
	is.Equal(src.pulls, 2)
}

func TestStream_Limit_Negative(t *testing.T) {
	is := is.New(t)

	defer func() {
		is.True(recover() != nil)
	}()

	Of(1).Limit(-1)
}

func TestStream_Skip(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := Of(1, 2, 3, 4, 5).Skip(2).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{3, 4, 5})

	result, err = Of(1, 2).Skip(5).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{})
}

func TestStream_Reuse(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Of(1, 2, 3)

	_, err := ints.Count(ctx)
	is.NoErr(err)

	_, err = ints.ToSlice(ctx)
	is.True(errors.Is(err, ErrPipelineReuse))

	_, err = ints.Iterator()
	is.True(errors.Is(err, ErrPipelineReuse))
}

func TestStream_Reuse_Parallel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	src := newFakeSource(1, 2, 3)
	ints := FromSource[int](src)

	count, err := ints.Count(ctx)
	is.NoErr(err)
	is.Equal(count, int64(3))

	_, err = ints.Parallel().Count(ctx)
	is.True(errors.Is(err, ErrPipelineReuse))

	_, err = ints.Sequential().ToSlice(ctx)
	is.True(errors.Is(err, ErrPipelineReuse))
}

func TestStream_Reuse_Parallel_Shared(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Of(1, 2, 3)

	_, err := ints.Parallel().Count(ctx)
	is.NoErr(err)

	_, err = ints.Count(ctx)
	is.True(errors.Is(err, ErrPipelineReuse))
}

func TestStream_Reuse_Derived(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := FromSource[int](newFakeSource(1, 2, 3))

	_, err := ints.Count(ctx)
	is.NoErr(err)

	_, err = ints.Filter(func(int) bool { return true }).ToSlice(ctx)
	is.True(errors.Is(err, ErrPipelineReuse))

	_, err = MapTo(ints, strconv.Itoa).ToSlice(ctx)
	is.True(errors.Is(err, ErrPipelineReuse))

	_, err = ints.MapToLong(func(elem int) int64 { return int64(elem) }).Sum(ctx)
	is.True(errors.Is(err, ErrPipelineReuse))
}

func TestStream_Branch(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	base := Of(1, 2, 3, 4)

	evens := base.Filter(func(elem int) bool {
		return elem%2 == 0
	})

	odds := base.Filter(func(elem int) bool {
		return elem%2 != 0
	})

	evenInts, err := evens.ToSlice(ctx)
	is.NoErr(err)

	oddInts, err := odds.ToSlice(ctx)
	is.NoErr(err)

	all, err := base.ToSlice(ctx)
	is.NoErr(err)

	is.Equal(evenInts, []int{2, 4})
	is.Equal(oddInts, []int{1, 3})
	is.Equal(all, []int{1, 2, 3, 4})
}

func TestStream_Peek(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Of(1, 2, 3)

	peeked := ints.Peek(func(int) {
		is.Fail() // peek action must not be called
	})

	is.True(peeked == ints)
	is.True(ints.Unordered() == ints)

	count, err := peeked.Count(ctx)

	is.NoErr(err)
	is.Equal(count, int64(3))
}

func TestStream_OnClose(t *testing.T) {
	is := is.New(t)

	err := Of(1).OnClose(func() {})

	is.True(errors.Is(err, ErrUnsupportedOperation))
}

func TestStream_Close(t *testing.T) {
	is := is.New(t)

	src := newFakeSource(1, 2, 3)

	ints := FromSource[int](src).Filter(func(int) bool {
		return true
	})

	is.NoErr(ints.Close())
	is.Equal(src.closed.Load(), int32(1))
}

func TestStream_Distinct(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := Of(1, 2, 1, 3, 2).Distinct().ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{1, 2, 3})

	_, err = Of([]int{1}, []int{1}).Distinct().ToSlice(ctx)

	is.True(errors.Is(err, ErrNotComparable))
}

func TestStream_FlatMap(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := Of(1, 2, 3).FlatMap(func(elem int) Stream[int] {
		if elem == 2 {
			return nil
		}

		return Of(elem, elem*10)
	}).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []int{1, 10, 3, 30})
}

func TestFlatMapTo_ClosesSubStreams(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	srcs := []*fakeSource[string]{}

	strs := FlatMapTo(Of(1, 2, 3), func(elem int) Stream[string] {
		src := newFakeSource(strconv.Itoa(elem), strings.Repeat("x", elem))
		srcs = append(srcs, src)

		return FromSource[string](src)
	})

	first, ok, err := strs.Filter(func(s string) bool {
		return s == "xx"
	}).FindFirst(ctx)

	is.NoErr(err)
	is.True(ok)
	is.Equal(first, "xx")

	is.Equal(len(srcs), 2)
	is.Equal(srcs[0].closed.Load(), int32(1)) // exhausted
	is.Equal(srcs[1].closed.Load(), int32(1)) // released
}

func TestStream_FlatMapToInt(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	sum, err := Of("a", "bb", "ccc").FlatMapToInt(func(s string) NumberStream[int32] {
		return RangeClosed[int32](1, int32(len(s)))
	}).Sum(ctx)

	is.NoErr(err)
	is.Equal(sum, int32(1+1+2+1+2+3))
}

func TestStream_Reduce(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	sum, err := Of(1, 2, 3, 4, 5).Reduce(ctx, 0, func(a int, b int) int {
		return a + b
	})

	is.NoErr(err)
	is.Equal(sum, 15)

	_, ok, err := Empty[int]().ReduceOptional(ctx, func(a int, b int) int {
		return a + b
	})

	is.NoErr(err)
	is.True(!ok)
}

func TestStream_MinMax(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	byLen := func(a string, b string) int {
		return len(a) - len(b)
	}

	shortest, ok, err := Of("ccc", "a", "bb", "d").Min(ctx, byLen)

	is.NoErr(err)
	is.True(ok)
	is.Equal(shortest, "a")

	longest, ok, err := Of("ccc", "a", "bb", "eee").Max(ctx, byLen)

	is.NoErr(err)
	is.True(ok)
	is.Equal(longest, "ccc")

	_, ok, err = Empty[string]().Min(ctx, byLen)

	is.NoErr(err)
	is.True(!ok)
}

func TestStream_Match(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	even := func(elem int) bool {
		return elem%2 == 0
	}

	src := newFakeSource(1, 2, 3, 4)

	anyEven, err := FromSource[int](src).AnyMatch(ctx, even)

	is.NoErr(err)
	is.True(anyEven)
	is.Equal(src.pulls, 2)

	allEven, err := Of(2, 4, 5).AllMatch(ctx, even)

	is.NoErr(err)
	is.True(!allEven)

	noneEven, err := Of(1, 3, 5).NoneMatch(ctx, even)

	is.NoErr(err)
	is.True(noneEven)

	allEmpty, err := Empty[int]().AllMatch(ctx, even)

	is.NoErr(err)
	is.True(allEmpty)
}

func TestStream_FindAny(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	elem, ok, err := Of(7, 8).Parallel().FindAny(ctx)

	is.NoErr(err)
	is.True(ok)
	is.True(elem == 7 || elem == 8)
}

func TestStream_Parallel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Iterate(1, func(elem int) int {
		return elem + 1
	}).Limit(1000)

	is.True(!ints.IsParallel())
	is.True(ints.Parallel().IsParallel())
	is.True(!ints.Parallel().Sequential().IsParallel())

	sum := atomic.Int64{}

	err := ints.Parallel().ForEach(ctx, func(elem int) {
		sum.Add(int64(elem))
	})

	is.NoErr(err)
	is.Equal(sum.Load(), int64(500500))
}

func TestStream_Parallel_ForEachOrdered(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result := []int{}

	err := Of(5, 4, 3, 2, 1).Parallel().ForEachOrdered(ctx, func(elem int) {
		result = append(result, elem)
	})

	is.NoErr(err)
	is.Equal(result, []int{5, 4, 3, 2, 1})
}

func TestStream_Parallel_Collect(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	Configure(WithParallelism(4))
	t.Cleanup(ResetConfiguration)

	ints := make([]int, 103)
	for i := range ints {
		ints[i] = i
	}

	strs := func(parallel bool) []string {
		s := MapTo(FromSlice(ints), strconv.Itoa)
		if parallel {
			s = s.Parallel()
		}

		result, err := Collect(ctx, s,
			func() []string {
				return []string{}
			},
			func(acc []string, elem string) []string {
				return append(acc, elem)
			},
			func(a []string, b []string) []string {
				return append(a, b...)
			})

		is.NoErr(err)

		return result
	}

	is.Equal(strs(true), strs(false))

	sum, err := FromSlice(ints).Parallel().Reduce(ctx, 0, func(a int, b int) int {
		return a + b
	})

	is.NoErr(err)
	is.Equal(sum, 103*102/2)

	sorted, err := FromSlice(ints).Parallel().ToSlice(ctx)

	is.NoErr(err)
	is.Equal(sorted, ints)
}

func TestStream_Parallel_ForEach_Concurrent(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	Configure(WithParallelism(3))
	t.Cleanup(ResetConfiguration)

	mu := sync.Mutex{}
	seen := []int{}

	err := Of(1, 2, 3, 4, 5, 6).Parallel().ForEach(ctx, func(elem int) {
		mu.Lock()
		defer mu.Unlock()

		seen = append(seen, elem)
	})

	is.NoErr(err)

	slices.Sort(seen)

	is.Equal(seen, []int{1, 2, 3, 4, 5, 6})
}

func TestStream_Cancel(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Of(1, 2, 3).ToSlice(ctx)

	is.True(errors.Is(err, context.Canceled))
	is.Equal(result, nil)
}

func TestStream_Iterator(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	src := newFakeSource(1, 2, 3)

	it, err := FromSource[int](src).Map(func(elem int) int {
		return elem * 2
	}).Iterator()

	is.NoErr(err)
	is.Equal(src.pulls, 0)

	result := []int{}

	for {
		elem, ok, err := it.Next(ctx)
		is.NoErr(err)

		if !ok {
			break
		}

		result = append(result, elem)
	}

	is.Equal(result, []int{2, 4, 6})
	is.NoErr(it.Close())
}

func TestStream_Spliterator(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	split, err := Of(1, 2, 3, 4, 5).Map(func(elem int) int {
		return elem * 10
	}).Skip(1).Spliterator()

	is.NoErr(err)
	is.Equal(split.EstimateSize(), int64(4))
	is.Equal(split.TrySplit(), nil)

	var first int

	ok, err := split.TryAdvance(ctx, func(elem int) {
		first = elem
	})

	is.NoErr(err)
	is.True(ok)
	is.Equal(first, 20)
	is.Equal(split.EstimateSize(), int64(3))

	rest := []int{}

	err = split.ForEachRemaining(ctx, func(elem int) {
		rest = append(rest, elem)
	})

	is.NoErr(err)
	is.Equal(rest, []int{30, 40, 50})
	is.Equal(split.EstimateSize(), int64(0))

	unknown, err := Of(1, 2).Filter(func(int) bool {
		return true
	}).Spliterator()

	is.NoErr(err)
	is.Equal(unknown.EstimateSize(), int64(-1))
}

func TestMapTo(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	result, err := MapTo(Of(1, 2, 3), strconv.Itoa).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(result, []string{"1", "2", "3"})
}

func TestReduceTo(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	length, err := ReduceTo(ctx, Of("a", "bb", "ccc"), 0, func(acc int, elem string) int {
		return acc + len(elem)
	}, nil)

	is.NoErr(err)
	is.Equal(length, 6)
}

func TestStream_MapToNumbers(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	words := []string{"a", "bb", "ccc"}

	ints, err := FromSlice(words).MapToInt(func(s string) int32 {
		return int32(len(s))
	}).ToSlice(ctx)

	is.NoErr(err)
	is.Equal(ints, []int32{1, 2, 3})

	longs, err := FromSlice(words).MapToLong(func(s string) int64 {
		return int64(len(s)) * 10
	}).Sum(ctx)

	is.NoErr(err)
	is.Equal(longs, int64(60))

	avg, ok, err := FromSlice(words).MapToDouble(func(s string) float64 {
		return float64(len(s))
	}).Average(ctx)

	is.NoErr(err)
	is.True(ok)
	is.Equal(avg, 2.0)
}
