package mutablestream

import (
	"context"
	"fmt"
	"sync"
)

// TerminalKind identifies the terminal operation a Terminator performs.
type TerminalKind uint8

const (
	TerminalForEach TerminalKind = iota + 1
	TerminalForEachOrdered
	TerminalToSlice
	TerminalReduce
	TerminalCollect
	TerminalMin
	TerminalMax
	TerminalCount
	TerminalAnyMatch
	TerminalAllMatch
	TerminalNoneMatch
	TerminalFindFirst
	TerminalFindAny
	TerminalIterator
	TerminalSpliterator
	TerminalSum
	TerminalAverage
	TerminalSummaryStatistics
)

var terminalKindNames = [...]string{
	TerminalForEach:           "forEach",
	TerminalForEachOrdered:    "forEachOrdered",
	TerminalToSlice:           "toSlice",
	TerminalReduce:            "reduce",
	TerminalCollect:           "collect",
	TerminalMin:               "min",
	TerminalMax:               "max",
	TerminalCount:             "count",
	TerminalAnyMatch:          "anyMatch",
	TerminalAllMatch:          "allMatch",
	TerminalNoneMatch:         "noneMatch",
	TerminalFindFirst:         "findFirst",
	TerminalFindAny:           "findAny",
	TerminalIterator:          "iterator",
	TerminalSpliterator:       "spliterator",
	TerminalSum:               "sum",
	TerminalAverage:           "average",
	TerminalSummaryStatistics: "summaryStatistics",
}

// String implements fmt.Stringer.
func (k TerminalKind) String() string {
	if int(k) < len(terminalKindNames) && terminalKindNames[k] != "" {
		return terminalKindNames[k]
	}

	return fmt.Sprintf("TerminalKind(%d)", k)
}

// Terminator describes a terminal operation that consumes a Pipeline and produces a result of type R.
// Terminators are created by the terminal operations of streams, and executed using Execute.
type Terminator[R any] struct {
	// Kind is the kind of terminal operation.
	Kind TerminalKind

	// Parallel is true if the stream the terminator was created for is parallel.
	// Terminal operations may then process elements concurrently.
	Parallel bool

	// Func is the function captured by the terminal operation, exactly as passed by the caller.
	Func any

	run func(ctx context.Context, cur *cursor, workers int) (R, error)

	// keepOpen is true if the result owns the cursor, as it is the case for iterators.
	keepOpen bool
}

// optional holds a value that may not be present.
type optional[T any] struct {
	value T
	ok    bool
}

// each calls each for every element pulled from cur, until each returns false or cur is exhausted.
func each(ctx context.Context, cur *cursor, each func(elem any) bool) error {
	for {
		if err := contextErr(ctx); err != nil {
			return err
		}

		elem, ok, err := cur.next(ctx)
		if err != nil || !ok {
			return err
		}

		if !each(elem) {
			return nil
		}
	}
}

// eachConcurrent concurrently calls each for every element pulled from cur, using workers goroutines.
// Elements are pulled on the calling goroutine.
func eachConcurrent(ctx context.Context, cur *cursor, workers int, each func(elem any)) error {
	ch := make(chan any)

	grp := sync.WaitGroup{}
	grp.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer grp.Done()

			for elem := range ch {
				each(elem)
			}
		}()
	}

	err := eachSequential(ctx, cur, ch)

	close(ch)
	grp.Wait()

	return err
}

func eachSequential(ctx context.Context, cur *cursor, ch chan<- any) error {
	return each(ctx, cur, func(elem any) bool {
		ch <- elem
		return true
	})
}

// fold folds all elements pulled from cur into an accumulator.
//
// With more than one worker, fold pulls all elements first, splits them into contiguous chunks,
// folds each chunk into its own accumulator concurrently, and finally combines the accumulators in
// encounter order. identity must then return a new accumulator every time it is called.
func fold[A any](ctx context.Context, cur *cursor, workers int,
	identity func() A, acc func(acc A, elem any) A, combine func(a A, b A) A,
) (A, error) {
	if workers <= 1 || combine == nil {
		result := identity()

		err := each(ctx, cur, func(elem any) bool {
			result = acc(result, elem)
			return true
		})

		return result, err
	}

	elems := []any{}

	err := each(ctx, cur, func(elem any) bool {
		elems = append(elems, elem)
		return true
	})
	if err != nil {
		var zero A
		return zero, err
	}

	chunks := chunkBounds(len(elems), workers)
	if len(chunks) == 0 {
		return identity(), nil
	}

	partials := make([]A, len(chunks))

	grp := sync.WaitGroup{}
	grp.Add(len(chunks))

	for idx, bounds := range chunks {
		go func() {
			defer grp.Done()

			partial := identity()
			for _, elem := range elems[bounds[0]:bounds[1]] {
				partial = acc(partial, elem)
			}

			partials[idx] = partial
		}()
	}

	grp.Wait()

	if err := contextErr(ctx); err != nil {
		var zero A
		return zero, err
	}

	result := partials[0]
	for _, partial := range partials[1:] {
		result = combine(result, partial)
	}

	return result, nil
}

// chunkBounds splits n elements into at most parts contiguous, non-empty [lo, hi) ranges.
func chunkBounds(n int, parts int) [][2]int {
	if n == 0 {
		return nil
	}

	parts = min(parts, n)

	size := n / parts
	rest := n % parts

	bounds := make([][2]int, parts)

	lo := 0

	for i := range bounds {
		hi := lo + size
		if i < rest {
			hi++
		}

		bounds[i] = [2]int{lo, hi}
		lo = hi
	}

	return bounds
}

func forEachTerminator[T any](parallel bool, action func(T)) Terminator[struct{}] {
	return Terminator[struct{}]{
		Kind:     TerminalForEach,
		Parallel: parallel,
		Func:     action,
		run: func(ctx context.Context, cur *cursor, workers int) (struct{}, error) {
			if workers <= 1 {
				return struct{}{}, each(ctx, cur, func(elem any) bool {
					action(unbox[T](elem))
					return true
				})
			}

			return struct{}{}, eachConcurrent(ctx, cur, workers, func(elem any) {
				action(unbox[T](elem))
			})
		},
	}
}

func forEachOrderedTerminator[T any](parallel bool, action func(T)) Terminator[struct{}] {
	return Terminator[struct{}]{
		Kind:     TerminalForEachOrdered,
		Parallel: parallel,
		Func:     action,
		run: func(ctx context.Context, cur *cursor, _ int) (struct{}, error) {
			return struct{}{}, each(ctx, cur, func(elem any) bool {
				action(unbox[T](elem))
				return true
			})
		},
	}
}

// foldTerminator folds elements of type T into an accumulator of type A.
func foldTerminator[T any, A any](kind TerminalKind, parallel bool, fn any,
	identity func() A, acc func(acc A, elem T) A, combine func(a A, b A) A,
) Terminator[A] {
	return Terminator[A]{
		Kind:     kind,
		Parallel: parallel,
		Func:     fn,
		run: func(ctx context.Context, cur *cursor, workers int) (A, error) {
			return fold(ctx, cur, workers, identity, func(a A, elem any) A {
				return acc(a, unbox[T](elem))
			}, combine)
		},
	}
}

func toSliceTerminator[T any](parallel bool) Terminator[[]T] {
	return foldTerminator(TerminalToSlice, parallel, nil,
		func() []T {
			return []T{}
		},
		func(acc []T, elem T) []T {
			return append(acc, elem)
		},
		func(a []T, b []T) []T {
			return append(a, b...)
		})
}

// optionalTerminator reduces elements using op, without an identity.
func optionalTerminator[T any](kind TerminalKind, parallel bool, fn any, op func(a T, b T) T) Terminator[optional[T]] {
	return foldTerminator(kind, parallel, fn,
		func() optional[T] {
			return optional[T]{}
		},
		func(acc optional[T], elem T) optional[T] {
			if !acc.ok {
				return optional[T]{value: elem, ok: true}
			}

			return optional[T]{value: op(acc.value, elem), ok: true}
		},
		func(a optional[T], b optional[T]) optional[T] {
			switch {
			case !a.ok:
				return b
			case !b.ok:
				return a
			default:
				return optional[T]{value: op(a.value, b.value), ok: true}
			}
		})
}

func minTerminator[T any](parallel bool, fn any, compare func(a T, b T) int) Terminator[optional[T]] {
	return optionalTerminator(TerminalMin, parallel, fn, func(a T, b T) T {
		if compare(b, a) < 0 {
			return b
		}

		return a
	})
}

func maxTerminator[T any](parallel bool, fn any, compare func(a T, b T) int) Terminator[optional[T]] {
	return optionalTerminator(TerminalMax, parallel, fn, func(a T, b T) T {
		if compare(b, a) > 0 {
			return b
		}

		return a
	})
}

func countTerminator(parallel bool) Terminator[int64] {
	return Terminator[int64]{
		Kind:     TerminalCount,
		Parallel: parallel,
		run: func(ctx context.Context, cur *cursor, _ int) (int64, error) {
			count := int64(0)

			err := each(ctx, cur, func(_ any) bool {
				count++
				return true
			})

			return count, err
		},
	}
}

// matchTerminator stops pulling elements as soon as pred returns stopOn for an element,
// returning stopOn != want.
func matchTerminator[T any](kind TerminalKind, parallel bool, pred func(T) bool, stopOn bool, want bool) Terminator[bool] {
	return Terminator[bool]{
		Kind:     kind,
		Parallel: parallel,
		Func:     pred,
		run: func(ctx context.Context, cur *cursor, _ int) (bool, error) {
			stopped := false

			err := each(ctx, cur, func(elem any) bool {
				if pred(unbox[T](elem)) != stopOn {
					return true
				}

				stopped = true

				return false
			})

			return stopped == want, err
		},
	}
}

func anyMatchTerminator[T any](parallel bool, pred func(T) bool) Terminator[bool] {
	return matchTerminator(TerminalAnyMatch, parallel, pred, true, true)
}

func allMatchTerminator[T any](parallel bool, pred func(T) bool) Terminator[bool] {
	return matchTerminator(TerminalAllMatch, parallel, pred, false, false)
}

func noneMatchTerminator[T any](parallel bool, pred func(T) bool) Terminator[bool] {
	return matchTerminator(TerminalNoneMatch, parallel, pred, true, false)
}

func findTerminator[T any](kind TerminalKind, parallel bool) Terminator[optional[T]] {
	return Terminator[optional[T]]{
		Kind:     kind,
		Parallel: parallel,
		run: func(ctx context.Context, cur *cursor, _ int) (optional[T], error) {
			found := optional[T]{}

			err := each(ctx, cur, func(elem any) bool {
				found = optional[T]{value: unbox[T](elem), ok: true}
				return false
			})

			return found, err
		},
	}
}

func iteratorTerminator[T any](kind TerminalKind, parallel bool) Terminator[*iterator[T]] {
	return Terminator[*iterator[T]]{
		Kind:     kind,
		Parallel: parallel,
		run: func(_ context.Context, cur *cursor, _ int) (*iterator[T], error) {
			return &iterator[T]{cur: cur}, nil
		},
		keepOpen: true,
	}
}
