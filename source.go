package mutablestream

import (
	"context"
	"iter"
	"math"
	"sync"
)

// Of returns a sequential stream of elems.
func Of[T any](elems ...T) Stream[T] {
	return FromSlice(elems)
}

// FromSlice returns a sequential stream of the elements of the given slices, in order.
// Each execution of the stream starts over at the first element.
func FromSlice[T any](slices ...[]T) Stream[T] {
	return newReference[T](newPipeline(sliceOrigin(Reference, slices)), false)
}

// FromSource returns a sequential stream of the elements produced by src.
// src is not rewound, and it is closed by Close if it implements io.Closer.
func FromSource[T any](src Source[T]) Stream[T] {
	return newReference[T](newPipeline(sourceOrigin(Reference, src)), false)
}

// FromIterator returns a sequential stream of the remaining elements of it.
// Closing the stream closes it.
func FromIterator[T any](it Iterator[T]) Stream[T] {
	return FromSource[T](it)
}

// FromSeq returns a sequential stream of the elements yielded by seq.
// Each execution of the stream iterates seq again. Iteration is stopped when the execution is finished.
func FromSeq[T any](seq iter.Seq[T]) Stream[T] {
	return newReference[T](newPipeline(&origin{
		kind:  Reference,
		value: seq,
		size:  -1,
		open: func() *cursor {
			next, stop := iter.Pull(seq)

			return &cursor{
				next: func(_ context.Context) (any, bool, error) {
					elem, ok := next()
					if !ok {
						return nil, false, nil
					}

					return elem, true, nil
				},
				release: func() error {
					stop()
					return nil
				},
			}
		},
	}), false)
}

// FromChannel returns a sequential stream of the elements received through the given channels, in order.
// Each channel is read until it is closed.
func FromChannel[T any](channels ...<-chan T) Stream[T] {
	return newReference[T](newPipeline(&origin{
		kind:  Reference,
		value: channels,
		size:  -1,
		open: func() *cursor {
			idx := 0

			return &cursor{
				next: func(ctx context.Context) (any, bool, error) {
					for idx < len(channels) {
						select {
						case elem, ok := <-channels[idx]:
							if ok {
								return elem, true, nil
							}

							idx++

						case <-ctx.Done():
							return nil, false, context.Cause(ctx)
						}
					}

					return nil, false, nil
				},
			}
		},
	}), false)
}

// MergeChannels returns a sequential stream of the elements received through the given channels, in undefined order.
// The channels are consumed concurrently.
func MergeChannels[T any](channels ...<-chan T) Stream[T] {
	return newReference[T](newPipeline(&origin{
		kind:  Reference,
		value: channels,
		size:  -1,
		open: func() *cursor {
			return mergeCursor(channels)
		},
	}), false)
}

func mergeCursor[T any](channels []<-chan T) *cursor {
	ctx, cancel := context.WithCancel(context.Background())

	outCh := make(chan T)

	grp := sync.WaitGroup{}
	grp.Add(len(channels))

	for _, ch := range channels {
		go func(ch <-chan T) {
			defer grp.Done()

			for elem := range ch {
				select {
				case outCh <- elem:

				case <-ctx.Done():
					return
				}
			}
		}(ch)
	}

	go func() {
		defer close(outCh)

		grp.Wait()
	}()

	return &cursor{
		next: func(pullCtx context.Context) (any, bool, error) {
			select {
			case elem, ok := <-outCh:
				if !ok {
					return nil, false, nil
				}

				return elem, true, nil

			case <-pullCtx.Done():
				return nil, false, context.Cause(pullCtx)
			}
		},
		release: func() error {
			cancel()
			return nil
		},
	}
}

// Generate returns an infinite sequential stream of the elements returned by supplier.
func Generate[T any](supplier func() T) Stream[T] {
	return newReference[T](newPipeline(generateOrigin(Reference, supplier)), false)
}

// Iterate returns an infinite sequential stream of seed, next(seed), next(next(seed)), and so on.
func Iterate[T any](seed T, next func(T) T) Stream[T] {
	return newReference[T](newPipeline(iterateOrigin(Reference, seed, next)), false)
}

// Empty returns an empty sequential stream.
func Empty[T any]() Stream[T] {
	return FromSlice[T]()
}

// OfNumbers returns a sequential stream of elems.
func OfNumbers[N Number](elems ...N) NumberStream[N] {
	return NumbersFromSlice(elems)
}

// NumbersFromSlice returns a sequential stream of the elements of the given slices, in order.
// Each execution of the stream starts over at the first element.
func NumbersFromSlice[N Number](slices ...[]N) NumberStream[N] {
	return newNumber[N](newPipeline(sliceOrigin(kindOf[N](), slices)), false)
}

// NumbersFromSource returns a sequential stream of the elements produced by src.
// src is not rewound, and it is closed by Close if it implements io.Closer.
func NumbersFromSource[N Number](src Source[N]) NumberStream[N] {
	return newNumber[N](newPipeline(sourceOrigin(kindOf[N](), src)), false)
}

// GenerateNumbers returns an infinite sequential stream of the elements returned by supplier.
func GenerateNumbers[N Number](supplier func() N) NumberStream[N] {
	return newNumber[N](newPipeline(generateOrigin(kindOf[N](), supplier)), false)
}

// IterateNumbers returns an infinite sequential stream of seed, next(seed), next(next(seed)), and so on.
func IterateNumbers[N Number](seed N, next func(N) N) NumberStream[N] {
	return newNumber[N](newPipeline(iterateOrigin(kindOf[N](), seed, next)), false)
}

// Range returns a sequential stream of the integers from start (inclusive) to end (exclusive), in ascending order.
func Range[N Integer](start N, end N) NumberStream[N] {
	if end <= start {
		return NumbersFromSlice[N]()
	}

	return RangeClosed(start, end-1)
}

// RangeClosed returns a sequential stream of the integers from start to end (both inclusive), in ascending order.
func RangeClosed[N Integer](start N, end N) NumberStream[N] {
	size := int64(-1)

	switch {
	case end < start:
		size = 0
	case int64(start) < 0 && int64(end) > math.MaxInt64+int64(start):
		// end-start overflows, the size is unknown
	case int64(end)-int64(start) < math.MaxInt64:
		size = int64(end) - int64(start) + 1
	}

	return newNumber[N](newPipeline(&origin{
		kind:  kindOf[N](),
		value: [2]N{start, end},
		size:  size,
		open: func() *cursor {
			next := start
			done := end < start

			return &cursor{
				next: func(_ context.Context) (any, bool, error) {
					if done {
						return nil, false, nil
					}

					elem := next
					if elem == end {
						done = true
					} else {
						next++
					}

					return elem, true, nil
				},
			}
		},
	}), false)
}

// sliceOrigin returns a rewinding origin over the elements of slices.
func sliceOrigin[T any](kind ElementKind, slices [][]T) *origin {
	size := int64(0)
	for _, s := range slices {
		size += int64(len(s))
	}

	var value any = slices
	if len(slices) == 1 {
		value = slices[0]
	}

	return &origin{
		kind:  kind,
		value: value,
		size:  size,
		open: func() *cursor {
			sliceIdx, elemIdx := 0, 0

			return &cursor{
				next: func(_ context.Context) (any, bool, error) {
					for sliceIdx < len(slices) {
						if elemIdx < len(slices[sliceIdx]) {
							elem := slices[sliceIdx][elemIdx]
							elemIdx++

							return elem, true, nil
						}

						sliceIdx++
						elemIdx = 0
					}

					return nil, false, nil
				},
			}
		},
	}
}

// sourceOrigin returns an origin pulling from src. src is shared by all executions.
func sourceOrigin[T any](kind ElementKind, src Source[T]) *origin {
	return &origin{
		kind:  kind,
		value: src,
		size:  -1,
		open: func() *cursor {
			return &cursor{
				next: func(ctx context.Context) (any, bool, error) {
					elem, ok, err := src.Next(ctx)
					if err != nil || !ok {
						return nil, false, err
					}

					return elem, true, nil
				},
			}
		},
	}
}

func generateOrigin[T any](kind ElementKind, supplier func() T) *origin {
	return &origin{
		kind:  kind,
		value: supplier,
		size:  -1,
		open: func() *cursor {
			return &cursor{
				next: func(_ context.Context) (any, bool, error) {
					return supplier(), true, nil
				},
			}
		},
	}
}

func iterateOrigin[T any](kind ElementKind, seed T, next func(T) T) *origin {
	return &origin{
		kind:  kind,
		value: next,
		size:  -1,
		open: func() *cursor {
			elem, started := seed, false

			return &cursor{
				next: func(_ context.Context) (any, bool, error) {
					if started {
						elem = next(elem)
					}

					started = true

					return elem, true, nil
				},
			}
		},
	}
}
