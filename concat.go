package mutablestream

import "context"

// concatSource pulls from a list of streams, one after the other.
// Closing it closes all streams.
type concatSource[T any] struct {
	streams []iterable[T]
}

func (c *concatSource[T]) open() *cursor {
	var current *iterator[T]

	idx := 0

	return &cursor{
		next: func(ctx context.Context) (any, bool, error) {
			for idx < len(c.streams) {
				if current == nil {
					it, err := c.streams[idx].iterate()
					if err != nil {
						return nil, false, err
					}

					current = it
				}

				elem, ok, err := current.next(ctx)
				if err != nil {
					return nil, false, err
				}

				if ok {
					return elem, true, nil
				}

				current = nil
				idx++
			}

			return nil, false, nil
		},
		release: func() error {
			if current == nil {
				return nil
			}

			return current.Close()
		},
	}
}

// Close closes all streams in order. All streams are closed even if some fail, see CloseError.
func (c *concatSource[T]) Close() error {
	errs := make([]error, len(c.streams))
	for i, s := range c.streams {
		errs[i] = s.Close()
	}

	return aggregate(errs...)
}

func (c *concatSource[T]) parallel() bool {
	for _, s := range c.streams {
		if s.IsParallel() {
			return true
		}
	}

	return false
}

func newConcatSource[T any, S iterable[T]](streams []S) *concatSource[T] {
	src := &concatSource[T]{
		streams: make([]iterable[T], len(streams)),
	}

	for i, s := range streams {
		src.streams[i] = s
	}

	return src
}

func concatOrigin[T any](kind ElementKind, src *concatSource[T]) *origin {
	return &origin{
		kind:  kind,
		value: src,
		size:  -1,
		open:  src.open,
	}
}

// Concat returns a stream of the elements of all streams, in the order the streams are given.
// The streams are not interleaved. Each stream is consumed only once the previous one is exhausted.
// The new stream is parallel if any of streams is. Closing it closes all streams.
func Concat[T any](streams ...Stream[T]) Stream[T] {
	src := newConcatSource[T](streams)
	return newReference[T](newPipeline(concatOrigin(Reference, src)), src.parallel())
}

// ConcatAndAutoClose is like Concat, but returns an auto-closing stream that owns all streams.
// They are closed in the order they are given once a terminal operation has finished, even if an
// earlier stream failed during the operation.
func ConcatAndAutoClose[T any](streams ...Stream[T]) Stream[T] {
	return AutoClose(Concat(streams...))
}

// ConcatNumbers is the NumberStream variant of Concat.
func ConcatNumbers[N Number](streams ...NumberStream[N]) NumberStream[N] {
	src := newConcatSource[N](streams)
	return newNumber[N](newPipeline(concatOrigin(kindOf[N](), src)), src.parallel())
}

// ConcatNumbersAndAutoClose is the NumberStream variant of ConcatAndAutoClose.
func ConcatNumbersAndAutoClose[N Number](streams ...NumberStream[N]) NumberStream[N] {
	return AutoCloseNumbers(ConcatNumbers(streams...))
}
