package mutablestream

import (
	"context"
	"io"
	"sync/atomic"
)

// facade holds the state shared by all pipeline-backed streams.
// Streams that only differ in their parallel flag share the consumed state.
type facade struct {
	pipeline *Pipeline
	parallel bool
	consumed *atomic.Bool
}

func newFacade(p *Pipeline, parallel bool) facade {
	return facade{pipeline: p, parallel: parallel, consumed: new(atomic.Bool)}
}

// derive returns the state of a stream that appends action to the pipeline of f.
// A stream derived from a consumed stream is consumed as well.
func (f *facade) derive(action Action) facade {
	derived := newFacade(f.pipeline.Append(action), f.parallel)
	derived.consumed.Store(f.consumed.Load())

	return derived
}

// withParallel returns the state of f with the parallel flag set to parallel.
func (f *facade) withParallel(parallel bool) facade {
	return facade{pipeline: f.pipeline, parallel: parallel, consumed: f.consumed}
}

// consume marks the stream as consumed by a terminal operation.
func (f *facade) consume() error {
	if f.consumed.Swap(true) {
		return ErrPipelineReuse
	}

	return nil
}

// IsParallel implements BaseStream.
func (f *facade) IsParallel() bool {
	return f.parallel
}

// Pipeline implements BaseStream.
func (f *facade) Pipeline() *Pipeline {
	return f.pipeline
}

// OnClose implements BaseStream.
func (f *facade) OnClose(_ func()) error {
	return unsupported("OnClose")
}

// Close implements BaseStream.
// The stream itself owns nothing. If its source implements io.Closer, it is closed.
func (f *facade) Close() error {
	if closer, ok := f.pipeline.origin.value.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// executeTerminal consumes the stream and executes its pipeline using terminator.
func executeTerminal[R any](ctx context.Context, f *facade, terminator Terminator[R]) (R, error) {
	if err := f.consume(); err != nil {
		var zero R
		return zero, err
	}

	return Execute(ctx, f.pipeline, terminator)
}
