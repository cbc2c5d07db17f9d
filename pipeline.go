package mutablestream

import (
	"context"
	"fmt"
	"time"
)

// origin is the root of a Pipeline.
type origin struct {
	// kind is the kind of elements the source produces.
	kind ElementKind

	// value is the source as passed by the caller, for inspection by query consumers.
	value any

	// open returns a new cursor over the source's elements.
	open func() *cursor

	// size is the number of elements the source produces, or -1 if unknown.
	size int64
}

// Pipeline is an immutable chain of Actions rooted at a source.
// Appending an action returns a new Pipeline that shares the existing chain.
//
// A Pipeline does nothing by itself. It is executed by a terminal operation, which pulls elements from
// the source through all actions, in the order they were appended.
type Pipeline struct {
	origin *origin
	prev   *Pipeline
	action *Action
	depth  int
}

func newPipeline(o *origin) *Pipeline {
	return &Pipeline{
		origin: o,
	}
}

// Append returns a new Pipeline that applies action after all actions of p.
// p is not modified.
// Append panics if action was not obtained from a Pipeline, or if its input kind does not match
// the kind of elements p produces.
func (p *Pipeline) Append(action Action) *Pipeline {
	if action.stage == nil {
		panic(fmt.Sprintf("mutablestream: Append: action %s has no implementation", action))
	}

	if action.In != p.Kind() {
		panic(fmt.Sprintf("mutablestream: Append: action %s consumes %s elements, pipeline produces %s", action, action.In, p.Kind()))
	}

	return &Pipeline{
		origin: p.origin,
		prev:   p,
		action: &action,
		depth:  p.depth + 1,
	}
}

// Actions returns the actions of p, in the order they are applied.
// Nothing is executed.
func (p *Pipeline) Actions() []Action {
	actions := make([]Action, p.depth)

	for node := p; node.prev != nil; node = node.prev {
		actions[node.depth-1] = *node.action
	}

	return actions
}

// Action returns the last action of p. It returns false if p is the root of its chain.
func (p *Pipeline) Action() (Action, bool) {
	if p.action == nil {
		return Action{}, false
	}

	return *p.action, true
}

// Prev returns the Pipeline p was appended to, or nil if p is the root of its chain.
func (p *Pipeline) Prev() *Pipeline {
	return p.prev
}

// Depth returns the number of actions in p.
func (p *Pipeline) Depth() int {
	return p.depth
}

// Origin returns the source p is rooted at, as it was passed to the stream constructor.
// For slice sources this is the slice.
func (p *Pipeline) Origin() any {
	return p.origin.value
}

// OriginKind returns the kind of elements produced by p's source.
func (p *Pipeline) OriginKind() ElementKind {
	return p.origin.kind
}

// Kind returns the kind of elements produced by p.
func (p *Pipeline) Kind() ElementKind {
	if p.action == nil {
		return p.origin.kind
	}

	return p.action.Out
}

// exactSize returns the number of elements p produces, or -1 if it is not known without executing p.
func (p *Pipeline) exactSize() int64 {
	if p.prev == nil {
		return p.origin.size
	}

	size := p.prev.exactSize()
	if size < 0 {
		return -1
	}

	switch p.action.Kind { //nolint:exhaustive // all other actions change the size unpredictably
	case ActionMap, ActionSorted:
		return size

	case ActionLimit:
		return min(size, p.action.N)

	case ActionSkip:
		return max(0, size-p.action.N)

	default:
		return -1
	}
}

// open opens a cursor pulling elements through all of p's actions.
func (p *Pipeline) open() *cursor {
	if p.prev == nil {
		return p.origin.open()
	}

	return p.action.stage(p.prev.open())
}

// String implements fmt.Stringer.
func (p *Pipeline) String() string {
	str := fmt.Sprintf("source[%s]", p.origin.kind)
	for _, action := range p.Actions() {
		str += "." + action.String()
	}

	return str
}

// Execute executes p using terminator, and returns its result.
// If terminator fails, the result is R's zero value.
func Execute[R any](ctx context.Context, p *Pipeline, terminator Terminator[R]) (R, error) {
	cfg := settings()

	workers := 1
	if terminator.Parallel {
		workers = cfg.parallelism
	}

	start := time.Now()

	cur := p.open()

	result, err := terminator.run(ctx, cur, workers)

	if err != nil || !terminator.keepOpen {
		err = aggregate(err, cur.close())
	}

	if err != nil {
		var zero R
		result = zero
	}

	elapsed := time.Since(start)

	cfg.logger.Debug().
		Stringer("terminal", terminator.Kind).
		Int("actions", p.depth).
		Bool("parallel", terminator.Parallel).
		Dur("elapsed", elapsed).
		Err(err).
		Msg("pipeline executed")

	if cfg.observer != nil {
		cfg.observer.TerminalCompleted(terminator.Kind, terminator.Parallel, elapsed, err)
	}

	return result, err
}
