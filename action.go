package mutablestream

import (
	"context"
	"fmt"
	"io"
)

// ElementKind is the kind of elements flowing into or out of an Action.
type ElementKind uint8

// ActionKind identifies the transformation an Action applies.
type ActionKind uint8

const (
	// Reference elements are arbitrary Go values.
	Reference ElementKind = iota
	// Int elements are int32 values.
	Int
	// Long elements are int64 values.
	Long
	// Double elements are float64 values.
	Double
)

const (
	// ActionFilter drops elements that do not match a predicate.
	ActionFilter ActionKind = iota + 1
	// ActionMap transforms each element, possibly converting it to another ElementKind.
	ActionMap
	// ActionFlatMap replaces each element with the elements of a sub-stream.
	ActionFlatMap
	// ActionDistinct drops elements equal to an earlier element.
	ActionDistinct
	// ActionSorted buffers all elements and produces them in sorted order.
	ActionSorted
	// ActionLimit truncates the stream after N elements.
	ActionLimit
	// ActionSkip drops the first N elements.
	ActionSkip
)

// Action describes one intermediate operation recorded in a Pipeline.
//
// Actions are data: a query consumer may inspect a Pipeline's actions to decide how to access
// the underlying source, for example to push a filter or a limit into a remote query.
// Actions obtained from Pipeline.Actions can be appended to another Pipeline.
type Action struct {
	// Kind is the kind of operation.
	Kind ActionKind

	// In is the kind of elements the action consumes.
	In ElementKind

	// Out is the kind of elements the action produces.
	Out ElementKind

	// Func is the function captured by the action, exactly as passed by the caller,
	// for example a func(T) bool for ActionFilter, or a func(a, b T) int for ActionSorted.
	// It is nil for ActionDistinct, ActionLimit, ActionSkip, and natural order ActionSorted.
	Func any

	// N is the element count of ActionLimit and ActionSkip.
	N int64

	stage stage
}

var elementKindNames = [...]string{
	Reference: "reference",
	Int:       "int",
	Long:      "long",
	Double:    "double",
}

var actionKindNames = [...]string{
	ActionFilter:   "filter",
	ActionMap:      "map",
	ActionFlatMap:  "flatMap",
	ActionDistinct: "distinct",
	ActionSorted:   "sorted",
	ActionLimit:    "limit",
	ActionSkip:     "skip",
}

// String implements fmt.Stringer.
func (k ElementKind) String() string {
	if int(k) < len(elementKindNames) {
		return elementKindNames[k]
	}

	return fmt.Sprintf("ElementKind(%d)", k)
}

// String implements fmt.Stringer.
func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) && actionKindNames[k] != "" {
		return actionKindNames[k]
	}

	return fmt.Sprintf("ActionKind(%d)", k)
}

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a.Kind {
	case ActionLimit, ActionSkip:
		return fmt.Sprintf("%s(%d)", a.Kind, a.N)

	case ActionMap, ActionFlatMap:
		if a.In != a.Out {
			return fmt.Sprintf("%s[%s->%s]", a.Kind, a.In, a.Out)
		}
	}

	return fmt.Sprintf("%s[%s]", a.Kind, a.Out)
}

// unbox returns v as a T, or T's zero value if v is nil.
func unbox[T any](v any) T {
	t, _ := v.(T)
	return t
}

func filterAction[T any](kind ElementKind, pred func(T) bool) Action {
	return Action{
		Kind:  ActionFilter,
		In:    kind,
		Out:   kind,
		Func:  pred,
		stage: filterStage(func(v any) bool { return pred(unbox[T](v)) }),
	}
}

func mapAction[T any, U any](in ElementKind, out ElementKind, mapp func(T) U) Action {
	return Action{
		Kind:  ActionMap,
		In:    in,
		Out:   out,
		Func:  mapp,
		stage: mapStage(func(v any) any { return mapp(unbox[T](v)) }),
	}
}

// flatMapAction records fn, and uses expand to open the sub-stream an element maps to.
// expand returns a nil cursor for a nil sub-stream.
func flatMapAction[T any](in ElementKind, out ElementKind, fn any, expand func(elem T) (*cursor, error)) Action {
	return Action{
		Kind:  ActionFlatMap,
		In:    in,
		Out:   out,
		Func:  fn,
		stage: flatMapStage(func(v any) (*cursor, error) { return expand(unbox[T](v)) }),
	}
}

func distinctAction(kind ElementKind) Action {
	return Action{
		Kind:  ActionDistinct,
		In:    kind,
		Out:   kind,
		stage: distinctStage(),
	}
}

func sortedAction(kind ElementKind, fn any, compare func(a any, b any) (int, error)) Action {
	return Action{
		Kind:  ActionSorted,
		In:    kind,
		Out:   kind,
		Func:  fn,
		stage: sortedStage(compare),
	}
}

func limitAction(kind ElementKind, maxSize int64) Action {
	if maxSize < 0 {
		panic(fmt.Sprintf("mutablestream: Limit: negative maxSize %d", maxSize))
	}

	return Action{
		Kind:  ActionLimit,
		In:    kind,
		Out:   kind,
		N:     maxSize,
		stage: limitStage(maxSize),
	}
}

func skipAction(kind ElementKind, num int64) Action {
	if num < 0 {
		panic(fmt.Sprintf("mutablestream: Skip: negative count %d", num))
	}

	return Action{
		Kind:  ActionSkip,
		In:    kind,
		Out:   kind,
		N:     num,
		stage: skipStage(num),
	}
}

// subCursor opens a cursor over the elements of it, closing closer once the cursor is released.
func subCursor[T any](it *iterator[T], closer io.Closer) *cursor {
	return &cursor{
		next: func(ctx context.Context) (any, bool, error) {
			return it.next(ctx)
		},
		release: func() error {
			return aggregate(it.Close(), closer.Close())
		},
	}
}
