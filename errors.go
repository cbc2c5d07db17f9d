package mutablestream

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPipelineReuse is returned by a terminal operation called on a stream that has already been consumed
	// by an earlier terminal operation.
	ErrPipelineReuse = errors.New("stream has already been operated upon or closed")

	// ErrUnsupportedOperation is returned by operations a stream deliberately does not support.
	ErrUnsupportedOperation = errors.New("unsupported stream operation")

	// ErrBreaksAutoClose is wrapped into ErrUnsupportedOperation by Iterator and Spliterator of auto-closing streams.
	ErrBreaksAutoClose = errors.New("would break the auto-close guarantee")

	// ErrNotComparable is returned when Distinct or Sorted meet an element that cannot be compared.
	ErrNotComparable = errors.New("element is not comparable")
)

// CloseError is returned when releasing several resources fails more than once, or when releasing resources
// fails after the operation itself has already failed.
// The first failure is the primary error, all others are suppressed.
type CloseError struct {
	// Primary is the first error that occurred.
	Primary error

	// Suppressed are the errors that occurred after Primary, in order.
	Suppressed []error
}

// Error implements error.
func (e *CloseError) Error() string {
	if len(e.Suppressed) == 0 {
		return e.Primary.Error()
	}

	msgs := make([]string, len(e.Suppressed))
	for i, err := range e.Suppressed {
		msgs[i] = err.Error()
	}

	return fmt.Sprintf("%v (suppressed: %s)", e.Primary, strings.Join(msgs, "; "))
}

// Unwrap returns the primary error followed by all suppressed errors.
func (e *CloseError) Unwrap() []error {
	errs := make([]error, 0, len(e.Suppressed)+1)
	errs = append(errs, e.Primary)

	return append(errs, e.Suppressed...)
}

// aggregate folds errs into a single error.
// Nil errors are skipped. A single error is returned as is.
func aggregate(errs ...error) error {
	var agg *CloseError

	for _, err := range errs {
		if err == nil {
			continue
		}

		if agg == nil {
			if ce, ok := err.(*CloseError); ok { //nolint:errorlint // only direct aggregates are flattened
				agg = &CloseError{Primary: ce.Primary, Suppressed: append([]error(nil), ce.Suppressed...)}
				continue
			}

			agg = &CloseError{Primary: err}

			continue
		}

		if ce, ok := err.(*CloseError); ok { //nolint:errorlint // only direct aggregates are flattened
			agg.Suppressed = append(agg.Suppressed, ce.Unwrap()...)
			continue
		}

		agg.Suppressed = append(agg.Suppressed, err)
	}

	switch {
	case agg == nil:
		return nil

	case len(agg.Suppressed) == 0:
		return agg.Primary

	default:
		return agg
	}
}

func unsupported(op string) error {
	return fmt.Errorf("%s: %w", op, ErrUnsupportedOperation)
}

func breaksAutoClose(op string) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnsupportedOperation, ErrBreaksAutoClose)
}
