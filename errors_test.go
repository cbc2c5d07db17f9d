package mutablestream

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestAggregate(t *testing.T) {
	is := is.New(t)

	errA := errors.New("a")
	errB := errors.New("b")
	errC := errors.New("c")

	is.NoErr(aggregate())
	is.NoErr(aggregate(nil, nil))
	is.Equal(aggregate(nil, errA), errA)

	err := aggregate(errA, nil, errB)

	var closeErr *CloseError

	is.True(errors.As(err, &closeErr))
	is.Equal(closeErr.Primary, errA)
	is.Equal(closeErr.Suppressed, []error{errB})
	is.Equal(err.Error(), "a (suppressed: b)")

	flat := aggregate(err, errC)

	is.True(errors.As(flat, &closeErr))
	is.Equal(closeErr.Primary, errA)
	is.Equal(closeErr.Suppressed, []error{errB, errC})

	nested := aggregate(errC, err)

	is.True(errors.As(nested, &closeErr))
	is.Equal(closeErr.Primary, errC)
	is.Equal(closeErr.Suppressed, []error{errA, errB})
	is.True(errors.Is(nested, errB))
}

func TestBreaksAutoClose(t *testing.T) {
	is := is.New(t)

	err := breaksAutoClose("Iterator")

	is.True(errors.Is(err, ErrUnsupportedOperation))
	is.True(errors.Is(err, ErrBreaksAutoClose))
	is.Equal(err.Error(), "Iterator: unsupported stream operation: would break the auto-close guarantee")
}
