package metrics

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/deadlyengineer/mutablestream"
	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

func TestCollector(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	collector := New(reg, "test")

	mutablestream.Configure(mutablestream.WithObserver(collector))
	t.Cleanup(mutablestream.ResetConfiguration)

	var nop io.Closer = closerFunc(func() error {
		return nil
	})

	count, err := mutablestream.AutoClose(mutablestream.Of(1, 2, 3), nop, nop).Count(ctx)

	is.NoErr(err)
	is.Equal(count, int64(3))

	_, err = mutablestream.Of(1).Parallel().Sorted().ToSlice(ctx)
	is.NoErr(err)

	is.Equal(testutil.ToFloat64(collector.TerminalOperations.WithLabelValues("count", "false", "success")), 1.0)
	is.Equal(testutil.ToFloat64(collector.TerminalOperations.WithLabelValues("toSlice", "true", "success")), 1.0)
	is.Equal(testutil.ToFloat64(collector.Closes.WithLabelValues("success")), 1.0)
	is.Equal(testutil.ToFloat64(collector.ClosedResources), 2.0)
	is.Equal(testutil.CollectAndCount(collector.TerminalDuration), 2)
}

func TestCollector_Errors(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	collector := New(reg, "")

	mutablestream.Configure(mutablestream.WithObserver(collector))
	t.Cleanup(mutablestream.ResetConfiguration)

	errClose := errors.New("close failed")

	type point struct {
		x int
	}

	_, err := mutablestream.AutoClose(mutablestream.Of(point{1}, point{2}).Sorted(), closerFunc(func() error {
		return errClose
	})).ToSlice(ctx)

	is.True(errors.Is(err, mutablestream.ErrNotComparable))
	is.True(errors.Is(err, errClose))

	is.Equal(testutil.ToFloat64(collector.TerminalOperations.WithLabelValues("toSlice", "false", "error")), 1.0)
	is.Equal(testutil.ToFloat64(collector.Closes.WithLabelValues("error")), 1.0)

	families, err := reg.Gather()
	is.NoErr(err)

	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}

	is.True(names["mutablestream_stream_terminal_operations_total"])
	is.True(names["mutablestream_stream_closed_resources_total"])
}
