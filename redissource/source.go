// Package redissource provides a mutablestream.Source reading the elements of a Redis list.
//
// The list is read page by page using LRANGE, so only one page is held in memory at a time.
// Window reads the leading Skip and Limit actions of a pipeline, which allows callers to narrow the
// range read from Redis before building the stream:
//
//	skip, limit, _ := redissource.Window(prototype.Pipeline().Actions())
//	src := redissource.New(rdb, "events", decode, redissource.WithWindow(skip, limit))
//	events := mutablestream.AutoClose(mutablestream.FromSource[Event](src))
package redissource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/deadlyengineer/mutablestream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultPageSize is the number of list elements read using a single LRANGE command.
const DefaultPageSize = 100

// ErrClosed is returned by Source.Next after the source has been closed.
var ErrClosed = errors.New("redis source is closed")

// Lister is the subset of redis.Cmdable used by Source. It is implemented by *redis.Client,
// *redis.ClusterClient, and *redis.Ring.
type Lister interface {
	LRange(ctx context.Context, key string, start int64, stop int64) *redis.StringSliceCmd
}

// Option configures a Source.
type Option func(opts *options)

type options struct {
	pageSize int64
	skip     int64
	limit    int64
	owned    bool
	logger   zerolog.Logger
}

// Source reads the elements of a Redis list, and decodes them using a decode function.
// Source is not safe for concurrent use, except for Close.
type Source[T any] struct {
	client Lister
	key    string
	decode func(string) (T, error)
	opts   options

	page   []string
	next   int64
	end    int64
	done   bool
	closed atomic.Bool
}

var (
	_ mutablestream.Source[string] = (*Source[string])(nil)
	_ io.Closer                    = (*Source[string])(nil)
)

// New returns a new Source reading the list at key.
func New[T any](client Lister, key string, decode func(string) (T, error), opts ...Option) *Source[T] {
	o := options{
		pageSize: DefaultPageSize,
		limit:    -1,
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	end := int64(-1)
	if o.limit >= 0 {
		end = o.skip + o.limit
	}

	return &Source[T]{
		client: client,
		key:    key,
		decode: decode,
		opts:   o,
		next:   o.skip,
		end:    end,
	}
}

// WithPageSize sets the number of elements read using a single LRANGE command.
// Values below 1 are ignored.
func WithPageSize(n int64) Option {
	return func(opts *options) {
		if n > 0 {
			opts.pageSize = n
		}
	}
}

// WithWindow restricts the source to the elements after the first skip elements, and to at most limit elements.
// A negative limit means no limit.
func WithWindow(skip int64, limit int64) Option {
	return func(opts *options) {
		opts.skip = max(0, skip)
		opts.limit = limit
	}
}

// WithOwnedClient makes Close close the client, if it implements io.Closer.
func WithOwnedClient() Option {
	return func(opts *options) {
		opts.owned = true
	}
}

// WithLogger sets the logger used to report page reads.
func WithLogger(logger zerolog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// Next implements mutablestream.Source.
func (s *Source[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if s.closed.Load() {
		return zero, false, ErrClosed
	}

	if len(s.page) == 0 {
		if err := s.fetch(ctx); err != nil {
			return zero, false, err
		}

		if len(s.page) == 0 {
			return zero, false, nil
		}
	}

	raw := s.page[0]
	s.page = s.page[1:]

	elem, err := s.decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("decode element of %s: %w", s.key, err)
	}

	return elem, true, nil
}

// fetch reads the next page.
func (s *Source[T]) fetch(ctx context.Context) error {
	if s.done {
		return nil
	}

	stop := s.next + s.opts.pageSize - 1
	if s.end >= 0 {
		stop = min(stop, s.end-1)
	}

	if stop < s.next {
		s.done = true
		return nil
	}

	page, err := s.client.LRange(ctx, s.key, s.next, stop).Result()
	if err != nil {
		return fmt.Errorf("lrange %s [%d, %d]: %w", s.key, s.next, stop, err)
	}

	s.opts.logger.Debug().
		Str("key", s.key).
		Int64("start", s.next).
		Int64("stop", stop).
		Int("elements", len(page)).
		Msg("list page read")

	if int64(len(page)) < stop-s.next+1 {
		s.done = true
	}

	s.next += int64(len(page))
	s.page = page

	return nil
}

// Close implements io.Closer. Further calls to Next fail with ErrClosed.
// If the source was created using WithOwnedClient, the client is closed as well.
func (s *Source[T]) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.page = nil

	if !s.opts.owned {
		return nil
	}

	if closer, ok := s.client.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Window returns the combined window of the leading ActionSkip and ActionLimit actions.
// limit is -1 if there is no limit. rest is the index of the first action not covered by the window.
func Window(actions []mutablestream.Action) (skip int64, limit int64, rest int) {
	limit = -1

	for rest < len(actions) {
		action := actions[rest]

		switch action.Kind { //nolint:exhaustive // any other action ends the window
		case mutablestream.ActionSkip:
			skip += action.N

			if limit >= 0 {
				limit = max(0, limit-action.N)
			}

		case mutablestream.ActionLimit:
			if limit < 0 || action.N < limit {
				limit = action.N
			}

		default:
			return skip, limit, rest
		}

		rest++
	}

	return skip, limit, rest
}
