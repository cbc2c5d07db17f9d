package mutablestream

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Observer is notified about completed terminal operations and released resources.
// Implementations must be safe for concurrent use.
type Observer interface {
	// TerminalCompleted is called after a terminal operation of the given kind has finished.
	// err is the error returned to the caller, if any.
	TerminalCompleted(kind TerminalKind, parallel bool, elapsed time.Duration, err error)

	// ResourcesClosed is called after an auto-closing stream has released count resources.
	ResourcesClosed(count int, err error)
}

// Option configures the package.
type Option func(cfg *config)

type config struct {
	logger      zerolog.Logger
	observer    Observer
	parallelism int
}

var current atomic.Pointer[config]

func init() {
	current.Store(defaultConfig())
}

func defaultConfig() *config {
	return &config{
		logger:      zerolog.Nop(),
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// Configure applies opts on top of the current configuration.
// Streams pick up the configuration when a terminal operation starts.
func Configure(opts ...Option) {
	for {
		old := current.Load()

		cfg := *old
		for _, opt := range opts {
			opt(&cfg)
		}

		if current.CompareAndSwap(old, &cfg) {
			return
		}
	}
}

// ResetConfiguration restores the default configuration.
func ResetConfiguration() {
	current.Store(defaultConfig())
}

// WithLogger sets the logger used to report terminal operations and resource release.
// The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithObserver sets the observer notified about terminal operations and resource release.
// A nil observer disables notifications.
func WithObserver(observer Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

// WithParallelism sets the number of goroutines used by terminal operations of parallel streams.
// Values below 1 reset it to runtime.GOMAXPROCS(0).
func WithParallelism(n int) Option {
	return func(cfg *config) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}

		cfg.parallelism = n
	}
}

func settings() *config {
	return current.Load()
}
