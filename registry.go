package mutablestream

import (
	"io"
	"sync"
)

// closeRegistry holds the resources shared by sibling auto-closing streams.
// The first close drains the registry, so every resource is closed at most once.
type closeRegistry struct {
	mu        sync.Mutex
	resources []io.Closer
	closed    bool
}

func newCloseRegistry(resources ...io.Closer) *closeRegistry {
	return &closeRegistry{
		resources: resources,
	}
}

// register adds resources to r. If r has already been closed, the resources are closed immediately.
func (r *closeRegistry) register(resources ...io.Closer) {
	r.mu.Lock()

	if !r.closed {
		r.resources = append(r.resources, resources...)
		r.mu.Unlock()

		return
	}

	r.mu.Unlock()

	closeAll(resources)
}

// drain returns all registered resources, and leaves r empty and closed.
func (r *closeRegistry) drain() []io.Closer {
	r.mu.Lock()
	defer r.mu.Unlock()

	resources := r.resources
	r.resources = nil
	r.closed = true

	return resources
}

// close closes all registered resources in the order they were registered.
// All resources are closed even if some fail. The first failure is the primary error, see CloseError.
func (r *closeRegistry) close() error {
	return closeAll(r.drain())
}

func closeAll(resources []io.Closer) error {
	if len(resources) == 0 {
		return nil
	}

	errs := make([]error, len(resources))
	for i, res := range resources {
		errs[i] = res.Close()
	}

	err := aggregate(errs...)

	cfg := settings()

	if err != nil {
		cfg.logger.Warn().Int("resources", len(resources)).Err(err).Msg("releasing stream resources failed")
	} else {
		cfg.logger.Debug().Int("resources", len(resources)).Msg("stream resources released")
	}

	if cfg.observer != nil {
		cfg.observer.ResourcesClosed(len(resources), err)
	}

	return err
}

// autoTerminal runs a terminal operation and releases the resources of r afterwards, even if the operation
// fails or panics. A release error is merged into the operation's error.
func autoTerminal[R any](r *closeRegistry, run func() (R, error)) (result R, err error) {
	defer func() {
		err = aggregate(err, r.close())
		if err != nil {
			var zero R
			result = zero
		}
	}()

	return run()
}
