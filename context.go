package mutablestream

import "context"

// contextDone returns true if ctx.Err() != nil.
func contextDone(ctx context.Context) bool {
	return ctx.Err() != nil
}

// contextErr returns the cause of ctx's cancelation, or nil if ctx is not done.
func contextErr(ctx context.Context) error {
	if !contextDone(ctx) {
		return nil
	}

	return context.Cause(ctx)
}
