package runner

import (
	"errors"
	"fmt"

	"github.com/nholik/plumb-sentinel/internal/inventory"
)

// RuntimeError is a failed cycle step. The loop logs it and polls again.
type RuntimeError struct {
	Feed string
	Op   string
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("feed %q: %s: %v", e.Feed, e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure came from an inventory source that
// may recover on its own, such as a 5xx or a rate limit.
func (e *RuntimeError) Transient() bool {
	var fetchErr *inventory.FetchError
	return errors.As(e.Err, &fetchErr) && fetchErr.IsRetryable()
}

func (r *Runner) wrapRuntime(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RuntimeError{Feed: r.feed, Op: op, Err: err}
}

func (r *Runner) logCycleError(err error, msg string) {
	var runtimeErr *RuntimeError
	if errors.As(err, &runtimeErr) && runtimeErr.Transient() {
		r.logger.Warn().Err(err).Str("op", runtimeErr.Op).Msg(msg)
		return
	}
	r.logger.Error().Err(err).Msg(msg)
}
