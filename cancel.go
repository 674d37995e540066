package texload

import (
	"context"
	"sync"
)

// CancelToken is the sticky cancellation latch of a single load.
//
// The token is set at most once and never clears for the lifetime of its
// load. Cancellation is advisory: pipelines poll it at each suspension
// checkpoint rather than being preempted.
//
// A CancelToken is safe for concurrent use.
type CancelToken struct {
	once sync.Once
	done chan struct{}
}

func newCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel trips the token. It is idempotent and safe to call from any
// goroutine.
func (t *CancelToken) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// Canceled reports whether the token has been tripped.
func (t *CancelToken) Canceled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when the token trips.
func (t *CancelToken) Done() <-chan struct{} {
	return t.done
}

// bind derives a context that is canceled when either the parent context
// is done or the token trips. This lets blocking collaborators (transport,
// codec) abort in-flight work when Cancel arrives between checkpoints.
func (t *CancelToken) bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-t.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
