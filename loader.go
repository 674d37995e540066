package texload

import (
	"context"
	"sync"
	"time"
)

// Callbacks receives the observable events of one load. Any field may be
// nil; nil callbacks are skipped.
type Callbacks struct {
	// OnComplete is the terminal completion. It is invoked at most once
	// per load, with the decoded pixmap on success or nil when the load
	// was canceled (cancellation terminates as an empty completion, not
	// a failure).
	OnComplete func(pm *Pixmap)

	// OnFailure reports failures as they occur. Transient reasons may be
	// delivered once per failed attempt before a terminal event. A
	// FailureMaxAttempts delivery is itself terminal and is never
	// followed by OnComplete.
	OnFailure func(reason FailureReason, err error)

	// OnProgress receives zero or more progress snapshots. Fractions
	// reset to 0 at each attempt boundary.
	OnProgress func(s ProgressSnapshot)
}

func (cb Callbacks) complete(pm *Pixmap) {
	if cb.OnComplete != nil {
		cb.OnComplete(pm)
	}
}

func (cb Callbacks) fail(reason FailureReason, err error) {
	if cb.OnFailure != nil {
		cb.OnFailure(reason, err)
	}
}

func (cb Callbacks) progress(s ProgressSnapshot) {
	if cb.OnProgress != nil {
		cb.OnProgress(s)
	}
}

// Loader drives the bounded retry loop around a Pipeline.
//
// A Loader serves one load at a time: Load returns ErrLoadInFlight while a
// previous load is still running. Cancel may be called from any goroutine;
// it trips the in-flight load's sticky cancellation latch, which the loop
// and the pipeline observe at their next checkpoint.
type Loader struct {
	pipeline Pipeline

	mu       sync.Mutex
	inFlight bool
	token    *CancelToken
}

// NewLoader creates a loader bound to the given pipeline strategy.
func NewLoader(pipeline Pipeline) *Loader {
	return &Loader{pipeline: pipeline}
}

// Cancel requests cancellation of the in-flight load. It is idempotent,
// safe to call from any goroutine, and a no-op when no load is running.
// Cancellation is advisory: it is observed at the next suspension
// checkpoint, not delivered preemptively.
func (l *Loader) Cancel() {
	l.mu.Lock()
	tok := l.token
	l.mu.Unlock()
	if tok != nil {
		tok.Cancel()
	}
}

// Load runs one load to its terminal callback.
//
// It blocks until exactly one terminal event has been delivered: a single
// OnComplete (decoded result, or nil for cancellation) or a single
// terminal OnFailure(FailureMaxAttempts). Transient failures are reported
// through OnFailure as they occur without stopping the loop. Run Load in
// a goroutine for asynchronous use.
//
// The returned error covers misuse only (invalid request, missing
// pipeline, overlapping load); load failures travel through cb.
func (l *Loader) Load(ctx context.Context, req LoadRequest, cb Callbacks) error {
	if l.pipeline == nil {
		return ErrPipelineRequired
	}
	req = req.withDefaults()
	if err := req.validate(); err != nil {
		return err
	}

	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return ErrLoadInFlight
	}
	tok := newCancelToken()
	l.inFlight = true
	l.token = tok
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.inFlight = false
		l.token = nil
		l.mu.Unlock()
	}()

	l.run(ctx, req, cb, tok)
	return nil
}

// run executes the retry loop. Terminal delivery is structural: every
// path returns immediately after its single terminal callback.
func (l *Loader) run(ctx context.Context, req LoadRequest, cb Callbacks, tok *CancelToken) {
	log := Logger()

	for attempt := 1; attempt <= req.MaxAttempts; attempt++ {
		// Checkpoint: cancellation before the attempt starts.
		if tok.Canceled() || ctx.Err() != nil {
			cb.complete(nil)
			return
		}

		cb.progress(ProgressSnapshot{Fraction: 0, Attempt: attempt})

		pm, out := l.pipeline.Attempt(AttemptContext{
			Ctx:     ctx,
			Request: &req,
			Token:   tok,
			Report: func(fraction float64) {
				cb.progress(ProgressSnapshot{
					Fraction: clampFraction(fraction),
					Attempt:  attempt,
				})
			},
		})

		// Checkpoint: cancellation during or classified by the attempt.
		if out.kind == attemptCanceled || tok.Canceled() || ctx.Err() != nil {
			cb.complete(nil)
			return
		}

		switch out.kind {
		case attemptSuccess:
			if req.NonReadableResult {
				pm.MarkNonReadable()
			}
			cb.complete(pm)
			return

		case attemptFatal:
			// The failure report and the sticky latch, then the empty
			// completion the canceled state always terminates with.
			log.Debug("fatal attempt failure", "url", req.URL,
				"attempt", attempt, "reason", out.reason.String(), "err", out.err)
			tok.Cancel()
			cb.fail(out.reason, out.err)
			cb.complete(nil)
			return

		case attemptTransient:
			log.Debug("transient attempt failure", "url", req.URL,
				"attempt", attempt, "reason", out.reason.String(), "err", out.err)
			cb.fail(out.reason, out.err)
			if attempt < req.MaxAttempts {
				if !sleepRetry(ctx, tok, req.RetryDelay) {
					cb.complete(nil)
					return
				}
			}
		}
	}

	// Attempt budget exhausted without success or cancellation.
	cb.progress(ProgressSnapshot{
		Attempt:            req.MaxAttempts,
		MaxAttemptsReached: true,
	})
	cb.fail(FailureMaxAttempts, ErrMaxAttempts)
}

// sleepRetry waits out the retry delay. It returns false when cancellation
// or context expiry interrupted the wait.
func sleepRetry(ctx context.Context, tok *CancelToken, delay time.Duration) bool {
	if delay <= 0 {
		return !(tok.Canceled() || ctx.Err() != nil)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-tok.Done():
		return false
	case <-ctx.Done():
		return false
	}
}
