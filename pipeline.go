package texload

import "context"

// attemptKind classifies the outcome of one pipeline attempt.
type attemptKind uint8

const (
	// attemptSuccess carries a decoded pixmap.
	attemptSuccess attemptKind = iota

	// attemptTransient is a retryable failure; the loader reports it and
	// continues the retry loop.
	attemptTransient

	// attemptFatal is a failure that also trips the load's cancellation
	// latch; no further attempts run.
	attemptFatal

	// attemptCanceled means cancellation was observed mid-attempt; the
	// loader terminates with an empty completion and no failure report.
	attemptCanceled
)

// AttemptOutcome is the classified result of one pipeline attempt.
//
// Pipelines never deliver terminal callbacks themselves; they return an
// outcome and the loader owns delivery, which is what guarantees exactly
// one terminal callback per load.
type AttemptOutcome struct {
	kind   attemptKind
	reason FailureReason
	err    error
}

// Success reports a decoded result.
func Success() AttemptOutcome {
	return AttemptOutcome{kind: attemptSuccess}
}

// Transient reports a retryable failure with the given classification.
func Transient(reason FailureReason, err error) AttemptOutcome {
	return AttemptOutcome{kind: attemptTransient, reason: reason, err: err}
}

// Fatal reports a failure that must also stop all future attempts.
func Fatal(reason FailureReason, err error) AttemptOutcome {
	return AttemptOutcome{kind: attemptFatal, reason: reason, err: err}
}

// Canceled reports that cancellation was observed during the attempt.
func Canceled() AttemptOutcome {
	return AttemptOutcome{kind: attemptCanceled, reason: FailureCanceled}
}

// Pipeline is the strategy that performs one load attempt.
//
// An implementation fetches and decodes a single resource, reporting its
// own progress as a fraction in [0, 1] through report. It polls tok at
// every suspension checkpoint and returns Canceled() when cancellation is
// observed; it must not invoke any loader callbacks.
type Pipeline interface {
	Attempt(ctx AttemptContext) (*Pixmap, AttemptOutcome)
}

// AttemptContext carries the collaborators of one attempt.
type AttemptContext struct {
	// Ctx is the caller's context. Pipelines pass it (bound to the cancel
	// token) to blocking collaborators.
	Ctx context.Context

	// Request is the load request being served.
	Request *LoadRequest

	// Token is the load's sticky cancellation latch.
	Token *CancelToken

	// Report emits attempt-scoped progress in [0, 1]. Never nil.
	Report func(fraction float64)
}
