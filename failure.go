package texload

import (
	"errors"
	"fmt"
)

// Common texload errors.
var (
	// ErrLoadInFlight is returned by Load when the loader already has an
	// outstanding load. A Loader serves one load at a time.
	ErrLoadInFlight = errors.New("texload: load already in flight")

	// ErrNonReadable is returned when pixel data is requested from a
	// pixmap that has been marked non-readable.
	ErrNonReadable = errors.New("texload: pixmap is non-readable")

	// ErrEmptyResponse indicates the transport delivered no payload.
	ErrEmptyResponse = errors.New("texload: empty response")

	// ErrMaxAttempts indicates the retry budget was exhausted without a
	// successful attempt.
	ErrMaxAttempts = errors.New("texload: max attempts reached")
)

// FailureReason classifies a load failure reported through
// Callbacks.OnFailure.
type FailureReason uint8

const (
	// FailureRequest is a transport-level failure. Transient: the retry
	// loop continues.
	FailureRequest FailureReason = iota

	// FailureMaxAttempts is emitted exactly once, when the attempt budget
	// is exhausted without success or cancellation. It is always the last
	// callback of a permanently failing load.
	FailureMaxAttempts

	// FailureEmptyResponse indicates an empty payload or an undecodable
	// response. Transient: the retry loop continues.
	FailureEmptyResponse

	// FailureCanceled is reserved. Cancellation terminates a load as a
	// completion with an empty result, so this value is never delivered
	// through the failure channel.
	FailureCanceled

	// FailureOther is an unclassified failure. When produced by the
	// two-phase pipeline's decode stage it is fatal: the load's
	// cancellation latch is set and no further attempts run.
	FailureOther
)

// String returns a human-readable name for the failure reason.
func (r FailureReason) String() string {
	switch r {
	case FailureRequest:
		return "request error"
	case FailureMaxAttempts:
		return "max attempts reached"
	case FailureEmptyResponse:
		return "empty response"
	case FailureCanceled:
		return "canceled"
	case FailureOther:
		return "other"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}
