package texload

import "context"

// Transport performs the byte-oriented network fetch for a pipeline.
//
// Fetch downloads url into memory, invoking onProgress zero or more times
// with the fractional completion in [0, 1]. When the payload size is not
// known in advance, implementations report 0 until the transfer completes.
// Aborting an in-flight fetch is done by canceling ctx; the returned error
// then wraps ctx.Err().
type Transport interface {
	Fetch(ctx context.Context, url string, headers map[string]string, onProgress func(fraction float64)) ([]byte, error)
}
