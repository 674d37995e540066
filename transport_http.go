package texload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Transport-level errors mapped from HTTP status codes.
var (
	ErrNotFound     = errors.New("texload: resource not found")
	ErrForbidden    = errors.New("texload: access forbidden")
	ErrUnauthorized = errors.New("texload: unauthorized")
	ErrServerError  = errors.New("texload: server error")
)

// HTTPTransportConfig configures an HTTPTransport.
type HTTPTransportConfig struct {
	// Client is the http.Client used for requests. If nil, a client with
	// a 30 second timeout is used.
	Client *http.Client

	// InactivityTimeout aborts a transfer when no data arrives for this
	// duration. Zero disables the watchdog.
	InactivityTimeout time.Duration
}

// HTTPTransport fetches resources over HTTP(S) with fractional progress
// reporting derived from Content-Length.
type HTTPTransport struct {
	config HTTPTransportConfig
}

// NewHTTPTransport creates an HTTP transport with the given configuration.
func NewHTTPTransport(config HTTPTransportConfig) *HTTPTransport {
	if config.Client == nil {
		config.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{config: config}
}

// Fetch implements the Transport interface. The whole payload is buffered
// in memory; texload feeds it straight into a decoder, so there is no
// streaming consumer to hand it to.
func (t *HTTPTransport) Fetch(ctx context.Context, url string, headers map[string]string, onProgress func(fraction float64)) ([]byte, error) {
	ctx, wd := newWatchdog(ctx, t.config.InactivityTimeout)
	defer wd.Stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("setting up request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.config.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatusCode(resp.StatusCode); err != nil {
		return nil, err
	}

	total := resp.ContentLength // -1 if the server doesn't send it
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	chunk := [4096]byte{}
	for {
		n, err := resp.Body.Read(chunk[:])
		if n > 0 {
			wd.Kick()
			_, _ = buf.Write(chunk[:n])
			if onProgress != nil && total > 0 {
				onProgress(clampFraction(float64(buf.Len()) / float64(total)))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if cause := context.Cause(ctx); cause != nil && errors.Is(cause, os.ErrDeadlineExceeded) {
				return nil, fmt.Errorf("transfer stalled: %w", cause)
			}
			return nil, err
		}
	}

	if onProgress != nil {
		onProgress(1)
	}
	return buf.Bytes(), nil
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServerError, code)
	default:
		return fmt.Errorf("texload: unexpected status code: %d", code)
	}
}

// watchdog aborts a transfer when no data arrives for the configured
// timeout. Each received chunk kicks the timer forward.
type watchdog struct {
	cancel  context.CancelCauseFunc
	timer   *time.Timer
	timeout time.Duration
}

func newWatchdog(parent context.Context, timeout time.Duration) (context.Context, watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() {
			cancel(os.ErrDeadlineExceeded)
		})
	}
	return ctx, watchdog{cancel: cancel, timer: timer, timeout: timeout}
}

func (wd *watchdog) Kick() {
	if wd.timeout > 0 {
		wd.timer.Reset(wd.timeout)
	}
}

func (wd *watchdog) Stop() {
	if wd.timeout > 0 {
		wd.timer.Stop()
	}
	wd.cancel(nil)
}
