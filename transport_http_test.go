package texload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportFetch(t *testing.T) {
	payload := make([]byte, 16*1024)
	for i := range payload {
		payload[i] = byte(i)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(HTTPTransportConfig{})

	var fractions []float64
	got, err := transport.Fetch(context.Background(), srv.URL, nil, func(f float64) {
		fractions = append(fractions, f)
	})
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Progress is monotonic, clamped to [0,1], and finishes at 1.
	require.NotEmpty(t, fractions)
	for i, f := range fractions {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, f, fractions[i-1])
		}
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestHTTPTransportForwardsHeaders(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	transport := NewHTTPTransport(HTTPTransportConfig{})
	_, err := transport.Fetch(context.Background(), srv.URL, map[string]string{
		"Authorization": "Bearer token",
		"User-Agent":    "texload-test",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "texload-test", gotAgent)
}

func TestHTTPTransportStatusMapping(t *testing.T) {
	tests := []struct {
		code    int
		wantErr error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusBadGateway, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			transport := NewHTTPTransport(HTTPTransportConfig{})
			_, err := transport.Fetch(context.Background(), srv.URL, nil, nil)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckStatusCode(t *testing.T) {
	assert.NoError(t, checkStatusCode(200))
	assert.NoError(t, checkStatusCode(204))
	assert.Error(t, checkStatusCode(301))
	assert.ErrorIs(t, checkStatusCode(404), ErrNotFound)
	assert.ErrorIs(t, checkStatusCode(503), ErrServerError)
}

func TestHTTPTransportContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	transport := NewHTTPTransport(HTTPTransportConfig{})
	_, err := transport.Fetch(ctx, srv.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}

func TestHTTPTransportWatchdog(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1024")
		_, _ = w.Write(make([]byte, 16))
		w.(http.Flusher).Flush()
		<-release // stall the transfer
	}))
	defer srv.Close()
	defer close(release)

	transport := NewHTTPTransport(HTTPTransportConfig{
		InactivityTimeout: 50 * time.Millisecond,
	})
	_, err := transport.Fetch(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestHTTPTransportNoContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flush before writing so the response goes out chunked, without
		// a Content-Length.
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		_, _ = w.Write(make([]byte, 8192))
	}))
	defer srv.Close()

	transport := NewHTTPTransport(HTTPTransportConfig{})
	var fractions []float64
	got, err := transport.Fetch(context.Background(), srv.URL, nil, func(f float64) {
		fractions = append(fractions, f)
	})
	require.NoError(t, err)
	assert.Len(t, got, 8192)

	// Without a total size only the final completion is reported.
	assert.Equal(t, []float64{1}, fractions)
}
