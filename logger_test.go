package texload

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	l := Logger()
	require.NotNil(t, l)
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	Logger().Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "k=v")

	// nil restores the silent default.
	SetLogger(nil)
	buf.Reset()
	Logger().Info("dropped")
	assert.Empty(t, buf.String())
}

// loggerBackend records logger propagation.
type loggerBackend struct {
	countingBackend
	logger *slog.Logger
}

func (b *loggerBackend) SetLogger(l *slog.Logger) { b.logger = l }

func TestSetLoggerPropagatesToBackends(t *testing.T) {
	defer SetLogger(nil)

	b := &loggerBackend{countingBackend: countingBackend{name: "logged"}}
	RegisterBackend(b)
	defer UnregisterBackend("logged")

	// Registration hands the current logger over immediately.
	require.NotNil(t, b.logger)

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(l)
	assert.Same(t, l, b.logger)

	b.logger.Warn("from backend")
	assert.True(t, strings.Contains(buf.String(), "from backend"))
}
