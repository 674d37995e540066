package texload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelToken(t *testing.T) {
	tok := newCancelToken()
	assert.False(t, tok.Canceled())

	select {
	case <-tok.Done():
		t.Fatal("done channel closed before cancel")
	default:
	}

	tok.Cancel()
	tok.Cancel() // idempotent
	assert.True(t, tok.Canceled())

	select {
	case <-tok.Done():
	default:
		t.Fatal("done channel still open after cancel")
	}
}

func TestCancelTokenBind(t *testing.T) {
	t.Run("token trip cancels derived context", func(t *testing.T) {
		tok := newCancelToken()
		ctx, cancel := tok.bind(context.Background())
		defer cancel()

		require.NoError(t, ctx.Err())
		tok.Cancel()

		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("derived context not canceled after token trip")
		}
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		tok := newCancelToken()
		parent, parentCancel := context.WithCancel(context.Background())
		ctx, cancel := tok.bind(parent)
		defer cancel()

		parentCancel()
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("derived context not canceled after parent cancel")
		}
		// The token itself is untouched.
		assert.False(t, tok.Canceled())
	})
}
