package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestQueue_FIFO(t *testing.T) {
	q := newRequestQueue()

	assert.True(t, q.Enqueue(request{author: "a"}))
	assert.True(t, q.Enqueue(request{author: "b"}))
	assert.True(t, q.Enqueue(request{author: "c"}))
	assert.Equal(t, 3, q.Len())

	r, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, Author("a"), r.author)

	r, ok = q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, Author("b"), r.author)

	r, ok = q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, Author("c"), r.author)

	_, ok = q.TryDequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestRequestQueue_EnqueueSignals(t *testing.T) {
	q := newRequestQueue()

	q.Enqueue(request{author: "a"})

	select {
	case <-q.Wait():
	default:
		t.Fatal("expected a pending signal after enqueue")
	}
}

func TestRequestQueue_CloseRejectsAndWakes(t *testing.T) {
	q := newRequestQueue()
	q.Enqueue(request{author: "a"})

	q.Close()
	assert.True(t, q.Closed())

	// Closed queue rejects new work but still drains what was queued.
	assert.False(t, q.Enqueue(request{author: "b"}))
	assert.Equal(t, 1, q.Len())

	_, ok := q.TryDequeue()
	assert.True(t, ok)

	// The signal channel is closed, so waiters always wake.
	for i := 0; i < 3; i++ {
		select {
		case <-q.Wait():
		default:
			t.Fatal("wait channel should be closed after Close")
		}
	}
}

func TestRequestQueue_CloseIsIdempotent(t *testing.T) {
	q := newRequestQueue()
	q.Close()
	assert.NotPanics(t, q.Close)
}
