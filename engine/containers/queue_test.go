package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int](4)
	for i := 0; i < 3; i++ {
		q.Enqueue(i)
	}
	require.Equal(t, 3, q.Len())

	front, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, front)

	for i := 0; i < 3; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestQueue_GrowsWithoutDropping(t *testing.T) {
	q := NewQueue[int](2)
	// Move the read index so the grow has to unwrap the ring.
	q.Enqueue(-1)
	_, _ = q.Dequeue()

	for i := 0; i < 100; i++ {
		q.Enqueue(i)
	}
	require.Equal(t, 100, q.Len())
	assert.GreaterOrEqual(t, q.Cap(), 100)

	for i := 0; i < 100; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestQueue_ZeroCapacity(t *testing.T) {
	q := NewQueue[string](0)
	q.Enqueue("a")
	q.Enqueue("b")
	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", v)
}
