package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentQueueFIFO(t *testing.T) {
	q := NewSegmentQueue()
	require.Equal(t, 0, q.Len())

	_, ok := q.Dequeue()
	require.False(t, ok)

	for i := 1; i <= 3; i++ {
		q.Enqueue(Segment{Seq: uint64(i)})
	}
	require.Equal(t, 3, q.Len())

	for i := 1; i <= 3; i++ {
		seg, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, uint64(i), seg.Seq)
	}
	require.Equal(t, 0, q.Len())
	_, ok = q.Dequeue()
	require.False(t, ok)
}

func TestSegmentQueueClear(t *testing.T) {
	q := NewSegmentQueue()
	q.Enqueue(Segment{Seq: 1})
	q.Enqueue(Segment{Seq: 2})
	q.Clear()
	require.Equal(t, 0, q.Len())
	_, ok := q.Dequeue()
	require.False(t, ok)

	// Usable again after a clear.
	q.Enqueue(Segment{Seq: 3})
	seg, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, uint64(3), seg.Seq)
}
