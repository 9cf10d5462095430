package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterSinkLifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)

	require.ErrorIs(t, s.Ingest(Segment{Seq: 1}), ErrSinkNotOpen)
	require.ErrorIs(t, s.Finalize(), ErrSinkNotOpen)

	require.NoError(t, s.Open(FormatDescriptor{VideoCodec: "avc1.42E01E"}))
	require.ErrorIs(t, s.Open(FormatDescriptor{}), ErrSinkAlreadyOpen)

	require.NoError(t, s.Ingest(Segment{Seq: 1, Data: []byte("seg-a")}))
	res := <-s.Done()
	require.NoError(t, res.Err)
	require.Equal(t, uint64(1), res.Seq)
	require.False(t, s.Busy())

	require.NoError(t, s.Ingest(Segment{Seq: 2, Data: []byte("seg-b")}))
	res = <-s.Done()
	require.NoError(t, res.Err)
	require.Equal(t, uint64(2), res.Seq)

	require.Equal(t, "seg-aseg-b", buf.String())

	require.NoError(t, s.Finalize())
	require.ErrorIs(t, s.Finalize(), ErrSinkFinalized)
	require.ErrorIs(t, s.Ingest(Segment{Seq: 3}), ErrSinkFinalized)
	require.NoError(t, s.Close())
}

// gatedWriter blocks every write until released, making the busy window
// observable.
type gatedWriter struct {
	release chan struct{}
	buf     bytes.Buffer
}

func (w *gatedWriter) Write(p []byte) (int, error) {
	<-w.release
	return w.buf.Write(p)
}

func TestWriterSinkBusy(t *testing.T) {
	w := &gatedWriter{release: make(chan struct{})}
	s := NewWriterSink(w)
	require.NoError(t, s.Open(FormatDescriptor{AudioCodec: "mp4a.40.2"}))

	require.NoError(t, s.Ingest(Segment{Seq: 1, Data: []byte("seg-a")}))
	require.True(t, s.Busy())
	require.ErrorIs(t, s.Ingest(Segment{Seq: 2}), ErrSinkBusy)
	require.ErrorIs(t, s.Finalize(), ErrSinkBusy)

	w.release <- struct{}{}
	res := <-s.Done()
	require.NoError(t, res.Err)
	require.False(t, s.Busy())

	// The write is fully applied by the time the result is delivered.
	require.Equal(t, "seg-a", w.buf.String())
	require.NoError(t, s.Finalize())
}
