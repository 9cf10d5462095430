package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionNegotiate(t *testing.T) {
	rec := &sinkRecorder{}
	s := NewSession(discardLogger())
	require.Equal(t, SessionUninitialized, s.State)
	require.False(t, s.Live())
	require.Nil(t, s.SinkDone())

	err := s.Negotiate(rec.factory, "mp4a", "avc1")
	require.NoError(t, err)
	require.Equal(t, SessionReady, s.State)
	require.True(t, s.Live())
	require.Equal(t, FormatDescriptor{
		AudioCodec: "mp4a.40.2",
		VideoCodec: "avc1.42E01E",
	}, s.Format)
	require.Len(t, rec.sinks, 1)
	require.True(t, rec.sinks[0].opened)
	require.NotNil(t, s.SinkDone())
}

func TestSessionNegotiateNoFormat(t *testing.T) {
	rec := &sinkRecorder{}
	s := NewSession(discardLogger())

	err := s.Negotiate(rec.factory, "", "")
	require.ErrorIs(t, err, ErrNoSupportedFormat)
	require.Equal(t, SessionFailed, s.State)
	require.False(t, s.Live())
	require.Empty(t, rec.sinks)
}

func TestSessionNegotiateOpenFailure(t *testing.T) {
	openErr := errors.New("buffer exhausted")
	s := NewSession(discardLogger())

	err := s.Negotiate(func() Sink {
		sink := newFakeSink()
		sink.openErr = openErr
		return sink
	}, "mp4a", "")
	require.ErrorIs(t, err, openErr)
	require.Equal(t, SessionFailed, s.State)
}

func TestSessionFinalize(t *testing.T) {
	rec := &sinkRecorder{}
	s := NewSession(discardLogger())
	require.NoError(t, s.Negotiate(rec.factory, "mp4a", ""))
	sink := rec.sinks[0]

	s.BeginEnding()
	require.Equal(t, SessionEnding, s.State)
	require.True(t, s.Live())

	s.Finalize()
	require.Equal(t, SessionClosed, s.State)
	require.False(t, s.Live())
	require.True(t, sink.finalized)
	require.True(t, sink.closed)
	require.False(t, s.Busy())
	require.Nil(t, s.SinkDone())
}

func TestSessionFinalizeFailureNonFatal(t *testing.T) {
	rec := &sinkRecorder{}
	s := NewSession(discardLogger())
	require.NoError(t, s.Negotiate(rec.factory, "mp4a", ""))
	rec.sinks[0].finalizeErr = errors.New("already detached")

	s.Finalize()
	require.Equal(t, SessionClosed, s.State, "a finalize failure still closes the session")
	require.True(t, rec.sinks[0].closed)
}

func TestSessionFail(t *testing.T) {
	rec := &sinkRecorder{}
	s := NewSession(discardLogger())
	require.NoError(t, s.Negotiate(rec.factory, "", "avc1"))

	s.Fail()
	require.Equal(t, SessionFailed, s.State)
	require.False(t, s.Live())

	s.CloseSink()
	require.True(t, rec.sinks[0].closed)
	s.CloseSink() // idempotent
}

func TestSessionIngestWithoutSink(t *testing.T) {
	s := NewSession(discardLogger())
	require.ErrorIs(t, s.Ingest(Segment{Seq: 1}), ErrSinkNotOpen)
	require.False(t, s.Busy())
}
