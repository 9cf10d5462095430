package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type bufferConn struct {
	bytes.Buffer
}

func (b *bufferConn) Close() error { return nil }

func TestStreamFrameConnRoundTrip(t *testing.T) {
	fc := NewStreamFrameConn(&bufferConn{})

	require.NoError(t, fc.WriteText("start:mp4a:avc1"))
	require.NoError(t, fc.WriteBinary([]byte{0x00, 0x01, 0x02}))
	require.NoError(t, fc.WriteText("stop"))

	fr, err := fc.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, FrameText, fr.Type)
	require.Equal(t, "start:mp4a:avc1", string(fr.Data))

	fr, err = fc.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, FrameBinary, fr.Type)
	require.Equal(t, []byte{0x00, 0x01, 0x02}, fr.Data)

	fr, err = fc.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, FrameText, fr.Type)
	require.Equal(t, "stop", string(fr.Data))
}

func TestStreamFrameConnEmptyPayload(t *testing.T) {
	fc := NewStreamFrameConn(&bufferConn{})
	require.NoError(t, fc.WriteBinary(nil))

	fr, err := fc.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, FrameBinary, fr.Type)
	require.Empty(t, fr.Data)
}

func TestWriteFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := writeFrame(&buf, Frame{
		Type: FrameBinary,
		Data: make([]byte, maxFramePayload+1),
	})
	require.ErrorIs(t, err, ErrFrameTooLarge)
	require.Zero(t, buf.Len(), "nothing is written for an oversized frame")
}

func TestReadFrameTooLarge(t *testing.T) {
	// Header claiming a payload over the cap.
	hdr := []byte{frameTagBinary, 0xff, 0xff, 0xff, 0xff}
	_, err := readFrame(bytes.NewReader(hdr))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadFrameUnknownTag(t *testing.T) {
	hdr := []byte{0x7f, 0x00, 0x00, 0x00, 0x00}
	_, err := readFrame(bytes.NewReader(hdr))
	require.Error(t, err)
}

func TestReadFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, Frame{Type: FrameText, Data: []byte("stop")}))
	truncated := buf.Bytes()[:buf.Len()-2]
	_, err := readFrame(bytes.NewReader(truncated))
	require.Error(t, err)
}
