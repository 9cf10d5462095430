package internal

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Stream transports (QUIC, WebTransport) have no native text/binary frame
// distinction, so frames carry an explicit type tag:
// 1 byte frame type, 4 bytes big-endian payload length, payload.
const (
	frameTagText   = 0x00
	frameTagBinary = 0x01

	maxFramePayload = 16 << 20
)

// writeFrame writes one tagged frame.
func writeFrame(w io.Writer, fr Frame) error {
	if len(fr.Data) > maxFramePayload {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(fr.Data))
	}
	var hdr [5]byte
	switch fr.Type {
	case FrameText:
		hdr[0] = frameTagText
	case FrameBinary:
		hdr[0] = frameTagBinary
	default:
		return fmt.Errorf("unknown frame type %d", fr.Type)
	}
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(fr.Data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(fr.Data)
	return err
}

// readFrame reads one tagged frame.
func readFrame(r io.Reader) (Frame, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}
	size := binary.BigEndian.Uint32(hdr[1:])
	if size > maxFramePayload {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	var ft FrameType
	switch hdr[0] {
	case frameTagText:
		ft = FrameText
	case frameTagBinary:
		ft = FrameBinary
	default:
		return Frame{}, fmt.Errorf("unknown frame tag 0x%02x", hdr[0])
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return Frame{}, err
	}
	return Frame{Type: ft, Data: data}, nil
}

// streamFrameConn runs the tagged framing over any byte stream.
type streamFrameConn struct {
	rwc io.ReadWriteCloser
	br  *bufio.Reader
}

// NewStreamFrameConn wraps a byte stream in the tagged frame protocol.
func NewStreamFrameConn(rwc io.ReadWriteCloser) FrameConn {
	return &streamFrameConn{
		rwc: rwc,
		br:  bufio.NewReader(rwc),
	}
}

func (c *streamFrameConn) ReadFrame() (Frame, error) {
	return readFrame(c.br)
}

func (c *streamFrameConn) WriteText(msg string) error {
	return writeFrame(c.rwc, Frame{Type: FrameText, Data: []byte(msg)})
}

func (c *streamFrameConn) WriteBinary(data []byte) error {
	return writeFrame(c.rwc, Frame{Type: FrameBinary, Data: data})
}

func (c *streamFrameConn) Close() error {
	return c.rwc.Close()
}
