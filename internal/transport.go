package internal

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// FrameType distinguishes control text from binary media payload at the
// transport framing level.
type FrameType int

const (
	FrameText FrameType = iota
	FrameBinary
)

// Frame is one inbound transport frame.
type Frame struct {
	Type FrameType
	Data []byte
}

// FrameConn is one persistent bidirectional connection carrying text
// control frames and binary payload frames. Implementations assume a
// single reader and a single writer goroutine.
type FrameConn interface {
	ReadFrame() (Frame, error)
	WriteText(msg string) error
	WriteBinary(data []byte) error
	Close() error
}

// wsFrameConn adapts a gorilla websocket connection, where text/binary
// framing is native.
type wsFrameConn struct {
	conn *websocket.Conn
}

// NewWebSocketFrameConn wraps an established websocket connection.
func NewWebSocketFrameConn(conn *websocket.Conn) FrameConn {
	return &wsFrameConn{conn: conn}
}

// DialWebSocket connects to a ws:// or wss:// URL.
func DialWebSocket(ctx context.Context, url string) (FrameConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket %s: %w", url, err)
	}
	return &wsFrameConn{conn: conn}, nil
}

func (c *wsFrameConn) ReadFrame() (Frame, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return Frame{}, err
		}
		switch msgType {
		case websocket.TextMessage:
			return Frame{Type: FrameText, Data: data}, nil
		case websocket.BinaryMessage:
			return Frame{Type: FrameBinary, Data: data}, nil
		default:
			// Control frames (ping/pong/close) are handled by gorilla.
			continue
		}
	}
}

func (c *wsFrameConn) WriteText(msg string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (c *wsFrameConn) WriteBinary(data []byte) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c *wsFrameConn) Close() error {
	return c.conn.Close()
}
