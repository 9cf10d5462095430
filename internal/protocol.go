package internal

import (
	"fmt"
	"strings"
)

// Line-oriented control protocol, shared by the player and the mock server.
// Inbound (server to client): "start:<audioCodec>:<videoCodec>", "stop",
// "error:<reason>". Outbound (client to server): "next", "prev",
// "ID:<itemId>". Binary media segments travel as separate binary frames.
const (
	protoSeparator = ":"

	startMsgPref = "start"
	stopMsg      = "stop"
	errMsgPref   = "error"

	nextMsg       = "next"
	prevMsg       = "prev"
	selectMsgPref = "ID"
)

// ControlKind selects the control message variant.
type ControlKind int

const (
	ControlStart ControlKind = iota
	ControlStop
	ControlError
)

// Control is one parsed inbound control message.
type Control struct {
	Kind ControlKind

	// Start fields. Nominally audio then video, but tokens are classified
	// by the codec table during negotiation, not by slot.
	AudioToken string
	VideoToken string

	// Error field, surfaced verbatim to the user.
	Reason string
}

// ParseControl parses an inbound text frame into a control message.
func ParseControl(msg string) (Control, error) {
	switch {
	case msg == stopMsg:
		return Control{Kind: ControlStop}, nil
	case msg == startMsgPref || strings.HasPrefix(msg, startMsgPref+protoSeparator):
		parts := strings.SplitN(msg, protoSeparator, 3)
		c := Control{Kind: ControlStart}
		if len(parts) > 1 {
			c.AudioToken = parts[1]
		}
		if len(parts) > 2 {
			c.VideoToken = parts[2]
		}
		return c, nil
	case msg == errMsgPref || strings.HasPrefix(msg, errMsgPref+protoSeparator):
		parts := strings.SplitN(msg, protoSeparator, 2)
		c := Control{Kind: ControlError}
		if len(parts) > 1 {
			c.Reason = parts[1]
		}
		return c, nil
	}
	return Control{}, fmt.Errorf("%w: %q", ErrUnknownControl, msg)
}

// EncodeStart builds the start announcement for a new item.
func EncodeStart(audioToken, videoToken string) string {
	return startMsgPref + protoSeparator + audioToken + protoSeparator + videoToken
}

// EncodeStop builds the clean end-of-item message.
func EncodeStop() string {
	return stopMsg
}

// EncodeError builds the error message carrying a verbatim reason.
func EncodeError(reason string) string {
	return errMsgPref + protoSeparator + reason
}

// EncodeSelect builds the outbound request for a specific item.
func EncodeSelect(itemID string) string {
	return selectMsgPref + protoSeparator + itemID
}

// RequestKind selects the outbound navigation request variant.
type RequestKind int

const (
	RequestNext RequestKind = iota
	RequestPrev
	RequestSelect
)

// Request is one parsed client navigation request, as seen by a server.
type Request struct {
	Kind   RequestKind
	ItemID string
}

// ParseRequest parses an inbound text frame on the server side.
func ParseRequest(msg string) (Request, error) {
	switch {
	case msg == nextMsg:
		return Request{Kind: RequestNext}, nil
	case msg == prevMsg:
		return Request{Kind: RequestPrev}, nil
	case strings.HasPrefix(msg, selectMsgPref+protoSeparator):
		return Request{Kind: RequestSelect, ItemID: msg[len(selectMsgPref)+1:]}, nil
	}
	return Request{}, fmt.Errorf("%w: %q", ErrUnknownRequest, msg)
}
