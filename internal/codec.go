package internal

import (
	"fmt"
	"strings"
)

type mediaKind int

const (
	audioKind mediaKind = iota
	videoKind
)

type codecEntry struct {
	tag  string
	kind mediaKind
}

// codecTable maps the short codec tokens of the wire protocol to concrete
// RFC 6381 codec strings. Tokens are classified by the table, not by their
// position in the start message, so "start:avc1:" negotiates a video-only
// format even though the first slot nominally carries the audio token.
var codecTable = map[string]codecEntry{
	"avc1": {"avc1.42E01E", videoKind},
	"hvc1": {"hvc1.1.6.L93.B0", videoKind},
	"av01": {"av01.0.05M.08", videoKind},
	"mp4a": {"mp4a.40.2", audioKind},
	"opus": {"opus", audioKind},
}

// FormatDescriptor is the result of codec negotiation for one session.
// Either codec string may be empty, meaning the track is absent.
type FormatDescriptor struct {
	AudioCodec string
	VideoCodec string
}

// MimeType returns the MediaSource-style MIME type for the format,
// video codec first.
func (f FormatDescriptor) MimeType() string {
	codecs := make([]string, 0, 2)
	if f.VideoCodec != "" {
		codecs = append(codecs, f.VideoCodec)
	}
	if f.AudioCodec != "" {
		codecs = append(codecs, f.AudioCodec)
	}
	return fmt.Sprintf("video/mp4; codecs=%q", strings.Join(codecs, ", "))
}

// Empty reports whether no track resolved at all.
func (f FormatDescriptor) Empty() bool {
	return f.AudioCodec == "" && f.VideoCodec == ""
}

// NegotiateFormat resolves codec tokens against the fixed table.
// Empty and unknown tokens are skipped; the first audio and first video
// match win. If nothing resolves, the session cannot play and
// ErrNoSupportedFormat is returned.
func NegotiateFormat(tokens ...string) (FormatDescriptor, error) {
	var f FormatDescriptor
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		entry, ok := codecTable[tok]
		if !ok {
			continue
		}
		switch entry.kind {
		case audioKind:
			if f.AudioCodec == "" {
				f.AudioCodec = entry.tag
			}
		case videoKind:
			if f.VideoCodec == "" {
				f.VideoCodec = entry.tag
			}
		}
	}
	if f.Empty() {
		return f, fmt.Errorf("%w: %q", ErrNoSupportedFormat, tokens)
	}
	return f, nil
}
