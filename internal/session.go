package internal

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of one playable item's session.
type SessionState int

const (
	SessionUninitialized SessionState = iota
	SessionNegotiating
	SessionReady
	SessionEnding
	SessionClosed
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionUninitialized:
		return "uninitialized"
	case SessionNegotiating:
		return "negotiating"
	case SessionReady:
		return "ready"
	case SessionEnding:
		return "ending"
	case SessionClosed:
		return "closed"
	case SessionFailed:
		return "failed"
	}
	return "unknown"
}

// Session represents the lifetime of one playable item. It exclusively
// owns one Sink from successful negotiation until the session terminates.
// At most one session is live at any time; the coordinator enforces that.
type Session struct {
	ID     string
	Format FormatDescriptor
	State  SessionState

	sink   Sink
	logger *slog.Logger
}

func NewSession(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:     uuid.NewString(),
		State:  SessionUninitialized,
		logger: logger,
	}
}

// Live reports whether the session has started and not yet terminated.
func (s *Session) Live() bool {
	switch s.State {
	case SessionNegotiating, SessionReady, SessionEnding:
		return true
	}
	return false
}

// Negotiate resolves the codec tokens, creates the session's sink and
// opens it. On any failure the session moves to Failed and no ingestion
// will ever happen on it.
func (s *Session) Negotiate(newSink SinkFactory, tokens ...string) error {
	s.State = SessionNegotiating
	format, err := NegotiateFormat(tokens...)
	if err != nil {
		s.State = SessionFailed
		return err
	}
	sink := newSink()
	if err := sink.Open(format); err != nil {
		s.State = SessionFailed
		return fmt.Errorf("open sink: %w", err)
	}
	s.Format = format
	s.sink = sink
	s.State = SessionReady
	s.logger.Info("session ready",
		"session", s.ID,
		"format", format.MimeType())
	return nil
}

// Ingest hands one segment to the sink.
func (s *Session) Ingest(seg Segment) error {
	if s.sink == nil {
		return ErrSinkNotOpen
	}
	return s.sink.Ingest(seg)
}

// Busy reports the sink's busy signal. A session without a sink is idle.
func (s *Session) Busy() bool {
	return s.sink != nil && s.sink.Busy()
}

// SinkDone returns the sink's completion channel, or nil when the session
// has no sink (a nil channel never fires in a select).
func (s *Session) SinkDone() <-chan IngestResult {
	if s.sink == nil {
		return nil
	}
	return s.sink.Done()
}

// BeginEnding moves a live session into Ending. Queued segments are the
// coordinator's to discard; the session just stops being ingestible.
func (s *Session) BeginEnding() {
	if s.State == SessionReady || s.State == SessionNegotiating {
		s.State = SessionEnding
		s.logger.Debug("session ending", "session", s.ID)
	}
}

// Finalize invokes the sink's end-of-stream finalize and closes the sink.
// Must not be called while an ingestion is outstanding. A finalize failure
// is logged and non-fatal: the session still transitions to Closed.
func (s *Session) Finalize() {
	if s.sink != nil {
		if err := s.sink.Finalize(); err != nil {
			s.logger.Warn("sink finalize failed",
				"session", s.ID,
				"error", err)
		}
	}
	s.State = SessionClosed
	s.CloseSink()
	s.logger.Info("session closed", "session", s.ID)
}

// Fail moves the session to the terminal Failed state.
func (s *Session) Fail() {
	s.State = SessionFailed
	s.logger.Debug("session failed", "session", s.ID)
}

// CloseSink releases the session's sink, if any. Idempotent.
func (s *Session) CloseSink() {
	if s.sink == nil {
		return
	}
	if err := s.sink.Close(); err != nil {
		s.logger.Warn("sink close failed",
			"session", s.ID,
			"error", err)
	}
	s.sink = nil
}
