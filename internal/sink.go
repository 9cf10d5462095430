package internal

import (
	"io"
	"os"
	"sync/atomic"
)

// IngestResult reports the completion of one asynchronous ingest call.
type IngestResult struct {
	Seq uint64
	Err error
}

// Sink abstracts the platform's asynchronous, single-in-flight media
// ingestion resource. Ingest starts an append and returns immediately;
// completion is delivered on Done. The busy signal is authoritative:
// callers must never issue a second Ingest, or a Finalize, while it is set.
type Sink interface {
	// Open negotiates the sink for the given format. Must be called once,
	// before any ingestion.
	Open(format FormatDescriptor) error
	// Ingest starts appending one segment. Returns ErrSinkBusy if an
	// ingestion is already outstanding.
	Ingest(seg Segment) error
	// Busy reports whether an ingestion is outstanding.
	Busy() bool
	// Finalize signals end of stream. Fails with ErrSinkBusy while an
	// ingestion is outstanding.
	Finalize() error
	// Done delivers one IngestResult per Ingest call.
	Done() <-chan IngestResult
	// Close releases the sink. Safe to call after Finalize or on abort.
	Close() error
}

// SinkFactory creates the sink for one session. Each session owns its
// sink exclusively for its whole lifetime.
type SinkFactory func() Sink

// WriterSink is a Sink backed by an io.Writer. Appends complete
// asynchronously on a per-ingest goroutine, which models the busy/idle
// behavior of a real media buffer closely enough for the player's file
// output and for tests.
type WriterSink struct {
	w         io.Writer
	format    FormatDescriptor
	opened    bool
	finalized bool
	busy      atomic.Bool
	done      chan IngestResult
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{
		w:    w,
		done: make(chan IngestResult, 1),
	}
}

func (s *WriterSink) Open(format FormatDescriptor) error {
	if s.opened {
		return ErrSinkAlreadyOpen
	}
	s.format = format
	s.opened = true
	return nil
}

func (s *WriterSink) Ingest(seg Segment) error {
	if !s.opened {
		return ErrSinkNotOpen
	}
	if s.finalized {
		return ErrSinkFinalized
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrSinkBusy
	}
	go func() {
		_, err := s.w.Write(seg.Data)
		// The write is fully applied before the busy flag drops, so a
		// Finalize issued after Busy() turns false is always safe.
		s.busy.Store(false)
		s.done <- IngestResult{Seq: seg.Seq, Err: err}
	}()
	return nil
}

func (s *WriterSink) Busy() bool {
	return s.busy.Load()
}

func (s *WriterSink) Finalize() error {
	if !s.opened {
		return ErrSinkNotOpen
	}
	if s.busy.Load() {
		return ErrSinkBusy
	}
	if s.finalized {
		return ErrSinkFinalized
	}
	s.finalized = true
	return nil
}

func (s *WriterSink) Done() <-chan IngestResult {
	return s.done
}

func (s *WriterSink) Close() error {
	if closer, ok := s.w.(io.Closer); ok && closer != os.Stdout {
		return closer.Close()
	}
	return nil
}
