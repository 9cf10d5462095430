package internal

import (
	"context"
	"log/slog"
	"time"
)

// Notifier surfaces user-visible playback notices (negotiation failures,
// ingestion failures, server-reported errors).
type Notifier interface {
	Notice(msg string)
}

type slogNotifier struct {
	logger *slog.Logger
}

func (n *slogNotifier) Notice(msg string) {
	n.logger.Warn("playback notice", "notice", msg)
}

type navKind int

const (
	navSetItems navKind = iota
	navNext
	navPrev
	navSelect
)

type navCommand struct {
	kind  navKind
	id    string
	items []string
}

// CoordinatorConfig carries the tunables of a Coordinator.
type CoordinatorConfig struct {
	// HighWater is the queue length at which frame intake pauses.
	HighWater int
	Notifier  Notifier
	Logger    *slog.Logger
}

const defaultHighWater = 32

// Coordinator owns all playback state for one connection: the segment
// queue, the live session and its sink, and the navigation playlist.
// Everything is mutated from the single event loop in Run; the only
// concurrency is the frame reader goroutine and the sink's completion
// signal, both of which are funneled into that loop.
type Coordinator struct {
	conn     FrameConn
	newSink  SinkFactory
	queue    *SegmentQueue
	playlist *Playlist
	session  *Session
	notifier Notifier
	logger   *slog.Logger

	highWater int
	frames    chan Frame
	commands  chan navCommand

	seq          uint64
	pendingStart *Control
	pendingStop  bool
	connLost     bool
	framesClosed bool
}

func NewCoordinator(conn FrameConn, newSink SinkFactory, cfg CoordinatorConfig) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = &slogNotifier{logger: logger}
	}
	highWater := cfg.HighWater
	if highWater <= 0 {
		highWater = defaultHighWater
	}
	return &Coordinator{
		conn:      conn,
		newSink:   newSink,
		queue:     NewSegmentQueue(),
		playlist:  NewPlaylist(),
		notifier:  notifier,
		logger:    logger,
		highWater: highWater,
		frames:    make(chan Frame, 1),
		commands:  make(chan navCommand, 16),
	}
}

// SetItems hands the coordinator the externally rendered ordered item list.
func (c *Coordinator) SetItems(ids []string) {
	c.command(navCommand{kind: navSetItems, items: append([]string(nil), ids...)})
}

// Next requests the item following the current one.
func (c *Coordinator) Next() {
	c.command(navCommand{kind: navNext})
}

// Prev requests the item preceding the current one.
func (c *Coordinator) Prev() {
	c.command(navCommand{kind: navPrev})
}

// Select requests a specific item by identifier.
func (c *Coordinator) Select(id string) {
	c.command(navCommand{kind: navSelect, id: id})
}

func (c *Coordinator) command(cmd navCommand) {
	select {
	case c.commands <- cmd:
	default:
		c.logger.Warn("command queue full, dropping navigation command")
	}
}

// Run drives the coordinator until the context is cancelled or the
// connection is lost. Connection loss is an implicit stop: the live
// session is finalized best-effort and Run returns nil, leaving the
// caller free to reconnect and run a fresh coordinator.
func (c *Coordinator) Run(ctx context.Context) error {
	go c.readFrames(ctx)

	for {
		frames := c.frames
		if c.framesClosed || c.intakePaused() {
			frames = nil
		}
		var done <-chan IngestResult
		if c.session != nil {
			done = c.session.SinkDone()
		}

		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case fr, ok := <-frames:
			if !ok {
				c.handleConnLost()
				break
			}
			c.handleFrame(fr)
		case cmd := <-c.commands:
			c.handleCommand(cmd)
		case res := <-done:
			c.handleIngestResult(res)
		}

		c.pump()

		if c.connLost && c.settled() {
			c.logger.Info("connection lost, coordinator idle")
			return nil
		}
	}
}

// intakePaused reports whether frame intake is suspended for backpressure.
func (c *Coordinator) intakePaused() bool {
	return c.queue.Len() >= c.highWater
}

// settled reports whether no session work remains.
func (c *Coordinator) settled() bool {
	return c.session == nil || !c.session.Live()
}

func (c *Coordinator) readFrames(ctx context.Context) {
	defer close(c.frames)
	for {
		fr, err := c.conn.ReadFrame()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Info("connection read ended", "error", err)
			}
			return
		}
		select {
		case c.frames <- fr:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Coordinator) handleFrame(fr Frame) {
	switch fr.Type {
	case FrameBinary:
		c.handleSegment(fr.Data)
	case FrameText:
		ctrl, err := ParseControl(string(fr.Data))
		if err != nil {
			c.logger.Warn("ignoring control frame", "error", err)
			return
		}
		c.handleControl(ctrl)
	}
}

func (c *Coordinator) handleSegment(data []byte) {
	if c.session == nil || c.session.State != SessionReady {
		c.logger.Debug("dropping segment without ready session",
			"size", len(data))
		return
	}
	c.seq++
	c.queue.Enqueue(Segment{
		Seq:     c.seq,
		Data:    data,
		Arrived: time.Now(),
	})
}

func (c *Coordinator) handleControl(ctrl Control) {
	switch ctrl.Kind {
	case ControlStart:
		c.handleStart(ctrl)
	case ControlStop:
		c.handleStop()
	case ControlError:
		c.handleServerError(ctrl)
	}
}

// handleStart begins a new session. A start while a session is live is an
// implicit stop-then-start: the old session's residual segments are
// discarded, its in-flight ingestion (if any) is awaited, and only then is
// it finalized and replaced.
func (c *Coordinator) handleStart(ctrl Control) {
	if c.session != nil && c.session.Live() {
		c.logger.Info("start supersedes live session",
			"session", c.session.ID)
		c.queue.Clear()
		c.session.BeginEnding()
		if c.session.Busy() {
			c.pendingStart = &ctrl
			c.pendingStop = false
			return
		}
		c.session.Finalize()
	}
	c.startSession(ctrl)
}

func (c *Coordinator) startSession(ctrl Control) {
	c.queue.Clear()
	sess := NewSession(c.logger)
	c.session = sess
	if err := sess.Negotiate(c.newSink, ctrl.AudioToken, ctrl.VideoToken); err != nil {
		c.logger.Error("session negotiation failed",
			"session", sess.ID,
			"audioToken", ctrl.AudioToken,
			"videoToken", ctrl.VideoToken,
			"error", err)
		c.notifier.Notice("unable to play item: " + err.Error())
	}
}

func (c *Coordinator) handleStop() {
	c.pendingStart = nil
	if c.session == nil || !c.session.Live() {
		c.logger.Debug("stop without live session")
		return
	}
	c.queue.Clear()
	c.session.BeginEnding()
	if c.session.Busy() {
		c.pendingStop = true
		return
	}
	c.session.Finalize()
}

// handleServerError aborts the current session and surfaces the reason
// verbatim. The coordinator stays able to accept a subsequent start.
func (c *Coordinator) handleServerError(ctrl Control) {
	c.notifier.Notice(ctrl.Reason)
	c.pendingStart = nil
	c.pendingStop = false
	if c.session == nil || !c.session.Live() {
		return
	}
	c.logger.Error("server reported error",
		"session", c.session.ID,
		"reason", ctrl.Reason)
	c.queue.Clear()
	c.session.Fail()
	if !c.session.Busy() {
		c.session.CloseSink()
	}
}

func (c *Coordinator) handleIngestResult(res IngestResult) {
	s := c.session
	if s == nil {
		return
	}
	switch {
	case !s.Live():
		// Session already failed or closed; drop the straggler result.
		s.CloseSink()
	case res.Err != nil:
		c.logger.Error("ingestion failed",
			"session", s.ID,
			"seq", res.Seq,
			"error", res.Err)
		c.notifier.Notice("playback failed: " + res.Err.Error())
		c.queue.Clear()
		s.Fail()
		s.CloseSink()
		c.finishPending()
	case s.State == SessionEnding:
		c.pendingStop = false
		s.Finalize()
		c.finishPending()
	}
	// A Ready session with a clean result needs nothing here; the pump
	// after this event issues the next ingest.
}

// finishPending applies a start deferred behind an in-flight ingestion.
func (c *Coordinator) finishPending() {
	if c.pendingStart == nil {
		return
	}
	ctrl := *c.pendingStart
	c.pendingStart = nil
	c.startSession(ctrl)
}

func (c *Coordinator) handleCommand(cmd navCommand) {
	switch cmd.kind {
	case navSetItems:
		c.playlist.SetItems(cmd.items)
	case navNext:
		if id, ok := c.playlist.Next(); ok {
			c.sendSelect(id)
		}
	case navPrev:
		if id, ok := c.playlist.Prev(); ok {
			c.sendSelect(id)
		}
	case navSelect:
		if id, ok := c.playlist.Select(cmd.id); ok {
			c.sendSelect(id)
		}
	}
}

func (c *Coordinator) sendSelect(id string) {
	if c.connLost {
		return
	}
	c.logger.Info("requesting item", "item", id)
	if err := c.conn.WriteText(EncodeSelect(id)); err != nil {
		c.logger.Error("failed to send select request",
			"item", id,
			"error", err)
	}
}

// pump hands the next segment to the sink whenever the session is ready,
// the sink is idle and the queue is non-empty. It runs after every loop
// event, so it is edge-triggered by both segment arrival and the sink's
// idle transition, and never issues two concurrent ingestions.
func (c *Coordinator) pump() {
	s := c.session
	if s == nil || s.State != SessionReady || s.Busy() {
		return
	}
	seg, ok := c.queue.Dequeue()
	if !ok {
		return
	}
	if err := s.Ingest(seg); err != nil {
		c.logger.Error("ingest rejected",
			"session", s.ID,
			"seq", seg.Seq,
			"error", err)
		c.notifier.Notice("playback failed: " + err.Error())
		c.queue.Clear()
		s.Fail()
		if !s.Busy() {
			s.CloseSink()
		}
	}
}

// handleConnLost treats connection loss as an implicit stop: pending
// segments are discarded and the live session is finalized best-effort
// once no ingestion is in flight.
func (c *Coordinator) handleConnLost() {
	c.framesClosed = true
	c.connLost = true
	c.pendingStart = nil
	if c.session == nil || !c.session.Live() {
		return
	}
	c.queue.Clear()
	c.session.BeginEnding()
	if c.session.Busy() {
		c.pendingStop = true
		return
	}
	c.session.Finalize()
}

func (c *Coordinator) shutdown() {
	if c.session != nil && c.session.Live() && !c.session.Busy() {
		c.session.Finalize()
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Debug("connection close", "error", err)
	}
}
