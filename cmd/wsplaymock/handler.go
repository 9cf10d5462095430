package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"

	"github.com/vodmock/wsplay/internal"
)

// item is one servable MP4 file with its probed codec tokens.
type item struct {
	id         string
	path       string
	audioToken string
	videoToken string
}

// loadLibrary scans dir for MP4 files and probes their codecs. Files that
// cannot be probed are skipped with a warning.
func loadLibrary(dir string) ([]item, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.mp4"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var items []item
	for _, path := range paths {
		audioToken, videoToken, err := internal.ProbeFile(path)
		if err != nil {
			slog.Warn("skipping item, codec probe failed",
				"path", path,
				"error", err)
			continue
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		items = append(items, item{
			id:         id,
			path:       path,
			audioToken: audioToken,
			videoToken: videoToken,
		})
		slog.Info("loaded item",
			"id", id,
			"audioToken", audioToken,
			"videoToken", videoToken)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no servable MP4 items in %s", dir)
	}
	return items, nil
}

// streamHandler serves the item library over any FrameConn.
type streamHandler struct {
	ctx       context.Context
	items     []item
	chunkSize int
	pace      time.Duration
	logger    *slog.Logger
}

func (h *streamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	h.logger.Info("client connected", "remote", conn.RemoteAddr().String())
	h.serve(h.ctx, internal.NewWebSocketFrameConn(conn))
}

// serve runs one client connection: navigation requests come in, start
// announcements, binary chunks and stop/error messages go out. A new
// request supersedes the running stream, which is cancelled and awaited
// before anything else is written.
func (h *streamHandler) serve(ctx context.Context, fc internal.FrameConn) {
	defer fc.Close()

	requests := make(chan internal.Request)
	go func() {
		defer close(requests)
		for {
			fr, err := fc.ReadFrame()
			if err != nil {
				return
			}
			if fr.Type != internal.FrameText {
				continue
			}
			req, err := internal.ParseRequest(string(fr.Data))
			if err != nil {
				h.logger.Warn("ignoring request", "error", err)
				continue
			}
			select {
			case requests <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	idx := -1
	var cancelStream context.CancelFunc
	var streamDone chan struct{}
	stopCurrent := func() {
		if cancelStream != nil {
			cancelStream()
			<-streamDone
			cancelStream = nil
		}
	}
	defer stopCurrent()

	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-requests:
			if !ok {
				h.logger.Info("client disconnected")
				return
			}
			target, err := h.resolve(req, &idx)
			stopCurrent()
			if err != nil {
				h.logger.Warn("cannot serve request", "error", err)
				if werr := fc.WriteText(internal.EncodeError(err.Error())); werr != nil {
					return
				}
				continue
			}
			streamCtx, cancel := context.WithCancel(ctx)
			cancelStream = cancel
			streamDone = make(chan struct{})
			go h.streamItem(streamCtx, fc, target, streamDone)
		}
	}
}

// resolve maps a navigation request onto the served item order, clamping
// next/prev at the ends.
func (h *streamHandler) resolve(req internal.Request, idx *int) (item, error) {
	switch req.Kind {
	case internal.RequestSelect:
		for i, it := range h.items {
			if it.id == req.ItemID {
				*idx = i
				return it, nil
			}
		}
		return item{}, fmt.Errorf("unknown item id %q", req.ItemID)
	case internal.RequestNext:
		if *idx < len(h.items)-1 {
			*idx++
		}
	case internal.RequestPrev:
		if *idx > 0 {
			*idx--
		}
	}
	if *idx < 0 {
		*idx = 0
	}
	return h.items[*idx], nil
}

// streamItem announces one item and pushes its content in paced binary
// chunks, ending with a stop message. A superseding request cancels the
// context; the stream then just stops, the next start announcement is the
// client's cue.
func (h *streamHandler) streamItem(ctx context.Context, fc internal.FrameConn, it item, done chan<- struct{}) {
	defer close(done)

	h.logger.Info("streaming item", "item", it.id)
	if err := fc.WriteText(internal.EncodeStart(it.audioToken, it.videoToken)); err != nil {
		return
	}

	fh, err := os.Open(it.path)
	if err != nil {
		h.logger.Error("unable to open item", "item", it.id, "error", err)
		_ = fc.WriteText(internal.EncodeError("unable to open item " + it.id))
		return
	}
	defer fh.Close()

	buf := make([]byte, h.chunkSize)
	for {
		if ctx.Err() != nil {
			h.logger.Info("stream superseded", "item", it.id)
			return
		}
		n, err := fh.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if werr := fc.WriteBinary(chunk); werr != nil {
				return
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			h.logger.Error("read failed", "item", it.id, "error", err)
			_ = fc.WriteText(internal.EncodeError("item read failed"))
			return
		}
		if h.pace > 0 {
			select {
			case <-ctx.Done():
				h.logger.Info("stream superseded", "item", it.id)
				return
			case <-time.After(h.pace):
			}
		}
	}

	if err := fc.WriteText(internal.EncodeStop()); err != nil {
		return
	}
	h.logger.Info("item streamed", "item", it.id)
}

// serveQUIC accepts raw QUIC connections carrying the tagged frame
// protocol on a single bidirectional stream.
func (h *streamHandler) serveQUIC(ctx context.Context, addr string, tlsConf *tls.Config) error {
	ln, err := quic.ListenAddr(addr, tlsConf, &quic.Config{})
	if err != nil {
		return err
	}
	defer ln.Close()
	h.logger.Info("quic listener running", "addr", addr)

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go func() {
			stream, err := conn.AcceptStream(ctx)
			if err != nil {
				_ = conn.CloseWithError(0, "no stream")
				return
			}
			h.logger.Info("quic client connected",
				"remote", conn.RemoteAddr().String())
			h.serve(ctx, internal.NewStreamFrameConn(stream))
			_ = conn.CloseWithError(0, "done")
		}()
	}
}

// serveWebTransport accepts WebTransport sessions carrying the tagged
// frame protocol on a single bidirectional stream.
func (h *streamHandler) serveWebTransport(ctx context.Context, addr string, tlsConf *tls.Config) error {
	wtsrv := &webtransport.Server{
		H3: http3.Server{
			Addr:      addr,
			TLSConfig: tlsConf,
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		session, err := wtsrv.Upgrade(w, r)
		if err != nil {
			h.logger.Error("webtransport upgrade failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		stream, err := session.AcceptStream(ctx)
		if err != nil {
			_ = session.CloseWithError(0, "no stream")
			return
		}
		h.logger.Info("webtransport client connected",
			"remote", r.RemoteAddr)
		h.serve(ctx, internal.NewStreamFrameConn(stream))
		_ = session.CloseWithError(0, "done")
	})
	wtsrv.H3.Handler = mux

	go func() {
		<-ctx.Done()
		_ = wtsrv.Close()
	}()

	h.logger.Info("webtransport listener running", "addr", addr)
	if err := wtsrv.ListenAndServe(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
