package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vodmock/wsplay/internal"
)

// runPlayer dials the server, starts the coordinator and feeds it
// navigation commands from stdin.
func runPlayer(ctx context.Context, cancel context.CancelFunc, cfg internal.Config) error {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}

	coord := internal.NewCoordinator(conn, fileSinkFactory(cfg.OutputDir), internal.CoordinatorConfig{
		HighWater: cfg.QueueHighWater,
		Notifier:  consoleNotifier{},
	})

	if len(cfg.Items) > 0 {
		coord.SetItems(cfg.Items)
		// Request the first item right away, like a freshly rendered page.
		coord.Select(cfg.Items[0])
	}

	go readInput(coord, cancel)

	return coord.Run(ctx)
}

func dial(ctx context.Context, cfg internal.Config) (internal.FrameConn, error) {
	switch cfg.Transport {
	case internal.TransportQUIC:
		return internal.DialQUIC(ctx, cfg.Addr, cfg.Insecure)
	case internal.TransportWebTransport:
		return internal.DialWebTransport(ctx, cfg.Addr, cfg.Insecure)
	default:
		return internal.DialWebSocket(ctx, cfg.Addr)
	}
}

// fileSinkFactory writes each session to its own numbered file.
func fileSinkFactory(dir string) internal.SinkFactory {
	var n int
	return func() internal.Sink {
		n++
		path := filepath.Join(dir, fmt.Sprintf("session_%04d.mp4", n))
		fh, err := os.Create(path)
		if err != nil {
			slog.Error("failed to create output file",
				"path", path,
				"error", err)
			return internal.NewWriterSink(io.Discard)
		}
		slog.Info("writing session output", "path", path)
		return internal.NewWriterSink(fh)
	}
}

// consoleNotifier is the player's stand-in for the alert box: playback
// notices go to stderr.
type consoleNotifier struct{}

func (consoleNotifier) Notice(msg string) {
	fmt.Fprintf(os.Stderr, "NOTICE: %s\n", msg)
}

func readInput(coord *internal.Coordinator, cancel context.CancelFunc) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch line := strings.TrimSpace(scanner.Text()); line {
		case "":
		case "n", "next":
			coord.Next()
		case "p", "prev":
			coord.Prev()
		case "q", "quit":
			cancel()
			return
		default:
			coord.Select(line)
		}
	}
}
