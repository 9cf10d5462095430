package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vodmock/wsplay/internal"
)

const (
	appName = "wsplaymock"
)

var usg = `%s serves a directory of MP4 files as a pushed segment stream.
Each client gets one persistent connection carrying start/stop/error control
messages and binary media chunks, and can step between items with
next/prev/ID requests. WebSocket is always served; raw QUIC and
WebTransport listeners are optional.

Usage of %s:
`

type options struct {
	addr     string
	quicAddr string
	wtAddr   string
	dir      string
	chunkKB  int
	paceMS   int
	certFile string
	keyFile  string
	logLevel string
	version  bool
}

func parseOptions(fs *flag.FlagSet, args []string) (*options, error) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, usg, appName, appName)
		fmt.Fprintf(os.Stderr, "%s [options]\n\noptions:\n", appName)
		fs.PrintDefaults()
	}

	opts := options{}
	fs.StringVar(&opts.addr, "addr", "localhost:9988", "WebSocket listen address")
	fs.StringVar(&opts.quicAddr, "quicaddr", "", "Raw QUIC listen address (disabled when empty)")
	fs.StringVar(&opts.wtAddr, "wtaddr", "", "WebTransport listen address (disabled when empty)")
	fs.StringVar(&opts.dir, "dir", ".", "Directory of MP4 items to serve")
	fs.IntVar(&opts.chunkKB, "chunk", 1024, "Chunk size in KiB")
	fs.IntVar(&opts.paceMS, "pace", 200, "Delay between chunks in milliseconds")
	fs.StringVar(&opts.certFile, "cert", "localhost.pem", "TLS certificate file (quic/webtransport)")
	fs.StringVar(&opts.keyFile, "key", "localhost-key.pem", "TLS key file (quic/webtransport)")
	fs.StringVar(&opts.logLevel, "loglevel", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.version, "version", false, fmt.Sprintf("Get %s version", appName))
	err := fs.Parse(args[1:])
	return &opts, err
}

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	opts, err := parseOptions(fs, args)

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.version {
		fmt.Printf("%s %s\n", appName, internal.GetVersion())
		return nil
	}

	internal.SetupLogging(opts.logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Fprintf(os.Stderr, "\nReceived signal, cancelling...\n")
		cancel()
	}()

	items, err := loadLibrary(opts.dir)
	if err != nil {
		return err
	}

	h := &streamHandler{
		ctx:       ctx,
		items:     items,
		chunkSize: opts.chunkKB * 1024,
		pace:      time.Duration(opts.paceMS) * time.Millisecond,
		logger:    slog.Default(),
	}

	if opts.quicAddr != "" || opts.wtAddr != "" {
		tlsConf, err := serverTLSConfig(opts.certFile, opts.keyFile)
		if err != nil {
			return err
		}
		if opts.quicAddr != "" {
			go func() {
				if err := h.serveQUIC(ctx, opts.quicAddr, tlsConf); err != nil {
					slog.Error("quic listener failed", "error", err)
					cancel()
				}
			}()
		}
		if opts.wtAddr != "" {
			go func() {
				if err := h.serveWebTransport(ctx, opts.wtAddr, tlsConf); err != nil {
					slog.Error("webtransport listener failed", "error", err)
					cancel()
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:    opts.addr,
		Handler: h,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving items", "addr", opts.addr, "items", len(items))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serverTLSConfig loads the cert/key pair and falls back to in-memory
// certificates when no files are provisioned.
func serverTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	tlsConf, err := internal.LoadTLSConfig(certFile, keyFile)
	if err == nil {
		return tlsConf, nil
	}
	slog.Info("no TLS key pair found, generating in-memory certificate",
		"error", err)
	return internal.GenerateTLSConfig()
}
