package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vodmock/wsplay/internal"
)

const (
	appName = "wsplay"
)

var usg = `%s plays a server-pushed segmented media stream over one persistent
connection and lets you step between items without reconnecting.
Navigation commands are read from stdin:
  next | n      request the next item
  prev | p      request the previous item
  <item id>     request a specific item
  quit | q      exit

Usage of %s:
`

type options struct {
	configPath string
	addr       string
	transport  string
	outDir     string
	items      string
	highWater  int
	logLevel   string
	insecure   bool
	version    bool
}

func parseOptions(fs *flag.FlagSet, args []string) (*options, error) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, usg, appName, appName)
		fmt.Fprintf(os.Stderr, "%s [options]\n\noptions:\n", appName)
		fs.PrintDefaults()
	}

	opts := options{}
	fs.StringVar(&opts.configPath, "config", "", "Path to TOML config file")
	fs.StringVar(&opts.addr, "addr", "", "Server address (ws URL, https URL for webtransport, host:port for quic)")
	fs.StringVar(&opts.transport, "transport", "", "Transport: ws, quic or webtransport")
	fs.StringVar(&opts.outDir, "outdir", "", "Directory for per-session output files")
	fs.StringVar(&opts.items, "items", "", "Comma-separated ordered item ids (the rendered list)")
	fs.IntVar(&opts.highWater, "highwater", 0, "Segment queue length at which frame intake pauses")
	fs.StringVar(&opts.logLevel, "loglevel", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification (quic/webtransport)")
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

	cfg, err := internal.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(&cfg, fs, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	internal.SetupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Fprintf(os.Stderr, "\nReceived signal, cancelling...\n")
		cancel()
	}()

	return runPlayer(ctx, cancel, cfg)
}

func applyFlagOverrides(cfg *internal.Config, fs *flag.FlagSet, opts *options) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = opts.addr
		case "transport":
			cfg.Transport = opts.transport
		case "outdir":
			cfg.OutputDir = opts.outDir
		case "highwater":
			cfg.QueueHighWater = opts.highWater
		case "loglevel":
			cfg.LogLevel = opts.logLevel
		case "insecure":
			cfg.Insecure = opts.insecure
		case "items":
			cfg.Items = splitItems(opts.items)
		}
	})
}

func splitItems(s string) []string {
	var items []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
