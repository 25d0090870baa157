package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/lrnselfreliance/wrolpi-sub001/config"
	"github.com/lrnselfreliance/wrolpi-sub001/server"
	"github.com/lrnselfreliance/wrolpi-sub001/store"
)

// Version information, set at build time via -ldflags
var (
	Version = "dev"     // -X main.Version=$(git describe --tags --always)
	Commit  = "unknown" // -X main.Commit=$(git rev-parse --short HEAD)
)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("ratiod", flag.ContinueOnError)
	flags.SetOutput(io.Discard) // Suppress default -h output

	var (
		configPath  = flags.String("config", "", "Path to config file")
		devMode     = flags.Bool("dev", false, "Development mode (listen on localhost, watch docs)")
		quietMode   = flags.Bool("quiet", false, "Suppress request logs (sets log level to error)")
		port        = flags.Int("port", 0, "Override listen port")
		dbPath      = flags.String("db", "", "Override the unit-preferences database path")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)

	if err := flags.Parse(args); err != nil {
		// Handle -h/--help: flag package returns ErrHelp
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		printUsage(stderr)
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if *showVersion {
		fmt.Fprintf(stdout, "ratiod version %s (%s)\n", Version, Commit)
		return nil
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, configFile, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides
	if *devMode {
		cfg.Server.Dev = true
	}
	if *quietMode || cfg.Logging.Quiet {
		cfg.Logging.Level = "error"
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	// Full validation after CLI overrides applied
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// An empty store path runs the service without persisted unit
	// preferences; calculators still work, they just forget.
	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()
	}

	version := fmt.Sprintf("%s (%s)", Version, Commit)
	srv := server.New(cfg, configFile, st, version, stdout, stderr)
	return srv.Run(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `ratiod - the ratio calculator daemon

Solves a:b = c:d proportions over a JSON API, with unit-aware arithmetic
and remembered unit preferences.

Usage:
  ratiod [options]

Options:
  --config PATH      Path to config file (default: auto-detect)
  --dev              Development mode (listen on localhost, watch docs)
  --quiet            Suppress request logs (sets log level to error)
  --port PORT        Override listen port
  --db PATH          Override the unit-preferences database path
                     (":memory:" keeps it off disk)
  --version          Show version
  --help             Show this help

Config Resolution:
  1. --config flag
  2. RATIO_CONFIG environment variable
  3. ./ratio.yaml
  4. ~/.config/wrolpi/ratio.yaml

Signals:
  SIGINT/SIGTERM   Graceful shutdown

Examples:
  ratiod                      Start with auto-detected config
  ratiod --dev                Development mode on localhost:8637
  ratiod --config app.yaml    Use specific config file
  ratiod --dev --port 3000    Dev mode on port 3000

`)
}
