package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lrnselfreliance/wrolpi-sub001/pkg/repl"
	"github.com/lrnselfreliance/wrolpi-sub001/store"
)

// Version information, set at build time via -ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	// Subcommands are checked before flag parsing
	if len(args) > 0 && args[0] == "units" {
		repl.PrintUnits(stdout)
		return nil
	}

	flags := flag.NewFlagSet("ratio", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		evalFlag        = flags.String("e", "", "Evaluate statements")
		evalLongFlag    = flags.String("eval", "", "Evaluate statements")
		dbFlag          = flags.String("db", "", "Unit-preferences database path")
		versionFlag     = flags.Bool("V", false, "Show version information")
		versionLongFlag = flags.Bool("version", false, "Show version information")
		helpFlag        = flags.Bool("h", false, "Show help message")
		helpLongFlag    = flags.Bool("help", false, "Show help message")
	)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printHelp(stdout)
			return nil
		}
		return err
	}

	if *helpFlag || *helpLongFlag {
		printHelp(stdout)
		return nil
	}

	if *versionFlag || *versionLongFlag {
		fmt.Fprintf(stdout, "ratio version %s (%s)\n", Version, Commit)
		return nil
	}

	if flags.NArg() > 0 {
		return fmt.Errorf("unknown argument %q (did you mean 'ratio units'?)", flags.Arg(0))
	}

	// Point --db at the daemon's calculators.db to share unit
	// preferences with the API.
	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = getenv("RATIO_DB")
	}
	var st *store.Store
	if dbPath != "" {
		var err error
		st, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()
	}

	// Prefer -e over --eval if both are set
	script := *evalFlag
	if script == "" {
		script = *evalLongFlag
	}
	if script != "" {
		return repl.Run(st, stdout, script)
	}

	repl.Start(st, stdout, Version)
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `ratio - interactive proportion calculator version %s

Solves a:b = c:d. Set three slots and the fourth is solved for you.

Usage:
  ratio [options]
  ratio -e "statements"
  ratio units

Commands:
  units                 List the known units for every dimension

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <stmts>    Evaluate ";"-separated statements and print the result
  --db <path>           Unit-preferences database (or set RATIO_DB)

Statements:
  a=4                   Set slot a to 4
  a=                    Clear slot a
  a:ft                  Display slot a in feet
  base length           Track lengths (none, length, area, volume, mass, energy)

REPL commands:
  :help                 Show available commands
  :state                Print the current calculator state
  :units                List units for the current dimension
  :reset                Clear all slots
  :forget               Forget the remembered unit preferences

Examples:
  ratio                                 Start the interactive calculator
  ratio -e "b=2; c=6; d=3"              Solve for a
  ratio -e "base length; a:km; a=1"     One kilometre, tracked as a length
  ratio --db calculators.db             Share unit preferences with ratiod
  ratio units                           Show every unit and its aliases

`, Version)
}
