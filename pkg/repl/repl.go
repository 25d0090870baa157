package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/lrnselfreliance/wrolpi-sub001/pkg/solver"
	"github.com/lrnselfreliance/wrolpi-sub001/pkg/units"
	"github.com/lrnselfreliance/wrolpi-sub001/store"
)

const PROMPT = ">> "

const RATIO_LOGO = `
█▀█ ▄▀█ ▀█▀ █ █▀█
█▀▄ █▀█ ░█░ █ █▄█ `

// Slot letters, dimension names, and unit symbols for tab completion
var completionWords = buildCompletionWords()

// Meta-commands complete separately; they only make sense alone on a line.
var commandWords = []string{":help", ":state", ":units", ":reset", ":forget"}

func buildCompletionWords() []string {
	words := []string{
		// Statements
		"a", "b", "c", "d", "base", "exit", "quit",
		// Dimensions
		"none", "length", "area", "volume", "mass", "energy",
	}
	for _, dim := range units.Dimensions() {
		for _, u := range units.UnitsOf(dim) {
			words = append(words, u.Symbol)
		}
	}
	return words
}

// session is one interactive calculator, optionally backed by the shared
// store so unit preferences follow the user between the CLI and the daemon.
type session struct {
	state  solver.State
	store  *store.Store
	format *units.Formatter
}

func newSession(st *store.Store) *session {
	var seed map[units.Dimension]string
	if st != nil {
		if loaded, err := st.RecentUnits(store.RatioCache); err == nil {
			seed = loaded
		}
	}
	return &session{
		state:  solver.New(seed),
		store:  st,
		format: units.NewFormatter("en"),
	}
}

// Start starts the REPL with line editing, history, and tab completion.
// st may be nil to run without persisted unit preferences.
func Start(st *store.Store, out io.Writer, version string) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	// Set up tab completion
	line.SetCompleter(func(line string) []string {
		return filterCompletions(line)
	})

	// Load command history from file
	historyFile := filepath.Join(os.TempDir(), ".ratio_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	// Save history on exit
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	sess := newSession(st)

	fmt.Fprintf(out, "%s", RATIO_LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Set three of a:b = c:d and the fourth is solved for you.")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for commands")
	fmt.Fprintln(out, "")

	for {
		input, err := line.Prompt(PROMPT)
		if err != nil {
			// Ctrl+D or Ctrl+C
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}

		// Check for exit command
		if trimmed == "exit" || trimmed == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		line.AppendHistory(trimmed)

		// Handle REPL commands (start with :)
		if strings.HasPrefix(trimmed, ":") {
			sess.handleCommand(trimmed, out)
			continue
		}

		if sess.evalLine(trimmed, out) {
			sess.printState(out)
		}
	}
}

// Run evaluates a semicolon-separated statement list against a fresh
// calculator and prints the final state. It is the path behind ratio -e.
func Run(st *store.Store, out io.Writer, script string) error {
	sess := newSession(st)
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		ev, err := parseStatement(stmt)
		if err != nil {
			return err
		}
		if err := sess.apply(ev, out); err != nil {
			return err
		}
	}
	sess.printState(out)
	return nil
}

// evalLine applies every statement on the line, reporting the first failure.
// Statements chain with ';' so `b=2; c=6; d=3` works as one line.
func (s *session) evalLine(input string, out io.Writer) bool {
	applied := false
	for _, stmt := range strings.Split(input, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		ev, err := parseStatement(stmt)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return applied
		}
		if err := s.apply(ev, out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return applied
		}
		applied = true
	}
	return applied
}

// parseStatement maps one calculator statement onto a solver event.
// The grammar is tiny: "a=4" sets a value, "a:ft" sets a unit, and
// "base length" switches dimension. Unit edits accept long names too.
func parseStatement(input string) (solver.Event, error) {
	s := strings.TrimSpace(input)

	if rest, ok := strings.CutPrefix(s, "base"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
		name := strings.TrimSpace(rest)
		if name == "" {
			return nil, fmt.Errorf("base needs a dimension (none, length, area, volume, mass, energy)")
		}
		dim, ok := units.ParseDimension(name)
		if !ok {
			return nil, fmt.Errorf("unknown dimension '%s' (valid: none, length, area, volume, mass, energy)", name)
		}
		return solver.SwitchBase{Dim: dim}, nil
	}

	if name, value, ok := strings.Cut(s, "="); ok {
		sl, ok := solver.ParseSlot(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown slot '%s' (slots are a, b, c, d)", strings.TrimSpace(name))
		}
		return solver.EditValue{Slot: sl, Raw: strings.TrimSpace(value)}, nil
	}

	if name, symbol, ok := strings.Cut(s, ":"); ok {
		sl, ok := solver.ParseSlot(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown slot '%s' (slots are a, b, c, d)", strings.TrimSpace(name))
		}
		sym := strings.TrimSpace(symbol)
		u, ok := units.Resolve(sym)
		if !ok {
			msg := fmt.Sprintf("unknown unit '%s'", sym)
			if hint := units.Suggest(sym); hint != "" && hint != sym {
				msg += fmt.Sprintf(". Did you mean '%s'?", hint)
			}
			return nil, fmt.Errorf("%s", msg)
		}
		return solver.EditUnit{Slot: sl, Symbol: u.Symbol}, nil
	}

	return nil, fmt.Errorf("cannot read '%s' (try a=4, a:ft, or base length)", s)
}

// apply runs one event, writing any remembered-unit change through to the
// store. Persistence is advisory; failures print a warning and move on.
func (s *session) apply(ev solver.Event, out io.Writer) error {
	if e, ok := ev.(solver.EditUnit); ok {
		if s.state.Base == units.None {
			return fmt.Errorf("no dimension set (try 'base length' first)")
		}
		if _, known := units.LookupIn(s.state.Base, e.Symbol); !known {
			return fmt.Errorf("unknown unit '%s' for %s", e.Symbol, s.state.Base)
		}
	}

	prev := s.state
	s.state = solver.Apply(prev, ev)

	if s.store != nil {
		for dim, sym := range s.state.RecentUnits {
			if prev.RecentUnits[dim] == sym {
				continue
			}
			if err := s.store.SaveRecentUnit(store.RatioCache, dim, sym); err != nil {
				fmt.Fprintf(out, "warning: could not save unit preference: %v\n", err)
			}
		}
	}
	return nil
}

// printState shows the four slots, marking the one the calculator derives.
func (s *session) printState(out io.Writer) {
	fmt.Fprintf(out, "base: %s\n", s.state.Base)
	solved, has := s.state.Solved()
	for _, sl := range []solver.Slot{solver.A, solver.B, solver.C, solver.D} {
		marker := ""
		if has && sl == solved {
			marker = "   (solved)"
		}
		fmt.Fprintf(out, "  %s = %s%s\n", sl, s.format.Quantity(s.state.Quantity(sl)), marker)
	}
}

// handleCommand handles REPL meta-commands that start with ':'
func (s *session) handleCommand(cmd string, out io.Writer) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "Statements:")
		fmt.Fprintln(out, "  a=4             Set slot a (slots are a, b, c, d)")
		fmt.Fprintln(out, "  a:ft            Show slot a in feet (symbols or names)")
		fmt.Fprintln(out, "  base length     Switch dimension and reset the slots")
		fmt.Fprintln(out, "  b=2; c=6; d=3   Statements chain with ;")
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :state          Show the calculator state")
		fmt.Fprintln(out, "  :units          List the known units")
		fmt.Fprintln(out, "  :reset          Clear the slots, keeping unit preferences")
		fmt.Fprintln(out, "  :forget         Forget the remembered unit preferences")
		fmt.Fprintln(out, "  exit, quit      Exit")

	case ":state", ":s":
		s.printState(out)

	case ":units", ":u":
		PrintUnits(out)

	case ":reset":
		s.state = solver.New(s.state.RecentUnits)
		fmt.Fprintln(out, "Calculator reset")

	case ":forget":
		if s.store != nil {
			if err := s.store.ForgetRecentUnits(store.RatioCache); err != nil {
				fmt.Fprintf(out, "warning: could not clear unit preferences: %v\n", err)
			}
		}
		s.state.RecentUnits = map[units.Dimension]string{}
		fmt.Fprintln(out, "Unit preferences forgotten")

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// PrintUnits writes the unit tables, one dimension per block. The ratio
// units subcommand shares this with the :units REPL command.
func PrintUnits(out io.Writer) {
	for _, dim := range units.Dimensions() {
		fmt.Fprintf(out, "%s (canonical: %s)\n", dim, units.Default(dim).Symbol)
		for _, u := range units.UnitsOf(dim) {
			fmt.Fprintf(out, "  %-5s %-22s %g\n", u.Symbol, u.Name, u.Factor)
		}
		fmt.Fprintln(out, "")
	}
}

// filterCompletions returns completion suggestions based on current input.
// liner replaces the whole line with the chosen candidate, so candidates
// carry the untouched head of the line.
func filterCompletions(line string) []string {
	// Don't complete if line is empty or only whitespace
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	// Don't complete if line ends with whitespace (including tabs from pasting)
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	if strings.HasPrefix(trimmed, ":") {
		var matches []string
		for _, cmd := range commandWords {
			if strings.HasPrefix(cmd, trimmed) {
				matches = append(matches, cmd)
			}
		}
		return matches
	}

	// Complete the token after the last separator; ':' and '=' glue unit
	// and value edits to their slot.
	start := strings.LastIndexAny(line, " \t:=") + 1
	head, last := line[:start], line[start:]
	if last == "" {
		return nil
	}

	var matches []string
	for _, word := range completionWords {
		if strings.HasPrefix(word, last) {
			matches = append(matches, head+word)
		}
	}
	return matches
}
