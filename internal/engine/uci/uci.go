// Package uci is a minimal UCI front-end. It performs the startup sequence
// a real engine does (option table, hash and thread sizing, variant
// selection) and answers the protocol handshake, but it has no search:
// "go" always answers "bestmove (none)".
package uci

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/enginebridge/internal/engine"
)

// Name is the registry name of the UCI engine.
const Name = "uci"

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const (
	defaultHashMB  = 16
	maxHashMB      = 33554432
	defaultThreads = 1
	maxThreads     = 512
	defaultVariant = "chess"
)

// Variants lists the rule sets the front-end accepts.
var Variants = []string{"chess", "crazyhouse", "atomic", "antichess", "kingofthehill"}

func init() {
	engine.Register(Name, func(s engine.Settings) (engine.Interpreter, error) {
		return New(s), nil
	})
}

// option is one entry of the UCI option table.
type option struct {
	kind  string // "spin", "combo", "check"
	value string
	def   string
	min   int
	max   int
	vars  []string
}

// Engine is the UCI front-end state.
type Engine struct {
	settings engine.Settings
	options  map[string]*option
	order    []string
	fen      string
	moves    []string
	ready    bool
}

// New returns an uninitialised UCI engine configured by s.
func New(s engine.Settings) *Engine {
	return &Engine{settings: s}
}

// Name implements engine.Interpreter.
func (e *Engine) Name() string { return Name }

// Init builds the option table, sizes hash and threads, and selects the
// variant. It fails on out-of-range sizes or an unknown variant.
func (e *Engine) Init() error {
	hash := e.settings.HashMB
	if hash == 0 {
		hash = defaultHashMB
	}
	if hash < 1 || hash > maxHashMB {
		return fmt.Errorf("hash size %d MB out of range [1, %d]", hash, maxHashMB)
	}

	threads := e.settings.Threads
	if threads == 0 {
		threads = defaultThreads
	}
	if threads < 1 || threads > maxThreads {
		return fmt.Errorf("thread count %d out of range [1, %d]", threads, maxThreads)
	}

	variant := e.settings.Variant
	if variant == "" {
		variant = defaultVariant
	}
	if !knownVariant(variant) {
		return fmt.Errorf("unknown variant %q", variant)
	}

	e.options = make(map[string]*option)
	e.order = nil
	e.addOption("Hash", &option{kind: "spin", value: strconv.Itoa(hash), def: strconv.Itoa(defaultHashMB), min: 1, max: maxHashMB})
	e.addOption("Threads", &option{kind: "spin", value: strconv.Itoa(threads), def: strconv.Itoa(defaultThreads), min: 1, max: maxThreads})
	e.addOption("Ponder", &option{kind: "check", value: "false", def: "false"})
	e.addOption("UCI_Variant", &option{kind: "combo", value: variant, def: defaultVariant, vars: Variants})

	e.fen = StartFEN
	e.ready = true
	return nil
}

func (e *Engine) addOption(name string, o *option) {
	e.options[strings.ToLower(name)] = o
	e.order = append(e.order, name)
}

// Option returns the current value of a named option.
func (e *Engine) Option(name string) (string, bool) {
	o, ok := e.options[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return o.value, true
}

// Execute interprets one UCI command.
func (e *Engine) Execute(line string, out io.Writer) error {
	if !e.ready {
		return fmt.Errorf("engine not initialised")
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "quit":
		return engine.ErrQuit
	case "uci":
		return e.handshake(out)
	case "isready":
		_, err := io.WriteString(out, "readyok\n")
		return err
	case "setoption":
		return e.setOption(fields[1:], out)
	case "ucinewgame":
		e.fen, e.moves = StartFEN, nil
		return nil
	case "position":
		return e.position(fields[1:])
	case "go":
		_, err := io.WriteString(out, "bestmove (none)\n")
		return err
	case "stop", "ponderhit":
		return nil
	case "d":
		_, err := fmt.Fprintf(out, "Fen: %s\nMoves: %s\n", e.fen, strings.Join(e.moves, " "))
		return err
	default:
		_, err := fmt.Fprintf(out, "Unknown command: '%s'. Type help for more information.\n", line)
		return err
	}
}

func (e *Engine) handshake(out io.Writer) error {
	var sb strings.Builder
	sb.WriteString("id name EngineBridge UCI\n")
	sb.WriteString("id author the EngineBridge developers\n")
	sb.WriteString("\n")
	for _, name := range e.order {
		o := e.options[strings.ToLower(name)]
		fmt.Fprintf(&sb, "option name %s type %s default %s", name, o.kind, o.def)
		switch o.kind {
		case "spin":
			fmt.Fprintf(&sb, " min %d max %d", o.min, o.max)
		case "combo":
			vars := append([]string(nil), o.vars...)
			sort.Strings(vars)
			for _, v := range vars {
				fmt.Fprintf(&sb, " var %s", v)
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("uciok\n")
	_, err := io.WriteString(out, sb.String())
	return err
}

// setOption parses "name <id...> [value <x...>]".
func (e *Engine) setOption(args []string, out io.Writer) error {
	var name, value []string
	target := &name
	for i, a := range args {
		switch {
		case i == 0 && a == "name":
			continue
		case a == "value" && target == &name:
			target = &value
			continue
		}
		*target = append(*target, a)
	}

	key := strings.Join(name, " ")
	o, ok := e.options[strings.ToLower(key)]
	if !ok {
		_, err := fmt.Fprintf(out, "No such option: %s\n", key)
		return err
	}

	v := strings.Join(value, " ")
	switch o.kind {
	case "spin":
		n, err := strconv.Atoi(v)
		if err != nil || n < o.min || n > o.max {
			return fmt.Errorf("invalid value %q for option %s", v, key)
		}
	case "check":
		if v != "true" && v != "false" {
			return fmt.Errorf("invalid value %q for option %s", v, key)
		}
	case "combo":
		if !contains(o.vars, v) {
			return fmt.Errorf("invalid value %q for option %s", v, key)
		}
	}
	o.value = v
	return nil
}

// position parses "startpos|fen <fen> [moves m1 m2 ...]". Moves are stored,
// not validated.
func (e *Engine) position(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("position: missing startpos or fen")
	}

	var fen []string
	rest := args[1:]
	switch args[0] {
	case "startpos":
	case "fen":
		for len(rest) > 0 && rest[0] != "moves" {
			fen = append(fen, rest[0])
			rest = rest[1:]
		}
		if len(fen) == 0 {
			return fmt.Errorf("position: empty fen")
		}
	default:
		return fmt.Errorf("position: expected startpos or fen, got %q", args[0])
	}

	e.fen = StartFEN
	if len(fen) > 0 {
		e.fen = strings.Join(fen, " ")
	}
	e.moves = nil
	if len(rest) > 0 && rest[0] == "moves" {
		e.moves = append(e.moves, rest[1:]...)
	}
	return nil
}

func knownVariant(v string) bool {
	return contains(Variants, v)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
