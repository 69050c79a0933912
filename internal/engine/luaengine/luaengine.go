// Package luaengine runs an engine whose command interpreter is a Lua
// script.
//
// The script defines a global handle(line) function and may define init().
// A send(text) builtin writes one reply line; print behaves the same way,
// joining its arguments with tabs. handle returns "quit" (or
// false) to stop the engine:
//
//	function handle(line)
//	  if line == "quit" then return "quit" end
//	  send("got " .. line)
//	end
//
// Only the base, table, string and math libraries are opened; the script
// has no file or process access.
package luaengine

import (
	"errors"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/roach88/enginebridge/internal/engine"
)

// Name is the registry name of the Lua engine.
const Name = "lua"

func init() {
	engine.Register(Name, func(s engine.Settings) (engine.Interpreter, error) {
		if s.Script == "" {
			return nil, errors.New("lua engine: script path is required")
		}
		return NewFromFile(s.Script), nil
	})
}

// Engine is a Lua-scripted interpreter.
//
// gopher-lua's LState is not goroutine-safe; the engine is only ever driven
// from the single engine goroutine.
type Engine struct {
	path   string
	source string

	L   *lua.LState
	out io.Writer
}

// NewFromFile returns an engine that loads its script from path at Init.
func NewFromFile(path string) *Engine {
	return &Engine{path: path}
}

// NewFromSource returns an engine running the given script text.
func NewFromSource(source string) *Engine {
	return &Engine{source: source}
}

// Name implements engine.Interpreter.
func (e *Engine) Name() string { return Name }

// Init creates the Lua state, loads the script and calls its init function
// if present.
func (e *Engine) Init() error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	L.SetGlobal("send", L.NewFunction(e.send))
	L.SetGlobal("print", L.NewFunction(e.print))

	var err error
	if e.path != "" {
		err = doWithRecovery(func() error { return L.DoFile(e.path) })
	} else {
		err = doWithRecovery(func() error { return L.DoString(e.source) })
	}
	if err != nil {
		L.Close()
		return fmt.Errorf("load script: %w", err)
	}

	if fn := L.GetGlobal("handle"); fn.Type() != lua.LTFunction {
		L.Close()
		return errors.New("load script: global function handle is not defined")
	}

	e.L = L
	if fn := L.GetGlobal("init"); fn.Type() == lua.LTFunction {
		if err := e.call(fn); err != nil {
			L.Close()
			e.L = nil
			return fmt.Errorf("script init: %w", err)
		}
	}
	return nil
}

// Execute passes line to the script's handle function.
func (e *Engine) Execute(line string, out io.Writer) error {
	if e.L == nil {
		return errors.New("lua engine not initialised")
	}

	e.out = out
	defer func() { e.out = nil }()

	top := e.L.GetTop()
	if err := e.call(e.L.GetGlobal("handle"), lua.LString(line)); err != nil {
		e.L.SetTop(top)
		return err
	}
	ret := e.L.Get(-1)
	e.L.SetTop(top)

	if ret == lua.LFalse || (ret.Type() == lua.LTString && ret.String() == "quit") {
		e.close()
		return engine.ErrQuit
	}
	return nil
}

func (e *Engine) call(fn lua.LValue, args ...lua.LValue) error {
	return doWithRecovery(func() error {
		return e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
}

// send is the Lua builtin send(text).
func (e *Engine) send(L *lua.LState) int {
	text := L.CheckString(1)
	if e.out == nil {
		// Output outside of handle (e.g. from init) has nowhere to go.
		return 0
	}
	if _, err := io.WriteString(e.out, text+"\n"); err != nil {
		L.RaiseError("send: %v", err)
	}
	return 0
}

// print is send with Lua's print formatting: arguments joined by tabs.
func (e *Engine) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	if e.out != nil {
		if _, err := io.WriteString(e.out, strings.Join(parts, "\t")+"\n"); err != nil {
			L.RaiseError("print: %v", err)
		}
	}
	return 0
}

func (e *Engine) close() {
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
}

// openSafeLibraries opens only side-effect free standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// The base library still carries file loaders.
	for _, name := range []string{"dofile", "loadfile"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
