package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Settings carries the opaque initialisation parameters an engine may use.
// Engines ignore fields that do not apply to them.
type Settings struct {
	// HashMB is the transposition table size in megabytes.
	HashMB int

	// Threads is the search thread count.
	Threads int

	// Variant selects the rule set.
	Variant string

	// Script is the path to an engine script (lua engine).
	Script string
}

// Factory builds a fresh, uninitialised Interpreter.
type Factory func(s Settings) (Interpreter, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a factory available under name. Registering the same name
// twice panics to surface wiring bugs early.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if f == nil {
		panic("engine: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("engine: Register called twice for " + name)
	}
	registry[name] = f
}

// New builds the engine registered under name.
func New(name string, s Settings) (Interpreter, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown engine %q (available: %v)", name, Names())
	}
	return f(s)
}

// Names returns the registered engine names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
