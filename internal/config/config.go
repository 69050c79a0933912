// Package config loads the bridge configuration from a CUE file.
//
// The file is unified with an embedded #Config definition. The definition
// is closed, so misspelled fields are rejected, and it supplies defaults
// for everything left out:
//
//	engine: "lua"
//	lua: script: "engines/echo.lua"
//	transcript: "session.db"
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/enginebridge/internal/engine"
)

//go:embed schema.cue
var schemaSrc string

// Config is the decoded configuration.
type Config struct {
	Engine           string    `json:"engine"`
	TransferCapacity int       `json:"transfer_capacity"`
	FlushOnExit      bool      `json:"flush_on_exit"`
	CloseOnExit      bool      `json:"close_on_exit"`
	Transcript       string    `json:"transcript"`
	LogLevel         string    `json:"log_level"`
	UCI              UCIConfig `json:"uci"`
	Lua              LuaConfig `json:"lua"`
}

// UCIConfig holds the UCI engine's startup parameters.
type UCIConfig struct {
	HashMB  int    `json:"hash_mb"`
	Threads int    `json:"threads"`
	Variant string `json:"variant"`
}

// LuaConfig holds the Lua engine's parameters.
type LuaConfig struct {
	Script string `json:"script"`
}

// Error is a configuration error with its CUE position when known.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Message)
	}
	return "config: " + e.Message
}

// Default returns the configuration obtained from an empty file.
func Default() (*Config, error) {
	return Parse("", nil)
}

// Load reads and validates a CUE configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Message: fmt.Sprintf("read: %v", err)}
	}
	return Parse(path, data)
}

// Parse validates CUE source against the schema and decodes it. filename
// is used only for error positions.
func Parse(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing here is a build defect.
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	if len(src) == 0 {
		src = []byte("{}")
	}
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(filename, err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(filename, err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, formatCUEError(filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints that span sections.
func (c *Config) Validate() error {
	if c.Engine == "lua" && c.Lua.Script == "" {
		return &Error{Path: "lua.script", Message: "required when engine is \"lua\""}
	}
	return nil
}

// EngineSettings projects the engine-specific sections onto engine.Settings.
func (c *Config) EngineSettings() engine.Settings {
	return engine.Settings{
		HashMB:  c.UCI.HashMB,
		Threads: c.UCI.Threads,
		Variant: c.UCI.Variant,
		Script:  c.Lua.Script,
	}
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// formatCUEError flattens a CUE error list into a single Error carrying the
// first position.
func formatCUEError(filename string, err error) error {
	list := errors.Errors(err)
	if len(list) == 0 {
		return &Error{Path: filename, Message: err.Error()}
	}

	first := list[0]
	path := filename
	if pos := first.Position(); pos.IsValid() {
		path = fmt.Sprintf("%s:%d:%d", pos.Filename(), pos.Line(), pos.Column())
	}
	msg := errors.Details(err, nil)
	return &Error{Path: path, Message: msg}
}
