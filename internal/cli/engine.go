package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/enginebridge/internal/config"
	"github.com/roach88/enginebridge/internal/engine"
)

// EngineFlags select and configure the engine for run and exec.
// Flags override the config file.
type EngineFlags struct {
	Config string
	Engine string
	Script string
}

func (f *EngineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Config, "config", "c", "", "path to a CUE config file")
	cmd.Flags().StringVarP(&f.Engine, "engine", "e", "", "engine name (overrides config)")
	cmd.Flags().StringVar(&f.Script, "script", "", "Lua engine script (overrides config)")
}

// resolve loads the configuration and applies flag overrides.
func (f *EngineFlags) resolve() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.Config != "" {
		cfg, err = config.Load(f.Config)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if f.Engine != "" {
		cfg.Engine = f.Engine
	}
	if f.Script != "" {
		cfg.Lua.Script = f.Script
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// buildEngine creates the configured interpreter.
func buildEngine(cfg *config.Config) (engine.Interpreter, error) {
	interp, err := engine.New(cfg.Engine, cfg.EngineSettings())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create engine", err)
	}
	return interp, nil
}

// setupLogging installs a text slog handler on w as the default logger.
// --verbose forces debug level.
func setupLogging(w io.Writer, level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
