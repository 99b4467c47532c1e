// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, flag overrides and logger setup.
package appctx

import (
	"fmt"
	"io"
	"os"

	"github.com/lherron/catimerge/internal/config"
	"github.com/lherron/catimerge/internal/logging"
	"github.com/spf13/cobra"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration with flag overrides applied
	Config *config.Config
}

// Options configures the bootstrap behavior.
type Options struct {
	// LogWriter receives log output. Defaults to os.Stderr.
	LogWriter io.Writer
}

// DefaultOptions returns default options (logs to stderr).
func DefaultOptions() Options {
	return Options{LogWriter: os.Stderr}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		return fn(app, cmd, args)
	}
}

// Bootstrap loads configuration, applies any explicitly set flags over it
// and configures the global logger.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	if err := logging.Setup(w, cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}

	return &App{Config: cfg}, nil
}

// applyFlags copies flags the user actually passed onto cfg. Flags left at
// their defaults do not override config or environment values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if f := flags.Lookup("verbose"); f != nil && f.Changed {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = v
	}
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		cfg.LogLevel = f.Value.String()
	}
	if f := flags.Lookup("log-format"); f != nil && f.Changed {
		cfg.LogFormat = f.Value.String()
	}
	if f := flags.Lookup("compression-level"); f != nil && f.Changed {
		n, err := flags.GetInt("compression-level")
		if err != nil {
			return err
		}
		cfg.CompressionLevel = n
	}
	if f := flags.Lookup("output"); f != nil && f.Changed {
		cfg.Output = f.Value.String()
	}

	return nil
}
