package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/config"
	"github.com/roach88/cadence/internal/engine"
	"github.com/roach88/cadence/internal/history"
	"github.com/roach88/cadence/internal/store"
)

// session bundles everything a command needs against one open database.
type session struct {
	Config    config.Config
	Engine    *engine.Engine
	Formatter *OutputFormatter

	store *store.Store
}

// openSession loads config, configures logging, and opens the engine.
// Callers must Close it.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}

	configureLogging(cfg.LogLevel, opts.Verbose)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	ledger, err := history.New(cmdContext(cmd), st)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open history ledger", err)
	}

	return &session{
		Config:    cfg,
		Engine:    engine.New(st, ledger),
		Formatter: formatter,
		store:     st,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// configureLogging sets the default slog handler. The verbose flag wins
// over the configured level.
func configureLogging(level string, verbose bool) {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// cmdContext returns the command's context, falling back to Background
// when the command runs outside Execute (as in tests).
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
