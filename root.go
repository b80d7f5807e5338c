package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stevemurr/whiskers-api/config"
	"github.com/stevemurr/whiskers-api/logging"
	"github.com/stevemurr/whiskers-api/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "whiskers",
		Short:         "Whiskers game site API",
		Long:          "Devlog posts, roadmap milestones and visitor feedback over HTTP.\nRuns the server when no subcommand is given.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().String("backend", "", "store backend: mongo, sqlite, json, memory (env STORE_BACKEND)")
	root.PersistentFlags().String("data-dir", "", "data directory for sqlite and json backends (env DATA_DIR)")
	root.PersistentFlags().String("database-name", "", "mongo database name (env DATABASE_NAME)")
	addServeFlags(root)

	root.AddCommand(newServeCmd(), newStatusCmd())
	return root
}

// loadConfig reads the environment, then applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if f := flags.Lookup("backend"); f != nil && f.Changed {
		cfg.StoreBackend = f.Value.String()
	}
	if f := flags.Lookup("data-dir"); f != nil && f.Changed {
		cfg.DataDir = f.Value.String()
	}
	if f := flags.Lookup("database-name"); f != nil && f.Changed {
		cfg.DatabaseName = f.Value.String()
	}
	if f := flags.Lookup("host"); f != nil && f.Changed {
		cfg.Host = f.Value.String()
	}
	if flags.Changed("port") {
		port, err := flags.GetInt("port")
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return logging.New(w, cfg.LogFormat, logging.LevelFromString(cfg.LogLevel))
}

// openStore connects the configured backend. A mongo backend that is not
// configured or cannot be reached at startup is not fatal: the server runs
// without a store and reports it on /test.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	cctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	st, err := store.New(cctx, store.Options{
		Backend:     cfg.StoreBackend,
		DatabaseURL: cfg.DatabaseURL,
		Database:    cfg.DatabaseName,
		DataDir:     cfg.DataDir,
	})
	switch {
	case errors.Is(err, store.ErrUnavailable):
		logger.Warn("DATABASE_URL not set, running without a database", "backend", cfg.StoreBackend)
		return nil, nil
	case err != nil && cfg.StoreBackend == "mongo":
		logger.Error("database client setup failed, running without a database", "err", err)
		return nil, nil
	case err != nil:
		return nil, err
	}

	if err := st.Ping(cctx); err != nil {
		logger.Warn("database not reachable yet", "backend", cfg.StoreBackend, "database", st.Name(), "err", err)
	} else {
		logger.Info("database connected", "backend", cfg.StoreBackend, "database", st.Name())
	}
	return st, nil
}
