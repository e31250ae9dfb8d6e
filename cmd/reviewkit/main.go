package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sqliteadapter "github.com/capeksafety/reviewkit/internal/adapter/driven/sqlite"
	"github.com/capeksafety/reviewkit/internal/application"
	"github.com/capeksafety/reviewkit/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"db_path", cfg.DBPath,
		"user", cfg.User,
		"default_due_span", cfg.DefaultDueSpan,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Run migrations on the writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire the review registry to its store and reload persisted state.
	store := sqliteadapter.NewSessionRepo(db)
	registry := application.NewRegistry(store)
	if err := registry.Load(ctx); err != nil {
		return err
	}
	slog.Info("reviewkit started",
		"sessions", len(registry.Sessions()),
		"approved_versions", len(registry.ApprovedHistory()),
	)

	// 6. The editor frontend drives the registry from here; standalone we
	// just wait for shutdown and persist on the way out.
	<-ctx.Done()
	slog.Info("shutting down")

	if err := registry.Save(context.Background()); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
