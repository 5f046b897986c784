// Package main is the entry point for the internship matching server.
//
// main stays minimal: load config, build the logger, create the server,
// run it. Everything else lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/internmatch/internal/config"
	"github.com/sakif/internmatch/internal/server"
)

func main() {
	cfg := config.MustLoad()

	logger := newLogger(cfg.Env)

	// Parent directories for the database and blob store may not exist on
	// first run.
	for _, dir := range []string{filepath.Dir(cfg.Storage.Path), cfg.Blob.Root} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger picks log format and verbosity by environment: human-readable
// debug logs in dev, JSON info logs in prod.
func newLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
}
