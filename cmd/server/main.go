// Package main is the entry point for the to-do service.
//
// main stays small: read configuration, build the logger, hand both to
// internal/server and block until shutdown.
//
// Configuration comes from an optional YAML file (-config or TODO_CONFIG)
// overlaid with TODO_* environment variables. TODO_AUTH_JWT_SECRET has no
// default and must be set. Generate one with:
//
//	TODO_AUTH_JWT_SECRET=$(openssl rand -hex 32)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/todo-service/internal/config"
	"github.com/sakif/todo-service/internal/logging"
	"github.com/sakif/todo-service/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("TODO_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, flush, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Backend: cfg.Log.Backend,
	}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		flush()
		os.Exit(1)
	}
	flush()
}

func run(cfg *config.Config, logger *slog.Logger) error {
	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT/SIGTERM.
	return srv.Start()
}
