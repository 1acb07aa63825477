// Command caption runs the caption review workflow in a terminal, using
// stdin as the human channel. Sessions are checkpointed so an interrupted
// review resumes where it stopped when the command runs again with the same
// session id.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/captioner/internal/api"
	"github.com/JaimeStill/captioner/internal/config"
	"github.com/JaimeStill/captioner/internal/infrastructure"
	"github.com/JaimeStill/captioner/workflow"
)

func main() {
	var (
		sessionID   = flag.String("session", "local", "Session id to start or resume")
		description = flag.String("description", "", "Image description (described from -image when empty)")
		image       = flag.String("image", "", "Image reference passed to the publisher")
		store       = flag.String("checkpoint", config.CheckpointSQLite, "Checkpoint backend: sqlite, memory, or config")
		sqlitePath  = flag.String("sqlite", "", "SQLite checkpoint file (defaults to workflow.sqlite_path)")
		verbose     = flag.Bool("v", false, "Log workflow activity to stderr")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	switch *store {
	case config.CheckpointSQLite, config.CheckpointMemory:
		cfg.Workflow.Checkpoint = *store
	case "config":
	default:
		log.Fatalf("unknown checkpoint backend %q", *store)
	}
	if *sqlitePath != "" {
		cfg.Workflow.SQLitePath = *sqlitePath
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}
	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed: ", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		log.Fatal(err)
	}

	runtime, err := api.NewRuntime(cfg, infra)
	if err != nil {
		log.Fatal("runtime init failed: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newConsole(runtime.Engine, os.Stdin, os.Stdout)
	runErr := c.run(ctx, workflow.StartRequest{
		SessionID:      *sessionID,
		Description:    *description,
		ImageReference: *image,
	})

	if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		logger.Error("shutdown failed", "error", err)
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "error:", runErr)
		os.Exit(1)
	}
}
