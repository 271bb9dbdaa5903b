// Package app provides the tutor server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kart-io/tutor-x/cmd/tutor/app/options"
	"github.com/kart-io/tutor-x/internal/tutor"
	"github.com/kart-io/tutor-x/pkg/app"
)

const (
	// Name is the name of the application.
	Name = tutor.Name

	// commandDesc is the description of the command.
	commandDesc = `Tutor API Service

The server-side LLM adapter for the tutoring platform.

This server provides:
  - Chat completions with per-session conversation history
  - Socratic coaching, viva question generation and rubric evaluation
  - Multilingual concept translation with cultural analogies
  - Spaced repetition review plans and curriculum generation
  - Per-student document indexing and retrieval-augmented Q&A`
)

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	application := app.NewApp(
		app.WithName(Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)

	return application
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
