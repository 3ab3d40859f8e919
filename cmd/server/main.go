package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"escape-chat/catalog"
	"escape-chat/internal"
	"escape-chat/moderation"
	"escape-chat/observability"
	"escape-chat/runtime"
	"escape-chat/runtime/workers"
	"escape-chat/services"
	"escape-chat/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censoredChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Static data (scripts and character table, embedded)
	scripts, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("catalog loading failed: %w", err)
	}

	words, err := moderation.LoadDefaultWords()
	if err != nil {
		return fmt.Errorf("loading censored words failed: %w", err)
	}
	moderator, err := moderation.NewModerator(words, censoredChar, log)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}

	// 3. Engine wiring
	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry()
	sessions := runtime.NewSessionStore(log, scripts, monitoring, config.HistoryLimit)
	sequencer := runtime.NewSequencer(log, sessions, registry, moderator, monitoring, config.SinkTimeout)
	service := services.NewDialogueService(sequencer, scripts)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewHeartbeatWorker(log, sequencer, config.HeartbeatInterval),
		workers.NewTelemetryWorker(log, monitoring, config.TelemetryInterval),
	)
	go sup.Run(ctx)

	// 6. HTTP Server Setup
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := web.NewServer(log, service, monitoring, config.ConnectionBufferSize).
		WithServer(address)

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
