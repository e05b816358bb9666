package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bate-papo/contract"
	"bate-papo/infrastructure/http/ratelimit"
	"bate-papo/infrastructure/http/server"
	"bate-papo/internal"
	"bate-papo/moderation"
	"bate-papo/observability"
	"bate-papo/runtime"

	"github.com/Netflix/go-env"
	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a fatal error.
// Deferred cleanups run before the exit code reaches main.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine, the environment alone is enough.
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	censoredChar, err := internal.CharacterRune(config.ModerationCharacter)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage
	store, err := openStore(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer store.close()

	// 3. Engine
	metrics := observability.NewMetrics()

	var filter contract.TextFilter
	if words := config.BannedWords(); len(words) > 0 {
		moderator, err := moderation.NewModerator(words, censoredChar, logger)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
		}
		filter = moderator
		logger.Info("Moderation enabled", "words", len(words))
	}

	engine := runtime.NewEngine(logger, clock.New(), store.participants, store.messages, filter, metrics, runtime.EngineConfig{
		StoreTimeout:    config.StoreTimeout,
		SweepInterval:   config.SweepInterval,
		LivenessTimeout: config.LivenessTimeout,
		RestartInterval: config.RestartInterval,
	})

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)

	go engine.Start(ctx)

	// 5. HTTP Server
	var limiter *ratelimit.MapLimiter
	if config.RateLimitRPS > 0 {
		limiter = ratelimit.New(config.RateLimitRPS, config.RateLimitBurst, 0)
	}
	router := server.NewRouter(server.RouterConfig{
		Log:            logger,
		Clock:          clock.New(),
		Registry:       engine.Registry,
		Bus:            engine.Bus,
		Metrics:        metrics,
		Limiter:        limiter,
		AllowedOrigins: config.Origins(),
	})
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", config.Address(), "store", config.StoreDriver, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		engine.Stop()
		return exitRuntime, err
	}

	// 7. Graceful Shutdown
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server did not drain in time", "error", err)
	}
	engine.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func debugEnabled(ctx context.Context, logger *slog.Logger) bool {
	return logger.Enabled(ctx, slog.LevelDebug)
}
