// Package cli holds the startup and shutdown steps of cmd/painel.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"painel/internal/config"
	"painel/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default. An invalid level falls back to info; it
// is reported by config validation.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	lc := log.DefaultConfig()
	lc.Level = level
	lc.Format = cfg.LogFormat
	if out != nil {
		lc.Output = out
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg, nil)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg, logger
}

// Fatal logs and exits.
func Fatal(logger *log.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{log.FieldError, err.Error()}, args...)...)
	os.Exit(1)
}

// GracefulShutdown waits for SIGINT/SIGTERM, cancels the returned context and
// runs shutdown with timeout. The returned channel closes when shutdown has
// returned.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error) (context.Context, <-chan struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return shutdownOn(sigChan, logger, timeout, shutdown)
}

func shutdownOn(sigChan <-chan os.Signal, logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if shutdown == nil {
			return
		}
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error", log.FieldError, err.Error())
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until shutdown has finished.
func WaitForShutdown(done <-chan struct{}) {
	<-done
}
