package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"painel/internal/config"
	"painel/internal/log"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{"debug json", "debug", "json", true, true},
		{"info text", "info", "text", false, false},
		{"bad level falls back", "loud", "text", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := SetupLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format}, &buf)
			l.Debug("dbg")
			l.Info("hello")

			out := buf.String()
			if got := strings.Contains(out, "dbg"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v: %s", got, tt.wantDebug, out)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Errorf("json = %v, want %v: %s", got, tt.wantJSON, out)
			}
		})
	}
}

func quiet() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

func TestShutdownOnSignal(t *testing.T) {
	sig := make(chan os.Signal, 1)
	called := make(chan struct{})
	ctx, done := shutdownOn(sig, quiet(), time.Second, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("shutdown context must carry the timeout")
		}
		close(called)
		return nil
	})

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before any signal")
	default:
	}

	sig <- syscall.SIGTERM
	WaitForShutdown(done)

	if ctx.Err() == nil {
		t.Error("context not cancelled after signal")
	}
	select {
	case <-called:
	default:
		t.Error("shutdown func not called")
	}
}

func TestShutdownErrorStillCompletes(t *testing.T) {
	sig := make(chan os.Signal, 1)
	_, done := shutdownOn(sig, quiet(), time.Second, func(context.Context) error {
		return errors.New("listener busy")
	})
	sig <- syscall.SIGINT

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not complete")
	}
}
