package dedup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingReader struct {
	calls     atomic.Int32
	completed atomic.Int32
	release   chan struct{}
	err       error
}

func (c *countingReader) Source() string { return "fake" }

func (c *countingReader) ReadGrid(ctx context.Context) ([][]string, error) {
	c.calls.Add(1)
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	c.completed.Add(1)
	return [][]string{{"Atividades Semanais - 12/01 a 18/01"}}, nil
}

func TestSequentialReadsAlwaysDownload(t *testing.T) {
	src := &countingReader{}
	r := New(src, time.Second)

	for i := 0; i < 5; i++ {
		if _, err := r.ReadGrid(context.Background()); err != nil {
			t.Fatalf("ReadGrid: %v", err)
		}
	}
	if got := src.calls.Load(); got != 5 {
		t.Errorf("downloads = %d, want 5", got)
	}
	if r.Source() != "fake" {
		t.Errorf("Source() = %q", r.Source())
	}
}

func TestReadGridCollapsesConcurrentCalls(t *testing.T) {
	src := &countingReader{release: make(chan struct{})}
	r := New(src, 5*time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.ReadGrid(context.Background())
			errs <- err
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for src.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("ReadGrid: %v", err)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("downloads = %d, want 1", got)
	}
}

func TestReadGridCallerCancelDoesNotAbortDownload(t *testing.T) {
	src := &countingReader{release: make(chan struct{})}
	r := New(src, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.ReadGrid(ctx)
		done <- err
	}()

	for src.calls.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(src.release)
	deadline := time.Now().Add(2 * time.Second)
	for src.completed.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := src.completed.Load(); got != 1 {
		t.Errorf("abandoned download completed %d times, want 1", got)
	}
}

func TestReadGridPropagatesErrors(t *testing.T) {
	boom := errors.New("503")
	src := &countingReader{err: boom}
	r := New(src, time.Second)

	if _, err := r.ReadGrid(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	r.ReadGrid(context.Background())
	if got := src.calls.Load(); got != 2 {
		t.Errorf("downloads = %d, want 2", got)
	}
}
