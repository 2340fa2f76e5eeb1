// Package memory is an in-process grid source, used by tests and demos.
package memory

import (
	"context"
	"sync"

	ports "painel/internal/sheets"
)

// Store holds one grid that can be swapped at any time.
type Store struct {
	mu    sync.RWMutex
	rows  [][]string
	err   error
	reads int
}

var _ ports.GridReader = (*Store)(nil)

func New(rows [][]string) *Store {
	return &Store{rows: rows}
}

// Set replaces the grid and clears any injected error.
func (s *Store) Set(rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.err = nil
}

// Fail makes subsequent reads return err.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Reads counts ReadGrid calls.
func (s *Store) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}

func (s *Store) Source() string { return "memory" }

// ReadGrid returns a copy so callers cannot mutate the stored grid.
func (s *Store) ReadGrid(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.rows) == 0 {
		return nil, ports.ErrEmptyGrid
	}
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}
