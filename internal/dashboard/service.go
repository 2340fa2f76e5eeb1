package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/parser"
	ports "painel/internal/sheets"
)

var (
	// ErrFetch wraps transport failures of the grid source.
	ErrFetch = errors.New("Erro ao buscar dados da planilha.")

	// ErrSuperseded is returned by a refresh whose result was discarded
	// because a newer one started.
	ErrSuperseded = errors.New("refresh superseded by a newer one")
)

// Service owns the shared State. It is the only writer; readers get copies.
type Service struct {
	reader  ports.GridReader
	parser  *parser.Parser
	timeout time.Duration
	logger  *log.Logger
	events  *log.StructuredLogger

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	settled    chan struct{}
	settleOnce sync.Once
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each fetch+parse run.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentDashboard)
		}
	}
}

// NewService builds a service reading from reader. The state starts empty,
// serving the fallback week, until Start or Refresh settles.
func NewService(reader ports.GridReader, p *parser.Parser, policy StartPolicy, opts ...Option) *Service {
	s := &Service{
		reader:  reader,
		parser:  p,
		timeout: 15 * time.Second,
		logger:  log.New(log.DefaultConfig()).WithComponent(log.ComponentDashboard),
		state:   NewState(policy),
		settled: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// State returns a snapshot of the shared state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready is closed once the first refresh settles.
func (s *Service) Ready() <-chan struct{} { return s.settled }

// Start runs the initial refresh in the background. Until it settles the
// state reports Loading and serves the fallback snapshot.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.state = s.state.Begin()
	s.mu.Unlock()

	go func() {
		if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			s.logger.WarnContext(ctx, "Initial refresh failed, serving fallback", log.FieldError, err)
		}
	}()
}

// Refresh re-runs fetch and parse. The call started last wins: starting a
// refresh cancels the one in flight and older completions are discarded.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel
	s.state = s.state.Begin()
	s.mu.Unlock()
	defer cancel()

	rows, weeks, err := s.load(runCtx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.DebugContext(ctx, "Discarding stale refresh result", log.FieldGeneration, gen, "current", s.generation)
		return ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		s.state = s.state.Fail(err)
	} else {
		s.state = s.state.Resolve(weeks)
	}
	s.settleOnce.Do(func() { close(s.settled) })
	s.events.LogRefresh(ctx, ports.SourceName(s.reader), gen, rows, len(weeks), err)
	return err
}

func (s *Service) load(ctx context.Context) (int, []core.DashboardData, error) {
	grid, err := s.reader.ReadGrid(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	weeks, err := s.parser.Parse(parser.Grid(grid))
	if err != nil {
		return len(grid), nil, err
	}
	return len(grid), weeks, nil
}

// ErrorMessage maps a refresh error to the text shown beside the data.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, parser.ErrNoWeeks):
		return parser.ErrNoWeeks.Error()
	case errors.Is(err, parser.ErrProcessing):
		return parser.ErrProcessing.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Tempo esgotado ao buscar a planilha."
	default:
		return ErrFetch.Error()
	}
}
