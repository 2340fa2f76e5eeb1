package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"painel/internal/log"
	"painel/internal/parser"
	"painel/internal/sheets/dedup"
	"painel/internal/sheets/memory"
)

// scriptedReader returns one queued response per call. A response with a gate
// blocks until the gate closes, regardless of ctx.
type scriptedReader struct {
	mu        sync.Mutex
	responses []response
}

type response struct {
	rows [][]string
	err  error
	gate chan struct{}
}

func (r *scriptedReader) ReadGrid(ctx context.Context) ([][]string, error) {
	r.mu.Lock()
	if len(r.responses) == 0 {
		r.mu.Unlock()
		return nil, errors.New("no scripted response")
	}
	resp := r.responses[0]
	r.responses = r.responses[1:]
	r.mu.Unlock()

	if resp.gate != nil {
		<-resp.gate
	}
	return resp.rows, resp.err
}

func (r *scriptedReader) Source() string { return "scripted" }

func grid(labels ...string) [][]string {
	rows := make([][]string, 0, len(labels)*60)
	for _, l := range labels {
		rows = append(rows, []string{"", "Atividades Semanais - " + l})
		for i := 0; i < 59; i++ {
			rows = append(rows, nil)
		}
	}
	return rows
}

func newTestService(t *testing.T, r *scriptedReader, policy StartPolicy) *Service {
	t.Helper()
	p, err := parser.New(parser.DefaultLayout())
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	quiet := log.New(log.Config{Output: io.Discard})
	return NewService(r, p, policy, WithLogger(quiet), WithTimeout(time.Second))
}

func TestRefreshResolves(t *testing.T) {
	r := &scriptedReader{responses: []response{{rows: grid("05/01 a 11/01", "12/01 a 18/01")}}}
	svc := newTestService(t, r, StartLast)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	st := svc.State()
	if st.Len() != 2 || st.Index() != 1 || st.Current().WeekRange != "12/01 a 18/01" {
		t.Errorf("state: len=%d index=%d week=%q", st.Len(), st.Index(), st.Current().WeekRange)
	}
	if st.Loading() || !st.Settled() {
		t.Error("refresh should settle the state")
	}
	select {
	case <-svc.Ready():
	default:
		t.Error("Ready should be closed after the first refresh")
	}
}

func TestRefreshFailuresKeepLastGoodSequence(t *testing.T) {
	r := &scriptedReader{responses: []response{
		{rows: grid("05/01 a 11/01")},
		{err: errors.New("dial tcp: connection refused")},
		{rows: [][]string{{"nothing here"}}},
	}}
	svc := newTestService(t, r, StartFirst)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}

	err := svc.Refresh(context.Background())
	if !errors.Is(err, ErrFetch) || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected ErrFetch wrapping the cause, got %v", err)
	}
	if got := svc.State().Current().WeekRange; got != "05/01 a 11/01" {
		t.Errorf("after fetch error week = %q", got)
	}

	err = svc.Refresh(context.Background())
	if !errors.Is(err, parser.ErrNoWeeks) {
		t.Errorf("expected ErrNoWeeks, got %v", err)
	}
	st := svc.State()
	if st.Current().WeekRange != "05/01 a 11/01" || !errors.Is(st.Err(), parser.ErrNoWeeks) {
		t.Errorf("state after parse error: week=%q err=%v", st.Current().WeekRange, st.Err())
	}
}

func TestInitialFailureServesFallback(t *testing.T) {
	r := &scriptedReader{responses: []response{{err: errors.New("timeout")}}}
	svc := newTestService(t, r, StartFirst)
	svc.Start(context.Background())

	select {
	case <-svc.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh did not settle")
	}
	st := svc.State()
	if !st.UsingFallback() || st.Current().WeekRange != "12/01 a 18/01" {
		t.Error("fallback snapshot should remain after a failed first fetch")
	}
	if !errors.Is(st.Err(), ErrFetch) {
		t.Errorf("err = %v", st.Err())
	}
}

func TestStartReportsLoading(t *testing.T) {
	gate := make(chan struct{})
	r := &scriptedReader{responses: []response{{rows: grid("12/01 a 18/01"), gate: gate}}}
	svc := newTestService(t, r, StartFirst)
	svc.Start(context.Background())

	if st := svc.State(); !st.Loading() || !st.UsingFallback() {
		t.Error("state should be loading with the fallback until the first fetch")
	}
	close(gate)
	<-svc.Ready()
	if svc.State().Loading() {
		t.Error("loading should clear")
	}
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	r := &scriptedReader{responses: []response{
		{rows: grid("old week"), gate: slow},
		{rows: grid("new week")},
	}}
	svc := newTestService(t, r, StartFirst)

	first := make(chan error, 1)
	go func() { first <- svc.Refresh(context.Background()) }()

	// wait until the first refresh has taken its scripted response
	for {
		r.mu.Lock()
		n := len(r.responses)
		r.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	close(slow)

	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Errorf("first refresh: expected ErrSuperseded, got %v", err)
	}
	if got := svc.State().Current().WeekRange; got != "new week" {
		t.Errorf("week = %q, want the result of the last started refresh", got)
	}
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{parser.ErrNoWeeks, "Nenhuma semana encontrada. Verifique o layout."},
		{errors.Join(parser.ErrProcessing, errors.New("index out of range")), "Erro ao processar as semanas."},
		{ErrFetch, ErrFetch.Error()},
		{context.DeadlineExceeded, "Tempo esgotado ao buscar a planilha."},
	}
	for _, tc := range cases {
		if got := ErrorMessage(tc.err); got != tc.want {
			t.Errorf("ErrorMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestEveryRefreshReadsTheSheet(t *testing.T) {
	p, err := parser.New(parser.DefaultLayout())
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	store := memory.New(grid("05/01 a 11/01"))
	svc := NewService(dedup.New(store, time.Second), p, StartFirst,
		WithLogger(log.New(log.Config{Output: io.Discard})), WithTimeout(time.Second))

	for i := 0; i < 3; i++ {
		if err := svc.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh: %v", err)
		}
	}
	store.Set(grid("12/01 a 18/01"))
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := store.Reads(); got != 4 {
		t.Errorf("store reads = %d, want 4", got)
	}
	if got := svc.State().Current().WeekRange; got != "12/01 a 18/01" {
		t.Errorf("week after edit = %q", got)
	}
}
