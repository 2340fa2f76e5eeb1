package published

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ports "painel/internal/sheets"
)

func TestNewRejectsBadURL(t *testing.T) {
	cases := []string{"", "   ", "ftp://example.com/x.csv", "://nope"}
	for _, raw := range cases {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q): expected error", raw)
		}
	}
}

func TestReadGridAddsCacheBuster(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("a,b\nc\n"))
	}))
	defer srv.Close()

	fixed := time.UnixMilli(1736700000123)
	r, err := New(srv.URL+"/pub?output=csv", WithHTTPClient(srv.Client()), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rows, err := r.ReadGrid(context.Background())
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if !strings.Contains(gotQuery, "output=csv") || !strings.Contains(gotQuery, "t=1736700000123") {
		t.Errorf("query = %q, want output=csv and t=1736700000123", gotQuery)
	}
	if len(rows) != 2 || len(rows[0]) != 2 || len(rows[1]) != 1 {
		t.Errorf("rows = %v, want ragged [[a b] [c]]", rows)
	}
}

func TestReadGridNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	r, _ := New(srv.URL, WithHTTPClient(srv.Client()))
	_, err := r.ReadGrid(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestReadGridEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	r, _ := New(srv.URL, WithHTTPClient(srv.Client()))
	if _, err := r.ReadGrid(context.Background()); !errors.Is(err, ports.ErrEmptyGrid) {
		t.Fatalf("expected ErrEmptyGrid, got %v", err)
	}
}

func TestReadGridHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r, _ := New(srv.URL, WithHTTPClient(srv.Client()))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := r.ReadGrid(ctx); err == nil {
		t.Fatal("expected error after context deadline")
	}
}

func TestParseCSVLazyQuotes(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("Condomínio \"Luna\",\"R$ 1.300,50\"\n,,TRUE\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if rows[0][0] != `Condomínio "Luna"` {
		t.Errorf("rows[0][0] = %q", rows[0][0])
	}
	if rows[0][1] != "R$ 1.300,50" {
		t.Errorf("rows[0][1] = %q", rows[0][1])
	}
	if len(rows[1]) != 3 || rows[1][2] != "TRUE" {
		t.Errorf("rows[1] = %v", rows[1])
	}
}

func TestSource(t *testing.T) {
	r, _ := New("https://docs.google.com/spreadsheets/d/e/x/pub?output=csv")
	if got := r.Source(); got != "published:docs.google.com" {
		t.Errorf("Source() = %q", got)
	}
}
