// Package published reads a worksheet exported with "Publish to the web" as
// CSV.
package published

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ports "painel/internal/sheets"
)

// Reader downloads the published CSV on every call.
type Reader struct {
	url    *url.URL
	client *http.Client
	now    func() time.Time
}

var _ ports.GridReader = (*Reader)(nil)

// Option configures a Reader.
type Option func(*Reader)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Reader) { r.client = c }
}

// WithClock replaces time.Now for the cache-buster parameter.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) { r.now = now }
}

// New validates rawURL and returns a Reader.
func New(rawURL string, opts ...Option) (*Reader, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("missing published CSV URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse published CSV URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("published CSV URL must be http or https, got %q", u.Scheme)
	}

	r := &Reader{url: u, client: newHTTPClientWithPooling(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Source implements sheets.Named.
func (r *Reader) Source() string {
	return "published:" + r.url.Host
}

// ReadGrid fetches the CSV. A t=<unix millis> parameter defeats intermediate
// caches so every refetch sees the latest edits.
func (r *Reader) ReadGrid(ctx context.Context) ([][]string, error) {
	u := *r.url
	q := u.Query()
	q.Set("t", strconv.FormatInt(r.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download CSV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("download CSV: unexpected status %s", resp.Status)
	}

	rows, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrEmptyGrid
	}
	return rows, nil
}

// ParseCSV reads every record, tolerating ragged rows and stray quotes.
func ParseCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return rows, nil
}

// newHTTPClientWithPooling creates an HTTP client with connection pooling and
// keep-alive, sized for a single upstream host.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}
