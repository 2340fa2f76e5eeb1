package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"painel/internal/auth"
	"painel/internal/dashboard"
	"painel/internal/log"
	"painel/internal/middleware/ratelimit"
	"painel/internal/middleware/security"
	"painel/internal/middleware/trace"
	appweb "painel/web"
)

// Deps are the collaborators the server renders from.
type Deps struct {
	Dashboard *dashboard.Service
	// Gate is nil when the identity provider is not configured; every page
	// then shows the setup notice.
	Gate             *auth.Gate
	RefetchPerMinute int
	Logger           *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	dash      *dashboard.Service
	gate      *auth.Gate
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	logger    *log.Logger
	started   time.Time

	shutdownOnce sync.Once
}

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, d Deps) (*Server, error) {
	if d.Dashboard == nil {
		return nil, errors.New("dashboard service is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	t, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		dash:      d.Dashboard,
		gate:      d.Gate,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerWindow: d.RefetchPerMinute,
			Window:            time.Minute,
			CleanupInterval:   5 * time.Minute,
		}),
		detector: security.NewDetector(logger),
		logger:   logger.WithComponent(log.ComponentHTTP),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /login", s.public(s.handleLoginForm))
	mux.Handle("POST /login", s.public(s.handleLogin))
	mux.Handle("POST /logout", s.public(s.handleLogout))

	refetchLimit := s.limiter.Middleware(s.clientKey, s.handleRateLimited)

	mux.Handle("GET /dashboard", s.protect(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("POST /dashboard/refetch", s.protect(refetchLimit(http.HandlerFunc(s.handleRefetch))))
	mux.Handle("GET /api/dashboard", s.protect(http.HandlerFunc(s.handleAPIDashboard)))
	mux.Handle("GET /api/weeks", s.protect(http.HandlerFunc(s.handleAPIWeeks)))
	mux.Handle("POST /api/refetch", s.protect(refetchLimit(http.HandlerFunc(s.handleAPIRefetch))))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:    addr,
		Handler: s.tracer.Middleware(s.detector.Middleware(headers.Middleware(mux))),
	}
	return s, nil
}

// protect puts a handler behind the session gate, or behind the setup
// notice when there is no identity provider.
func (s *Server) protect(h http.Handler) http.Handler {
	if s.gate == nil {
		return http.HandlerFunc(s.handleSetup)
	}
	return security.NoStore(s.gate.Middleware(h))
}

// public serves the login flow, which needs the provider but no session.
func (s *Server) public(h http.HandlerFunc) http.Handler {
	if s.gate == nil {
		return http.HandlerFunc(s.handleSetup)
	}
	return security.NoStore(h)
}

// clientKey buckets refetches per signed-in user, falling back to the
// client address.
func (s *Server) clientKey(r *http.Request) string {
	if u, ok := auth.UserFromContext(r.Context()); ok && u.ID != "" {
		return "user:" + u.ID
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

// Shutdown gracefully shuts down the server and its background sweeps.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
