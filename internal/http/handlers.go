package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"painel/internal/auth"
	"painel/internal/dashboard"
	"painel/internal/log"
)

const maxLoginForm = 4 << 10

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}

	tm := s.tracer.GetMetrics()
	rm := s.limiter.GetMetrics()
	dm := s.detector.GetMetrics()
	health["requests"] = map[string]any{
		"total":         tm.TotalRequests,
		"server_errors": tm.ServerErrors,
		"avg_ms":        tm.AverageResponseTime().Milliseconds(),
		"rate_limited":  rm.TotalHits,
		"suspicious":    dm.SuspiciousRequests,
	}
	if s.gate != nil {
		cs := s.gate.Cache().Stats()
		health["auth_cache"] = map[string]uint64{"hits": cs.Hits, "misses": cs.Misses, "evictions": cs.Evictions}
	}
	writeJSON(w, http.StatusOK, health)
}

// handleReady answers 200 once the first refresh settled, successful or not;
// before that the dashboard only has the fallback week.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	st := s.dash.State()
	checks := map[string]string{"templates": "ok", "dashboard": "ok"}
	status, code := "ready", http.StatusOK

	select {
	case <-s.dash.Ready():
		if st.UsingFallback() {
			checks["dashboard"] = "fallback"
		}
	default:
		checks["dashboard"] = "loading"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.gate == nil {
		checks["auth"] = "not_configured"
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": checks,
		"weeks":  st.Len(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "authentication not configured"})
		return
	}
	s.render(w, r, http.StatusServiceUnavailable, "setup.html", map[string]string{"Title": "Configuração Necessária"})
}

type loginView struct {
	Title string
	Email string
	Error string
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := s.gate.Verify(r.Context(), r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginView{Title: "Entrar"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginForm)
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", loginView{Title: "Entrar", Error: "Formulário inválido."})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if _, err := s.gate.SignIn(r.Context(), w, email, password); err != nil {
		code := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			code = http.StatusBadGateway
		}
		s.render(w, r, code, "login.html", loginView{Title: "Entrar", Email: email, Error: auth.Message(err)})
		return
	}

	if isHTMX(r) {
		NewHTMXResponse().Redirect("/dashboard").Write(w)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.SignOut(r.Context(), w, r)
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/login").Write(w)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleDashboard renders the page, or only the dashboard body for htmx
// navigation.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st := navigate(s.dash.State(), r.URL.Query())
	user, _ := auth.UserFromContext(r.Context())
	view := buildPageView(st, r.URL.Query(), user)

	log.FromContext(r.Context()).DebugContext(r.Context(), "Rendering dashboard",
		log.NewFields().
			WithOperation(log.OpNavigate).
			WithWeek(st.Index(), view.WeekRange).
			ToSlice()...)

	if isHTMX(r) {
		s.renderFragment(w, r, NewHTMXResponse().
			TriggerWeekChanged(st.Index()).
			PushURL(weekURL(st.Index())), "dashboard_body", view)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", view)
}

// refresh runs a refetch. A refresh overtaken by a newer one is not an
// error for this caller; the newer result is what they will see.
func (s *Server) refresh(ctx context.Context) error {
	err := s.dash.Refresh(ctx)
	if errors.Is(err, dashboard.ErrSuperseded) {
		return nil
	}
	return err
}

func (s *Server) handleRefetch(w http.ResponseWriter, r *http.Request) {
	err := s.refresh(r.Context())
	st := s.dash.State()

	if !isHTMX(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	b := NewHTMXResponse().
		TriggerDashboardRefreshed(st.Index(), st.Len()).
		PushURL(weekURL(st.Index()))
	if err != nil {
		b.TriggerWarningNotification(dashboard.ErrorMessage(err))
	} else {
		b.TriggerSuccessNotification("Dados atualizados.")
	}
	s.renderFragment(w, r, b, "dashboard_body", buildPageView(st, nil, user))
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildAPIDashboard(navigate(s.dash.State(), r.URL.Query())))
}

func (s *Server) handleAPIWeeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.State().Weeks())
}

// handleAPIRefetch answers 200 with the new state, or 502 with the retained
// state and the error when the refetch failed.
func (s *Server) handleAPIRefetch(w http.ResponseWriter, r *http.Request) {
	code := http.StatusOK
	if err := s.refresh(r.Context()); err != nil {
		code = http.StatusBadGateway
	}
	writeJSON(w, code, buildAPIDashboard(s.dash.State()))
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	const msg = "Muitas atualizações. Tente novamente em instantes."
	s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Refetch rate limited",
		log.FieldPath, r.URL.Path,
		log.FieldClientIP, s.detector.ExtractClientIP(r))

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/"):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": msg})
	case isHTMX(r):
		TooManyRequestsError(msg).Write(w)
	default:
		http.Error(w, msg, http.StatusTooManyRequests)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	body, ok := s.execute(w, r, name, data)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	body, ok := s.execute(w, r, name, data)
	if !ok {
		return
	}
	b.Header("Content-Type", "text/html; charset=utf-8").Body(body).Write(w)
}

// execute renders into a buffer so a template failure can still produce a
// clean 500 instead of a half-written page.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, name string, data any) ([]byte, bool) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender,
			log.FieldError, err.Error(),
			"template", name)
		InternalServerError("Erro ao renderizar a página.").Write(w)
		return nil, false
	}
	return buf.Bytes(), true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
