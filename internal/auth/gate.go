package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"painel/internal/cache"
	"painel/internal/log"
)

const (
	// CookieName holds the provider access token.
	CookieName = "painel_session"

	defaultUserCacheSize = 256
)

type ctxKey struct{}

// Gate verifies the session cookie on every request and keeps recently
// verified tokens in an LRU so the provider is not hit per request.
type Gate struct {
	provider  Provider
	users     *cache.LRUCache[User]
	secure    bool
	loginPath string
	logger    *log.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) GateOption {
	return func(g *Gate) { g.secure = secure }
}

// WithGateLogger sets the logger for sign-in and verification events.
func WithGateLogger(l *log.Logger) GateOption {
	return func(g *Gate) { g.logger = l.WithComponent(log.ComponentAuth) }
}

// WithLoginPath sets where unauthenticated page requests are redirected.
func WithLoginPath(p string) GateOption {
	return func(g *Gate) { g.loginPath = p }
}

func NewGate(p Provider, ttl time.Duration, opts ...GateOption) *Gate {
	g := &Gate{
		provider:  p,
		users:     cache.NewLRUCache[User](defaultUserCacheSize, ttl),
		loginPath: "/login",
		logger:    log.New(log.DefaultConfig()).WithComponent(log.ComponentAuth),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Cache exposes the verified-user cache for periodic sweeping.
func (g *Gate) Cache() *cache.LRUCache[User] { return g.users }

// SignIn authenticates against the provider and sets the session cookie.
func (g *Gate) SignIn(ctx context.Context, w http.ResponseWriter, email, password string) (User, error) {
	s, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		g.logger.WarnContext(ctx, "Sign-in rejected",
			log.FieldOperation, log.OpSignIn,
			log.FieldError, err.Error())
		return User{}, err
	}

	g.users.Set(tokenKey(s.AccessToken), s.User)
	http.SetCookie(w, g.cookie(s.AccessToken, s.ExpiresIn))
	g.logger.InfoContext(ctx, "User signed in",
		log.FieldOperation, log.OpSignIn,
		log.FieldUser, s.User.Email)
	return s.User, nil
}

// SignOut drops the session locally and at the provider. The cookie is
// cleared even when the provider call fails.
func (g *Gate) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, g.cookie("", -1))

	token := Token(r)
	if token == "" {
		return
	}
	g.users.Delete(tokenKey(token))
	if err := g.provider.SignOut(ctx, token); err != nil {
		g.logger.WarnContext(ctx, "Provider sign-out failed",
			log.FieldOperation, log.OpSignOut,
			log.FieldError, err.Error())
	}
}

// Verify resolves the request's session to a user.
func (g *Gate) Verify(ctx context.Context, r *http.Request) (User, error) {
	token := Token(r)
	if token == "" {
		return User{}, ErrNoSession
	}

	key := tokenKey(token)
	if u, ok := g.users.Get(key); ok {
		return u, nil
	}

	u, err := g.provider.User(ctx, token)
	if err != nil {
		g.logger.DebugContext(ctx, "Session rejected",
			log.FieldOperation, log.OpVerify,
			log.FieldError, err.Error())
		return User{}, err
	}
	g.users.Set(key, u)
	return u, nil
}

// Middleware rejects requests without a valid session. Pages are redirected
// to the login form; /api requests get a JSON 401.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := g.Verify(r.Context(), r)
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				http.SetCookie(w, g.cookie("", -1))
			} else {
				g.logger.WarnContext(r.Context(), "Session verification failed",
					log.FieldOperation, log.OpVerify,
					log.FieldError, err.Error())
			}
			g.deny(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		return
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", g.loginPath)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, g.loginPath, http.StatusFound)
}

func (g *Gate) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Token returns the access token carried by the request cookie.
func Token(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user stored by Middleware.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
