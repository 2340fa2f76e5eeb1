package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gotrue "github.com/supabase-community/gotrue-go"
)

// GoTrue talks to a Supabase auth server (GoTrue) through the community
// client.
type GoTrue struct {
	api    gotrue.Client
	client *http.Client
}

var _ Provider = (*GoTrue)(nil)

// NewGoTrue builds a provider for the project at baseURL (the Supabase URL,
// without /auth/v1). A nil client gets a pooled default.
func NewGoTrue(baseURL, apiKey string, client *http.Client) (*GoTrue, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || apiKey == "" {
		return nil, errors.New("identity provider URL and key are required")
	}
	if client == nil {
		client = newHTTPClient()
	}
	api := gotrue.New("", apiKey).WithCustomGoTrueURL(baseURL + "/auth/v1")
	return &GoTrue{api: api, client: client}, nil
}

// SignIn exchanges email and password for a session.
func (g *GoTrue) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	resp, err := g.with(ctx, "").SignInWithEmailPassword(email, password)
	if err != nil {
		return Session{}, failure(ctx, err)
	}
	if resp.AccessToken == "" {
		return Session{}, errors.New("identity provider returned no access token")
	}
	return Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         User{ID: resp.User.ID.String(), Email: resp.User.Email},
	}, nil
}

// User resolves an access token to its user.
func (g *GoTrue) User(ctx context.Context, accessToken string) (User, error) {
	if accessToken == "" {
		return User{}, ErrNoSession
	}
	resp, err := g.with(ctx, accessToken).GetUser()
	if err != nil {
		return User{}, failure(ctx, err)
	}
	if resp.ID == uuid.Nil {
		return User{}, ErrNoSession
	}
	return User{ID: resp.ID.String(), Email: resp.Email}, nil
}

// SignOut revokes the session's refresh tokens.
func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := g.with(ctx, accessToken).Logout(); err != nil {
		return failure(ctx, err)
	}
	return nil
}

// with returns a client bound to ctx. The library has no context parameter,
// so ctx travels on the transport.
func (g *GoTrue) with(ctx context.Context, token string) gotrue.Client {
	next := g.client.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c := g.api.WithClient(http.Client{
		Transport: contextTransport{ctx: ctx, next: next},
		Timeout:   g.client.Timeout,
	})
	if token != "" {
		c = c.WithToken(token)
	}
	return c
}

type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t contextTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(r.Clone(t.ctx))
}

// failure reports a cancelled ctx as such, whatever the client made of it.
func failure(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("identity provider request: %w", ctxErr)
	}
	return providerError(err)
}

// The client reports non-2xx answers as "response status code N: <body>".
var statusPattern = regexp.MustCompile(`(?s)status code (\d{3})(?::\s*(.*))?`)

// providerError turns a client error into a ProviderError when the server
// answered, keeping transport failures wrapped as they are.
func providerError(err error) error {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return fmt.Errorf("identity provider request: %w", err)
	}
	status, _ := strconv.Atoi(m[1])
	return &ProviderError{Status: status, Message: errorMessage([]byte(m[2]))}
}

// errorMessage pulls the human message out of the provider's error shapes,
// old ({error, error_description}) and new ({code, error_code, msg}).
func errorMessage(payload []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(payload, &e) != nil {
		return ""
	}
	for _, m := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: 15 * time.Second,
	}
}
