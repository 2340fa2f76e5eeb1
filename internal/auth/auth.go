// Package auth guards the dashboard behind an email/password identity
// provider and a session cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by SignIn when the provider rejects
	// the email/password pair.
	ErrInvalidCredentials = errors.New("E-mail ou senha inválidos.")

	// ErrNoSession means the request carries no usable access token.
	ErrNoSession = errors.New("session missing or expired")
)

type (
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	Session struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
		User         User   `json:"user"`
	}
)

// Provider is the identity provider boundary.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	User(ctx context.Context, accessToken string) (User, error)
	SignOut(ctx context.Context, accessToken string) error
}

// ProviderError carries the provider's own message so it can be shown to the
// user on the login page.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %d %s", e.Status, e.Message)
}

// Is matches ErrInvalidCredentials for rejected sign-ins and ErrNoSession
// for rejected tokens.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrInvalidCredentials:
		return e.Status == 400 || e.Status == 422
	case ErrNoSession:
		return e.Status == 401 || e.Status == 403
	}
	return false
}

// Message returns the text to show on the login form for err.
func Message(err error) string {
	var pe *ProviderError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe) && pe.Message != "":
		return pe.Message
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	default:
		return "Não foi possível entrar. Tente novamente."
	}
}
