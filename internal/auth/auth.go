// Package auth verifies dashboard credentials and issues session tokens.
// Handlers call SignIn with a provider name and the raw form; failures come
// back as *Error values tagged with a Type so callers can tell a wrong
// password apart from everything else.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/iliyamo/helpdesk-dashboard/internal/model"
)

// ErrorType classifies sign-in failures.
type ErrorType string

const (
	// CredentialsSignin means the submitted credentials were rejected.
	CredentialsSignin ErrorType = "CredentialsSignin"
	// CallbackRouteError means the provider itself failed (e.g. store outage).
	CallbackRouteError ErrorType = "CallbackRouteError"
	// InvalidProvider means SignIn was asked for a provider that is not registered.
	InvalidProvider ErrorType = "InvalidProvider"
)

// Error is returned by SignIn for every authentication failure.
type Error struct {
	Type ErrorType
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Type, e.Err)
	}
	return "auth: " + string(e.Type)
}

func (e *Error) Unwrap() error { return e.Err }

// IsType reports whether err is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Type == t
}

// Provider checks one kind of credentials. Authorize returns (nil, nil)
// when the credentials are wrong and a non-nil error only when it could not
// decide.
type Provider interface {
	Name() string
	Authorize(ctx context.Context, form url.Values) (*model.User, error)
}

// Session is an issued sign-in.
type Session struct {
	Token   string
	Expires time.Time
	User    model.User
}

// Authenticator dispatches sign-ins to registered providers and signs the
// resulting sessions.
type Authenticator struct {
	providers map[string]Provider
	tokens    *TokenIssuer
}

// NewAuthenticator registers providers by name.
func NewAuthenticator(tokens *TokenIssuer, providers ...Provider) *Authenticator {
	a := &Authenticator{providers: make(map[string]Provider, len(providers)), tokens: tokens}
	for _, p := range providers {
		a.providers[p.Name()] = p
	}
	return a
}

// SignIn authorizes form with the named provider and issues a session.
// Authentication failures are *Error; a failure to sign the session is
// returned as is.
func (a *Authenticator) SignIn(ctx context.Context, provider string, form url.Values) (Session, error) {
	p, ok := a.providers[provider]
	if !ok {
		return Session{}, &Error{Type: InvalidProvider, Err: fmt.Errorf("provider %q", provider)}
	}
	user, err := p.Authorize(ctx, form)
	if err != nil {
		var ae *Error
		if errors.As(err, &ae) {
			return Session{}, ae
		}
		return Session{}, &Error{Type: CallbackRouteError, Err: err}
	}
	if user == nil {
		return Session{}, &Error{Type: CredentialsSignin}
	}

	tok, err := a.tokens.Issue(*user)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: tok.Token, Expires: tok.Exp, User: *user}, nil
}

// Verify validates a session token previously issued by SignIn.
func (a *Authenticator) Verify(raw string) (*SessionClaims, error) {
	return a.tokens.Parse(raw)
}
