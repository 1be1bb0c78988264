package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/auth"
	"github.com/iliyamo/helpdesk-dashboard/internal/middleware"
	"github.com/iliyamo/helpdesk-dashboard/internal/view"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgSomethingWrong     = "Something went wrong."
)

// SignInService starts sessions for a provider.
type SignInService interface {
	SignIn(ctx context.Context, provider string, form url.Values) (auth.Session, error)
}

// AuthHandler serves the login page and the sign-in/sign-out actions.
type AuthHandler struct {
	Auth         SignInService
	SecureCookie bool
	Log          *zap.Logger
}

// NewAuthHandler returns an AuthHandler that signs users in through a.
func NewAuthHandler(a SignInService, secureCookie bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: a, SecureCookie: secureCookie, Log: log}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageLogin, view.Login{CallbackURL: safeRedirect(c.QueryParam("callbackUrl"))})
}

// Authenticate signs in with the credentials provider. Rejected credentials
// and other sign-in failures re-render the login page with a message; any
// error that is not an auth error goes to the error handler.
func (h *AuthHandler) Authenticate(c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	dest := safeRedirect(values.Get("redirectTo"))
	sess, err := h.Auth.SignIn(ctx, auth.CredentialsProviderName, values)
	if err != nil {
		var ae *auth.Error
		if !errors.As(err, &ae) {
			return err
		}
		msg := msgSomethingWrong
		if ae.Type == auth.CredentialsSignin {
			msg = msgInvalidCredentials
		} else {
			h.Log.Warn("sign in failed", zap.String("type", string(ae.Type)), zap.Error(ae.Err))
		}
		return c.Render(http.StatusOK, view.PageLogin, view.Login{
			Email:       values.Get("email"),
			Message:     msg,
			CallbackURL: dest,
		})
	}

	middleware.SetSessionCookie(c, sess, h.SecureCookie)
	return c.Redirect(http.StatusSeeOther, dest)
}

// Logout clears the session and returns to the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// safeRedirect keeps post-login redirects on this site.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return pathDashboard
	}
	return target
}
