package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/helpdesk-dashboard/internal/auth"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

const sessionKey = "session"

// SessionVerifier validates session tokens.
type SessionVerifier interface {
	Verify(raw string) (*auth.SessionClaims, error)
}

// RequireSession lets signed-in requests through and stores their claims on
// the context. Anyone else is sent to loginPath with the original URL in
// callbackUrl.
func RequireSession(v SessionVerifier, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims := readSession(c, v); claims != nil {
				c.Set(sessionKey, claims)
				return next(c)
			}
			ClearSessionCookie(c)
			target := loginPath + "?callbackUrl=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusSeeOther, target)
		}
	}
}

// RedirectIfSignedIn sends a visitor who already has a valid session to dest.
// It guards the login page.
func RedirectIfSignedIn(v SessionVerifier, dest string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodGet && readSession(c, v) != nil {
				return c.Redirect(http.StatusSeeOther, dest)
			}
			return next(c)
		}
	}
}

func readSession(c echo.Context, v SessionVerifier) *auth.SessionClaims {
	ck, err := c.Cookie(SessionCookie)
	if err != nil || strings.TrimSpace(ck.Value) == "" {
		return nil
	}
	claims, err := v.Verify(ck.Value)
	if err != nil {
		return nil
	}
	return claims
}

// Session returns the claims stored by RequireSession, or nil.
func Session(c echo.Context) *auth.SessionClaims {
	claims, _ := c.Get(sessionKey).(*auth.SessionClaims)
	return claims
}

// SetSessionCookie writes the session cookie for s.
func SetSessionCookie(c echo.Context, s auth.Session, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.Expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func currentUserID(c echo.Context) string {
	if s := Session(c); s != nil && s.Subject != "" {
		return s.Subject
	}
	return "anon"
}
