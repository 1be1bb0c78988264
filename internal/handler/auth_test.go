package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/auth"
	"github.com/iliyamo/helpdesk-dashboard/internal/middleware"
)

type fakeSignIn struct {
	provider string
	sess     auth.Session
	err      error
}

func (f *fakeSignIn) SignIn(_ context.Context, provider string, _ url.Values) (auth.Session, error) {
	f.provider = provider
	return f.sess, f.err
}

func newAuthEcho(t *testing.T, svc SignInService) *echo.Echo {
	e := newTestEcho(t)
	h := NewAuthHandler(svc, false, zap.NewNop())
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Authenticate)
	e.POST("/logout", h.Logout)
	return e
}

func credentials() url.Values {
	return url.Values{"email": {"user@nextmail.com"}, "password": {"123456"}}
}

func TestAuthenticateClassifiesFailures(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"wrong credentials", &auth.Error{Type: auth.CredentialsSignin}, http.StatusOK, "Invalid credentials."},
		{"provider failure", &auth.Error{Type: auth.CallbackRouteError, Err: errors.New("db down")}, http.StatusOK, "Something went wrong."},
		{"non-auth error", errors.New("session signing broke"), http.StatusInternalServerError, "Something went wrong!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeSignIn{err: tc.err}
			rec := postForm(newAuthEcho(t, svc), "/login", credentials())

			assert.Equal(t, auth.CredentialsProviderName, svc.provider)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
			assert.Empty(t, rec.Header().Get(echo.HeaderSetCookie))
		})
	}
}

func TestAuthenticateSetsSessionAndRedirects(t *testing.T) {
	svc := &fakeSignIn{sess: auth.Session{Token: "signed.jwt.token", Expires: time.Now().Add(time.Hour)}}
	e := newAuthEcho(t, svc)

	values := credentials()
	values.Set("redirectTo", "/dashboard/tickets?page=2")
	rec := postForm(e, "/login", values)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/tickets?page=2", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), middleware.SessionCookie+"=signed.jwt.token")

	values.Set("redirectTo", "//evil.example.com")
	rec = postForm(e, "/login", values)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestLogoutClearsSession(t *testing.T) {
	rec := postForm(newAuthEcho(t, &fakeSignIn{}), "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), "Max-Age=0")
}

func TestLoginFormKeepsLocalCallback(t *testing.T) {
	e := newAuthEcho(t, &fakeSignIn{})
	rec := getPage(e, "/login?callbackUrl=%2Fdashboard%2Fcustomers")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="/dashboard/customers"`)

	rec = getPage(e, "/login?callbackUrl=https%3A%2F%2Fevil.example.com")
	assert.Contains(t, rec.Body.String(), `value="/dashboard"`)
}
