// Package router wires handlers and middleware into the echo route table.
package router

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/helpdesk-dashboard/internal/handler"
	"github.com/iliyamo/helpdesk-dashboard/internal/middleware"
)

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db *sql.DB, metrics http.Handler) {
	e.GET("/healthz", handler.Health(db))
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/dashboard") })
}

// RegisterAuth registers the login page, the sign-in action behind its own
// rate limit, and sign-out.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, sessions middleware.SessionVerifier, loginLimit echo.MiddlewareFunc) {
	e.GET("/login", a.LoginForm, middleware.RedirectIfSignedIn(sessions, "/dashboard"))
	e.POST("/login", a.Authenticate, loginLimit)
	e.POST("/logout", a.Logout)
}

// Dashboard groups what the /dashboard routes need.
type Dashboard struct {
	Sessions  middleware.SessionVerifier
	PageCache echo.MiddlewareFunc
	Overview  *handler.DashboardHandler
	Tickets   *handler.TicketHandler
	Customers *handler.CustomerHandler
	DevTools  *handler.DevToolsHandler // nil unless dev tools are enabled
}

// RegisterDashboard registers every page and action under /dashboard. All
// of them require a session; page reads also go through the page cache.
func RegisterDashboard(e *echo.Echo, d Dashboard) {
	g := e.Group("/dashboard", middleware.RequireSession(d.Sessions, "/login"))
	cached := d.PageCache

	g.GET("", d.Overview.Overview, cached)

	g.GET("/tickets", d.Tickets.List, cached)
	g.GET("/tickets/create", d.Tickets.CreateForm, cached)
	g.POST("/tickets/create", d.Tickets.Create)
	g.GET("/tickets/:id/edit", d.Tickets.EditForm, cached)
	g.POST("/tickets/:id/edit", d.Tickets.Update)

	g.GET("/customers", d.Customers.List, cached)
	g.GET("/customers/:id/edit", d.Customers.EditForm, cached)
	g.POST("/customers/:id/edit", d.Customers.Update)

	if d.DevTools != nil {
		g.GET("/seed", d.DevTools.Seed)
		g.GET("/query", d.DevTools.Query)
	}
}
