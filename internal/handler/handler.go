// Package handler holds the dashboard's HTTP handlers: page renders, the
// form actions behind them, sign-in, and the development tools.
package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/middleware"
	"github.com/iliyamo/helpdesk-dashboard/internal/queue"
)

// requestTimeout bounds the store work of a single request.
const requestTimeout = 5 * time.Second

// Paths revalidated and redirected to by the form actions.
const (
	pathDashboard = "/dashboard"
	pathTickets   = "/dashboard/tickets"
	pathCustomers = "/dashboard/customers"
)

// Revalidator marks cached pages stale after a write.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pageParam reads ?page=, defaulting to 1 for anything that is not a
// positive integer.
func pageParam(c echo.Context) int {
	p, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func queryParam(c echo.Context) string {
	return strings.TrimSpace(c.QueryParam("query"))
}

func actor(c echo.Context) string {
	if s := middleware.Session(c); s != nil {
		return s.Email
	}
	return ""
}

// afterWrite revalidates paths and publishes ev. Neither failure undoes the
// write, so both are only logged.
func afterWrite(c echo.Context, log *zap.Logger, cache Revalidator, events queue.Publisher, ev queue.ChangeEvent, paths ...string) {
	ctx := context.WithoutCancel(c.Request().Context())
	if err := cache.Revalidate(ctx, paths...); err != nil {
		log.Warn("revalidate failed", zap.Strings("paths", paths), zap.Error(err))
	}

	ev.Actor = actor(c)
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := events.Publish(pubCtx, ev); err != nil {
		log.Warn("publish change event failed", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
