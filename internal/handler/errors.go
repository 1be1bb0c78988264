package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/view"
)

// ErrorHandler renders the error page for echo.HTTPErrors and answers 500
// for everything else. Unexpected errors are logged; the page never shows
// their text.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "Something went wrong!"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if he.Internal != nil {
				log.Warn("http error", zap.Int("status", status), zap.Error(he.Internal))
			}
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			} else if status < http.StatusInternalServerError {
				msg = http.StatusText(status)
			}
		} else {
			log.Error("unhandled error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.Render(status, view.PageError, view.Error{Status: status, Message: msg, Back: backLink(c.Request().URL.Path)})
		}
		if err != nil {
			log.Error("render error page", zap.Error(fmt.Errorf("status %d: %w", status, err)))
		}
	}
}

func backLink(path string) string {
	switch {
	case strings.HasPrefix(path, pathTickets):
		return pathTickets
	case strings.HasPrefix(path, pathCustomers):
		return pathCustomers
	case strings.HasPrefix(path, pathDashboard):
		return pathDashboard
	default:
		return "/login"
	}
}
