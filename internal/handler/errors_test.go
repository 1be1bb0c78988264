package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/helpdesk-dashboard/internal/view"
)

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r, err := view.New()
	assert.NoError(t, err)
	e := echo.New()
	e.Renderer = r
	e.HTTPErrorHandler = ErrorHandler(zap.New(core))
	e.GET("/dashboard/customers/x", func(c echo.Context) error { return errors.New("pq: secret detail") })

	rec := getPage(e, "/dashboard/customers/x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
	assert.Contains(t, rec.Body.String(), `href="/dashboard/customers"`)
	assert.Equal(t, 1, logs.FilterMessage("unhandled error").Len())

	rec = getPage(e, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Found")
}

func TestBackLink(t *testing.T) {
	assert.Equal(t, "/dashboard/tickets", backLink("/dashboard/tickets/1/edit"))
	assert.Equal(t, "/dashboard", backLink("/dashboard/seed"))
	assert.Equal(t, "/login", backLink("/login"))
}
