package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/queue"
	"github.com/iliyamo/helpdesk-dashboard/internal/view"
)

const (
	ticketID   = "f1d0b7c2-3a4e-4f5b-9c6d-7e8f9a0b1c2d"
	customerID = "3958dc9e-712f-4377-85e9-fec4b6a6442a"
)

type fakeCache struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeCache) Revalidate(_ context.Context, paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, paths...)
	return f.err
}

type fakeEvents struct {
	mu     sync.Mutex
	events []queue.ChangeEvent
}

func (f *fakeEvents) Publish(_ context.Context, ev queue.ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	r, err := view.New()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = r
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
	return e
}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func postForm(e *echo.Echo, target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func getPage(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func customerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name"}).
		AddRow(customerID, "Amy Burns").
		AddRow("c1", "Lee Robinson")
}
