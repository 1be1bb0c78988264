package handler

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/queue"
	"github.com/iliyamo/helpdesk-dashboard/internal/repository"
)

type ticketFixture struct {
	e      *echo.Echo
	mock   sqlmock.Sqlmock
	cache  *fakeCache
	events *fakeEvents
}

func newTicketFixture(t *testing.T) ticketFixture {
	t.Helper()
	db, mock := newTestDB(t)
	f := ticketFixture{e: newTestEcho(t), mock: mock, cache: &fakeCache{}, events: &fakeEvents{}}
	h := NewTicketHandler(repository.NewTicketRepo(db), repository.NewCustomerRepo(db), f.cache, f.events, zap.NewNop())
	h.Now = func() time.Time { return time.Date(2024, 6, 1, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)) }

	f.e.GET("/dashboard/tickets", h.List)
	f.e.GET("/dashboard/tickets/create", h.CreateForm)
	f.e.POST("/dashboard/tickets/create", h.Create)
	f.e.GET("/dashboard/tickets/:id/edit", h.EditForm)
	f.e.POST("/dashboard/tickets/:id/edit", h.Update)
	return f
}

func ticketForm(customer, amount, status, code string) url.Values {
	return url.Values{"customerId": {customer}, "amount": {amount}, "status": {status}, "code": {code}}
}

func TestCreateTicketInsertsCentsAndRedirects(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tickets")).
		WithArgs("c1", int64(5000), "pending", "2024-06-02", "ARB-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(ticketID))

	rec := postForm(f.e, "/dashboard/tickets/create", ticketForm("c1", "50", "pending", "ARB-2"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/tickets", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, []string{"/dashboard/tickets", "/dashboard", "/dashboard/customers"}, f.cache.paths)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, queue.TicketCreated, f.events.events[0].Type)
	assert.Equal(t, ticketID, f.events.events[0].EntityID)
	assert.Equal(t, "5000", f.events.events[0].Fields["amount"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateTicketRejectsInvalidInputWithoutWriting(t *testing.T) {
	cases := []struct {
		name    string
		values  url.Values
		field   string
		message string
	}{
		{"negative amount", ticketForm("c1", "-5", "pending", "ARB-2"), "amount", "Please enter an amount greater than $0."},
		{"amount rounds to zero cents", ticketForm("c1", "0.004", "pending", "ARB-2"), "amount", "Please enter an amount greater than $0."},
		{"unknown status", ticketForm("c1", "50", "closed", "ARB-2"), "status", "Please select a ticket status."},
		{"unknown code", ticketForm("c1", "50", "pending", "XYZ-9"), "code", "Please select correct code."},
		{"no customer", ticketForm("", "50", "pending", "ARB-2"), "customerId", "Please select a customer."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTicketFixture(t)
			f.mock.ExpectQuery("FROM customers").WillReturnRows(customerRows())

			rec := postForm(f.e, "/dashboard/tickets/create", tc.values)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
			assert.Contains(t, rec.Body.String(), msgCreateTicketInvalid)
			assert.Empty(t, f.cache.paths)
			assert.Empty(t, f.events.events)
			assert.NoError(t, f.mock.ExpectationsWereMet(), "no insert may be attempted")
		})
	}
}

func TestCreateTicketStoreFailure(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.ExpectQuery("INSERT INTO tickets").WillReturnError(errors.New("connection reset"))
	f.mock.ExpectQuery("FROM customers").WillReturnRows(customerRows())

	rec := postForm(f.e, "/dashboard/tickets/create", ticketForm("c1", "50", "pending", "ARB-2"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Database Error: Failed to Create Ticket.")
	assert.Empty(t, f.cache.paths)
}

func TestEditTicketFormNotFound(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.MatchExpectationsInOrder(false)
	f.mock.ExpectQuery("FROM tickets WHERE id").WithArgs(ticketID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "amount", "status", "code"}))
	f.mock.ExpectQuery("FROM customers").WillReturnRows(customerRows())

	rec := getPage(f.e, "/dashboard/tickets/"+ticketID+"/edit")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgTicketNotFound)
}

func TestEditTicketFormPrefills(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.MatchExpectationsInOrder(false)
	f.mock.ExpectQuery("FROM tickets WHERE id").WithArgs(ticketID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "amount", "status", "code"}).
			AddRow(ticketID, customerID, int64(15795), "resolved", "CPR-2"))
	f.mock.ExpectQuery("FROM customers").WillReturnRows(customerRows())

	rec := getPage(f.e, "/dashboard/tickets/"+ticketID+"/edit")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="157.95"`)
	assert.Contains(t, body, `<option value="`+customerID+`" selected>Amy Burns</option>`)
	assert.Contains(t, body, `value="resolved" checked`)
}

func TestUpdateTicket(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.ExpectExec("UPDATE tickets").
		WithArgs(customerID, int64(12345), "resolved", "CWQ-2", ticketID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := postForm(f.e, "/dashboard/tickets/"+ticketID+"/edit", ticketForm(customerID, "123.45", "resolved", "CWQ-2"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/tickets", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, []string{"/dashboard/tickets", "/dashboard", "/dashboard/customers"}, f.cache.paths)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateTicketMissingRowIs404(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.ExpectExec("UPDATE tickets").WillReturnResult(sqlmock.NewResult(0, 0))

	rec := postForm(f.e, "/dashboard/tickets/"+ticketID+"/edit", ticketForm(customerID, "10", "pending", "ARB-2"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.cache.paths)
}

func TestUpdateTicketValidationMessage(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.ExpectQuery("FROM customers").WillReturnRows(customerRows())

	rec := postForm(f.e, "/dashboard/tickets/"+ticketID+"/edit", ticketForm(customerID, "abc", "pending", "ARB-2"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), msgUpdateTicketInvalid)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestTicketListRendersPage(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.MatchExpectationsInOrder(false)
	f.mock.ExpectQuery("ORDER BY tickets.created_at DESC").WithArgs("%lee%", 6, 6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "created_at", "status", "code", "name", "email", "image_url"}).
			AddRow(ticketID, int64(44800), time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC), "resolved", "ARB-2", "Lee Robinson", "lee@robinson.com", "/lee.png"))
	f.mock.ExpectQuery("SELECT COUNT").WithArgs("%lee%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(8)))

	rec := getPage(f.e, "/dashboard/tickets?query=lee&page=2")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "$448.00")
	assert.Contains(t, body, "Sep 10, 2023")
	assert.Contains(t, body, `<span class="current">2</span>`)
}

func TestTicketListStoreFailureIs500(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.MatchExpectationsInOrder(false)
	f.mock.ExpectQuery("ORDER BY").WillReturnError(errors.New("boom"))
	f.mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	rec := getPage(f.e, "/dashboard/tickets")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestTicketListPageFarPastEndIsEmpty(t *testing.T) {
	f := newTicketFixture(t)
	f.mock.MatchExpectationsInOrder(false)
	f.mock.ExpectQuery("ORDER BY tickets.created_at DESC").WithArgs("%%", 6, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "created_at", "status", "code", "name", "email", "image_url"}))
	f.mock.ExpectQuery("SELECT COUNT").WithArgs("%%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(8)))

	rec := getPage(f.e, "/dashboard/tickets?page=2000000000000000000")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
