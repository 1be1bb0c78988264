package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/helpdesk-dashboard/internal/form"
	"github.com/iliyamo/helpdesk-dashboard/internal/model"
	"github.com/iliyamo/helpdesk-dashboard/internal/queue"
	"github.com/iliyamo/helpdesk-dashboard/internal/repository"
	"github.com/iliyamo/helpdesk-dashboard/internal/view"
)

const (
	msgUpdateCustomerInvalid = "Missing Fields. Failed to Update Customer."
	msgUpdateCustomerStore   = "Database Error: Failed to Update Customer."
	msgCustomerNotFound      = "Could not find the requested customer."
)

// CustomerHandler serves the customer listing and the edit action.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
	Cache     Revalidator
	Events    queue.Publisher
	Log       *zap.Logger
}

// NewCustomerHandler wires the customer pages to their repository, cache and
// event publisher.
func NewCustomerHandler(cu *repository.CustomerRepo, cache Revalidator, events queue.Publisher, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{Customers: cu, Cache: cache, Events: events, Log: log}
}

// List renders one page of customers with their ticket totals.
func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	query, page := queryParam(c), pageParam(c)
	var (
		rows  []model.CustomersTableRow
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { rows, err = h.Customers.FetchFiltered(gctx, query, page); return })
	g.Go(func() (err error) { total, err = h.Customers.FetchPages(gctx, query); return })
	if err := g.Wait(); err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.PageCustomers, view.Customers{Query: query, Page: page, TotalPages: total, Customers: rows})
}

// EditForm renders the edit form, or 404 when the customer does not exist.
func (h *CustomerHandler) EditForm(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id := c.Param("id")
	cust, err := h.Customers.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgCustomerNotFound)
		}
		return err
	}
	return c.Render(http.StatusOK, view.PageCustomerForm, view.CustomerForm{ID: id, Values: view.CustomerValues(*cust)})
}

// Update validates the form and overwrites the customer's name and email.
func (h *CustomerHandler) Update(c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	id := c.Param("id")
	in, errs := form.ParseCustomer(values)
	if errs != nil {
		return h.rerender(c, id, values, form.State{Errors: errs, Message: msgUpdateCustomerInvalid})
	}

	if err := h.Customers.Update(ctx, id, in); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgCustomerNotFound)
		}
		h.Log.Error("update customer", zap.String("id", id), zap.Error(err))
		return h.rerender(c, id, values, form.State{Message: msgUpdateCustomerStore})
	}

	afterWrite(c, h.Log, h.Cache, h.Events, queue.ChangeEvent{
		Type:     queue.CustomerUpdated,
		EntityID: id,
		Fields:   map[string]string{"name": in.Name, "email": in.Email},
	}, pathCustomers, pathDashboard)
	return c.Redirect(http.StatusSeeOther, pathCustomers)
}

func (h *CustomerHandler) rerender(c echo.Context, id string, values url.Values, st form.State) error {
	return c.Render(http.StatusUnprocessableEntity, view.PageCustomerForm, view.CustomerForm{ID: id, Values: values, State: st})
}
