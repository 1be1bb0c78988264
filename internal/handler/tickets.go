package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

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
	msgCreateTicketInvalid = "Missing Fields. Failed to Create Ticket."
	msgCreateTicketStore   = "Database Error: Failed to Create Ticket."
	msgUpdateTicketInvalid = "Missing Fields. Failed to Update Ticket."
	msgUpdateTicketStore   = "Database Error: Failed to Update Ticket."
	msgTicketNotFound      = "Could not find the requested ticket."
)

// TicketHandler serves the ticket listing and the create/edit actions.
type TicketHandler struct {
	Tickets   *repository.TicketRepo
	Customers *repository.CustomerRepo
	Cache     Revalidator
	Events    queue.Publisher
	Log       *zap.Logger
	Now       func() time.Time // date stamped on new tickets
}

// NewTicketHandler wires the ticket pages to their repositories, cache and
// event publisher, stamping new tickets with time.Now.
func NewTicketHandler(t *repository.TicketRepo, cu *repository.CustomerRepo, cache Revalidator, events queue.Publisher, log *zap.Logger) *TicketHandler {
	return &TicketHandler{Tickets: t, Customers: cu, Cache: cache, Events: events, Log: log, Now: time.Now}
}

// List renders one page of tickets matching ?query=.
func (h *TicketHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	query, page := queryParam(c), pageParam(c)
	var (
		rows  []model.TicketsTableRow
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { rows, err = h.Tickets.FetchFiltered(gctx, query, page); return })
	g.Go(func() (err error) { total, err = h.Tickets.FetchPages(gctx, query); return })
	if err := g.Wait(); err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.PageTickets, view.Tickets{Query: query, Page: page, TotalPages: total, Tickets: rows})
}

// CreateForm renders the empty create form.
func (h *TicketHandler) CreateForm(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	customers, err := h.Customers.FetchAll(ctx)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.PageTicketForm, h.createPage(customers, url.Values{}, form.State{}))
}

// Create validates the form, inserts the ticket dated today (UTC), and
// redirects to the listing. Validation and store failures re-render the form.
func (h *TicketHandler) Create(c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	in, errs := form.ParseTicket(values)
	if errs != nil {
		return h.rerenderCreate(c, values, form.State{Errors: errs, Message: msgCreateTicketInvalid})
	}

	createdAt := h.Now().UTC().Format("2006-01-02")
	id, err := h.Tickets.Create(ctx, in, createdAt)
	if err != nil {
		h.Log.Error("create ticket", zap.Error(err))
		return h.rerenderCreate(c, values, form.State{Message: msgCreateTicketStore})
	}

	afterWrite(c, h.Log, h.Cache, h.Events, ticketEvent(queue.TicketCreated, id, in), pathTickets, pathDashboard, pathCustomers)
	return c.Redirect(http.StatusSeeOther, pathTickets)
}

func (h *TicketHandler) rerenderCreate(c echo.Context, values url.Values, st form.State) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	customers, err := h.Customers.FetchAll(ctx)
	if err != nil {
		return err
	}
	return c.Render(http.StatusUnprocessableEntity, view.PageTicketForm, h.createPage(customers, values, st))
}

func (h *TicketHandler) createPage(customers []model.CustomerField, values url.Values, st form.State) view.TicketForm {
	return view.TicketForm{
		Heading:   "Create Ticket",
		Action:    pathTickets + "/create",
		Submit:    "Create Ticket",
		Customers: customers,
		Values:    values,
		State:     st,
		Statuses:  model.TicketStatuses,
		Codes:     model.TicketCodes,
	}
}

// EditForm loads the ticket and the customer list concurrently and renders
// the edit form, or 404 when the ticket does not exist.
func (h *TicketHandler) EditForm(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id := c.Param("id")
	var (
		ticket    *model.TicketForm
		customers []model.CustomerField
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { ticket, err = h.Tickets.FetchByID(gctx, id); return })
	g.Go(func() (err error) { customers, err = h.Customers.FetchAll(gctx); return })
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgTicketNotFound)
		}
		return err
	}
	return c.Render(http.StatusOK, view.PageTicketForm, h.editPage(id, customers, view.TicketValues(*ticket), form.State{}))
}

// Update validates the form and overwrites the ticket.
func (h *TicketHandler) Update(c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	id := c.Param("id")
	in, errs := form.ParseTicket(values)
	if errs != nil {
		return h.rerenderEdit(c, id, values, form.State{Errors: errs, Message: msgUpdateTicketInvalid})
	}

	if err := h.Tickets.Update(ctx, id, in); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgTicketNotFound)
		}
		h.Log.Error("update ticket", zap.String("id", id), zap.Error(err))
		return h.rerenderEdit(c, id, values, form.State{Message: msgUpdateTicketStore})
	}

	afterWrite(c, h.Log, h.Cache, h.Events, ticketEvent(queue.TicketUpdated, id, in), pathTickets, pathDashboard, pathCustomers)
	return c.Redirect(http.StatusSeeOther, pathTickets)
}

func (h *TicketHandler) rerenderEdit(c echo.Context, id string, values url.Values, st form.State) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	customers, err := h.Customers.FetchAll(ctx)
	if err != nil {
		return err
	}
	return c.Render(http.StatusUnprocessableEntity, view.PageTicketForm, h.editPage(id, customers, values, st))
}

func (h *TicketHandler) editPage(id string, customers []model.CustomerField, values url.Values, st form.State) view.TicketForm {
	return view.TicketForm{
		Heading:   "Edit Ticket",
		Action:    pathTickets + "/" + url.PathEscape(id) + "/edit",
		Submit:    "Edit Ticket",
		Customers: customers,
		Values:    values,
		State:     st,
		Statuses:  model.TicketStatuses,
		Codes:     model.TicketCodes,
	}
}

func ticketEvent(t queue.EventType, id string, in model.TicketInput) queue.ChangeEvent {
	return queue.ChangeEvent{
		Type:     t,
		EntityID: id,
		Fields: map[string]string{
			"customer_id": in.CustomerID,
			"amount":      strconv.FormatInt(in.AmountCents, 10),
			"status":      string(in.Status),
			"code":        string(in.Code),
		},
	}
}
