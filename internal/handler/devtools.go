package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/queue"
	"github.com/iliyamo/helpdesk-dashboard/internal/repository"
)

// diagnosticAmount is the ticket amount, in cents, the query endpoint lists.
const diagnosticAmount = 666

// DevToolsHandler serves the reseed and diagnostic query endpoints. Both
// answer JSON.
type DevToolsHandler struct {
	Seeder  *repository.Seeder
	Tickets *repository.TicketRepo
	Cache   Revalidator
	Events  queue.Publisher
	Log     *zap.Logger
}

// NewDevToolsHandler returns the handler for the reseed and diagnostic query endpoints.
func NewDevToolsHandler(s *repository.Seeder, t *repository.TicketRepo, cache Revalidator, events queue.Publisher, log *zap.Logger) *DevToolsHandler {
	return &DevToolsHandler{Seeder: s, Tickets: t, Cache: cache, Events: events, Log: log}
}

// Seed drops, recreates and reloads every table in one transaction.
func (h *DevToolsHandler) Seed(c echo.Context) error {
	// bcrypt hashing plus DDL needs more room than a page read.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	res, err := h.Seeder.Seed(ctx)
	if err != nil {
		h.Log.Error("seed database", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	h.Log.Info("database seeded",
		zap.Int("users", res.Users), zap.Int("customers", res.Customers),
		zap.Int("revenue", res.Revenue), zap.Int("tickets", res.Tickets))

	afterWrite(c, h.Log, h.Cache, h.Events, queue.ChangeEvent{Type: queue.DatabaseSeeded}, pathDashboard)
	return c.JSON(http.StatusOK, echo.Map{"message": "Database seeded successfully"})
}

// Query lists the tickets whose amount is diagnosticAmount.
func (h *DevToolsHandler) Query(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	rows, err := h.Tickets.ListByAmount(ctx, diagnosticAmount)
	if err != nil {
		h.Log.Error("diagnostic query", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}
