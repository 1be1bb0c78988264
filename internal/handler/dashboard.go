package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/helpdesk-dashboard/internal/model"
	"github.com/iliyamo/helpdesk-dashboard/internal/repository"
	"github.com/iliyamo/helpdesk-dashboard/internal/view"
)

// DashboardHandler renders the overview page.
type DashboardHandler struct {
	Stats   *repository.DashboardRepo
	Tickets *repository.TicketRepo
}

// NewDashboardHandler returns the overview handler backed by stats and tickets.
func NewDashboardHandler(stats *repository.DashboardRepo, tickets *repository.TicketRepo) *DashboardHandler {
	return &DashboardHandler{Stats: stats, Tickets: tickets}
}

// Overview loads the cards, the revenue chart and the latest tickets
// concurrently. Any failure fails the page.
func (h *DashboardHandler) Overview(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var (
		cards   model.CardData
		revenue []model.Revenue
		latest  []model.LatestTicket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { cards, err = h.Stats.FetchCardData(gctx); return })
	g.Go(func() (err error) { revenue, err = h.Stats.FetchRevenue(gctx); return })
	g.Go(func() (err error) { latest, err = h.Tickets.FetchLatest(gctx); return })
	if err := g.Wait(); err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.PageOverview, view.NewOverview(cards, revenue, latest))
}
