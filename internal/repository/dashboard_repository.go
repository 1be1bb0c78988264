package repository

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/helpdesk-dashboard/internal/model"
)

// DashboardRepo serves the aggregate queries behind the overview page.
type DashboardRepo struct {
	db *sql.DB
}

// NewDashboardRepo constructs a DashboardRepo with the provided DB handle.
func NewDashboardRepo(db *sql.DB) *DashboardRepo {
	return &DashboardRepo{db: db}
}

// FetchCardData runs the ticket count, customer count and status breakdown
// concurrently and combines them. The three queries are independent, so
// the first failure cancels the others and no partial result is returned.
func (r *DashboardRepo) FetchCardData(ctx context.Context) (model.CardData, error) {
	var tickets, customers, resolved, pending int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.QueryRowContext(gctx, `SELECT COUNT(*) FROM tickets`).Scan(&tickets)
	})
	g.Go(func() error {
		return r.db.QueryRowContext(gctx, `SELECT COUNT(*) FROM customers`).Scan(&customers)
	})
	g.Go(func() error {
		const q = `SELECT
			COALESCE(SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END), 0) AS resolved,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending
			FROM tickets`
		return r.db.QueryRowContext(gctx, q).Scan(&resolved, &pending)
	})
	if err := g.Wait(); err != nil {
		return model.CardData{}, fmt.Errorf("failed to fetch card data: %w", err)
	}

	return model.CardData{
		NumberOfCustomers:    customers,
		NumberOfTickets:      tickets,
		TotalResolvedTickets: resolved,
		TotalPendingTickets:  pending,
		ResolvedRate:         model.FormatRate(resolved, tickets),
	}, nil
}

// FetchRevenue returns the monthly revenue series in insertion order.
func (r *DashboardRepo) FetchRevenue(ctx context.Context) ([]model.Revenue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT month, revenue FROM revenue`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revenue data: %w", err)
	}
	defer rows.Close()

	var out []model.Revenue
	for rows.Next() {
		var rv model.Revenue
		if err := rows.Scan(&rv.Month, &rv.Revenue); err != nil {
			return nil, fmt.Errorf("failed to fetch revenue data: %w", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch revenue data: %w", err)
	}
	return out, nil
}
