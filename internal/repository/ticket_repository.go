package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/helpdesk-dashboard/internal/model"
)

// ticketSearch is shared by FetchFiltered and FetchPages so the page count
// is always computed over exactly the rows the listing can show.
const ticketSearch = `
	customers.name ILIKE $1 OR
	customers.email ILIKE $1 OR
	tickets.amount::text ILIKE $1 OR
	tickets.created_at::text ILIKE $1 OR
	tickets.status ILIKE $1 OR
	tickets.code ILIKE $1`

// TicketRepo encapsulates all queries touching the tickets table.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the provided DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// FetchFiltered returns one page of tickets whose customer name, email,
// amount, date, status or code contains query (case-insensitive), newest
// first. No match yields an empty slice.
func (r *TicketRepo) FetchFiltered(ctx context.Context, query string, page int) ([]model.TicketsTableRow, error) {
	const q = `SELECT
			tickets.id,
			tickets.amount,
			tickets.created_at,
			tickets.status,
			tickets.code,
			customers.name,
			customers.email,
			customers.image_url
		FROM tickets
		JOIN customers ON tickets.customer_id = customers.id
		WHERE` + ticketSearch + `
		ORDER BY tickets.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, q, likePattern(query), ItemsPerPage, offsetFor(page))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}
	defer rows.Close()

	out := make([]model.TicketsTableRow, 0, ItemsPerPage)
	for rows.Next() {
		var t model.TicketsTableRow
		if err := rows.Scan(&t.ID, &t.Amount, &t.CreatedAt, &t.Status, &t.Code, &t.Name, &t.Email, &t.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to fetch tickets: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}
	return out, nil
}

// FetchPages returns how many pages FetchFiltered can serve for query.
func (r *TicketRepo) FetchPages(ctx context.Context, query string) (int, error) {
	const q = `SELECT COUNT(*)
		FROM tickets
		JOIN customers ON tickets.customer_id = customers.id
		WHERE` + ticketSearch

	var count int64
	if err := r.db.QueryRowContext(ctx, q, likePattern(query)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to fetch total number of tickets: %w", err)
	}
	return pageCount(count), nil
}

// FetchByID loads a ticket for the edit form with the amount converted back
// to dollars. ErrTicketNotFound is returned for unknown or malformed ids.
func (r *TicketRepo) FetchByID(ctx context.Context, id string) (*model.TicketForm, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTicketNotFound
	}
	const q = `SELECT id, customer_id, amount, status, code FROM tickets WHERE id = $1`

	var (
		t     model.TicketForm
		cents int64
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.CustomerID, &cents, &t.Status, &t.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to fetch ticket: %w", err)
	}
	t.Amount = model.CentsToDollars(cents)
	return &t, nil
}

// FetchLatest returns the five most recent tickets with their customer.
func (r *TicketRepo) FetchLatest(ctx context.Context) ([]model.LatestTicket, error) {
	const q = `SELECT tickets.code, tickets.amount, customers.name, customers.image_url, customers.email, tickets.id
		FROM tickets
		JOIN customers ON tickets.customer_id = customers.id
		ORDER BY tickets.created_at DESC
		LIMIT 5`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the latest tickets: %w", err)
	}
	defer rows.Close()

	var out []model.LatestTicket
	for rows.Next() {
		var (
			t     model.LatestTicket
			cents int64
		)
		if err := rows.Scan(&t.Code, &cents, &t.Name, &t.ImageURL, &t.Email, &t.ID); err != nil {
			return nil, fmt.Errorf("failed to fetch the latest tickets: %w", err)
		}
		t.Amount = model.FormatCurrency(cents)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch the latest tickets: %w", err)
	}
	return out, nil
}

// Create inserts a ticket dated createdAt (YYYY-MM-DD) and returns the id
// generated by the store.
func (r *TicketRepo) Create(ctx context.Context, in model.TicketInput, createdAt string) (string, error) {
	const q = `INSERT INTO tickets (customer_id, amount, status, created_at, code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, q, in.CustomerID, in.AmountCents, string(in.Status), createdAt, string(in.Code)).Scan(&id)
	if err != nil {
		return "", ticketWriteErr(err)
	}
	return id, nil
}

// Update overwrites every editable column of a ticket. It returns
// ErrTicketNotFound when no row has that id.
func (r *TicketRepo) Update(ctx context.Context, id string, in model.TicketInput) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrTicketNotFound
	}
	const q = `UPDATE tickets
		SET customer_id = $1, amount = $2, status = $3, code = $4
		WHERE id = $5`

	res, err := r.db.ExecContext(ctx, q, in.CustomerID, in.AmountCents, string(in.Status), string(in.Code), id)
	if err != nil {
		return ticketWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// ListByAmount backs the diagnostic query endpoint: every ticket with the
// given amount in cents, joined with its customer's name.
func (r *TicketRepo) ListByAmount(ctx context.Context, cents int64) ([]model.TicketAmountRow, error) {
	const q = `SELECT tickets.amount, tickets.status, tickets.code, customers.name
		FROM tickets
		JOIN customers ON tickets.customer_id = customers.id
		WHERE tickets.amount = $1`

	rows, err := r.db.QueryContext(ctx, q, cents)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	out := []model.TicketAmountRow{}
	for rows.Next() {
		var t model.TicketAmountRow
		if err := rows.Scan(&t.Amount, &t.Status, &t.Code, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to query tickets: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	return out, nil
}

func ticketWriteErr(err error) error {
	if hasPgCode(err, pgForeignKeyViolation) || hasPgCode(err, pgInvalidTextRepr) {
		return fmt.Errorf("%w: %v", ErrUnknownCustomer, err)
	}
	return err
}
