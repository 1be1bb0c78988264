package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/helpdesk-dashboard/internal/model"
)

// CustomerRepo encapsulates all queries touching the customers table.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo constructs a CustomerRepo with the provided DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// FetchAll returns every customer's id and name ordered by name, for the
// ticket form's customer select.
func (r *CustomerRepo) FetchAll(ctx context.Context) ([]model.CustomerField, error) {
	const q = `SELECT id, name FROM customers ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all customers: %w", err)
	}
	defer rows.Close()

	var out []model.CustomerField
	for rows.Next() {
		var c model.CustomerField
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to fetch all customers: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch all customers: %w", err)
	}
	return out, nil
}

// FetchFiltered returns one page of customers whose name or email contains
// query, each with its ticket totals. Customers without tickets are
// included with zero totals.
func (r *CustomerRepo) FetchFiltered(ctx context.Context, query string, page int) ([]model.CustomersTableRow, error) {
	const q = `SELECT
			customers.id,
			customers.name,
			customers.email,
			customers.image_url,
			COUNT(tickets.id) AS total_tickets,
			COALESCE(SUM(CASE WHEN tickets.status = 'pending' THEN 1 ELSE 0 END), 0) AS total_pending,
			COALESCE(SUM(CASE WHEN tickets.status = 'resolved' THEN 1 ELSE 0 END), 0) AS total_resolved
		FROM customers
		LEFT JOIN tickets ON customers.id = tickets.customer_id
		WHERE
			customers.name ILIKE $1 OR
			customers.email ILIKE $1
		GROUP BY customers.id, customers.name, customers.email, customers.image_url
		ORDER BY customers.name ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, q, likePattern(query), ItemsPerPage, offsetFor(page))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer table: %w", err)
	}
	defer rows.Close()

	out := make([]model.CustomersTableRow, 0, ItemsPerPage)
	for rows.Next() {
		var c model.CustomersTableRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.TotalTickets, &c.TotalPending, &c.TotalResolved); err != nil {
			return nil, fmt.Errorf("failed to fetch customer table: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch customer table: %w", err)
	}
	return out, nil
}

// FetchPages returns how many pages FetchFiltered can serve for query.
func (r *CustomerRepo) FetchPages(ctx context.Context, query string) (int, error) {
	const q = `SELECT COUNT(*)
		FROM customers
		WHERE
			customers.name ILIKE $1 OR
			customers.email ILIKE $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, q, likePattern(query)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to fetch total number of customers: %w", err)
	}
	return pageCount(count), nil
}

// FetchByID loads a customer for the edit form. ErrCustomerNotFound is
// returned for unknown or malformed ids.
func (r *CustomerRepo) FetchByID(ctx context.Context, id string) (*model.CustomerForm, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCustomerNotFound
	}
	const q = `SELECT id, name, email FROM customers WHERE id = $1`

	var c model.CustomerForm
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}
	return &c, nil
}

// Update changes a customer's name and email. It returns
// ErrCustomerNotFound when no row has that id.
func (r *CustomerRepo) Update(ctx context.Context, id string, in model.CustomerInput) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrCustomerNotFound
	}
	const q = `UPDATE customers SET name = $1, email = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, q, in.Name, in.Email, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
