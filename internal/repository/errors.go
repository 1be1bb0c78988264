// Package repository defines the SQL query layer of the dashboard. Every
// repository receives its *sql.DB from the caller; nothing here holds a
// package-level connection.
//
// The sentinel values below let handlers tell a missing row apart from a
// store failure: a missing row becomes a 404 page, a store failure a 500
// (reads) or a form message (writes).
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrTicketNotFound is returned when no ticket has the requested id.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrCustomerNotFound is returned when no customer has the requested id.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrUserNotFound is returned when no user has the requested email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnknownCustomer is returned when a ticket write references a
	// customer id the store does not know (foreign key violation).
	ErrUnknownCustomer = errors.New("unknown customer")
)

// Postgres SQLSTATE codes inspected by the repositories.
const (
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
