package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// schema is applied in order after the old tables are dropped. tickets comes
// last because it references customers.
var schema = []string{
	`CREATE TABLE users (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE customers (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		image_url VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE revenue (
		month VARCHAR(4) NOT NULL UNIQUE,
		revenue INT NOT NULL
	)`,
	`CREATE TABLE tickets (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES customers (id),
		amount INT NOT NULL CHECK (amount > 0),
		status VARCHAR(255) NOT NULL CHECK (status IN ('pending', 'resolved')),
		created_at DATE NOT NULL,
		code VARCHAR(255) NOT NULL CHECK (code IN ('ARB-2', 'CPR-2', 'CWQ-2'))
	)`,
}

// dropOrder removes dependents before the tables they reference.
var dropOrder = []string{"tickets", "customers", "revenue", "users"}

// SeedResult reports how many rows each table received.
type SeedResult struct {
	Users     int `json:"users"`
	Customers int `json:"customers"`
	Revenue   int `json:"revenue"`
	Tickets   int `json:"tickets"`
}

// Seeder rebuilds the schema and loads the fixed dataset.
type Seeder struct {
	db   *sql.DB
	hash func(plain string) (string, error)
}

// NewSeeder returns a Seeder that hashes user passwords with hash before
// storing them.
func NewSeeder(db *sql.DB, hash func(plain string) (string, error)) *Seeder {
	return &Seeder{db: db, hash: hash}
}

// Seed drops and recreates users, customers, revenue and tickets, then
// inserts the seed rows, all inside one transaction. Postgres DDL is
// transactional, so any failure rolls back to the previous tables and
// running Seed twice leaves exactly the seed dataset.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	// bcrypt is slow; hash before holding a transaction open.
	users := make([][]any, 0, len(seedUsers))
	for _, u := range seedUsers {
		h, err := s.hash(u.Password)
		if err != nil {
			return SeedResult{}, fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		users = append(users, []any{u.ID, u.Name, u.Email, h})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedResult{}, fmt.Errorf("begin seed: %w", err)
	}
	res, err := seedTx(ctx, tx, users)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return SeedResult{}, errors.Join(err, fmt.Errorf("rollback seed: %w", rbErr))
		}
		return SeedResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return SeedResult{}, fmt.Errorf("commit seed: %w", err)
	}
	return res, nil
}

func seedTx(ctx context.Context, tx *sql.Tx, users [][]any) (SeedResult, error) {
	for _, table := range dropOrder {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return SeedResult{}, fmt.Errorf("drop %s: %w", table, err)
		}
	}
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return SeedResult{}, fmt.Errorf("create schema: %w", err)
		}
	}

	customers := make([][]any, 0, len(seedCustomers))
	for _, c := range seedCustomers {
		customers = append(customers, []any{c.ID, c.Name, c.Email, c.ImageURL})
	}
	revenue := make([][]any, 0, len(seedRevenues))
	for _, rv := range seedRevenues {
		revenue = append(revenue, []any{rv.Month, rv.Revenue})
	}
	tickets := make([][]any, 0, len(seedTickets))
	for _, t := range seedTickets {
		tickets = append(tickets, []any{t.CustomerID, t.Amount, t.Status, t.CreatedAt, t.Code})
	}

	inserts := []struct {
		table string
		cols  []string
		rows  [][]any
	}{
		{"users", []string{"id", "name", "email", "password"}, users},
		{"customers", []string{"id", "name", "email", "image_url"}, customers},
		{"revenue", []string{"month", "revenue"}, revenue},
		{"tickets", []string{"customer_id", "amount", "status", "created_at", "code"}, tickets},
	}
	for _, in := range inserts {
		if err := insertRows(ctx, tx, in.table, in.cols, in.rows); err != nil {
			return SeedResult{}, err
		}
	}

	return SeedResult{
		Users:     len(users),
		Customers: len(customers),
		Revenue:   len(revenue),
		Tickets:   len(tickets),
	}, nil
}

// insertRows writes all rows with a single multi-row INSERT.
func insertRows(ctx context.Context, tx *sql.Tx, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	var (
		b    strings.Builder
		args = make([]any, 0, len(rows)*len(cols))
		n    = 1
	)
	b.WriteString("INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES ")
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString("$" + strconv.Itoa(n))
			n++
		}
		b.WriteByte(')')
		args = append(args, row...)
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
