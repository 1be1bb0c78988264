package model

// User represents a dashboard operator as stored in the `users` table.
// Users are only created by the seeder; Password holds the bcrypt hash and
// is never rendered.
type User struct {
	ID       string // users.id (uuid)
	Name     string // users.name
	Email    string // users.email (unique)
	Password string // users.password (bcrypt hash)
}
