package model

// Customer mirrors the 'customers' table.
type Customer struct {
	ID       string // customers.id (uuid)
	Name     string // customers.name
	Email    string // customers.email
	ImageURL string // customers.image_url
}

// CustomerInput carries the editable customer fields after validation.
type CustomerInput struct {
	Name  string
	Email string
}

// CustomerField is the id/name pair used to populate customer selects.
type CustomerField struct {
	ID   string
	Name string
}

// CustomersTableRow is one row of the customers listing together with the
// ticket totals aggregated for that customer.
type CustomersTableRow struct {
	ID            string
	Name          string
	Email         string
	ImageURL      string
	TotalTickets  int64
	TotalPending  int64
	TotalResolved int64
}

// CustomerForm pre-fills the customer edit form.
type CustomerForm struct {
	ID    string
	Name  string
	Email string
}
