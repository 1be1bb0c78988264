package model

import "time"

// TicketStatus is the closed set of workflow states a ticket can be in.
type TicketStatus string

const (
	StatusPending  TicketStatus = "pending"
	StatusResolved TicketStatus = "resolved"
)

// TicketStatuses lists every accepted status in display order.
var TicketStatuses = []TicketStatus{StatusPending, StatusResolved}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	for _, v := range TicketStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TicketCode is the category a ticket is filed under.
type TicketCode string

const (
	CodeARB2 TicketCode = "ARB-2"
	CodeCPR2 TicketCode = "CPR-2"
	CodeCWQ2 TicketCode = "CWQ-2"
)

// TicketCodes lists every accepted category code in display order.
var TicketCodes = []TicketCode{CodeARB2, CodeCPR2, CodeCWQ2}

// Valid reports whether c is one of the known codes.
func (c TicketCode) Valid() bool {
	for _, v := range TicketCodes {
		if c == v {
			return true
		}
	}
	return false
}

// Ticket mirrors the 'tickets' table.
type Ticket struct {
	ID         string       // tickets.id (uuid)
	CustomerID string       // tickets.customer_id -> customers.id
	Amount     int64        // tickets.amount in cents
	Status     TicketStatus // tickets.status
	Code       TicketCode   // tickets.code
	CreatedAt  time.Time    // tickets.created_at (date)
}

// TicketInput is the validated payload for inserting or updating a ticket.
// AmountCents is already converted from the dollar value typed into the form.
type TicketInput struct {
	CustomerID  string
	AmountCents int64
	Status      TicketStatus
	Code        TicketCode
}

// TicketsTableRow is one row of the paginated tickets listing.
type TicketsTableRow struct {
	ID        string
	Name      string
	Email     string
	ImageURL  string
	CreatedAt time.Time
	Amount    int64
	Status    TicketStatus
	Code      TicketCode
}

// LatestTicket is shown on the dashboard overview. Amount is preformatted.
type LatestTicket struct {
	ID       string
	Name     string
	ImageURL string
	Email    string
	Amount   string
	Code     TicketCode
}

// TicketForm pre-fills the edit form. Amount is in dollars.
type TicketForm struct {
	ID         string
	CustomerID string
	Amount     float64
	Status     TicketStatus
	Code       TicketCode
}

// TicketAmountRow is returned by the diagnostic amount query.
type TicketAmountRow struct {
	Amount int64        `json:"amount"`
	Status TicketStatus `json:"status"`
	Code   TicketCode   `json:"code"`
	Name   string       `json:"name"`
}
