// Package queue carries dashboard change events over RabbitMQ: handlers
// publish after a successful write and a background consumer appends them to
// an activity log.
package queue

import "time"

// ChangesQueue is the durable queue change events are routed to.
const ChangesQueue = "dashboard.changes"

// EventType names what changed.
type EventType string

const (
	TicketCreated   EventType = "ticket.created"
	TicketUpdated   EventType = "ticket.updated"
	CustomerUpdated EventType = "customer.updated"
	DatabaseSeeded  EventType = "database.seeded"
)

// ChangeEvent is published after a write commits. Fields carries the
// submitted values so consumers need not query the database.
type ChangeEvent struct {
	Type       EventType         `json:"type"`
	EntityID   string            `json:"entity_id,omitempty"`
	Actor      string            `json:"actor,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
