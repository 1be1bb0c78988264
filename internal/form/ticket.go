package form

import (
	"net/url"
	"strings"

	"github.com/iliyamo/helpdesk-dashboard/internal/model"
)

// The amount ceiling keeps the cents value inside the INT column.
type ticketFields struct {
	CustomerID string  `form:"customerId" validate:"required"`
	Amount     float64 `form:"amount" validate:"gt=0,lte=21474836.47"`
	Status     string  `form:"status" validate:"required,oneof=pending resolved"`
	Code       string  `form:"code" validate:"required,oneof=ARB-2 CPR-2 CWQ-2"`
}

var ticketMessages = map[string]string{
	"customerId": "Please select a customer.",
	"amount.gt":  "Please enter an amount greater than $0.",
	"amount.lte": "Please enter an amount no greater than $21,474,836.47.",
	"status":     "Please select a ticket status.",
	"code":       "Please select correct code.",
}

// ParseTicket validates the ticket create/edit form. On success the amount
// has been converted from dollars to cents.
func ParseTicket(values url.Values) (model.TicketInput, Errors) {
	f := ticketFields{
		CustomerID: strings.TrimSpace(values.Get("customerId")),
		Amount:     coerceNumber(values.Get("amount")),
		Status:     values.Get("status"),
		Code:       values.Get("code"),
	}
	errs := check(f, ticketMessages)
	cents := model.DollarsToCents(f.Amount)
	// A positive amount can still round to zero cents.
	if cents < 1 && errs.First("amount") == "" {
		if errs == nil {
			errs = Errors{}
		}
		errs.Add("amount", ticketMessages["amount.gt"])
	}
	if errs != nil {
		return model.TicketInput{}, errs
	}
	return model.TicketInput{
		CustomerID:  f.CustomerID,
		AmountCents: cents,
		Status:      model.TicketStatus(f.Status),
		Code:        model.TicketCode(f.Code),
	}, nil
}
