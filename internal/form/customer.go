package form

import (
	"net/url"
	"strings"

	"github.com/iliyamo/helpdesk-dashboard/internal/model"
)

type customerFields struct {
	Name  string `form:"name" validate:"min=5"`
	Email string `form:"email" validate:"email,min=5"`
}

var customerMessages = map[string]string{
	"name":      "Enter correct name",
	"email":     "Invalid email",
	"email.min": "Email must contain at least 5 character(s)",
}

// ParseCustomer validates the customer edit form.
func ParseCustomer(values url.Values) (model.CustomerInput, Errors) {
	f := customerFields{
		Name:  strings.TrimSpace(values.Get("name")),
		Email: strings.TrimSpace(values.Get("email")),
	}
	if errs := check(f, customerMessages); errs != nil {
		return model.CustomerInput{}, errs
	}
	return model.CustomerInput{Name: f.Name, Email: f.Email}, nil
}
