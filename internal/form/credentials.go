package form

import (
	"net/url"
	"strings"
)

// Credentials is a well-formed login attempt. Well-formed says nothing about
// whether the credentials are correct.
type Credentials struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"min=6"`
}

var credentialMessages = map[string]string{
	"email":    "Invalid email",
	"password": "Password must contain at least 6 character(s)",
}

// ParseCredentials validates the login form.
func ParseCredentials(values url.Values) (Credentials, Errors) {
	c := Credentials{
		Email:    strings.ToLower(strings.TrimSpace(values.Get("email"))),
		Password: values.Get("password"),
	}
	if errs := check(c, credentialMessages); errs != nil {
		return Credentials{}, errs
	}
	return c, nil
}
