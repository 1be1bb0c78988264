// Package form turns untrusted form submissions into typed, validated
// records. Each Parse function either returns a complete record or a set of
// field errors; there is no partial success.
package form

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a form field name to the messages shown under that field.
type Errors map[string][]string

// Add appends msg to field's messages.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// State is what a failed action hands back to its form: field errors from
// validation, or only a Message when the store rejected the write.
type State struct {
	Errors  Errors
	Message string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the submitted field name rather than the Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates s and renders failures through messages, keyed by
// "field.tag" with a "field" fallback. It returns nil when s is valid.
func check(s any, messages map[string]string) Errors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": {err.Error()}}
	}
	out := Errors{}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[fe.Field()]
		}
		if !ok {
			msg = fe.Error()
		}
		out.Add(fe.Field(), msg)
	}
	return out
}

// coerceNumber mirrors loose numeric coercion of form input: blank becomes
// 0 and anything unparsable becomes NaN, so range checks reject both.
func coerceNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
