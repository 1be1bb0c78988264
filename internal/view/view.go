// Package view renders the dashboard's HTML pages from embedded templates.
// Each page is parsed into its own template set together with the shared
// base so pages can redefine the same blocks.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/helpdesk-dashboard/internal/form"
	"github.com/iliyamo/helpdesk-dashboard/internal/model"
)

//go:embed templates/*.html
var files embed.FS

// Page names accepted by Renderer.Render.
const (
	PageLogin        = "login"
	PageOverview     = "overview"
	PageTickets      = "tickets"
	PageTicketForm   = "ticket_form"
	PageCustomers    = "customers"
	PageCustomerForm = "customer_form"
	PageError        = "error"
)

// pages maps each page to the files parsed after base.html. Dashboard pages
// share the navigation shell.
var pages = map[string][]string{
	PageLogin:        {"login.html"},
	PageError:        {"error.html"},
	PageOverview:     {"dashboard.html", "overview.html"},
	PageTickets:      {"dashboard.html", "pagination.html", "tickets.html"},
	PageTicketForm:   {"dashboard.html", "ticket_form.html"},
	PageCustomers:    {"dashboard.html", "pagination.html", "customers.html"},
	PageCustomerForm: {"dashboard.html", "customer_form.html"},
}

// Renderer implements echo.Renderer.
type Renderer struct {
	sets map[string]*template.Template
}

// New parses every page. It fails on the first template error.
func New() (*Renderer, error) {
	r := &Renderer{sets: make(map[string]*template.Template, len(pages))}
	for name, extra := range pages {
		patterns := []string{"templates/base.html"}
		for _, f := range extra {
			patterns = append(patterns, "templates/"+f)
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.sets[name] = t
	}
	return r, nil
}

// Render executes page name with data.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.sets[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

var funcs = template.FuncMap{
	"currency":  model.FormatCurrency,
	"date":      model.FormatDateToLocal,
	"pages":     Pagination,
	"barHeight": barHeight,
}

func barHeight(v, max int64) int64 {
	if max <= 0 {
		return 0
	}
	return v * 100 / max
}

// PageLink is one entry of the pagination control.
type PageLink struct {
	Number   int
	Href     string
	Current  bool
	Ellipsis bool
}

// Pagination builds the page links for a listing at base. It shows every
// page up to seven, otherwise the first and last pages around a window on
// current with ellipses. It returns nil when there is a single page or none.
func Pagination(base, query string, current, total int) []PageLink {
	if total <= 1 {
		return nil
	}
	var nums []int // 0 is an ellipsis
	switch {
	case total <= 7:
		for i := 1; i <= total; i++ {
			nums = append(nums, i)
		}
	case current <= 3:
		nums = []int{1, 2, 3, 0, total - 1, total}
	case current >= total-2:
		nums = []int{1, 2, 0, total - 2, total - 1, total}
	default:
		nums = []int{1, 0, current - 1, current, current + 1, 0, total}
	}

	links := make([]PageLink, 0, len(nums))
	for _, n := range nums {
		if n == 0 {
			links = append(links, PageLink{Ellipsis: true})
			continue
		}
		links = append(links, PageLink{Number: n, Href: pageHref(base, query, n), Current: n == current})
	}
	return links
}

func pageHref(base, query string, page int) string {
	v := url.Values{}
	if query != "" {
		v.Set("query", query)
	}
	v.Set("page", strconv.Itoa(page))
	return base + "?" + v.Encode()
}

// Login is the sign-in page.
type Login struct {
	Email       string
	Message     string
	CallbackURL string
}

// Overview is the dashboard home page.
type Overview struct {
	Cards      model.CardData
	Revenue    []model.Revenue
	MaxRevenue int64
	Latest     []model.LatestTicket
}

// NewOverview fills MaxRevenue for the chart.
func NewOverview(cards model.CardData, revenue []model.Revenue, latest []model.LatestTicket) Overview {
	o := Overview{Cards: cards, Revenue: revenue, Latest: latest}
	for _, r := range revenue {
		if r.Revenue > o.MaxRevenue {
			o.MaxRevenue = r.Revenue
		}
	}
	return o
}

// Tickets is the searchable ticket listing.
type Tickets struct {
	Query      string
	Page       int
	TotalPages int
	Tickets    []model.TicketsTableRow
}

// TicketForm is the create and edit form. Values holds what the form shows,
// either the stored ticket or the rejected submission.
type TicketForm struct {
	Heading   string
	Action    string
	Submit    string
	Customers []model.CustomerField
	Values    url.Values
	State     form.State
	Statuses  []model.TicketStatus
	Codes     []model.TicketCode
}

// Customers is the searchable customer listing.
type Customers struct {
	Query      string
	Page       int
	TotalPages int
	Customers  []model.CustomersTableRow
}

// CustomerForm is the customer edit form.
type CustomerForm struct {
	ID     string
	Values url.Values
	State  form.State
}

// Error is the page shown for 404s and unhandled failures.
type Error struct {
	Status  int
	Message string
	Back    string
}

// TicketValues converts a stored ticket into form values.
func TicketValues(t model.TicketForm) url.Values {
	return url.Values{
		"customerId": {t.CustomerID},
		"amount":     {strconv.FormatFloat(t.Amount, 'f', -1, 64)},
		"status":     {string(t.Status)},
		"code":       {string(t.Code)},
	}
}

// CustomerValues converts a stored customer into form values.
func CustomerValues(c model.CustomerForm) url.Values {
	return url.Values{"name": {c.Name}, "email": {c.Email}}
}

