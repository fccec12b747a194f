// Package request holds validated search parameters.
package request

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/conflict"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
	"github.com/kailas-cloud/classdex/internal/domain/search/order"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// Search parameter limits.
const (
	// MinQueryLength is the shortest accepted free-text query.
	MinQueryLength    = 3
	MinInstructorName = 2
	DefaultPageSize   = 10
	MaxPageSize       = 100
	MaxBufferMinutes  = 180
	// MaxOffset is the deepest result position a page may reach.
	MaxOffset = 10000
)

const (
	queryFilter      = "query"
	instructorFilter = "instructor"
)

// Limits bounds pagination; zero fields fall back to the package defaults.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
	MaxOffset       int
}

func (l Limits) withDefaults() Limits {
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = DefaultPageSize
	}
	if l.MaxPageSize <= 0 {
		l.MaxPageSize = MaxPageSize
	}
	if l.MaxOffset <= 0 {
		l.MaxOffset = MaxOffset
	}
	l.DefaultPageSize = min(l.DefaultPageSize, l.MaxPageSize)
	return l
}

// Params are raw search inputs as received by a transport.
type Params struct {
	Term          string
	Filters       filter.Set
	Avoid         []conflict.AvoidSpec
	BufferMinutes int
	// Page is 1-based; zero means the first page.
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
}

// Request is a validated search.
type Request struct {
	term     term.Term
	filters  filter.Set
	avoid    conflict.Query
	page     int
	perPage  int
	ordering order.Order
}

// New validates p. PerPage is clamped to the limits; every other problem is
// a *domain.ValidationError naming the offending parameter.
func New(p Params, lim Limits) (Request, error) {
	lim = lim.withDefaults()

	t, err := term.Parse(p.Term)
	if err != nil {
		return Request{}, err
	}

	if err := checkText(p.Filters, queryFilter, MinQueryLength); err != nil {
		return Request{}, err
	}
	if err := checkText(p.Filters, instructorFilter, MinInstructorName); err != nil {
		return Request{}, err
	}

	if p.BufferMinutes > MaxBufferMinutes {
		return Request{}, domain.NewValidation("buffer_minutes", "must be at most %d", MaxBufferMinutes)
	}
	avoid, err := conflict.ParseQuery(p.Avoid, p.BufferMinutes)
	if err != nil {
		return Request{}, err
	}

	page := p.Page
	switch {
	case page < 0:
		return Request{}, domain.NewValidation("page", "must be positive, got %d", page)
	case page == 0:
		page = 1
	}

	perPage := p.PerPage
	switch {
	case perPage < 0:
		return Request{}, domain.NewValidation("results_per_page", "must be positive, got %d", perPage)
	case perPage == 0:
		perPage = lim.DefaultPageSize
	case perPage > lim.MaxPageSize:
		perPage = lim.MaxPageSize
	}
	if maxPage := max(lim.MaxOffset/perPage, 1); page > maxPage {
		return Request{}, domain.NewValidation("page", "must be at most %d with %d results per page", maxPage, perPage)
	}

	o, err := order.Parse(p.SortBy, p.SortOrder)
	if err != nil {
		return Request{}, domain.NewValidation("sort_by", "%v", err)
	}

	return Request{
		term:     t,
		filters:  p.Filters,
		avoid:    avoid,
		page:     page,
		perPage:  perPage,
		ordering: o,
	}, nil
}

func checkText(set filter.Set, name string, minLen int) error {
	v, ok := set[name]
	if !ok || v.Kind() != filter.KindText {
		return nil
	}
	if utf8.RuneCountInString(strings.TrimSpace(v.Str())) < minLen {
		return domain.NewValidation(name, "must be at least %d characters", minLen)
	}
	return nil
}

// Term returns the academic term searched.
func (r *Request) Term() term.Term { return r.term }

// Filters returns the semantic filters.
func (r *Request) Filters() filter.Set { return r.filters }

// Avoid returns the schedule conflict query; it may be empty.
func (r *Request) Avoid() conflict.Query { return r.avoid }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PerPage returns the page size.
func (r *Request) PerPage() int { return r.perPage }

// Offset returns the index of the first result on the page.
func (r *Request) Offset() int { return (r.page - 1) * r.perPage }

// Order returns the requested sort.
func (r *Request) Order() order.Order { return r.ordering }

// WithFilters returns a copy of r with filters replaced.
func (r Request) WithFilters(set filter.Set) Request {
	r.filters = set
	return r
}
