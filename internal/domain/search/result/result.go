// Package result holds one page of search results.
package result

import (
	"fmt"

	"github.com/kailas-cloud/classdex/internal/domain/section"
)

// Page is a window of matching sections.
type Page struct {
	sections []section.Section
	total    int
	page     int
	perPage  int
	excluded int
}

// New creates a result page. total counts every match, not just this page;
// excluded counts candidates dropped by schedule conflicts.
func New(sections []section.Section, total, page, perPage, excluded int) Page {
	return Page{sections: sections, total: total, page: page, perPage: perPage, excluded: excluded}
}

// Sections returns the sections on this page.
func (p *Page) Sections() []section.Section { return p.sections }

// Total returns the number of matches across all pages.
func (p *Page) Total() int { return p.total }

// Page returns the 1-based page number.
func (p *Page) Page() int { return p.page }

// PerPage returns the page size.
func (p *Page) PerPage() int { return p.perPage }

// Excluded returns how many candidates were removed for schedule conflicts.
func (p *Page) Excluded() int { return p.excluded }

// TotalPages returns the page count; zero when nothing matched.
func (p *Page) TotalPages() int {
	if p.perPage <= 0 {
		return 0
	}
	return (p.total + p.perPage - 1) / p.perPage
}

// HasMore reports whether a later page exists.
func (p *Page) HasMore() bool { return p.page < p.TotalPages() }

// Showing renders the visible window, e.g. "11-20 of 57", or "0 of 0".
func (p *Page) Showing() string {
	if len(p.sections) == 0 {
		return fmt.Sprintf("0 of %d", p.total)
	}
	first := (p.page-1)*p.perPage + 1
	return fmt.Sprintf("%d-%d of %d", first, first+len(p.sections)-1, p.total)
}
