package classdex

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	dombatch "github.com/kailas-cloud/classdex/internal/domain/batch"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	"github.com/kailas-cloud/classdex/internal/transport/dto"
	batchuc "github.com/kailas-cloud/classdex/internal/usecase/batch"
)

// Search runs one class search. Loose values for resolvable filters
// (subject, campus, academic level...) are resolved against the term first;
// a value that resolves to nothing fails with a *NoMatchError.
func (c *Client) Search(ctx context.Context, q Query) (_ Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "term", q.Term) }()

	req, err := q.Request(c.limits)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	page, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	return dto.NewSearchResponse(req.Term(), &page), nil
}

// SearchByInstructor lists the sections an instructor teaches. page is 1-based.
func (c *Client) SearchByInstructor(ctx context.Context, termCode, name string, page int) (Page, error) {
	return c.Search(ctx, Query{Term: termCode, Instructor: name, Page: page})
}

// Classes loads full section records. Unknown class numbers are listed in
// NotFound; ErrNotFound is returned only when none exist.
func (c *Client) Classes(ctx context.Context, termCode string, classNumbers ...string) (_ ClassDetails, err error) {
	start := time.Now()
	defer func() { c.obs.observe("classes", start, err, "term", termCode) }()

	t, err := term.Parse(termCode)
	if err != nil {
		return ClassDetails{}, fmt.Errorf("classes: %w", err)
	}
	found, missing, err := c.searchSvc.ClassDetails(ctx, t, strings.Join(classNumbers, ","))
	if err != nil {
		return ClassDetails{}, fmt.Errorf("classes: %w", err)
	}
	return dto.NewClassDetailsResponse(t, found, missing), nil
}

// Availability reports seat and waitlist status per section.
func (c *Client) Availability(
	ctx context.Context, termCode string, classNumbers ...string,
) (_ SeatAvailability, err error) {
	start := time.Now()
	defer func() { c.obs.observe("availability", start, err, "term", termCode) }()

	t, err := term.Parse(termCode)
	if err != nil {
		return SeatAvailability{}, fmt.Errorf("availability: %w", err)
	}
	avail, missing, err := c.searchSvc.SeatAvailability(ctx, t, strings.Join(classNumbers, ","))
	if err != nil {
		return SeatAvailability{}, fmt.Errorf("availability: %w", err)
	}
	return SeatAvailability{Term: t.String(), Classes: avail, NotFound: missing}, nil
}

// FilterOptions lists the values field takes in the term with section
// counts. narrowField and narrowValue, when both set, restrict the count.
func (c *Client) FilterOptions(
	ctx context.Context, termCode, field, narrowField, narrowValue string,
) (_ Options, err error) {
	start := time.Now()
	defer func() { c.obs.observe("filter_options", start, err, "term", termCode, "field", field) }()

	t, err := term.Parse(termCode)
	if err != nil {
		return Options{}, fmt.Errorf("filter options: %w", err)
	}
	narrow, err := dto.NarrowSet(narrowField, narrowValue)
	if err != nil {
		return Options{}, fmt.Errorf("filter options: %w", err)
	}
	cat, err := c.searchSvc.FilterOptions(ctx, t, field, narrow)
	if err != nil {
		return Options{}, fmt.Errorf("filter options: %w", err)
	}
	return dto.NewOptionsResponse(t, field, cat), nil
}

// Resolve maps a loose value onto the term's canonical value for field.
// A miss is not an error: Matched is false and Suggestions is set.
func (c *Client) Resolve(ctx context.Context, termCode, field, value string) (_ Resolution, err error) {
	start := time.Now()
	defer func() { c.obs.observe("resolve", start, err, "term", termCode, "field", field) }()

	t, err := term.Parse(termCode)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve: %w", err)
	}
	r, err := c.searchSvc.ResolveValue(ctx, t, field, value)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve: %w", err)
	}
	return dto.NewResolveResponse(field, value, r), nil
}

// Load creates the term index when missing (or rebuilds it when recreate is
// set) and upserts records. Invalid or duplicate records are reported in
// Failed and do not stop the load.
func (c *Client) Load(
	ctx context.Context, termCode string, records []Record, recreate bool,
) (_ LoadReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("load", start, err, "term", termCode, "records", len(records)) }()

	t, err := term.Parse(termCode)
	if err != nil {
		return LoadReport{}, fmt.Errorf("load: %w", err)
	}
	report, err := c.loadSvc.Load(ctx, t, records, recreate)
	if err != nil {
		return LoadReport{}, fmt.Errorf("load: %w", err)
	}

	out := LoadReport{IndexCreated: report.IndexCreated}
	for _, r := range report.Results {
		if r.Status() == dombatch.StatusOK {
			out.Loaded++
			continue
		}
		out.Failed = append(out.Failed, LoadFailure{Index: r.Index(), ClassNumber: r.ClassNumber(), Err: r.Err()})
	}
	return out, nil
}

// LoadFixture decodes a YAML fixture (a term and its sections) and loads it.
func (c *Client) LoadFixture(ctx context.Context, r io.Reader, recreate bool) (LoadReport, error) {
	f, err := batchuc.DecodeFile(r)
	if err != nil {
		return LoadReport{}, fmt.Errorf("load fixture: %w", err)
	}
	return c.Load(ctx, f.Term, f.Sections, recreate)
}
