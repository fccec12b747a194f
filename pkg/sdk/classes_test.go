package classdex

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/classdex/internal/domain"
	dombatch "github.com/kailas-cloud/classdex/internal/domain/batch"
	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/resolve"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/search/result"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	batchuc "github.com/kailas-cloud/classdex/internal/usecase/batch"
)

func sampleSections() []domsec.Section {
	return []domsec.Section{
		{
			ClassNumber: "10234", Subject: "CS", CatalogNumber: "121", Title: "Computer Science I",
			Capacity: 30, EnrollmentTotal: 25, AvailableSeats: 5,
		},
		{
			ClassNumber: "10311", Subject: "CS", CatalogNumber: "340", Title: "Data Structures",
			Capacity: 20, EnrollmentTotal: 20,
		},
	}
}

func TestSearch(t *testing.T) {
	var got request.Request
	mock := &mockSearchUC{
		searchFn: func(_ context.Context, req request.Request) (result.Page, error) {
			got = req
			return result.New(sampleSections(), 12, req.Page(), req.PerPage(), 0), nil
		},
	}

	c := testClient(mock, nil)
	page, err := c.Search(context.Background(), Query{Term: "1263", Subject: "comp sci", Page: 2, ResultsPerPage: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Term() != "1263" {
		t.Errorf("request term = %q, want 1263", got.Term())
	}
	if _, ok := got.Filters()["subject"]; !ok {
		t.Errorf("subject filter missing from %v", got.Filters())
	}
	if page.Total != 12 || page.Page != 2 || page.TotalPages != 6 || !page.HasMore {
		t.Errorf("page = %+v", page)
	}
	if page.Showing != "3-4 of 12" {
		t.Errorf("Showing = %q, want 3-4 of 12", page.Showing)
	}
	if page.TermDescription != "Spring 2026" {
		t.Errorf("TermDescription = %q", page.TermDescription)
	}
	if len(page.Classes) != 2 || page.Classes[0].ClassNumber != "10234" {
		t.Errorf("classes = %+v", page.Classes)
	}
}

func TestSearch_ValidationSkipsService(t *testing.T) {
	mock := &mockSearchUC{
		searchFn: func(context.Context, request.Request) (result.Page, error) {
			t.Fatal("service must not be called for an invalid query")
			return result.Page{}, nil
		},
	}

	c := testClient(mock, nil)
	_, err := c.Search(context.Background(), Query{Term: "1263", Query: "ab"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Field != "query" {
		t.Errorf("Field = %q, want query", ve.Field)
	}
}

func TestSearch_NoMatchCarriesSuggestions(t *testing.T) {
	mock := &mockSearchUC{
		searchFn: func(context.Context, request.Request) (result.Page, error) {
			return result.Page{}, &domain.NoMatchError{Field: "subject", Input: "mxyz", Suggestions: []string{"MATH"}}
		},
	}

	c := testClient(mock, nil)
	_, err := c.Search(context.Background(), Query{Term: "1263", Subject: "mxyz"})
	var nm *NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("expected *NoMatchError, got %v", err)
	}
	if len(nm.Suggestions) != 1 || nm.Suggestions[0] != "MATH" {
		t.Errorf("Suggestions = %v", nm.Suggestions)
	}
	if !errors.Is(err, ErrNoMatch) {
		t.Error("expected errors.Is(err, ErrNoMatch)")
	}
}

func TestSearchByInstructor(t *testing.T) {
	mock := &mockSearchUC{
		searchFn: func(_ context.Context, req request.Request) (result.Page, error) {
			if _, ok := req.Filters()["instructor"]; !ok {
				t.Errorf("instructor filter missing from %v", req.Filters())
			}
			return result.New(nil, 0, req.Page(), req.PerPage(), 0), nil
		},
	}

	c := testClient(mock, nil)
	page, err := c.SearchByInstructor(context.Background(), "1263", "Hopper", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 0 || len(page.Classes) != 0 {
		t.Errorf("page = %+v", page)
	}
}

func TestClasses(t *testing.T) {
	mock := &mockSearchUC{
		detailsFn: func(_ context.Context, tm term.Term, classNumbers string) ([]domsec.Section, []string, error) {
			if tm != "1263" {
				t.Errorf("term = %q", tm)
			}
			if classNumbers != "10234,99999" {
				t.Errorf("classNumbers = %q", classNumbers)
			}
			return sampleSections()[:1], []string{"99999"}, nil
		},
	}

	c := testClient(mock, nil)
	details, err := c.Classes(context.Background(), "1263", "10234", "99999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details.Classes) != 1 || details.Classes[0].Title != "Computer Science I" {
		t.Errorf("classes = %+v", details.Classes)
	}
	if len(details.NotFound) != 1 || details.NotFound[0] != "99999" {
		t.Errorf("NotFound = %v", details.NotFound)
	}
}

func TestClasses_NotFound(t *testing.T) {
	mock := &mockSearchUC{
		detailsFn: func(context.Context, term.Term, string) ([]domsec.Section, []string, error) {
			return nil, []string{"99999"}, domain.ErrNotFound
		},
	}

	c := testClient(mock, nil)
	_, err := c.Classes(context.Background(), "1263", "99999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClasses_BadTerm(t *testing.T) {
	c := testClient(&mockSearchUC{}, nil)
	_, err := c.Classes(context.Background(), "1264", "10234")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAvailability(t *testing.T) {
	mock := &mockSearchUC{
		availabilityFn: func(context.Context, term.Term, string) ([]domsec.Availability, []string, error) {
			secs := sampleSections()
			return []domsec.Availability{secs[0].Availability(), secs[1].Availability()}, nil, nil
		},
	}

	c := testClient(mock, nil)
	avail, err := c.Availability(context.Background(), "1263", "10234", "10311")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(avail.Classes) != 2 {
		t.Fatalf("len = %d, want 2", len(avail.Classes))
	}
	if avail.Classes[0].Status != domsec.StatusOpen {
		t.Errorf("first status = %q, want %q", avail.Classes[0].Status, domsec.StatusOpen)
	}
	if avail.Classes[1].Status != domsec.StatusFull {
		t.Errorf("second status = %q, want %q", avail.Classes[1].Status, domsec.StatusFull)
	}
}

func TestFilterOptions(t *testing.T) {
	mock := &mockSearchUC{
		optionsFn: func(_ context.Context, _ term.Term, field string, narrow filter.Set) (catalog.Catalog, error) {
			if field != "campus" {
				t.Errorf("field = %q", field)
			}
			if _, ok := narrow["subject"]; !ok {
				t.Errorf("narrow = %v, want subject", narrow)
			}
			return catalog.Catalog{{Value: "MAIN", Count: 9}, {Value: "DOWNTOWN", Count: 2}}, nil
		},
	}

	c := testClient(mock, nil)
	opts, err := c.FilterOptions(context.Background(), "1263", "campus", "subject", "CS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Options) != 2 || opts.Options[0].Value != "MAIN" || opts.Options[0].Count != 9 {
		t.Errorf("options = %+v", opts.Options)
	}

	if _, err := c.FilterOptions(context.Background(), "1263", "campus", "subject", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for half a narrow pair, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	mock := &mockSearchUC{
		resolveFn: func(_ context.Context, _ term.Term, _, value string) (resolve.Result, error) {
			if value == "computer science" {
				return resolve.Result{Value: "CS", Matched: true, Strategy: resolve.StrategyAbbreviation}, nil
			}
			return resolve.Result{Suggestions: []string{"MATH"}}, nil
		},
	}

	c := testClient(mock, nil)
	hit, err := c.Resolve(context.Background(), "1263", "subject", "computer science")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hit.Matched || hit.Value != "CS" || hit.Strategy != "abbreviation" {
		t.Errorf("hit = %+v", hit)
	}

	miss, err := c.Resolve(context.Background(), "1263", "subject", "mxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if miss.Matched || len(miss.Suggestions) != 1 {
		t.Errorf("miss = %+v", miss)
	}
}

func TestLoad(t *testing.T) {
	mock := &mockLoadUC{
		loadFn: func(_ context.Context, tm term.Term, records []batchuc.Record, recreate bool) (batchuc.Report, error) {
			if tm != "1263" || len(records) != 3 || !recreate {
				t.Errorf("load(%q, %d records, recreate=%t)", tm, len(records), recreate)
			}
			return batchuc.Report{
				IndexCreated: true,
				Results: []dombatch.Result{
					dombatch.NewOK(0, "10234"),
					dombatch.NewError(1, "", domain.NewValidation("class_number", "is required")),
					dombatch.NewOK(2, "10311"),
				},
			}, nil
		},
	}

	c := testClient(nil, mock)
	report, err := c.Load(context.Background(), "1263", make([]Record, 3), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.IndexCreated || report.Loaded != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Failed) != 1 || report.Failed[0].Index != 1 || !errors.Is(report.Failed[0].Err, ErrValidation) {
		t.Errorf("Failed = %+v", report.Failed)
	}
}

func TestLoad_IndexFailure(t *testing.T) {
	mock := &mockLoadUC{
		loadFn: func(context.Context, term.Term, []batchuc.Record, bool) (batchuc.Report, error) {
			return batchuc.Report{}, domain.NewStoreError("FT.CREATE", errors.New("READONLY"))
		},
	}

	c := testClient(nil, mock)
	_, err := c.Load(context.Background(), "1263", nil, false)
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestLoadFixture(t *testing.T) {
	var gotTerm term.Term
	var gotRecords []batchuc.Record
	mock := &mockLoadUC{
		loadFn: func(_ context.Context, tm term.Term, records []batchuc.Record, _ bool) (batchuc.Report, error) {
			gotTerm, gotRecords = tm, records
			return batchuc.Report{Results: []dombatch.Result{dombatch.NewOK(0, records[0].ClassNumber)}}, nil
		},
	}

	fixture := `
term: "1269"
sections:
  - class_number: "20001"
    subject: HIST
    catalog_number: "101"
    title: World History
    capacity: 25
`
	c := testClient(nil, mock)
	report, err := c.LoadFixture(context.Background(), strings.NewReader(fixture), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTerm != "1269" || len(gotRecords) != 1 || gotRecords[0].Subject != "HIST" {
		t.Errorf("loaded %q %+v", gotTerm, gotRecords)
	}
	if report.Loaded != 1 {
		t.Errorf("Loaded = %d, want 1", report.Loaded)
	}

	if _, err := c.LoadFixture(context.Background(), strings.NewReader("term: 1263\nbogus: 1\n"), false); err == nil {
		t.Error("expected error for unknown fixture key")
	}
}
