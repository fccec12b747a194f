package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/conflict"
	"github.com/kailas-cloud/classdex/internal/domain/resolve"
	"github.com/kailas-cloud/classdex/internal/domain/schedule"
	"github.com/kailas-cloud/classdex/internal/domain/search/compile"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
	"github.com/kailas-cloud/classdex/internal/domain/search/order"
	"github.com/kailas-cloud/classdex/internal/domain/search/query"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// --- Mocks ---

type fetchCall struct {
	offset, limit int
	query         string
	order         order.Order
}

type mockRepo struct {
	mu       sync.Mutex
	catalogs map[string]catalog.Catalog
	// narrowed lists "field|query" for every catalog request.
	narrowed   []string
	catalogErr error

	sections      []domsec.Section
	total         int
	candidatesErr error
	fetches       []fetchCall

	stored  map[string]domsec.Section
	getKeys []string
	getErr  error
}

func (m *mockRepo) FetchCatalog(
	_ context.Context, _ term.Term, storeField string, narrow query.Node, _ int,
) (catalog.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.narrowed = append(m.narrowed, storeField+"|"+narrow.String())
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	return m.catalogs[storeField], nil
}

func (m *mockRepo) FetchCandidates(
	_ context.Context, _ term.Term, q query.Node, offset, limit int, o order.Order,
) ([]domsec.Section, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, fetchCall{offset: offset, limit: limit, query: q.String(), order: o})
	if m.candidatesErr != nil {
		return nil, 0, m.candidatesErr
	}
	total := m.total
	if total == 0 {
		total = len(m.sections)
	}
	return m.sections, total, nil
}

func (m *mockRepo) Get(_ context.Context, _ term.Term, classNumbers []string) ([]domsec.Section, []string, error) {
	m.getKeys = classNumbers
	if m.getErr != nil {
		return nil, nil, m.getErr
	}
	var found []domsec.Section
	var missing []string
	for _, n := range classNumbers {
		if s, ok := m.stored[n]; ok {
			found = append(found, s)
		} else {
			missing = append(missing, n)
		}
	}
	return found, missing, nil
}

// --- Helpers ---

func newService(repo Repository) *Service {
	return New(repo, compile.New(fields.Sections(0)), Options{MaxCandidates: 50}, nil)
}

func newRequest(t *testing.T, p request.Params) request.Request {
	t.Helper()
	if p.Term == "" {
		p.Term = "1263"
	}
	req, err := request.New(p, request.Limits{})
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func meeting(start, end int, days ...schedule.Weekday) *schedule.Block {
	return &schedule.Block{Days: schedule.NewDaySet(days...), Start: start, End: end}
}

func classNumbers(secs []domsec.Section) []string {
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = s.ClassNumber
	}
	return out
}

// --- Search ---

func TestSearch_ResolvesAndPages(t *testing.T) {
	repo := &mockRepo{
		catalogs: map[string]catalog.Catalog{
			fields.FieldSubject: {{Value: "MATH", Count: 40}, {Value: "CS", Count: 25}},
		},
		sections: []domsec.Section{{ClassNumber: "6"}, {ClassNumber: "7"}},
		total:    7,
	}
	svc := newService(repo)

	req := newRequest(t, request.Params{
		Filters: filter.Set{"subject": filter.Exact("computer science")},
		Page:    2,
		PerPage: 5,
		SortBy:  "catalog_number",
	})
	page, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(repo.fetches) != 1 {
		t.Fatalf("fetches = %d, want 1", len(repo.fetches))
	}
	f := repo.fetches[0]
	if f.query != "term(subject=CS)" {
		t.Errorf("query = %s, want term(subject=CS)", f.query)
	}
	if f.offset != 5 || f.limit != 5 {
		t.Errorf("window = %d+%d, want 5+5", f.offset, f.limit)
	}
	if f.order.Key != order.CatalogNumber {
		t.Errorf("order = %+v", f.order)
	}
	if page.Total() != 7 || page.Excluded() != 0 || page.Showing() != "6-7 of 7" {
		t.Errorf("page total=%d excluded=%d showing=%q", page.Total(), page.Excluded(), page.Showing())
	}
}

func TestSearch_AliasBeforeResolve(t *testing.T) {
	repo := &mockRepo{
		catalogs: map[string]catalog.Catalog{
			fields.FieldInstructionMode: catalog.FromValues("P", "IN", "HY"),
		},
	}
	svc := newService(repo)

	req := newRequest(t, request.Params{Filters: filter.Set{"instruction_mode": filter.Exact("Online")}})
	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := repo.fetches[0].query; got != "term(instruction_mode=IN)" {
		t.Errorf("query = %s", got)
	}
}

func TestSearch_ResolvesSeveralFields(t *testing.T) {
	repo := &mockRepo{
		catalogs: map[string]catalog.Catalog{
			fields.FieldSubject: catalog.FromValues("CS", "MATH"),
			fields.FieldCampus:  catalog.FromValues("MAIN", "DOWNTOWN"),
		},
	}
	svc := newService(repo)

	req := newRequest(t, request.Params{Filters: filter.Set{
		"subject":     filter.Exact("math"),
		"campus":      filter.Exact("down"),
		"min_credits": filter.Number(3),
	}})
	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := "and(term(subject=MATH),term(campus=DOWNTOWN),range(credits_min>=3))"
	if got := repo.fetches[0].query; got != want {
		t.Errorf("query =\n%s\nwant\n%s", got, want)
	}
	if len(repo.narrowed) != 2 {
		t.Errorf("catalog fetches = %v, want one per resolvable field", repo.narrowed)
	}
}

func TestSearch_NoMatch(t *testing.T) {
	repo := &mockRepo{
		catalogs: map[string]catalog.Catalog{fields.FieldSubject: catalog.FromValues("CS", "MATH")},
	}
	svc := newService(repo)

	req := newRequest(t, request.Params{Filters: filter.Set{"subject": filter.Exact("zzzz")}})
	_, err := svc.Search(context.Background(), req)
	if domain.KindOf(err) != domain.KindNoMatch {
		t.Fatalf("err = %v, want no match", err)
	}
	var nm *domain.NoMatchError
	if !errors.As(err, &nm) || nm.Field != "subject" || nm.Input != "zzzz" {
		t.Errorf("NoMatchError = %+v", nm)
	}
	if len(repo.fetches) != 0 {
		t.Error("candidates must not be fetched after a failed resolution")
	}
}

func TestSearch_StoreErrors(t *testing.T) {
	storeErr := domain.NewStoreError("FT.AGGREGATE", errors.New("connection reset"))

	t.Run("catalog", func(t *testing.T) {
		svc := newService(&mockRepo{catalogErr: storeErr})
		req := newRequest(t, request.Params{Filters: filter.Set{"subject": filter.Exact("cs")}})
		if _, err := svc.Search(context.Background(), req); domain.KindOf(err) != domain.KindStore {
			t.Errorf("err = %v, want store kind", err)
		}
	})

	t.Run("candidates", func(t *testing.T) {
		svc := newService(&mockRepo{candidatesErr: storeErr})
		req := newRequest(t, request.Params{})
		if _, err := svc.Search(context.Background(), req); domain.KindOf(err) != domain.KindStore {
			t.Errorf("err = %v, want store kind", err)
		}
	})
}

func TestSearch_UnknownFilter(t *testing.T) {
	svc := newService(&mockRepo{})
	req := newRequest(t, request.Params{Filters: filter.Set{"building": filter.Exact("A")}})
	if _, err := svc.Search(context.Background(), req); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestSearch_AvoidBlocks(t *testing.T) {
	const (
		mon = schedule.Monday
		tue = schedule.Tuesday
		wed = schedule.Wednesday
		thu = schedule.Thursday
	)
	candidates := []domsec.Section{
		{ClassNumber: "1", Meeting: meeting(600, 675, mon, wed)},
		{ClassNumber: "2", Meeting: meeting(600, 675, tue, thu)},
		{ClassNumber: "3"},
		{ClassNumber: "4", Meeting: meeting(660, 720, mon)},
	}
	avoid := []conflict.AvoidSpec{{Days: []string{"Monday"}, Start: "10:00 AM", End: "11:00 AM"}}

	tests := []struct {
		name         string
		buffer       int
		page         int
		wantSections []string
		wantTotal    int
		wantExcluded int
	}{
		{"first page", 0, 1, []string{"2", "3"}, 3, 1},
		{"second page", 0, 2, []string{"4"}, 3, 1},
		{"past the end", 0, 3, nil, 3, 1},
		{"buffer reaches adjacent class", 15, 1, []string{"2", "3"}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{sections: candidates, total: 120}
			svc := newService(repo)

			req := newRequest(t, request.Params{
				Avoid:         avoid,
				BufferMinutes: tt.buffer,
				Page:          tt.page,
				PerPage:       2,
			})
			page, err := svc.Search(context.Background(), req)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}

			f := repo.fetches[0]
			if f.offset != 0 || f.limit != 50 {
				t.Errorf("fetched %d+%d, want the bounded candidate set 0+50", f.offset, f.limit)
			}
			if got := classNumbers(page.Sections()); !reflect.DeepEqual(got, append([]string{}, tt.wantSections...)) {
				t.Errorf("sections = %v, want %v", got, tt.wantSections)
			}
			if page.Total() != tt.wantTotal || page.Excluded() != tt.wantExcluded {
				t.Errorf("total=%d excluded=%d, want %d/%d", page.Total(), page.Excluded(), tt.wantTotal, tt.wantExcluded)
			}
		})
	}
}

// --- ResolveValue ---

func TestResolveValue(t *testing.T) {
	repo := &mockRepo{
		catalogs: map[string]catalog.Catalog{fields.FieldSubject: catalog.FromValues("CS", "CSE", "MATH")},
	}
	svc := newService(repo)
	ctx := context.Background()

	r, err := svc.ResolveValue(ctx, "1263", "subject", "Computer Science")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if !r.Matched || r.Value != "CS" || r.Strategy != resolve.StrategyAbbreviation {
		t.Errorf("result = %+v", r)
	}

	miss, err := svc.ResolveValue(ctx, "1263", "subject", "qqqq")
	if err != nil {
		t.Fatalf("a miss is not an error: %v", err)
	}
	if miss.Matched {
		t.Errorf("expected miss, got %+v", miss)
	}

	if _, err := svc.ResolveValue(ctx, "1263", "min_credits", "3"); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("non-resolvable field: err = %v", err)
	}
	if _, err := svc.ResolveValue(ctx, "1263", "subject", "  "); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("blank value: err = %v", err)
	}
}

// --- FilterOptions ---

func TestFilterOptions_Narrowed(t *testing.T) {
	repo := &mockRepo{
		catalogs: map[string]catalog.Catalog{
			fields.FieldSubject: catalog.FromValues("CS", "MATH"),
			fields.FieldCampus:  {{Value: "MAIN", Count: 12}},
		},
	}
	svc := newService(repo)

	c, err := svc.FilterOptions(context.Background(), "1263", "campus", filter.Set{"subject": filter.Exact("cs")})
	if err != nil {
		t.Fatalf("FilterOptions: %v", err)
	}
	if len(c) != 1 || c[0].Value != "MAIN" || c[0].Count != 12 {
		t.Errorf("catalog = %+v", c)
	}

	want := []string{"subject|match_all()", "campus|term(subject=CS)"}
	if !reflect.DeepEqual(repo.narrowed, want) {
		t.Errorf("catalog requests = %v, want %v", repo.narrowed, want)
	}
}

func TestFilterOptions_Unsupported(t *testing.T) {
	svc := newService(&mockRepo{})
	for _, field := range []string{"min_credits", "query", "level", "nope"} {
		_, err := svc.FilterOptions(context.Background(), "1263", field, nil)
		if domain.KindOf(err) != domain.KindValidation {
			t.Errorf("%s: err = %v, want validation", field, err)
		}
	}
}

func TestOptionFields(t *testing.T) {
	got := newService(&mockRepo{}).OptionFields()
	has := make(map[string]bool)
	for _, f := range got {
		has[f] = true
	}
	for _, want := range []string{"subject", "campus", "days", "catalog_number", "foundations"} {
		if !has[want] {
			t.Errorf("OptionFields missing %q: %v", want, got)
		}
	}
	if has["open_seats"] || has["level"] {
		t.Errorf("OptionFields lists non-catalog fields: %v", got)
	}
}

// --- ClassDetails / SeatAvailability ---

func TestClassDetails(t *testing.T) {
	repo := &mockRepo{stored: map[string]domsec.Section{
		"10234": {ClassNumber: "10234", Subject: "CS"},
	}}
	svc := newService(repo)

	found, missing, err := svc.ClassDetails(context.Background(), "1263", " 10234 , 99999,10234,")
	if err != nil {
		t.Fatalf("ClassDetails: %v", err)
	}
	if !reflect.DeepEqual(repo.getKeys, []string{"10234", "99999"}) {
		t.Errorf("requested %v", repo.getKeys)
	}
	if len(found) != 1 || found[0].ClassNumber != "10234" {
		t.Errorf("found = %v", classNumbers(found))
	}
	if !reflect.DeepEqual(missing, []string{"99999"}) {
		t.Errorf("missing = %v", missing)
	}

	_, _, err = svc.ClassDetails(context.Background(), "1263", "11111")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestSeatAvailability(t *testing.T) {
	repo := &mockRepo{stored: map[string]domsec.Section{
		"1": {ClassNumber: "1", AvailableSeats: 4},
		"2": {ClassNumber: "2", WaitlistCapacity: 5, WaitlistTotal: 5},
	}}
	svc := newService(repo)

	got, missing, err := svc.SeatAvailability(context.Background(), "1263", "1,2")
	if err != nil {
		t.Fatalf("SeatAvailability: %v", err)
	}
	if len(missing) != 0 || len(got) != 2 {
		t.Fatalf("got %d, missing %v", len(got), missing)
	}
	if got[0].Status != domsec.StatusOpen || got[1].Status != domsec.StatusFull {
		t.Errorf("statuses = %s, %s", got[0].Status, got[1].Status)
	}
}

func TestParseClassNumbers(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"10234", []string{"10234"}, false},
		{"1, 2 ,3", []string{"1", "2", "3"}, false},
		{"1 0234", []string{"10234"}, false},
		{"", nil, true},
		{" , ,", nil, true},
		{"10234,abc", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseClassNumbers(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClassNumbers(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseClassNumbers(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	many := ""
	for i := range maxClassNumbers + 1 {
		many += fmt.Sprintf("%d,", i+1)
	}
	if _, err := ParseClassNumbers(many); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("expected a validation error above %d numbers", maxClassNumbers)
	}
}
