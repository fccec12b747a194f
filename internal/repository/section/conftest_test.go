package section

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/classdex/internal/db"
	"github.com/kailas-cloud/classdex/internal/domain/schedule"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

const testTerm = term.Term("1263")

// mockStore implements the consumer interface for tests.
type mockStore struct {
	mu             sync.Mutex
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string, deleteDocs bool) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	searchFn       func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	termsFn        func(ctx context.Context, q *db.TermsQuery) ([]db.Bucket, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name, deleteDocs)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Terms(ctx context.Context, q *db.TermsQuery) ([]db.Bucket, error) {
	if m.termsFn != nil {
		return m.termsFn(ctx, q)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "classdex:", fields.Sections(0), 0)
	return repo, ms
}

func testSection(t *testing.T, classNumber string) domsec.Section {
	t.Helper()
	meeting, err := schedule.NewBlock(schedule.NewDaySet(schedule.Tuesday, schedule.Thursday), 570, 645)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	return domsec.Section{
		ClassNumber:      classNumber,
		Subject:          "CS",
		CatalogNumber:    "21",
		Title:            "Intro to Programming",
		Instructors:      []string{"Grace Hopper", "Alan Turing"},
		AcademicCareer:   "UGRD",
		Campus:           "MAIN",
		InstructionMode:  "P",
		Component:        "LEC",
		ClassStatus:      "Active",
		Attributes:       []string{"FQ", "FW"},
		CreditsMin:       3,
		CreditsMax:       3,
		Capacity:         40,
		EnrollmentTotal:  38,
		AvailableSeats:   2,
		WaitlistCapacity: 5,
		WaitlistTotal:    1,
		Meeting:          &meeting,
	}
}
