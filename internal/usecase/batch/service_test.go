package batch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/classdex/internal/domain"
	dombatch "github.com/kailas-cloud/classdex/internal/domain/batch"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// --- Mocks ---

type mockWriter struct {
	created   bool
	ensureErr error
	recreate  bool

	upsertErr error
	failCall  int // 1-based call that fails; 0 = every call uses upsertErr
	calls     [][]domsec.Section
}

func (m *mockWriter) EnsureIndex(_ context.Context, _ term.Term, recreate bool) (bool, error) {
	m.recreate = recreate
	return m.created, m.ensureErr
}

func (m *mockWriter) Upsert(_ context.Context, _ term.Term, sections []domsec.Section) error {
	m.calls = append(m.calls, sections)
	if m.failCall > 0 && len(m.calls) != m.failCall {
		return nil
	}
	return m.upsertErr
}

func record(classNumber string) Record {
	return Record{
		ClassNumber:   classNumber,
		Subject:       "cs",
		CatalogNumber: "121",
		Title:         "Computer Science I",
		CreditsMin:    4,
		Capacity:      30,
	}
}

// --- Tests ---

func TestLoad_AllValid(t *testing.T) {
	w := &mockWriter{created: true}
	svc := New(w, nil)

	rep, err := svc.Load(context.Background(), "1263", []Record{record("1"), record("2")}, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !rep.IndexCreated || !w.recreate {
		t.Errorf("IndexCreated=%v recreate=%v", rep.IndexCreated, w.recreate)
	}
	if ok, failed := dombatch.Count(rep.Results); ok != 2 || failed != 0 {
		t.Errorf("ok=%d failed=%d", ok, failed)
	}
	if len(w.calls) != 1 || len(w.calls[0]) != 2 {
		t.Fatalf("upsert calls = %d", len(w.calls))
	}
	if w.calls[0][0].Subject != "CS" {
		t.Errorf("subject not normalized: %q", w.calls[0][0].Subject)
	}
}

func TestLoad_PerRecordErrors(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, nil)

	bad := record("3")
	bad.Title = ""
	records := []Record{record("1"), bad, record("1"), record("4")}

	rep, err := svc.Load(context.Background(), "1263", records, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []dombatch.ItemStatus{dombatch.StatusOK, dombatch.StatusError, dombatch.StatusError, dombatch.StatusOK}
	for i, r := range rep.Results {
		if r.Status() != want[i] {
			t.Errorf("result[%d] = %s (%v), want %s", i, r.Status(), r.Err(), want[i])
		}
		if r.Index() != i {
			t.Errorf("result[%d].Index() = %d", i, r.Index())
		}
	}
	if !strings.Contains(rep.Results[2].Err().Error(), "duplicate") {
		t.Errorf("duplicate error = %v", rep.Results[2].Err())
	}
	if domain.KindOf(rep.Results[1].Err()) != domain.KindValidation {
		t.Errorf("missing title should be a validation error: %v", rep.Results[1].Err())
	}
}

func TestLoad_ChunkFailure(t *testing.T) {
	w := &mockWriter{upsertErr: errors.New("connection reset"), failCall: 2}
	svc := New(w, nil).WithChunkSize(2)

	rep, err := svc.Load(context.Background(), "1263",
		[]Record{record("1"), record("2"), record("3"), record("4"), record("5")}, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(w.calls) != 3 {
		t.Fatalf("upsert calls = %d, want 3", len(w.calls))
	}
	for i, r := range rep.Results {
		wantErr := i == 2 || i == 3
		if (r.Status() == dombatch.StatusError) != wantErr {
			t.Errorf("result[%d] = %s", i, r.Status())
		}
	}
}

func TestLoad_IndexError(t *testing.T) {
	w := &mockWriter{ensureErr: domain.NewStoreError("FT.CREATE", errors.New("oom"))}
	_, err := New(w, nil).Load(context.Background(), "1263", []Record{record("1")}, false)
	if domain.KindOf(err) != domain.KindStore {
		t.Errorf("err = %v, want store kind", err)
	}
	if len(w.calls) != 0 {
		t.Error("nothing should be written without an index")
	}
}
