package result

import (
	"testing"

	"github.com/kailas-cloud/classdex/internal/domain/section"
)

func TestPage(t *testing.T) {
	secs := make([]section.Section, 10)
	p := New(secs, 57, 2, 10, 3)

	if p.Showing() != "11-20 of 57" {
		t.Errorf("Showing() = %q", p.Showing())
	}
	if p.TotalPages() != 6 {
		t.Errorf("TotalPages() = %d, want 6", p.TotalPages())
	}
	if !p.HasMore() {
		t.Error("expected more pages")
	}
	if p.Excluded() != 3 || len(p.Sections()) != 10 {
		t.Errorf("excluded=%d sections=%d", p.Excluded(), len(p.Sections()))
	}
}

func TestPage_LastAndEmpty(t *testing.T) {
	last := New(make([]section.Section, 7), 57, 6, 10, 0)
	if last.Showing() != "51-57 of 57" || last.HasMore() {
		t.Errorf("last page: %q more=%v", last.Showing(), last.HasMore())
	}

	empty := New(nil, 0, 1, 10, 0)
	if empty.Showing() != "0 of 0" || empty.TotalPages() != 0 || empty.HasMore() {
		t.Errorf("empty page: %q pages=%d", empty.Showing(), empty.TotalPages())
	}
}
