package batch

import (
	"context"

	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// SectionWriter creates term indexes and stores sections.
type SectionWriter interface {
	EnsureIndex(ctx context.Context, t term.Term, recreate bool) (bool, error)
	Upsert(ctx context.Context, t term.Term, sections []domsec.Section) error
}
