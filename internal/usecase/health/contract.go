package health

import (
	"context"

	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether a term has been loaded.
type IndexChecker interface {
	Indexed(ctx context.Context, t term.Term) (bool, error)
}
