package search

import (
	"context"

	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/search/order"
	"github.com/kailas-cloud/classdex/internal/domain/search/query"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	FetchCatalog(
		ctx context.Context, t term.Term, storeField string,
		narrow query.Node, size int,
	) (catalog.Catalog, error)

	FetchCandidates(
		ctx context.Context, t term.Term, q query.Node,
		offset, limit int, o order.Order,
	) ([]domsec.Section, int, error)

	Get(ctx context.Context, t term.Term, classNumbers []string) ([]domsec.Section, []string, error)
}
