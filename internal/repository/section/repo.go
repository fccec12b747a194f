// Package section stores class sections as Redis hashes under a per-term FT index.
package section

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/classdex/internal/db"
	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	"github.com/kailas-cloud/classdex/internal/domain/search/order"
	"github.com/kailas-cloud/classdex/internal/domain/search/query"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

const (
	// upsertBatchSize is the number of hashes sent per pipelined HSET round trip.
	upsertBatchSize = 200
	// upsertParallelism bounds concurrent upsert batches.
	upsertParallelism = 4
)

// store is the consumer interface for sections (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	Terms(ctx context.Context, q *db.TermsQuery) ([]db.Bucket, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store     store
	keyPrefix string
	width     int
	table     fields.Table
}

// New creates a section repository. keyPrefix namespaces every key and index
// (e.g. "classdex:"); width pads catalog numbers on write.
func New(s store, keyPrefix string, table fields.Table, width int) *Repo {
	if width <= 0 {
		width = fields.DefaultCatalogNumberWidth
	}
	return &Repo{store: s, keyPrefix: keyPrefix, width: width, table: table}
}

// EnsureIndex creates the term index unless it exists. With recreate the index
// and its documents are dropped first. Reports whether an index was created.
func (r *Repo) EnsureIndex(ctx context.Context, t term.Term, recreate bool) (bool, error) {
	name := r.indexName(t)

	if recreate {
		err := r.store.DropIndex(ctx, name, true)
		if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return false, domain.NewStoreError(db.OpDropIndex, err)
		}
	} else {
		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return false, domain.NewStoreError(db.OpIndexInfo, err)
		}
		if exists {
			return false, nil
		}
	}

	def, err := buildIndex(name, r.sectionPrefix(t), r.table)
	if err != nil {
		return false, fmt.Errorf("build index %s: %w", name, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, domain.NewStoreError(db.OpCreateIndex, err)
	}
	return true, nil
}

// Indexed reports whether the term index exists.
func (r *Repo) Indexed(ctx context.Context, t term.Term) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.indexName(t))
	if err != nil {
		return false, domain.NewStoreError(db.OpIndexInfo, err)
	}
	return ok, nil
}

// Upsert writes sections in pipelined batches; batches run concurrently.
func (r *Repo) Upsert(ctx context.Context, t term.Term, sections []domsec.Section) error {
	if len(sections) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upsertParallelism)

	for start := 0; start < len(sections); start += upsertBatchSize {
		chunk := sections[start:min(start+upsertBatchSize, len(sections))]
		items := make([]db.HashSetItem, len(chunk))
		for i, s := range chunk {
			items[i] = db.HashSetItem{
				Key:    r.sectionKey(t, s.ClassNumber),
				Fields: sectionToHash(s, r.width),
			}
		}
		g.Go(func() error {
			if err := r.store.HSetMulti(gctx, items); err != nil {
				return domain.NewStoreError(db.OpHSet, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Get loads sections by class number, preserving the requested order.
// Class numbers with no stored section are returned in missing.
func (r *Repo) Get(ctx context.Context, t term.Term, classNumbers []string) (
	found []domsec.Section, missing []string, err error,
) {
	if len(classNumbers) == 0 {
		return nil, nil, nil
	}

	keys := make([]string, len(classNumbers))
	for i, n := range classNumbers {
		keys[i] = r.sectionKey(t, n)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, nil, domain.NewStoreError(db.OpHGetAll, err)
	}

	for i, m := range hashes {
		if len(m) == 0 {
			missing = append(missing, classNumbers[i])
			continue
		}
		s, err := sectionFromHash(m)
		if err != nil {
			return nil, nil, domain.NewStoreError(db.OpHGetAll, err)
		}
		found = append(found, s)
	}
	return found, missing, nil
}

// FetchCatalog enumerates the distinct values of a store field with their
// section counts, most frequent first. narrow restricts the counted sections;
// its zero value counts all.
func (r *Repo) FetchCatalog(
	ctx context.Context, t term.Term, storeField string, narrow query.Node, size int,
) (catalog.Catalog, error) {
	buckets, err := r.store.Terms(ctx, &db.TermsQuery{
		Index: r.indexName(t),
		Field: storeField,
		Query: narrow,
		Size:  size,
	})
	if err != nil {
		return nil, domain.NewStoreError(db.OpAggregate, err)
	}

	c := make(catalog.Catalog, 0, len(buckets))
	for _, b := range buckets {
		c = append(c, catalog.Entry{Value: b.Value, Count: b.Count})
	}
	return c, nil
}

// FetchCandidates runs a compiled query and returns one window of sections
// plus the total number of matches.
func (r *Repo) FetchCandidates(
	ctx context.Context, t term.Term, q query.Node, offset, limit int, o order.Order,
) ([]domsec.Section, int, error) {
	res, err := r.store.Search(ctx, &db.SearchQuery{
		Index:    r.indexName(t),
		Query:    q,
		Offset:   offset,
		Limit:    limit,
		SortBy:   o.Key.StoreField(),
		SortDesc: o.Desc,
	})
	if err != nil {
		return nil, 0, domain.NewStoreError(db.OpSearch, err)
	}
	if res == nil {
		return nil, 0, nil
	}

	sections := make([]domsec.Section, 0, len(res.Entries))
	for _, e := range res.Entries {
		m := e.Fields
		if m[fields.FieldClassNumber] == "" {
			m = make(map[string]string, len(e.Fields)+1)
			for k, v := range e.Fields {
				m[k] = v
			}
			m[fields.FieldClassNumber] = r.classNumberFromKey(t, e.Key)
		}
		s, err := sectionFromHash(m)
		if err != nil {
			return nil, 0, domain.NewStoreError(db.OpSearch, err)
		}
		sections = append(sections, s)
	}
	return sections, res.Total, nil
}

func (r *Repo) indexName(t term.Term) string {
	return fmt.Sprintf("%s%s:idx", r.keyPrefix, t)
}

func (r *Repo) sectionPrefix(t term.Term) string {
	return fmt.Sprintf("%s%s:section:", r.keyPrefix, t)
}

func (r *Repo) sectionKey(t term.Term, classNumber string) string {
	return r.sectionPrefix(t) + classNumber
}

func (r *Repo) classNumberFromKey(t term.Term, key string) string {
	return strings.TrimPrefix(key, r.sectionPrefix(t))
}
