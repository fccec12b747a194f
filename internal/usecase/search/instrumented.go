package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/search/order"
	"github.com/kailas-cloud/classdex/internal/domain/search/query"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	"github.com/kailas-cloud/classdex/internal/metrics"
)

// Store operation labels.
const (
	opCatalog    = "catalog"
	opCandidates = "candidates"
	opGet        = "get"
)

// InstrumentedRepository wraps Repository with store latency metrics and failure logging.
type InstrumentedRepository struct {
	inner  Repository
	logger *zap.Logger
}

// NewInstrumentedRepository wraps a repository with observability.
func NewInstrumentedRepository(inner Repository, logger *zap.Logger) *InstrumentedRepository {
	return &InstrumentedRepository{inner: inner, logger: logger}
}

// FetchCatalog delegates and records the round trip.
func (r *InstrumentedRepository) FetchCatalog(
	ctx context.Context, t term.Term, storeField string, narrow query.Node, size int,
) (catalog.Catalog, error) {
	start := time.Now()
	c, err := r.inner.FetchCatalog(ctx, t, storeField, narrow, size)
	r.observe(opCatalog, start, err, zap.String("term", string(t)), zap.String("field", storeField))
	return c, err
}

// FetchCandidates delegates and records the round trip.
func (r *InstrumentedRepository) FetchCandidates(
	ctx context.Context, t term.Term, q query.Node, offset, limit int, o order.Order,
) ([]domsec.Section, int, error) {
	start := time.Now()
	sections, total, err := r.inner.FetchCandidates(ctx, t, q, offset, limit, o)
	r.observe(opCandidates, start, err,
		zap.String("term", string(t)),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
	)
	return sections, total, err
}

// Get delegates and records the round trip.
func (r *InstrumentedRepository) Get(
	ctx context.Context, t term.Term, classNumbers []string,
) ([]domsec.Section, []string, error) {
	start := time.Now()
	found, missing, err := r.inner.Get(ctx, t, classNumbers)
	r.observe(opGet, start, err, zap.String("term", string(t)), zap.Int("keys", len(classNumbers)))
	return found, missing, err
}

func (r *InstrumentedRepository) observe(op string, start time.Time, err error, fields ...zap.Field) {
	duration := time.Since(start)
	metrics.StoreRequestDuration.WithLabelValues(op).Observe(duration.Seconds())

	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
		r.logger.Warn("Store request failed",
			append(fields, zap.String("op", op), zap.Duration("duration", duration), zap.Error(err))...)
		return
	}
	r.logger.Debug("Store request completed",
		append(fields, zap.String("op", op), zap.Duration("duration", duration))...)
}
