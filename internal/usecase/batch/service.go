package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/classdex/internal/domain"
	dombatch "github.com/kailas-cloud/classdex/internal/domain/batch"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	"github.com/kailas-cloud/classdex/internal/metrics"
)

// DefaultChunkSize is the number of sections handed to the writer at once.
const DefaultChunkSize = 500

// Report summarizes one load.
type Report struct {
	IndexCreated bool
	Results      []dombatch.Result
}

// Service loads fixture records into a term index with per-record error reporting.
type Service struct {
	writer    SectionWriter
	logger    *zap.Logger
	chunkSize int
}

// New creates a batch service. logger may be nil.
func New(writer SectionWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{writer: writer, logger: logger, chunkSize: DefaultChunkSize}
}

// WithChunkSize configures how many sections are written per call.
func (s *Service) WithChunkSize(size int) *Service {
	if size > 0 {
		s.chunkSize = size
	}
	return s
}

// Load ensures the term index and writes every valid record. Malformed or
// duplicate records fail individually; a failed write fails its chunk.
// The error is non-nil only when the index could not be prepared.
func (s *Service) Load(ctx context.Context, t term.Term, records []Record, recreate bool) (Report, error) {
	created, err := s.writer.EnsureIndex(ctx, t, recreate)
	if err != nil {
		return Report{}, fmt.Errorf("ensure index: %w", err)
	}

	results := make([]dombatch.Result, len(records))
	valid := make([]domsec.Section, 0, len(records))
	validIdx := make([]int, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		sec, err := rec.Section()
		if err != nil {
			results[i] = dombatch.NewError(i, rec.ClassNumber, err)
			continue
		}
		if first, dup := seen[sec.ClassNumber]; dup {
			results[i] = dombatch.NewError(i, sec.ClassNumber,
				domain.NewValidationAt("sections", i, "duplicate class number (first at %d)", first))
			continue
		}
		seen[sec.ClassNumber] = i
		valid = append(valid, sec)
		validIdx = append(validIdx, i)
	}

	for start := 0; start < len(valid); start += s.chunkSize {
		end := min(start+s.chunkSize, len(valid))
		err := s.writer.Upsert(ctx, t, valid[start:end])
		for k := start; k < end; k++ {
			i := validIdx[k]
			if err != nil {
				results[i] = dombatch.NewError(i, valid[k].ClassNumber, fmt.Errorf("upsert: %w", err))
			} else {
				results[i] = dombatch.NewOK(i, valid[k].ClassNumber)
			}
		}
		if err != nil {
			s.logger.Warn("Section chunk failed",
				zap.String("term", string(t)),
				zap.Int("chunk_start", start),
				zap.Int("chunk_size", end-start),
				zap.Error(err),
			)
		}
	}

	ok, failed := dombatch.Count(results)
	metrics.SectionsLoadedTotal.WithLabelValues(string(dombatch.StatusOK)).Add(float64(ok))
	metrics.SectionsLoadedTotal.WithLabelValues(string(dombatch.StatusError)).Add(float64(failed))

	s.logger.Info("Sections loaded",
		zap.String("term", string(t)),
		zap.Bool("index_created", created),
		zap.Int("ok", ok),
		zap.Int("failed", failed),
	)
	return Report{IndexCreated: created, Results: results}, nil
}
