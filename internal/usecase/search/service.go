package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/conflict"
	"github.com/kailas-cloud/classdex/internal/domain/resolve"
	"github.com/kailas-cloud/classdex/internal/domain/search/compile"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
	"github.com/kailas-cloud/classdex/internal/domain/search/query"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/search/result"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	"github.com/kailas-cloud/classdex/internal/metrics"
)

// Defaults for Options.
const (
	DefaultCatalogSize   = 500
	DefaultMaxCandidates = 500
	// maxClassNumbers bounds one details or availability lookup.
	maxClassNumbers = 50
)

// Options tune the service. Zero fields fall back to defaults.
type Options struct {
	// CatalogSize caps the distinct values fetched per catalog.
	CatalogSize int
	// MaxCandidates bounds the candidate set fetched for schedule conflict filtering.
	MaxCandidates int
	// Threshold is the resolver's similarity threshold.
	Threshold float64
}

func (o Options) withDefaults() Options {
	if o.CatalogSize <= 0 {
		o.CatalogSize = DefaultCatalogSize
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	if o.Threshold <= 0 {
		o.Threshold = resolve.DefaultThreshold
	}
	return o
}

// Service resolves loose filter values, compiles queries and pages class sections.
type Service struct {
	repo    Repository
	builder *compile.Builder
	opts    Options
	logger  *zap.Logger
}

// New creates a search service. logger may be nil.
func New(repo Repository, builder *compile.Builder, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, builder: builder, opts: opts.withDefaults(), logger: logger}
}

// Search runs one validated search: resolve, compile, fetch, then filter
// schedule conflicts when the request carries avoid blocks.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Page, error) {
	t := req.Term()

	set, err := s.resolveFilters(ctx, t, req.Filters())
	if err != nil {
		return result.Page{}, err
	}

	q, err := s.builder.Build(set)
	if err != nil {
		return result.Page{}, err
	}

	s.logger.Debug("Search compiled",
		zap.String("term", string(t)),
		zap.Stringer("filters", set),
		zap.Stringer("query", q),
		zap.Int("avoid_blocks", len(req.Avoid().Blocks)),
	)

	if req.Avoid().Empty() {
		sections, total, err := s.repo.FetchCandidates(ctx, t, q, req.Offset(), req.PerPage(), req.Order())
		if err != nil {
			return result.Page{}, fmt.Errorf("fetch candidates: %w", err)
		}
		return result.New(sections, total, req.Page(), req.PerPage(), 0), nil
	}

	return s.searchAvoiding(ctx, req, q)
}

// searchAvoiding fetches a bounded candidate set from offset zero, drops
// sections that collide with the avoid blocks and pages what remains.
func (s *Service) searchAvoiding(ctx context.Context, req request.Request, q query.Node) (result.Page, error) {
	sections, storeTotal, err := s.repo.FetchCandidates(ctx, req.Term(), q, 0, s.opts.MaxCandidates, req.Order())
	if err != nil {
		return result.Page{}, fmt.Errorf("fetch candidates: %w", err)
	}
	if storeTotal > len(sections) {
		s.logger.Debug("Candidate set truncated",
			zap.Int("store_total", storeTotal),
			zap.Int("fetched", len(sections)),
		)
	}

	cands := make([]conflict.Candidate[domsec.Section], len(sections))
	for i, sec := range sections {
		cands[i] = conflict.Candidate[domsec.Section]{Schedule: sec.Meeting, Payload: sec}
	}
	kept, total := conflict.Filter(cands, req.Avoid())

	excluded := len(sections) - total
	metrics.ConflictExcludedTotal.Add(float64(excluded))

	var window []domsec.Section
	if off := req.Offset(); off >= 0 && off < total {
		end := min(off+req.PerPage(), total)
		window = make([]domsec.Section, 0, end-off)
		for _, c := range kept[off:end] {
			window = append(window, c.Payload)
		}
	}
	return result.New(window, total, req.Page(), req.PerPage(), excluded), nil
}

// resolveFilters replaces every resolvable exact value with its canonical
// catalog value. Catalogs are fetched concurrently, one per field; any miss
// fails the whole set.
func (s *Service) resolveFilters(ctx context.Context, t term.Term, set filter.Set) (filter.Set, error) {
	type job struct {
		spec  fields.Spec
		input string
	}
	var jobs []job
	for _, name := range set.Names() {
		spec, ok := s.builder.Table().Lookup(name)
		v := set[name]
		if !ok || !spec.Resolvable || spec.Kind != fields.Exact || v.Kind() != filter.KindExact {
			continue
		}
		jobs = append(jobs, job{spec: spec, input: v.Str()})
	}
	if len(jobs) == 0 {
		return set, nil
	}

	resolved := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			r, err := s.resolve(gctx, t, j.spec, j.input)
			if err != nil {
				return err
			}
			if err := resolve.Err(j.spec.Name, j.input, r); err != nil {
				return err
			}
			resolved[i] = r.Value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := set
	for i, j := range jobs {
		out = out.With(j.spec.Name, filter.Exact(resolved[i]))
	}
	return out, nil
}

// resolve canonicalizes input through the field's aliases, then matches it
// against a freshly fetched catalog.
func (s *Service) resolve(ctx context.Context, t term.Term, spec fields.Spec, input string) (resolve.Result, error) {
	canonical, err := spec.Canonical(input)
	if err != nil {
		return resolve.Result{}, domain.Relabel(spec.Name, err)
	}

	c, err := s.repo.FetchCatalog(ctx, t, spec.StoreField, query.MatchAll(), s.opts.CatalogSize)
	if err != nil {
		return resolve.Result{}, fmt.Errorf("fetch %s catalog: %w", spec.Name, err)
	}

	r := resolve.Resolve(canonical, c, s.opts.Threshold)
	strategy := string(r.Strategy)
	if !r.Matched {
		strategy = "none"
	}
	metrics.ResolveTotal.WithLabelValues(spec.Name, strategy).Inc()

	s.logger.Debug("Filter value resolved",
		zap.String("field", spec.Name),
		zap.String("input", input),
		zap.String("value", r.Value),
		zap.String("strategy", strategy),
		zap.Int("catalog_size", len(c)),
	)
	return r, nil
}

// ResolveValue resolves one value for a resolvable field. A miss is not an
// error: the result carries suggestions instead.
func (s *Service) ResolveValue(ctx context.Context, t term.Term, field, value string) (resolve.Result, error) {
	spec, ok := s.builder.Table().Lookup(field)
	if !ok || !spec.Resolvable {
		return resolve.Result{}, domain.NewValidation("field", "%q is not resolvable (use one of %s)",
			field, strings.Join(s.ResolvableFields(), ", "))
	}
	if strings.TrimSpace(value) == "" {
		return resolve.Result{}, domain.NewValidation("value", "must not be empty")
	}
	return s.resolve(ctx, t, spec, value)
}

// ResolvableFields lists the filter names whose values are fuzzy-matched.
func (s *Service) ResolvableFields() []string {
	var out []string
	for _, spec := range s.builder.Table().Specs() {
		if spec.Resolvable {
			out = append(out, spec.Name)
		}
	}
	return out
}

// FilterOptions lists the values a filter field takes with their section
// counts. narrow, when non-empty, restricts the counted sections; its
// resolvable values are resolved like a search.
func (s *Service) FilterOptions(
	ctx context.Context, t term.Term, field string, narrow filter.Set,
) (catalog.Catalog, error) {
	spec, ok := s.builder.Table().Lookup(field)
	if !ok || !hasCatalog(spec) {
		return nil, domain.NewValidation("field", "no options for %q", field)
	}

	set, err := s.resolveFilters(ctx, t, narrow)
	if err != nil {
		return nil, err
	}
	q, err := s.builder.Build(set)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.FetchCatalog(ctx, t, spec.StoreField, q, s.opts.CatalogSize)
	if err != nil {
		return nil, fmt.Errorf("fetch %s catalog: %w", field, err)
	}
	return c, nil
}

// OptionFields lists the filter names FilterOptions accepts.
func (s *Service) OptionFields() []string {
	var out []string
	for _, spec := range s.builder.Table().Specs() {
		if hasCatalog(spec) {
			out = append(out, spec.Name)
		}
	}
	return out
}

func hasCatalog(spec fields.Spec) bool {
	switch spec.Kind {
	case fields.Exact, fields.AllOf, fields.AnyOf:
		return true
	case fields.Prefix:
		return spec.Normalize == nil
	default:
		return false
	}
}

// ClassDetails loads sections by a comma-separated list of class numbers.
// Unknown numbers are returned in missing; it fails with domain.ErrNotFound
// only when none are found.
func (s *Service) ClassDetails(
	ctx context.Context, t term.Term, classNumbers string,
) (found []domsec.Section, missing []string, err error) {
	numbers, err := ParseClassNumbers(classNumbers)
	if err != nil {
		return nil, nil, err
	}

	found, missing, err = s.repo.Get(ctx, t, numbers)
	if err != nil {
		return nil, nil, fmt.Errorf("get sections: %w", err)
	}
	if len(found) == 0 {
		return nil, missing, fmt.Errorf("class %s in term %s: %w", strings.Join(missing, ", "), t, domain.ErrNotFound)
	}
	return found, missing, nil
}

// SeatAvailability reports the enrollment status of each listed class.
func (s *Service) SeatAvailability(
	ctx context.Context, t term.Term, classNumbers string,
) ([]domsec.Availability, []string, error) {
	found, missing, err := s.ClassDetails(ctx, t, classNumbers)
	if err != nil {
		return nil, missing, err
	}
	out := make([]domsec.Availability, len(found))
	for i, sec := range found {
		out[i] = sec.Availability()
	}
	return out, missing, nil
}

// ParseClassNumbers splits a comma-separated list, dropping blanks and duplicates.
func ParseClassNumbers(raw string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.Join(strings.Fields(p), "")
		if p == "" || seen[p] {
			continue
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return nil, domain.NewValidation("class_numbers", "%q is not a class number", p)
			}
		}
		seen[p] = true
		out = append(out, p)
	}
	switch {
	case len(out) == 0:
		return nil, domain.NewValidation("class_numbers", "at least one class number is required")
	case len(out) > maxClassNumbers:
		return nil, domain.NewValidation("class_numbers", "at most %d class numbers per lookup", maxClassNumbers)
	}
	return out, nil
}
