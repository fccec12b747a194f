package classdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/classdex/internal/db/redis"
	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/resolve"
	"github.com/kailas-cloud/classdex/internal/domain/search/compile"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/search/result"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	sectionrepo "github.com/kailas-cloud/classdex/internal/repository/section"
	batchuc "github.com/kailas-cloud/classdex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/classdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/classdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "classdex:"
	defaultPageSize         = 10
	defaultMaxPageSize      = 100
)

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, req request.Request) (result.Page, error)
	ClassDetails(ctx context.Context, t term.Term, classNumbers string) ([]domsec.Section, []string, error)
	SeatAvailability(ctx context.Context, t term.Term, classNumbers string) ([]domsec.Availability, []string, error)
	FilterOptions(ctx context.Context, t term.Term, field string, narrow filter.Set) (catalog.Catalog, error)
	ResolveValue(ctx context.Context, t term.Term, field, value string) (resolve.Result, error)
}

type loadUseCase interface {
	Load(ctx context.Context, t term.Term, records []batchuc.Record, recreate bool) (batchuc.Report, error)
}

type conn interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the classdex SDK entry point.
type Client struct {
	store     conn
	searchSvc searchUseCase
	loadSvc   loadUseCase
	healthFor func(terms []term.Term) healthUseCase
	limits    request.Limits
	obs       *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:          defaultKeyPrefix,
		catalogNumberWidth: fields.DefaultCatalogNumberWidth,
		defaultPageSize:    defaultPageSize,
		maxPageSize:        defaultMaxPageSize,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("classdex: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("classdex: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func (c *clientConfig) validate() error {
	if len(c.addrs) == 0 {
		return errors.New("classdex: database address required (use WithRedis)")
	}
	if c.catalogNumberWidth < 1 || c.catalogNumberWidth > 10 {
		return fmt.Errorf("classdex: catalog number width must be in [1, 10], got %d", c.catalogNumberWidth)
	}
	if c.defaultPageSize < 1 || c.defaultPageSize > c.maxPageSize {
		return fmt.Errorf("classdex: page sizes must satisfy 1 <= default (%d) <= max (%d)",
			c.defaultPageSize, c.maxPageSize)
	}
	return nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	width := cfg.catalogNumberWidth
	repo := sectionrepo.New(store, cfg.keyPrefix, fields.Sections(width), width)

	// Internal services log nothing; SDK operations are observed via slog instead.
	searchSvc := searchuc.New(repo, compile.New(fields.Sections(width)), searchuc.Options{
		CatalogSize:   cfg.catalogSize,
		MaxCandidates: cfg.maxCandidates,
		Threshold:     cfg.threshold,
	}, zap.NewNop())
	loadSvc := batchuc.New(repo, zap.NewNop()).WithChunkSize(cfg.loadChunkSize)

	return &Client{
		store:     store,
		searchSvc: searchSvc,
		loadSvc:   loadSvc,
		healthFor: func(terms []term.Term) healthUseCase {
			return healthuc.New(store, repo, terms)
		},
		limits: request.Limits{
			DefaultPageSize: cfg.defaultPageSize,
			MaxPageSize:     cfg.maxPageSize,
		},
		obs: obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
