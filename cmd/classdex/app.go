package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/classdex/internal/config"
	dbRedis "github.com/kailas-cloud/classdex/internal/db/redis"
	"github.com/kailas-cloud/classdex/internal/domain/search/compile"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	logpkg "github.com/kailas-cloud/classdex/internal/logger"
	"github.com/kailas-cloud/classdex/internal/metrics"
	sectionrepo "github.com/kailas-cloud/classdex/internal/repository/section"
	searchuc "github.com/kailas-cloud/classdex/internal/usecase/search"
	"github.com/kailas-cloud/classdex/internal/version"
)

// app is the composition root shared by every command.
type app struct {
	env      string
	cfg      config.Config
	logger   *zap.Logger
	store    *dbRedis.Store
	sections *sectionrepo.Repo
}

func newApp(ctx context.Context, command, logLevel string) (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	logger, err := logpkg.NewLogger(env, logLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting classdex",
		zap.String("command", command),
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("terms", cfg.Index.Terms),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("create store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	metrics.RegisterSearchMetrics()

	width := cfg.Index.CatalogNumberWidth
	return &app{
		env:      env,
		cfg:      cfg,
		logger:   logger,
		store:    store,
		sections: sectionrepo.New(store, cfg.Index.KeyPrefix, fields.Sections(width), width),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func (a *app) searchService() *searchuc.Service {
	width := a.cfg.Index.CatalogNumberWidth
	return searchuc.New(
		searchuc.NewInstrumentedRepository(a.sections, a.logger),
		compile.New(fields.Sections(width)),
		searchuc.Options{
			CatalogSize:   a.cfg.Index.CatalogSize,
			MaxCandidates: a.cfg.Index.MaxCandidates,
			Threshold:     a.cfg.Resolver.Threshold,
		},
		a.logger,
	)
}

func (a *app) limits() request.Limits {
	return request.Limits{
		DefaultPageSize: a.cfg.Index.DefaultPageSize,
		MaxPageSize:     a.cfg.Index.MaxPageSize,
		MaxOffset:       a.cfg.Index.MaxOffset,
	}
}

// termOrDefault parses raw, falling back to the first configured term.
func (a *app) termOrDefault(raw string) (term.Term, error) {
	if raw == "" {
		served := a.cfg.ServedTerms()
		if len(served) == 0 {
			return "", fmt.Errorf("no --term given and index.terms is empty")
		}
		return served[0], nil
	}
	return term.Parse(raw)
}
