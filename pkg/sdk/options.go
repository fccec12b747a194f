package classdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	keyPrefix          string
	catalogNumberWidth int
	defaultPageSize    int
	maxPageSize        int
	catalogSize        int
	maxCandidates      int
	threshold          float64
	loadChunkSize      int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the Redis Stack instance to connect to.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithACLUser sets the Redis ACL username.
func WithACLUser(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithDB selects a logical Redis database.
func WithDB(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = db
	})
}

// WithKeyPrefix sets the prefix for index names and section keys.
// Default: "classdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithCatalogNumberWidth sets the width short catalog numbers are zero padded to.
// Default: 3.
func WithCatalogNumberWidth(width int) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogNumberWidth = width
	})
}

// WithPageSize sets the default and maximum results per page.
// Defaults: 10 and 100.
func WithPageSize(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	})
}

// WithCatalogSize caps the distinct values fetched per filter catalog.
func WithCatalogSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogSize = n
	})
}

// WithMaxCandidates bounds the sections examined when avoid blocks are set.
func WithMaxCandidates(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxCandidates = n
	})
}

// WithResolverThreshold sets the similarity threshold for fuzzy value resolution.
// Default: 0.6.
func WithResolverThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = t
	})
}

// WithLoadChunkSize sets how many sections Load writes per round trip.
func WithLoadChunkSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.loadChunkSize = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
