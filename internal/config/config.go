package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/classdex/internal/domain/resolve"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// Config holds the classdex configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Index    IndexConfig    `yaml:"index"`
	Resolver ResolverConfig `yaml:"resolver"`
	MCP      MCPConfig      `yaml:"mcp"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds key layout, catalog and pagination settings.
type IndexConfig struct {
	KeyPrefix          string   `yaml:"key_prefix"`
	CatalogSize        int      `yaml:"catalog_size"`
	CatalogNumberWidth int      `yaml:"catalog_number_width"`
	DefaultPageSize    int      `yaml:"default_page_size"`
	MaxPageSize        int      `yaml:"max_page_size"`
	MaxCandidates      int      `yaml:"max_candidates"` // bound for schedule conflict filtering
	MaxOffset          int      `yaml:"max_offset"`     // deepest result position a page may reach
	LoadChunkSize      int      `yaml:"load_chunk_size"`
	Terms              []string `yaml:"terms"` // terms expected to be loaded; reported by /health
}

// ResolverConfig holds fuzzy value resolution settings.
type ResolverConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// MCPConfig holds the MCP tool server settings.
type MCPConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	Path         string `yaml:"path"`
	Stateless    *bool  `yaml:"stateless"`
	JSONResponse *bool  `yaml:"json_response"`
}

// IsEnabled reports whether the MCP endpoint is mounted (default true).
func (m MCPConfig) IsEnabled() bool { return m.Enabled == nil || *m.Enabled }

// IsStateless reports whether HTTP sessions are skipped (default true).
func (m MCPConfig) IsStateless() bool { return m.Stateless == nil || *m.Stateless }

// IsJSONResponse reports whether responses are plain JSON instead of SSE (default true).
func (m MCPConfig) IsJSONResponse() bool { return m.JSONResponse == nil || *m.JSONResponse }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "classdex:"
	}
	if c.Index.CatalogSize <= 0 {
		c.Index.CatalogSize = 500
	}
	if c.Index.CatalogNumberWidth <= 0 {
		c.Index.CatalogNumberWidth = fields.DefaultCatalogNumberWidth
	}
	if c.Index.DefaultPageSize <= 0 {
		c.Index.DefaultPageSize = 10
	}
	if c.Index.MaxPageSize <= 0 {
		c.Index.MaxPageSize = 100
	}
	if c.Index.MaxCandidates <= 0 {
		c.Index.MaxCandidates = 500
	}
	if c.Index.MaxOffset <= 0 {
		c.Index.MaxOffset = request.MaxOffset
	}
	if c.Index.LoadChunkSize <= 0 {
		c.Index.LoadChunkSize = 500
	}
	if c.Resolver.Threshold <= 0 {
		c.Resolver.Threshold = resolve.DefaultThreshold
	}
	if c.MCP.Path == "" {
		c.MCP.Path = "/mcp"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Index.CatalogNumberWidth > 10 {
		return fmt.Errorf("index.catalog_number_width must be at most 10, got %d", c.Index.CatalogNumberWidth)
	}
	if c.Index.DefaultPageSize > c.Index.MaxPageSize {
		return fmt.Errorf("index.default_page_size %d exceeds index.max_page_size %d",
			c.Index.DefaultPageSize, c.Index.MaxPageSize)
	}
	if c.Index.MaxCandidates < c.Index.MaxPageSize {
		return fmt.Errorf("index.max_candidates %d is below index.max_page_size %d",
			c.Index.MaxCandidates, c.Index.MaxPageSize)
	}
	if c.Index.MaxOffset < c.Index.MaxPageSize {
		return fmt.Errorf("index.max_offset %d is below index.max_page_size %d",
			c.Index.MaxOffset, c.Index.MaxPageSize)
	}
	for _, t := range c.Index.Terms {
		if _, err := term.Parse(t); err != nil {
			return fmt.Errorf("index.terms: %w", err)
		}
	}
	if c.Resolver.Threshold > 1 {
		return fmt.Errorf("resolver.threshold must be in (0, 1], got %g", c.Resolver.Threshold)
	}
	if !strings.HasPrefix(c.MCP.Path, "/") {
		return fmt.Errorf("mcp.path must start with /, got %q", c.MCP.Path)
	}
	return nil
}

// ServedTerms returns the parsed index.terms. Call after Validate.
func (c *Config) ServedTerms() []term.Term {
	out := make([]term.Term, 0, len(c.Index.Terms))
	for _, s := range c.Index.Terms {
		if t, err := term.Parse(s); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
