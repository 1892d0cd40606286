package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

// Config holds the learnscout API configuration.
type Config struct {
	HTTP      HTTPConfig              `yaml:"http"`
	Logging   LoggingConfig           `yaml:"logging"`
	Store     StoreConfig             `yaml:"store"`
	Rewriter  RewriterConfig          `yaml:"rewriter"`
	Relevance RelevanceConfig         `yaml:"relevance"`
	Search    SearchConfig            `yaml:"search"`
	Rank      RankConfig              `yaml:"rank"`
	Sources   map[string]SourceConfig `yaml:"sources"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// StoreConfig holds the tag, budget and cache store settings.
type StoreConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis, valkey (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// RateLimitConfig holds an outbound token bucket.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"` // 0 = unlimited
	Burst int     `yaml:"burst"`
}

// RewriterConfig holds the query rewriter settings.
type RewriterConfig struct {
	Enabled          bool            `yaml:"enabled"`
	Provider         string          `yaml:"provider"`
	APIKey           string          `yaml:"api_key"`
	BaseURL          string          `yaml:"base_url"`
	Model            string          `yaml:"model"`
	MaxKeywords      int             `yaml:"max_keywords"`
	ExpandTimeoutSec int             `yaml:"expand_timeout_sec"`
	CacheTTLSec      int             `yaml:"cache_ttl_sec"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
	Budget           BudgetConfig    `yaml:"budget"`
}

// RelevanceConfig holds the semantic relevance check settings.
type RelevanceConfig struct {
	Enabled     bool            `yaml:"enabled"`
	Provider    string          `yaml:"provider"` // openai (shares the rewriter client), gemini
	APIKey      string          `yaml:"api_key"`
	BaseURL     string          `yaml:"base_url"`
	Model       string          `yaml:"model"`
	Threshold   float64         `yaml:"threshold"`
	Concurrency int             `yaml:"concurrency"`
	TimeoutSec  int             `yaml:"timeout_sec"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Budget      BudgetConfig    `yaml:"budget"`
}

// SearchConfig holds fan-out settings.
type SearchConfig struct {
	SourceTimeoutSec int    `yaml:"source_timeout_sec"`
	UserAgent        string `yaml:"user_agent"`
}

// RankConfig holds cross-source ranking settings.
type RankConfig struct {
	Enabled        bool  `yaml:"enabled"`
	PassthroughMax int   `yaml:"passthrough_max"`
	TopN           int   `yaml:"top_n"`
	ResultCap      int   `yaml:"result_cap"`
	LocalSort      *bool `yaml:"local_sort"` // default true
	TimeoutSec     int   `yaml:"timeout_sec"`
}

// FilterConfig holds the per-source acceptance policy.
type FilterConfig struct {
	MinScore      float64 `yaml:"min_score"`
	MinPopularity float64 `yaml:"min_popularity"`
	GraceDays     int     `yaml:"grace_days"`
	Cap           int     `yaml:"cap"`
}

// SourceConfig holds one content platform adapter.
type SourceConfig struct {
	Enabled   bool         `yaml:"enabled"`
	APIKey    string       `yaml:"api_key"`
	BaseURL   string       `yaml:"base_url"`
	FetchSize int          `yaml:"fetch_size"`
	Filter    FilterConfig `yaml:"filter"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Rewriter.Provider == "" {
		c.Rewriter.Provider = "openai"
	}
	if c.Rewriter.Model == "" {
		c.Rewriter.Model = "gpt-4o-mini"
	}
	if c.Rewriter.MaxKeywords <= 0 {
		c.Rewriter.MaxKeywords = 10
	}
	if c.Rewriter.ExpandTimeoutSec <= 0 {
		c.Rewriter.ExpandTimeoutSec = 5
	}
	if c.Rewriter.CacheTTLSec <= 0 {
		c.Rewriter.CacheTTLSec = 86400
	}
	if c.Relevance.Provider == "" {
		c.Relevance.Provider = "openai"
	}
	if c.Relevance.Threshold <= 0 {
		c.Relevance.Threshold = 0.5
	}
	if c.Relevance.Concurrency <= 0 {
		c.Relevance.Concurrency = 5
	}
	if c.Relevance.TimeoutSec <= 0 {
		c.Relevance.TimeoutSec = 8
	}
	if c.Search.SourceTimeoutSec <= 0 {
		c.Search.SourceTimeoutSec = 10
	}
	if c.Rank.PassthroughMax <= 0 {
		c.Rank.PassthroughMax = 5
	}
	if c.Rank.TopN <= 0 {
		c.Rank.TopN = 5
	}
	if c.Rank.ResultCap <= 0 {
		c.Rank.ResultCap = 20
	}
	if c.Rank.LocalSort == nil {
		localSort := true
		c.Rank.LocalSort = &localSort
	}
	if c.Rank.TimeoutSec <= 0 {
		c.Rank.TimeoutSec = 8
	}
	sources := make(map[string]SourceConfig, len(c.Sources))
	for name, s := range c.Sources {
		sources[strings.ToLower(name)] = s
	}
	c.Sources = sources
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Store.Driver {
	case "memory":
	case "redis", "valkey":
		if len(c.Store.Addrs) == 0 {
			return fmt.Errorf("store.addrs is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("store.driver must be \"memory\", \"redis\" or \"valkey\", got %q", c.Store.Driver)
	}

	if err := validateBudget("rewriter", c.Rewriter.Budget); err != nil {
		return err
	}
	if err := validateBudget("relevance", c.Relevance.Budget); err != nil {
		return err
	}
	if c.Rewriter.Enabled && c.Rewriter.APIKey == "" {
		return fmt.Errorf("rewriter.api_key is required when the rewriter is enabled")
	}

	if c.Relevance.Enabled {
		switch c.Relevance.Provider {
		case "openai":
			if !c.Rewriter.Enabled && c.Relevance.APIKey == "" {
				return fmt.Errorf("relevance.api_key is required when the rewriter is disabled")
			}
		case "gemini":
			if c.Relevance.APIKey == "" {
				return fmt.Errorf("relevance.api_key is required for provider gemini")
			}
		default:
			return fmt.Errorf("relevance.provider must be \"openai\" or \"gemini\", got %q", c.Relevance.Provider)
		}
	}
	if c.Relevance.Threshold > 1 {
		return fmt.Errorf("relevance.threshold must be in (0, 1], got %v", c.Relevance.Threshold)
	}
	if c.Rank.Enabled && !c.Rewriter.Enabled {
		return fmt.Errorf("rank.enabled requires rewriter.enabled")
	}

	for name, s := range c.Sources {
		p, ok := platform.Parse(name)
		if !ok {
			return fmt.Errorf("sources.%s: unknown platform", name)
		}
		if s.Enabled && p == platform.YouTube && s.APIKey == "" {
			return fmt.Errorf("sources.youtube.api_key is required when youtube is enabled")
		}
		if s.FetchSize < 0 || s.Filter.Cap < 0 || s.Filter.GraceDays < 0 {
			return fmt.Errorf("sources.%s: fetch_size, filter.cap and filter.grace_days must not be negative", name)
		}
	}
	return nil
}

func validateBudget(section string, b BudgetConfig) error {
	switch b.Action {
	case "", "warn", "reject":
		return nil
	default:
		return fmt.Errorf("%s.budget.action must be \"warn\" or \"reject\", got %q", section, b.Action)
	}
}

// EnabledSources returns the enabled platforms in fan-out order.
func (c *Config) EnabledSources() []platform.Platform {
	var out []platform.Platform
	for _, p := range platform.Ordered() {
		if s, ok := c.Sources[p.String()]; ok && s.Enabled {
			out = append(out, p)
		}
	}
	return out
}

// Source returns the settings of one platform.
func (c *Config) Source(p platform.Platform) SourceConfig {
	return c.Sources[p.String()]
}

// Seconds converts a config value to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
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
