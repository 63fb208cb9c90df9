package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Source is a blog whose feed is aggregated.
type Source struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	Homepage string `yaml:"homepage,omitempty"`
	Enabled  bool   `yaml:"enabled"`
}

// BlogURL returns the homepage, or the feed URL's origin when unset.
func (s Source) BlogURL() string {
	if s.Homepage != "" {
		return s.Homepage
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" {
		return s.URL
	}
	return u.Scheme + "://" + u.Host
}

type FetchConfig struct {
	Timeout     string `yaml:"timeout,omitempty"`
	Retries     int    `yaml:"retries,omitempty"`
	RetryDelay  string `yaml:"retry_delay,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	Interval    string `yaml:"interval,omitempty"`
	UserAgent   string `yaml:"user_agent,omitempty"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr,omitempty"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
	RateLimit   float64  `yaml:"rate_limit,omitempty"` // requests per second per client
}

type SearchConfig struct {
	Backend      string `yaml:"backend,omitempty"` // "memory" or "meilisearch"
	DefaultLimit int    `yaml:"default_limit,omitempty"`
}

type MeilisearchConfig struct {
	Host   string `yaml:"host,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
	Index  string `yaml:"index,omitempty"`
}

type Config struct {
	RefreshInterval string            `yaml:"refresh_interval"`
	Retention       string            `yaml:"retention"`
	Fetch           FetchConfig       `yaml:"fetch,omitempty"`
	Server          ServerConfig      `yaml:"server,omitempty"`
	Search          SearchConfig      `yaml:"search,omitempty"`
	Meilisearch     MeilisearchConfig `yaml:"meilisearch,omitempty"`
	Sources         []Source          `yaml:"sources"`
}

const (
	BackendMemory      = "memory"
	BackendMeilisearch = "meilisearch"
)

func (c *Config) RefreshDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 365 * 24 * time.Hour
	}
	d, err := ParseDays(c.Retention)
	if err != nil {
		return 365 * 24 * time.Hour
	}
	return d
}

// ParseDays parses a Go duration, also accepting "Nd" for N days.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func (c *Config) FetchTimeout() time.Duration {
	return durationOr(c.Fetch.Timeout, 10*time.Second)
}

// FetchRetries is the number of attempts per feed, at least one.
func (c *Config) FetchRetries() int {
	if c.Fetch.Retries <= 0 {
		return 3
	}
	return c.Fetch.Retries
}

func (c *Config) RetryDelay() time.Duration {
	return durationOr(c.Fetch.RetryDelay, 2*time.Second)
}

func (c *Config) FetchConcurrency() int {
	if c.Fetch.Concurrency <= 0 {
		return 4
	}
	return c.Fetch.Concurrency
}

// FetchInterval is the minimum spacing between two feed requests.
func (c *Config) FetchInterval() time.Duration {
	return durationOr(c.Fetch.Interval, time.Second)
}

func (c *Config) UserAgent() string {
	if c.Fetch.UserAgent == "" {
		return "blogsearch (+https://github.com/matheuskafuri/blogsearch)"
	}
	return c.Fetch.UserAgent
}

func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return ":5050"
	}
	return c.Server.Addr
}

func (c *Config) CORSOrigins() []string {
	if len(c.Server.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return c.Server.CORSOrigins
}

// RateLimit is the per-client request rate of the HTTP API.
func (c *Config) RateLimit() float64 {
	if c.Server.RateLimit <= 0 {
		return 20
	}
	return c.Server.RateLimit
}

func (c *Config) SearchBackend() string {
	if c.Search.Backend == "" {
		return BackendMemory
	}
	return c.Search.Backend
}

// DefaultLimit is the result count used when a request sets none.
func (c *Config) DefaultLimit() int {
	if c.Search.DefaultLimit <= 0 {
		return 20
	}
	return c.Search.DefaultLimit
}

func (c *Config) MeilisearchHost() string {
	if c.Meilisearch.Host == "" {
		return "http://localhost:7700"
	}
	return c.Meilisearch.Host
}

// MeilisearchKey returns the configured key, or BLOGSEARCH_MEILI_KEY.
func (c *Config) MeilisearchKey() string {
	if c.Meilisearch.APIKey != "" {
		return c.Meilisearch.APIKey
	}
	return os.Getenv("BLOGSEARCH_MEILI_KEY")
}

func (c *Config) MeilisearchIndex() string {
	if c.Meilisearch.Index == "" {
		return "articles"
	}
	return c.Meilisearch.Index
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

func durationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "blogsearch", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.DataHome, "blogsearch", "blogsearch.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	mergeDefaultSources(&cfg, defaults)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeDefaultSources refreshes user sources that share a name with a default
// and appends defaults the user does not have yet.
func mergeDefaultSources(cfg, defaults *Config) {
	byName := make(map[string]int, len(cfg.Sources))
	for i, s := range cfg.Sources {
		byName[s.Name] = i
	}
	for _, d := range defaults.Sources {
		if i, ok := byName[d.Name]; ok {
			cfg.Sources[i].URL = d.URL
			cfg.Sources[i].Type = d.Type
			if cfg.Sources[i].Homepage == "" {
				cfg.Sources[i].Homepage = d.Homepage
			}
			continue
		}
		cfg.Sources = append(cfg.Sources, d)
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		if err := checkHTTP(s.URL); err != nil {
			return fmt.Errorf("source %q: %w", s.Name, err)
		}
		if s.Homepage != "" {
			if err := checkHTTP(s.Homepage); err != nil {
				return fmt.Errorf("source %q homepage: %w", s.Name, err)
			}
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}
	switch cfg.Search.Backend {
	case "", BackendMemory:
	case BackendMeilisearch:
		if cfg.Meilisearch.Host == "" {
			return fmt.Errorf("search backend %q requires meilisearch.host", BackendMeilisearch)
		}
	default:
		return fmt.Errorf("unknown search backend %q (valid: memory, meilisearch)", cfg.Search.Backend)
	}
	return nil
}

func checkHTTP(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
