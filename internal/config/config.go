// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Session storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the root configuration structure.
type Config struct {
	TMDB     TMDBConfig     `toml:"tmdb"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Redis    RedisConfig    `toml:"redis"`
	Search   SearchConfig   `toml:"search"`
	Log      LogConfig      `toml:"log"`
	Events   EventsConfig   `toml:"events"`
}

type TMDBConfig struct {
	APIToken          string        `toml:"api_token"`
	BaseURL           string        `toml:"base_url"`
	Language          string        `toml:"language"`
	IncludeAdult      *bool         `toml:"include_adult"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Burst             int           `toml:"burst"`
	Timeout           time.Duration `toml:"timeout"`
	CacheTTL          time.Duration `toml:"cache_ttl"`
}

// Adult reports whether adult titles are included in searches (default true).
func (c TMDBConfig) Adult() bool {
	return c.IncludeAdult == nil || *c.IncludeAdult
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type SessionConfig struct {
	Backend string `toml:"backend"` // sqlite, redis or memory
	Key     string `toml:"key"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type SearchConfig struct {
	Debounce     time.Duration `toml:"debounce"`
	DefaultQuery string        `toml:"default_query"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

type EventsConfig struct {
	Persist   bool          `toml:"persist"`
	Retention time.Duration `toml:"retention"`
}

// Load reads, substitutes, defaults and validates the configuration file.
// A .env file next to the config is loaded first; it never overrides
// variables already set in the environment.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := newConfigError(path, missing, cfg.Validate())
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation loads the config without running validation or
// failing on unresolved variables.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, missing, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = "https://api.themoviedb.org"
	}
	if c.TMDB.Language == "" {
		c.TMDB.Language = "en-US"
	}
	if c.TMDB.Timeout == 0 {
		c.TMDB.Timeout = 10 * time.Second
	}
	if c.TMDB.CacheTTL == 0 {
		c.TMDB.CacheTTL = 24 * time.Hour
	}
	if c.TMDB.RequestsPerSecond > 0 && c.TMDB.Burst == 0 {
		c.TMDB.Burst = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/reelrate.db"
	}
	if c.Session.Backend == "" {
		c.Session.Backend = BackendSQLite
	}
	if c.Session.Key == "" {
		c.Session.Key = "guestSessionInfo"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "reelrate:"
	}
	if c.Search.Debounce == 0 {
		c.Search.Debounce = 1250 * time.Millisecond
	}
	if c.Search.DefaultQuery == "" {
		c.Search.DefaultQuery = "return"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Events.Retention == 0 {
		c.Events.Retention = 30 * 24 * time.Hour
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:[-?])([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unresolved references are left in place and reported in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, op, arg := parts[1], parts[2], parts[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return out, missing
}
