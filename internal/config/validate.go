package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "": true,
}

var validBackends = map[string]bool{
	BackendSQLite: true, BackendRedis: true, BackendMemory: true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// TMDB
	if strings.TrimSpace(c.TMDB.APIToken) == "" {
		errs = append(errs, "tmdb.api_token: required")
	}
	if c.TMDB.BaseURL != "" {
		if u, err := url.Parse(c.TMDB.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("tmdb.base_url: must be an absolute URL, got %q", c.TMDB.BaseURL))
		}
	}
	if c.TMDB.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.requests_per_second: must not be negative, got %v", c.TMDB.RequestsPerSecond))
	}
	if c.TMDB.Timeout < 0 {
		errs = append(errs, "tmdb.timeout: must not be negative")
	}

	// Session storage
	if !validBackends[c.Session.Backend] {
		errs = append(errs, fmt.Sprintf("session.backend: must be one of sqlite, redis, memory; got %q", c.Session.Backend))
	}
	if c.Session.Backend == BackendRedis && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr: required when session.backend is redis")
	}

	// Search
	if c.Search.Debounce < 0 {
		errs = append(errs, "search.debounce: must not be negative")
	}

	// Logging
	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format: must be text or json; got %q", c.Log.Format))
	}

	return errs
}
