package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := Default()
	cfg.TMDB.APIToken = "token"
	return cfg
}

func TestValidate_MinimalValid(t *testing.T) {
	errs := validConfig().Validate()
	assert.Empty(t, errs, "expected no errors for minimal valid config")
}

func TestValidate_MissingToken(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.APIToken = "  "
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "tmdb.api_token"), "expected token error, got %v", errs)
}

func TestValidate_BadBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.BaseURL = "api.themoviedb.org"
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "tmdb.base_url"), "expected base_url error, got %v", errs)
}

func TestValidate_NegativeRate(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.RequestsPerSecond = -1
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "requests_per_second"), "expected rate error, got %v", errs)
}

func TestValidate_InvalidBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Backend = "etcd"
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "session.backend"), "expected backend error, got %v", errs)
}

func TestValidate_RedisNeedsAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Backend = BackendRedis
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "redis.addr"), "expected redis.addr error, got %v", errs)

	cfg.Redis.Addr = "localhost:6379"
	assert.Empty(t, cfg.Validate())
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "log.level"), "expected log.level error, got %v", errs)
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Format = "xml"
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "log.format"), "expected log.format error, got %v", errs)
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Session: SessionConfig{Backend: "etcd"},
		Log:     LogConfig{Level: "verbose"},
	}
	errs := cfg.Validate()
	assert.Len(t, errs, 3)
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
