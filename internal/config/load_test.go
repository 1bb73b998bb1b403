package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[tmdb]
api_token = "token"
language = "de-DE"
include_adult = false
requests_per_second = 5
timeout = "3s"

[search]
debounce = "500ms"
default_query = "alien"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.TMDB.APIToken)
	assert.Equal(t, "de-DE", cfg.TMDB.Language)
	assert.False(t, cfg.TMDB.Adult())
	assert.Equal(t, 5.0, cfg.TMDB.RequestsPerSecond)
	assert.Equal(t, 1, cfg.TMDB.Burst)
	assert.Equal(t, 3*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "alien", cfg.Search.DefaultQuery)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[tmdb]
api_token = "token"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.themoviedb.org", cfg.TMDB.BaseURL)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.True(t, cfg.TMDB.Adult())
	assert.Equal(t, 10*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.TMDB.CacheTTL)
	assert.Equal(t, "./data/reelrate.db", cfg.Database.Path)
	assert.Equal(t, BackendSQLite, cfg.Session.Backend)
	assert.Equal(t, "guestSessionInfo", cfg.Session.Key)
	assert.Equal(t, 1250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "return", cfg.Search.DefaultQuery)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Events.Persist)
}

func TestLoad_MissingEnvVar(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[tmdb]
api_token = "${REELRATE_TEST_MISSING_TOKEN}"
`)

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Missing, "REELRATE_TEST_MISSING_TOKEN")
	assert.Contains(t, err.Error(), "REELRATE_TEST_MISSING_TOKEN")
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[tmdb]
api_token = "token"

[session]
backend = "etcd"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.backend")
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `[tmdb`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadWithoutValidation(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[log]
level = "verbose"
`)

	cfg, err := LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, "verbose", cfg.Log.Level)
}

func TestLoad_EnvVarDefault(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[tmdb]
api_token = "token"

[database]
path = "${REELRATE_TEST_UNSET_DATA:-/var/lib/reelrate}/reelrate.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/reelrate/reelrate.db", cfg.Database.Path)
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REELRATE_TEST_DOTENV_TOKEN=from-dotenv\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("REELRATE_TEST_DOTENV_TOKEN") })

	path := writeConfig(t, dir, `
[tmdb]
api_token = "${REELRATE_TEST_DOTENV_TOKEN}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.TMDB.APIToken)
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REELRATE_TEST_OVERRIDE=from-dotenv\n"), 0600))
	t.Setenv("REELRATE_TEST_OVERRIDE", "from-env")

	path := writeConfig(t, dir, `
[tmdb]
api_token = "${REELRATE_TEST_OVERRIDE}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TMDB.APIToken)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "return", cfg.Search.DefaultQuery)
	assert.Equal(t, BackendSQLite, cfg.Session.Backend)
	assert.Equal(t, []string{"tmdb.api_token: required"}, cfg.Validate())
}
