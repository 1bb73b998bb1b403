package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reelrate", "config.toml")

	require.NoError(t, WriteDefault(path, false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[tmdb]")
	assert.Contains(t, string(content), "[search]")
	assert.Contains(t, string(content), "${TMDB_API_TOKEN}")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteDefault_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))

	err := WriteDefault(path, false)
	require.ErrorIs(t, err, ErrExists)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(content))

	require.NoError(t, WriteDefault(path, true))
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[tmdb]")
}

func TestConfig_Encode(t *testing.T) {
	cfg := Default()
	cfg.TMDB.APIToken = "secret-token"
	cfg.Redis.Password = "secret-password"
	cfg.Search.DefaultQuery = "alien"

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))

	out := buf.String()
	assert.NotContains(t, out, "secret-token")
	assert.NotContains(t, out, "secret-password")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "alien")

	var decoded Config
	_, err := toml.Decode(out, &decoded)
	require.NoError(t, err)
	assert.Equal(t, redacted, decoded.TMDB.APIToken)
	assert.Equal(t, "alien", decoded.Search.DefaultQuery)

	// the original is untouched
	assert.Equal(t, "secret-token", cfg.TMDB.APIToken)
}

func TestConfig_RedactedKeepsEmptySecrets(t *testing.T) {
	cfg := Default()
	r := cfg.Redacted()
	assert.Empty(t, r.TMDB.APIToken)
	assert.Empty(t, r.Redis.Password)
}
