package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed default_config.toml
var defaultConfig string

// ErrExists is returned by WriteDefault when the target file is present and
// overwrite is false.
var ErrExists = errors.New("config file already exists")

// redacted replaces secrets in Encode output.
const redacted = "<redacted>"

// WriteDefault writes the commented template to path, creating parent
// directories. Users put their TMDB token in this file, so it is written
// readable by the owner only.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}
	return writeFileAtomic(path, []byte(defaultConfig), 0600)
}

// Encode writes the effective config as TOML with secrets masked.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c.Redacted())
}

// Redacted returns a copy with the TMDB token and Redis password masked.
// Empty values stay empty so a missing secret is still visible.
func (c *Config) Redacted() *Config {
	r := *c
	r.TMDB.APIToken = mask(c.TMDB.APIToken)
	r.Redis.Password = mask(c.Redis.Password)
	return &r
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so a crash never leaves a half-written config behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".reelrate-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
