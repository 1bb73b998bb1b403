package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvConfigPath names the variable that points at an explicit config file.
const EnvConfigPath = "REELRATE_CONFIG"

// NotFoundError is returned by Discover when none of the candidate files
// exist.
type NotFoundError struct {
	Checked []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no config file found (checked %s); run 'reelrate config init' to create one",
		strings.Join(e.Checked, ", "))
}

// DefaultPath returns the per-user config path under $XDG_CONFIG_HOME,
// falling back to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "reelrate", "config.toml")
}

// Candidates lists the files Discover tries, in order, when no explicit
// path is configured.
func Candidates() []string {
	return []string{"reelrate.toml", "config.toml", DefaultPath()}
}

// Discover picks the config file to load. REELRATE_CONFIG wins when set,
// either in the environment or in a .env file in the working directory.
// Otherwise the first existing file from Candidates is used.
func Discover() (string, error) {
	explicit, err := explicitPath()
	if err != nil {
		return "", err
	}
	if explicit != "" {
		if err := checkFile(explicit); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, explicit, err)
		}
		return explicit, nil
	}

	candidates := Candidates()
	for _, p := range candidates {
		if checkFile(p) == nil {
			return p, nil
		}
	}
	return "", &NotFoundError{Checked: candidates}
}

// explicitPath reads REELRATE_CONFIG from the environment, then from ./.env.
// The .env file is only read here; Load decides what gets exported.
func explicitPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	env, err := godotenv.Read(".env")
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading .env: %w", err)
	}
	return env[EnvConfigPath], nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
