package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalid matches every *ConfigError with errors.Is.
var ErrInvalid = errors.New("invalid config")

// ConfigError collects every problem found while loading one file, so a
// single `config test` run reports all of them.
type ConfigError struct {
	Path    string
	Missing []string // unset ${VAR} references, "VAR" or "VAR: message"
	Errors  []string // validation failures, "field: reason"
}

func newConfigError(path string, missing, errs []string) *ConfigError {
	missing = slices.Clone(missing)
	slices.Sort(missing)
	return &ConfigError{Path: path, Missing: slices.Compact(missing), Errors: errs}
}

func (e *ConfigError) Error() string {
	problems := e.Problems()
	if len(problems) == 0 {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(ErrInvalid.Error())
	if len(problems) > 1 {
		fmt.Fprintf(&b, " (%d problems)", len(problems))
	}
	b.WriteString(": ")
	b.WriteString(strings.Join(problems, "; "))
	return b.String()
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalid }

// Problems returns one line per problem, unset variables first.
func (e *ConfigError) Problems() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Errors))
	for _, m := range e.Missing {
		if name, msg, ok := strings.Cut(m, ": "); ok {
			out = append(out, fmt.Sprintf("${%s} is not set: %s", name, msg))
			continue
		}
		out = append(out, fmt.Sprintf("${%s} is not set", m))
	}
	return append(out, e.Errors...)
}

// HasErrors reports whether any problem was recorded.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
