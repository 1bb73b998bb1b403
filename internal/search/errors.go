// Package search turns query input into catalog searches: debounced typing,
// page navigation and the default query shown on the search tab.
package search

import "errors"

var (
	// ErrSuperseded indicates a newer search started before this one
	// returned. Its result was not applied.
	ErrSuperseded = errors.New("search superseded by a newer request")

	// ErrClosed indicates the orchestrator was closed.
	ErrClosed = errors.New("search orchestrator closed")
)
