// Package engine orchestrates the two phases of the tracking
// pipeline across namespaces.
//
// The process phase discovers unprocessed change records, derives their
// SQL mutations, executes them against the namespace's history store,
// writes the reviewable inserts.sql artifact, and folds the change into
// the snapshot projection. The apply phase replays generated artifacts
// into a history store that does not carry them yet (typically a UAT
// copy) and exports the tracking view to CSV.
//
// A failure in one namespace never aborts the batch; a failure in one
// change never aborts its namespace.
package engine

import (
	"log/slog"

	"github.com/pelotonworks/stattrack/internal/namespace"
)

// Engine runs pipeline phases over a namespace layout.
type Engine struct {
	layout *namespace.Layout
	log    *slog.Logger
}

// New returns an Engine over the given layout. A nil logger falls back
// to slog's default.
func New(layout *namespace.Layout, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{layout: layout, log: logger}
}
