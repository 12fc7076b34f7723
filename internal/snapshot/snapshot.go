// Package snapshot maintains the per-namespace current-state
// projection (stats.yaml).
//
// The snapshot is a pure projection of the history store's latest
// versions, maintained incrementally: each applied change record is
// merged into the existing document and the document is rewritten in
// full.
//
// Layout: this package reads and writes the nested layout only - a
// mapping from cyclist id to {name, first_cycling_id?, stats?}, with
// the stat values inside a nested stats mapping. The historical
// flattened layout (stat keys at the cyclist's top level) is not
// supported; see DESIGN.md.
//
// Ordering is stable: top-level keys sorted by the id's numeric value,
// per-cyclist fields in the order name, first_cycling_id, stats, and
// the stats sub-mapping emitted flow-style in canonical key order.
package snapshot

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pelotonworks/stattrack/internal/record"
	"github.com/pelotonworks/stattrack/internal/stat"
)

// Document is the in-memory snapshot for one namespace, keyed by the
// cyclist's external id as a string.
type Document struct {
	Cyclists map[string]*Cyclist
}

// Cyclist is one projected cyclist record.
type Cyclist struct {
	Name           string
	FirstCyclingID string // "" when unknown
	Stats          map[string]float64
}

// Diff summarizes one projection pass. Err is set instead of returning
// an error so a failed projection never aborts the change's store-side
// mutations.
type Diff struct {
	CyclistsProcessed int    `json:"cyclists_processed"`
	CyclistsAdded     int    `json:"cyclists_added"`
	StatsUpdated      int    `json:"stats_updated"`
	Err               string `json:"error,omitempty"`
}

// New returns an empty snapshot document.
func New() *Document {
	return &Document{Cyclists: make(map[string]*Cyclist)}
}

// Apply merges one change record into the document.
//
// Per-cyclist precedence: name is change-wins (always overwritten);
// first_cycling_id is overwritten only when the assertion supplies
// one, otherwise carried forward; each asserted stat value overwrites,
// counting toward StatsUpdated only when it actually differs.
func (d *Document) Apply(ch *record.Change) Diff {
	var diff Diff

	for _, a := range ch.Assertions {
		c, exists := d.Cyclists[a.PCMID]
		if !exists {
			c = &Cyclist{Stats: make(map[string]float64)}
			d.Cyclists[a.PCMID] = c
			diff.CyclistsAdded++
		}
		if c.Stats == nil {
			c.Stats = make(map[string]float64)
		}

		c.Name = a.Name
		if a.FirstCyclingID != "" {
			c.FirstCyclingID = a.FirstCyclingID
		}

		for _, key := range stat.Keys {
			value, asserted := a.Value(key)
			if !asserted {
				continue
			}
			old, had := c.Stats[key]
			if !had || old != value {
				diff.StatsUpdated++
			}
			c.Stats[key] = value
		}

		diff.CyclistsProcessed++
	}

	return diff
}

// Project loads the snapshot at path, applies the change record, and
// rewrites the file. Failures are reported inside the returned Diff
// with zeroed counts, never as an error.
func Project(path string, ch *record.Change) Diff {
	doc, err := Load(path)
	if err != nil {
		return Diff{Err: err.Error()}
	}

	diff := doc.Apply(ch)

	if err := doc.WriteFile(path); err != nil {
		return Diff{Err: err.Error()}
	}
	return diff
}

// sortedIDs returns the cyclist ids ordered by numeric value, with any
// non-numeric ids after the numeric ones in plain string order.
func (d *Document) sortedIDs() []string {
	ids := make([]string, 0, len(d.Cyclists))
	for id := range d.Cyclists {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aerr := strconv.ParseInt(ids[i], 10, 64)
		b, berr := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

// validate rejects documents that would serialize ambiguously.
func (d *Document) validate() error {
	for id, c := range d.Cyclists {
		if c == nil {
			return fmt.Errorf("cyclist %q: nil record", id)
		}
		for key := range c.Stats {
			if !stat.IsKey(key) {
				return fmt.Errorf("cyclist %q: unknown stat key %q", id, key)
			}
		}
	}
	return nil
}

// WriteFile rewrites the snapshot document at path in full.
func (d *Document) WriteFile(path string) error {
	if err := d.validate(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	data, err := d.MarshalYAML()
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
