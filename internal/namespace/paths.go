// Package namespace resolves the well-known on-disk layout of a data
// namespace and discovers namespaces and their change directories.
//
// Each namespace owns an isolated dataset under <data root>/<name>:
//
//	<name>/changes/<change-id>/change.yaml   authored change records
//	<name>/changes/<change-id>/inserts.sql   generated SQL artifact
//	<name>/stats.yaml                        current-snapshot projection
//	<name>/tracking_db.sqlite                versioned history store
//	<name>/init_cdb.sqlite                   optional bootstrap database
package namespace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// PathKind identifies a well-known per-namespace path.
type PathKind int

const (
	// Root is the namespace root directory.
	Root PathKind = iota
	// ChangesDir holds one subdirectory per authored change.
	ChangesDir
	// StatsFile is the snapshot document (stats.yaml).
	StatsFile
	// TrackingDB is the SQLite history store.
	TrackingDB
	// CDB is the optional init_cdb.sqlite bootstrap database.
	CDB
)

// Change file names recognized inside a change directory, in lookup order.
var changeFileNames = []string{"change.yaml", "change.yml"}

// ArtifactFileName is the generated SQL artifact written next to a
// change record.
const ArtifactFileName = "inserts.sql"

// ExportFileName is the CSV dump of the tracking export view.
const ExportFileName = "tracking_export.csv"

// Layout resolves paths for namespaces under a single data root.
type Layout struct {
	dataRoot string
}

// NewLayout returns a Layout rooted at dataRoot.
func NewLayout(dataRoot string) *Layout {
	return &Layout{dataRoot: dataRoot}
}

// DataRoot returns the directory all namespaces live under.
func (l *Layout) DataRoot() string {
	return l.dataRoot
}

// Path resolves a well-known path for the given namespace.
func (l *Layout) Path(ns string, kind PathKind) string {
	root := filepath.Join(l.dataRoot, ns)
	switch kind {
	case Root:
		return root
	case ChangesDir:
		return filepath.Join(root, "changes")
	case StatsFile:
		return filepath.Join(root, "stats.yaml")
	case TrackingDB:
		return filepath.Join(root, "tracking_db.sqlite")
	case CDB:
		return filepath.Join(root, "init_cdb.sqlite")
	}
	panic(fmt.Sprintf("namespace: unknown path kind %d", kind))
}

// ArtifactPath returns the inserts.sql path for a change directory.
func (l *Layout) ArtifactPath(ns, changeName string) string {
	return filepath.Join(l.Path(ns, ChangesDir), changeName, ArtifactFileName)
}

// ExportPath returns the tracking_export.csv path for a namespace.
func (l *Layout) ExportPath(ns string) string {
	return filepath.Join(l.Path(ns, Root), ExportFileName)
}

// List returns all namespace names under the data root, sorted.
// A missing data root yields an empty list, not an error.
func (l *Layout) List() ([]string, error) {
	entries, err := os.ReadDir(l.dataRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListChangeDirs returns the change directory names for a namespace in
// directory-listing order. A missing changes directory yields an empty
// list, not an error.
func (l *Layout) ListChangeDirs(ns string) ([]string, error) {
	entries, err := os.ReadDir(l.Path(ns, ChangesDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list change dirs for %q: %w", ns, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// FindChangeFile locates the change record document inside a change
// directory, trying change.yaml then change.yml. Returns "" if neither
// exists.
func (l *Layout) FindChangeFile(ns, changeName string) string {
	dir := filepath.Join(l.Path(ns, ChangesDir), changeName)
	for _, name := range changeFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// EnsureDirs creates the namespace root and changes directory.
// Idempotent.
func (l *Layout) EnsureDirs(ns string) error {
	if err := os.MkdirAll(l.Path(ns, ChangesDir), 0o755); err != nil {
		return fmt.Errorf("ensure namespace dirs for %q: %w", ns, err)
	}
	return nil
}
