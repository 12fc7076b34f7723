package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a fresh on-disk store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracking_db.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedChange inserts a ledger row.
func seedChange(t *testing.T, s *Store, name string) {
	t.Helper()
	err := s.Exec(context.Background(),
		`INSERT INTO tbl_changes (name, description, author, date) VALUES (?, ?, ?, ?)`,
		name, "test change", "Unknown", "2025-01-01")
	if err != nil {
		t.Fatalf("seeding change %q failed: %v", name, err)
	}
}

// seedCyclist inserts an identity row.
func seedCyclist(t *testing.T, s *Store, pcmID, name string) {
	t.Helper()
	err := s.Exec(context.Background(),
		`INSERT INTO tbl_cyclists (pcm_id, name, first_cycling_id) VALUES (?, ?, NULL)`,
		pcmID, name)
	if err != nil {
		t.Fatalf("seeding cyclist %q failed: %v", pcmID, err)
	}
}

// seedHistory inserts a history row with the next version for the
// (cyclist, stat) pair.
func seedHistory(t *testing.T, s *Store, pcmID, changeName, statName string, value float64) {
	t.Helper()
	err := s.Exec(context.Background(), `
		INSERT INTO tbl_change_stat_history (cyclist_id, change_id, stat_name, stat_value, version)
		VALUES (
			(SELECT id FROM tbl_cyclists WHERE pcm_id = ?),
			(SELECT id FROM tbl_changes WHERE name = ?),
			?,
			?,
			COALESCE(
				(SELECT MAX(version) + 1
				 FROM tbl_change_stat_history csh
				 JOIN tbl_cyclists c ON csh.cyclist_id = c.id
				 WHERE c.pcm_id = ? AND csh.stat_name = ?),
				1
			)
		)`, pcmID, changeName, statName, value, pcmID, statName)
	if err != nil {
		t.Fatalf("seeding history for %q/%s failed: %v", pcmID, statName, err)
	}
}
