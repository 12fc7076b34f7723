package store

import (
	"context"
	"testing"
)

func TestAppliedChanges(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	applied, err := s.AppliedChanges(ctx)
	if err != nil {
		t.Fatalf("AppliedChanges() failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("fresh store should have no applied changes, got %v", applied)
	}

	seedChange(t, s, "2025-08-11-tdf")
	seedChange(t, s, "2025-08-18-vuelta")

	applied, err = s.AppliedChanges(ctx)
	if err != nil {
		t.Fatalf("AppliedChanges() failed: %v", err)
	}
	if !applied["2025-08-11-tdf"] || !applied["2025-08-18-vuelta"] {
		t.Errorf("AppliedChanges() = %v, want both seeded changes", applied)
	}
}

func TestHasCyclist(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	exists, err := s.HasCyclist(ctx, "1001")
	if err != nil {
		t.Fatalf("HasCyclist() failed: %v", err)
	}
	if exists {
		t.Error("HasCyclist() on empty store = true")
	}

	seedCyclist(t, s, "1001", "Rider One")

	exists, err = s.HasCyclist(ctx, "1001")
	if err != nil {
		t.Fatalf("HasCyclist() failed: %v", err)
	}
	if !exists {
		t.Error("HasCyclist() after insert = false")
	}
}

func TestLatestStatValue_VersionProgression(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedChange(t, s, "c1")
	seedChange(t, s, "c2")
	seedCyclist(t, s, "1001", "Rider One")

	// No value yet
	_, ok, err := s.LatestStatValue(ctx, "1001", "mo")
	if err != nil {
		t.Fatalf("LatestStatValue() failed: %v", err)
	}
	if ok {
		t.Error("LatestStatValue() on empty history reported a value")
	}

	seedHistory(t, s, "1001", "c1", "mo", 80)
	seedHistory(t, s, "1001", "c2", "mo", 82)

	value, ok, err := s.LatestStatValue(ctx, "1001", "mo")
	if err != nil {
		t.Fatalf("LatestStatValue() failed: %v", err)
	}
	if !ok || value != 82 {
		t.Errorf("LatestStatValue() = (%v, %v), want (82, true)", value, ok)
	}

	versions, err := s.StatVersions(ctx, "1001", "mo")
	if err != nil {
		t.Fatalf("StatVersions() failed: %v", err)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Errorf("StatVersions() = %v, want [1 2]", versions)
	}
}

func TestLatestStatValue_IsolatedPerStat(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedChange(t, s, "c1")
	seedCyclist(t, s, "1001", "Rider One")
	seedHistory(t, s, "1001", "c1", "mo", 80)

	_, ok, err := s.LatestStatValue(ctx, "1001", "fla")
	if err != nil {
		t.Fatalf("LatestStatValue() failed: %v", err)
	}
	if ok {
		t.Error("LatestStatValue() leaked a value across stat keys")
	}
}

func TestCounts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedChange(t, s, "c1")
	seedCyclist(t, s, "1001", "Rider One")
	seedCyclist(t, s, "1002", "Rider Two")
	seedHistory(t, s, "1001", "c1", "mo", 80)
	seedHistory(t, s, "1002", "c1", "mo", 75)
	seedHistory(t, s, "1002", "c1", "tt", 68)

	cyclists, err := s.CountCyclists(ctx)
	if err != nil {
		t.Fatalf("CountCyclists() failed: %v", err)
	}
	if cyclists != 2 {
		t.Errorf("CountCyclists() = %d, want 2", cyclists)
	}

	entries, err := s.CountHistoryEntries(ctx)
	if err != nil {
		t.Fatalf("CountHistoryEntries() failed: %v", err)
	}
	if entries != 3 {
		t.Errorf("CountHistoryEntries() = %d, want 3", entries)
	}
}
