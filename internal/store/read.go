package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AppliedChanges returns the set of change identifiers already recorded
// in the ledger. The set difference against the change directories is
// the ingestion work queue.
func (s *Store) AppliedChanges(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tbl_changes`)
	if err != nil {
		return nil, fmt.Errorf("query applied changes: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan change name: %w", err)
		}
		applied[name] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied changes: %w", err)
	}

	return applied, nil
}

// HasCyclist reports whether a cyclist row exists for the external id.
func (s *Store) HasCyclist(ctx context.Context, pcmID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM tbl_cyclists WHERE pcm_id = ?`, pcmID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query cyclist %q: %w", pcmID, err)
	}
	return true, nil
}

// LatestStatValue returns the highest-version recorded value for a
// (cyclist, stat) pair. ok is false when no history entry exists yet.
func (s *Store) LatestStatValue(ctx context.Context, pcmID, statName string) (value float64, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT csh.stat_value
		FROM tbl_change_stat_history csh
		JOIN tbl_cyclists c ON csh.cyclist_id = c.id
		WHERE c.pcm_id = ? AND csh.stat_name = ?
		ORDER BY csh.version DESC LIMIT 1
	`, pcmID, statName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query latest stat value (%s, %s): %w", pcmID, statName, err)
	}
	return value, true, nil
}

// StatVersions returns the recorded version sequence for a
// (cyclist, stat) pair in ascending order.
func (s *Store) StatVersions(ctx context.Context, pcmID, statName string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT csh.version
		FROM tbl_change_stat_history csh
		JOIN tbl_cyclists c ON csh.cyclist_id = c.id
		WHERE c.pcm_id = ? AND csh.stat_name = ?
		ORDER BY csh.version ASC
	`, pcmID, statName)
	if err != nil {
		return nil, fmt.Errorf("query stat versions (%s, %s): %w", pcmID, statName, err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return versions, nil
}

// CountHistoryEntries returns the total number of stat history rows.
func (s *Store) CountHistoryEntries(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tbl_change_stat_history`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history entries: %w", err)
	}
	return n, nil
}

// CountCyclists returns the number of cyclist identity rows.
func (s *Store) CountCyclists(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tbl_cyclists`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cyclists: %w", err)
	}
	return n, nil
}
