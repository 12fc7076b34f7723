// Package reconcile derives the minimal SQL mutations that fold one
// change record into the versioned history store.
//
// The reconciler reads the store's persisted state and emits three
// kinds of statement:
//
//   - exactly one ledger insert for the change itself, unconditional,
//     so a re-run recognizes the change as already processed
//   - one cyclist insert per previously-unseen external id
//   - one history insert per stat assertion whose value differs from
//     the current highest-version recorded value (or that has no
//     recorded value yet)
//
// The history insert's version is a COALESCE(MAX(version)+1, 1)
// subquery evaluated at execution time against the persisted state,
// not a counter carried across statements in the same pass. Two
// entries in one change touching the same (cyclist, stat) would both
// see the same persisted state during the differs-check; that shape is
// not structurally prevented and is documented in DESIGN.md.
package reconcile

import (
	"context"

	"github.com/pelotonworks/stattrack/internal/record"
	"github.com/pelotonworks/stattrack/internal/stat"
)

// StoreReader is the read surface the reconciler needs from the
// history store.
type StoreReader interface {
	// HasCyclist reports whether an identity row exists for the id.
	HasCyclist(ctx context.Context, pcmID string) (bool, error)

	// LatestStatValue returns the current highest-version value for a
	// (cyclist, stat) pair; ok is false when none exists.
	LatestStatValue(ctx context.Context, pcmID, statName string) (value float64, ok bool, err error)
}

// Result carries the derived mutations for one change record.
type Result struct {
	// Ledger holds the change insert followed by any cyclist inserts
	// (the artifact's "ledger + cyclist" section).
	Ledger []Statement

	// History holds the versioned stat history inserts.
	History []Statement

	// Mutations counts emitted history inserts. Zero is a successful
	// no-op replay, not a failure.
	Mutations int
}

// Reconcile computes the mutations for a validated change record.
// A record whose assertions all match the persisted latest values
// yields a Result with only the ledger insert and Mutations == 0.
func Reconcile(ctx context.Context, ch *record.Change, reads StoreReader) (*Result, error) {
	res := &Result{
		Ledger: []Statement{ledgerInsert(ch)},
	}

	// Cyclist inserts, first-occurrence order, at most one per id even
	// when the id appears in several assertion entries.
	seen := make(map[string]bool)
	for _, a := range ch.Assertions {
		if seen[a.PCMID] {
			continue
		}
		seen[a.PCMID] = true

		exists, err := reads.HasCyclist(ctx, a.PCMID)
		if err != nil {
			return nil, err
		}
		if !exists {
			res.Ledger = append(res.Ledger, cyclistInsert(a))
		}
	}

	// History inserts, canonical stat key order within each assertion.
	for _, a := range ch.Assertions {
		for _, key := range stat.Keys {
			value, asserted := a.Value(key)
			if !asserted {
				continue
			}

			current, ok, err := reads.LatestStatValue(ctx, a.PCMID, key)
			if err != nil {
				return nil, err
			}
			if ok && current == value {
				// Unchanged value: no new version.
				continue
			}

			res.History = append(res.History, historyInsert(ch.Identifier, a.PCMID, key, value))
			res.Mutations++
		}
	}

	return res, nil
}

func ledgerInsert(ch *record.Change) Statement {
	return Statement{
		SQL: `INSERT INTO tbl_changes (name, description, author, date)
VALUES (?, ?, ?, ?)`,
		Args: []any{ch.Identifier, ch.Description, ch.Author, ch.Date},
	}
}

func cyclistInsert(a record.Assertion) Statement {
	var firstCycling any
	if a.FirstCyclingID != "" {
		firstCycling = a.FirstCyclingID
	}
	return Statement{
		SQL: `INSERT INTO tbl_cyclists (pcm_id, name, first_cycling_id)
VALUES (?, ?, ?)`,
		Args: []any{a.PCMID, a.Name, firstCycling},
	}
}

func historyInsert(changeName, pcmID, statName string, value float64) Statement {
	return Statement{
		SQL: `INSERT INTO tbl_change_stat_history (cyclist_id, change_id, stat_name, stat_value, version)
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
)`,
		Args: []any{pcmID, changeName, statName, value, pcmID, statName},
	}
}
