// Package store provides the SQLite-backed history store for one
// namespace.
//
// The store owns three tables and a view:
//   - tbl_changes: the ledger of applied change identifiers, used for
//     replay detection (name is UNIQUE)
//   - tbl_cyclists: one identity row per external cyclist id
//     (pcm_id is UNIQUE; name is first-write-wins at this layer)
//   - tbl_change_stat_history: the append-only versioned stat ledger,
//     UNIQUE(cyclist_id, stat_name, version)
//   - vw_tracking_export: latest value per (cyclist, stat) pivoted into
//     one column per stat key, for CSV export
//
// # Invariants
//
//   - History rows are append-only; nothing updates or deletes them.
//   - For a fixed (cyclist, stat), versions are 1, 2, 3, ... with no
//     gaps; the highest version is the current value.
//   - All lookup queries are parameterized. Literal SQL enters the
//     database only through ExecScript, which runs reviewed artifact
//     statements one transaction per change.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
