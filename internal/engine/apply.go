package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/pelotonworks/stattrack/internal/namespace"
	"github.com/pelotonworks/stattrack/internal/reconcile"
	"github.com/pelotonworks/stattrack/internal/store"
)

// ApplyNamespace runs the apply phase for one namespace: every change
// directory whose name is missing from the target store's ledger has
// its generated inserts.sql artifact executed, oldest change first,
// each inside its own transaction. A change without an artifact is
// skipped with a warning; a failing artifact is rolled back and
// reported as failed. Either way the remaining queue still runs.
// Afterwards the tracking export view is dumped to CSV.
//
// Against the store the process phase wrote, the queue is empty and the
// phase reduces to the export. Its purpose is replaying artifacts into
// a store that does not carry them, such as a UAT copy.
func (e *Engine) ApplyNamespace(ctx context.Context, ns string) *NamespaceSummary {
	sum := &NamespaceSummary{Namespace: ns}

	st, err := store.OpenExisting(e.layout.Path(ns, namespace.TrackingDB))
	if err != nil {
		sum.Err = err.Error()
		return sum
	}
	defer st.Close()

	pending, err := e.pendingChanges(ctx, st, ns)
	if err != nil {
		sum.Err = err.Error()
		return sum
	}

	for _, name := range pending {
		sum.record(e.applyArtifact(ctx, st, ns, name))
	}

	rows, err := st.ExportCSV(ctx, e.layout.ExportPath(ns))
	if err != nil {
		sum.Err = fmt.Sprintf("export %q: %v", ns, err)
		return sum
	}
	sum.ExportedRows = rows

	e.log.Info("namespace applied",
		"namespace", ns,
		"applied", sum.Applied,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"exported_rows", rows)
	return sum
}

// applyArtifact replays one change's generated artifact.
func (e *Engine) applyArtifact(ctx context.Context, st *store.Store, ns, name string) ChangeOutcome {
	out := ChangeOutcome{Name: name}

	path := e.layout.ArtifactPath(ns, name)
	content, err := os.ReadFile(path)
	if err != nil {
		out.Mutations = FailedMutations
		out.Skipped = true
		out.Error = fmt.Sprintf("no artifact for %q: %v", name, err)
		e.log.Warn("change has no artifact, skipping",
			"namespace", ns, "change", name)
		return out
	}

	stmts := reconcile.SplitScript(string(content))
	if len(stmts) == 0 {
		out.Mutations = FailedMutations
		out.Error = fmt.Sprintf("artifact for %q contains no statements", name)
		return out
	}

	if err := st.ExecScript(ctx, stmts); err != nil {
		out.Mutations = FailedMutations
		out.Error = err.Error()
		e.log.Error("artifact rolled back",
			"namespace", ns, "change", name, "error", err)
		return out
	}

	out.Mutations = countHistoryInserts(stmts)
	e.log.Info("artifact applied",
		"namespace", ns, "change", name, "statements", len(stmts))
	return out
}

// countHistoryInserts counts the versioned history statements in an
// artifact's statement list, so the apply phase reports the same
// mutation number the process phase did.
func countHistoryInserts(stmts []string) int {
	n := 0
	for _, s := range stmts {
		if strings.HasPrefix(s, "INSERT INTO tbl_change_stat_history") {
			n++
		}
	}
	return n
}

// ApplyAll runs the apply phase over every namespace under the data
// root, with the same isolation guarantees as ProcessAll.
func (e *Engine) ApplyAll(ctx context.Context) (*BatchSummary, error) {
	names, err := e.layout.List()
	if err != nil {
		return nil, err
	}

	batch := newBatchSummary(uuid.NewString())
	e.log.Info("apply batch started", "run_id", batch.RunID, "namespaces", len(names))

	for _, ns := range names {
		batch.record(e.ApplyNamespace(ctx, ns))
	}

	e.log.Info("apply batch finished",
		"run_id", batch.RunID,
		"successful", len(batch.Successful),
		"failed", len(batch.Failed))
	return batch, nil
}
