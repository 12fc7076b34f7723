package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/pelotonworks/stattrack/internal/cdb"
	"github.com/pelotonworks/stattrack/internal/namespace"
	"github.com/pelotonworks/stattrack/internal/reconcile"
	"github.com/pelotonworks/stattrack/internal/record"
	"github.com/pelotonworks/stattrack/internal/snapshot"
	"github.com/pelotonworks/stattrack/internal/store"
)

// InitNamespace prepares a namespace for use: directory skeleton,
// history store with current schema, and an initial snapshot. When an
// init_cdb.sqlite bootstrap database is present and no snapshot exists
// yet, the snapshot is seeded from it; otherwise an empty snapshot is
// written.
func (e *Engine) InitNamespace(ctx context.Context, ns string) error {
	if err := e.layout.EnsureDirs(ns); err != nil {
		return err
	}

	st, err := store.Open(e.layout.Path(ns, namespace.TrackingDB))
	if err != nil {
		return fmt.Errorf("init %q: %w", ns, err)
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("init %q: %w", ns, err)
	}

	return e.ensureSnapshot(ctx, ns)
}

// ensureSnapshot writes the initial stats.yaml if the namespace does
// not have one, bootstrapping from the cdb when available.
func (e *Engine) ensureSnapshot(ctx context.Context, ns string) error {
	statsPath := e.layout.Path(ns, namespace.StatsFile)
	if _, err := os.Stat(statsPath); err == nil {
		return nil
	}

	doc := snapshot.New()
	cdbPath := e.layout.Path(ns, namespace.CDB)
	if _, err := os.Stat(cdbPath); err == nil {
		imported, err := cdb.Import(ctx, cdbPath)
		if err != nil {
			return fmt.Errorf("bootstrap snapshot for %q: %w", ns, err)
		}
		doc = imported
		e.log.Info("snapshot bootstrapped from cdb",
			"namespace", ns, "cyclists", len(doc.Cyclists))
	}

	if err := doc.WriteFile(statsPath); err != nil {
		return fmt.Errorf("bootstrap snapshot for %q: %w", ns, err)
	}
	return nil
}

// ProcessNamespace runs the process phase for one namespace: every
// change directory not yet in the store's ledger is validated,
// reconciled, executed, rendered to its inserts.sql artifact, and
// folded into the snapshot. Failures are captured in the summary, never
// returned; a namespace-level failure sets Err and leaves the counters
// at zero.
func (e *Engine) ProcessNamespace(ctx context.Context, ns string) *NamespaceSummary {
	sum := &NamespaceSummary{Namespace: ns}

	if _, err := os.Stat(e.layout.Path(ns, namespace.Root)); err != nil {
		sum.Err = fmt.Sprintf("namespace %q: %v", ns, err)
		return sum
	}

	st, err := store.Open(e.layout.Path(ns, namespace.TrackingDB))
	if err != nil {
		sum.Err = err.Error()
		return sum
	}
	defer st.Close()

	if err := e.ensureSnapshot(ctx, ns); err != nil {
		sum.Err = err.Error()
		return sum
	}

	pending, err := e.pendingChanges(ctx, st, ns)
	if err != nil {
		sum.Err = err.Error()
		return sum
	}

	for _, name := range pending {
		path := e.layout.FindChangeFile(ns, name)
		if path == "" {
			e.log.Warn("change directory has no change record, skipping",
				"namespace", ns, "change", name)
			sum.record(ChangeOutcome{
				Name:      name,
				Mutations: FailedMutations,
				Skipped:   true,
				Error:     "change directory has no change.yaml or change.yml",
			})
			continue
		}
		sum.record(e.processChange(ctx, st, ns, name, path))
	}

	e.log.Info("namespace processed",
		"namespace", ns,
		"processed", sum.Processed,
		"applied", sum.Applied,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"mutations", sum.Mutations)
	return sum
}

// processChange runs one change record through reading, reconciliation,
// artifact generation, execution, and projection. Ingestion validation
// is the reader's lenient contract: date and stats must be present, but
// an empty stats list still ledgers the change with zero mutations, and
// identity-less entries are dropped while the rest apply. The stricter
// CUE schemas belong to the validate command, not this path.
func (e *Engine) processChange(ctx context.Context, st *store.Store, ns, name, path string) ChangeOutcome {
	out := ChangeOutcome{Name: name}

	ch, err := record.ReadFile(name, path)
	if err != nil {
		out.Mutations = FailedMutations
		out.Error = err.Error()
		var verr *record.ValidationError
		if errors.As(err, &verr) {
			out.Skipped = true
			e.log.Warn("change record rejected, skipping",
				"namespace", ns, "change", name, "error", err)
		} else {
			e.log.Error("change record unreadable",
				"namespace", ns, "change", name, "error", err)
		}
		return out
	}

	res, err := reconcile.Reconcile(ctx, ch, st)
	if err != nil {
		out.Mutations = FailedMutations
		out.Error = err.Error()
		return out
	}

	if err := reconcile.WriteArtifact(e.layout.ArtifactPath(ns, name), name, res); err != nil {
		out.Mutations = FailedMutations
		out.Error = err.Error()
		return out
	}

	// Execute the same statement sequence the artifact carries, bound
	// through the driver, in one transaction: a failure leaves no
	// ledger row and the change is retried on the next run.
	err = st.ExecTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range res.Ledger {
			if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
				return fmt.Errorf("change %q: %w", name, err)
			}
		}
		for _, stmt := range res.History {
			if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
				return fmt.Errorf("change %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		out.Mutations = FailedMutations
		out.Error = err.Error()
		return out
	}

	out.Mutations = res.Mutations
	out.Snapshot = snapshot.Project(e.layout.Path(ns, namespace.StatsFile), ch)
	if out.Snapshot.Err != "" {
		e.log.Warn("snapshot projection failed",
			"namespace", ns, "change", name, "error", out.Snapshot.Err)
	}

	e.log.Info("change applied",
		"namespace", ns, "change", name, "mutations", res.Mutations)
	return out
}

// ProcessAll runs the process phase over every namespace under the data
// root. Namespaces are independent: one failing is reported in the
// batch summary and the rest still run.
func (e *Engine) ProcessAll(ctx context.Context) (*BatchSummary, error) {
	names, err := e.layout.List()
	if err != nil {
		return nil, err
	}

	batch := newBatchSummary(uuid.NewString())
	e.log.Info("batch started", "run_id", batch.RunID, "namespaces", len(names))

	for _, ns := range names {
		batch.record(e.ProcessNamespace(ctx, ns))
	}

	e.log.Info("batch finished",
		"run_id", batch.RunID,
		"successful", len(batch.Successful),
		"failed", len(batch.Failed),
		"mutations", batch.TotalMutations)
	return batch, nil
}

// pendingChanges returns the change directory names not yet recorded in
// the store's ledger, in ascending name order. Change identifiers are
// date-prefixed, so ascending order is chronological order.
func (e *Engine) pendingChanges(ctx context.Context, st *store.Store, ns string) ([]string, error) {
	applied, err := st.AppliedChanges(ctx)
	if err != nil {
		return nil, err
	}

	dirs, err := e.layout.ListChangeDirs(ns)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, name := range dirs {
		if !applied[name] {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)
	return pending, nil
}
