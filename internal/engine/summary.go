package engine

import "github.com/pelotonworks/stattrack/internal/snapshot"

// FailedMutations is the mutation count reported for a change that was
// rejected before reconciliation (bad syntax, missing fields, invalid
// stat values).
const FailedMutations = -1

// ChangeOutcome reports one change directory's fate within a phase.
type ChangeOutcome struct {
	Name string `json:"name"`

	// Mutations is the number of history inserts the change produced,
	// 0 for a clean no-op replay, FailedMutations when the change was
	// rejected or its execution rolled back.
	Mutations int `json:"mutations"`

	// Skipped marks a candidate passed over rather than failed: an
	// invalid change document or, in the apply phase, a pending change
	// with no generated artifact. Skips are local to the candidate and
	// never fail the namespace.
	Skipped bool `json:"skipped,omitempty"`

	Error string `json:"error,omitempty"`

	// Snapshot carries the projection counters for the process phase;
	// zero-valued during apply.
	Snapshot snapshot.Diff `json:"snapshot"`
}

// NamespaceSummary aggregates one namespace's run of a phase.
type NamespaceSummary struct {
	Namespace string          `json:"namespace"`
	Processed int             `json:"processed"`
	Applied   int             `json:"applied"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Mutations int             `json:"mutations"`
	Changes   []ChangeOutcome `json:"changes,omitempty"`

	// ExportedRows is set by the apply phase after the CSV export.
	ExportedRows int `json:"exported_rows,omitempty"`

	// Err is a namespace-level failure (store unreachable, unreadable
	// layout). Change-level failures live in Changes instead.
	Err string `json:"error,omitempty"`
}

// OK reports whether the namespace ran without namespace-level or
// change-level failures. Skipped candidates do not count against it.
func (s *NamespaceSummary) OK() bool {
	return s.Err == "" && s.Failed == 0
}

func (s *NamespaceSummary) record(o ChangeOutcome) {
	s.Processed++
	switch {
	case o.Skipped:
		s.Skipped++
	case o.Error != "":
		s.Failed++
	default:
		s.Applied++
		s.Mutations += o.Mutations
	}
	s.Changes = append(s.Changes, o)
}

// BatchSummary aggregates a whole-root run across namespaces.
type BatchSummary struct {
	RunID          string              `json:"run_id"`
	Namespaces     []*NamespaceSummary `json:"namespaces"`
	Successful     []string            `json:"successful,omitempty"`
	Failed         []string            `json:"failed,omitempty"`
	TotalMutations int                 `json:"total_mutations"`
	OverallSuccess bool                `json:"overall_success"`
}

func newBatchSummary(runID string) *BatchSummary {
	return &BatchSummary{RunID: runID, OverallSuccess: true}
}

func (b *BatchSummary) record(s *NamespaceSummary) {
	b.Namespaces = append(b.Namespaces, s)
	if s.OK() {
		b.Successful = append(b.Successful, s.Namespace)
	} else {
		b.Failed = append(b.Failed, s.Namespace)
		b.OverallSuccess = false
	}
	b.TotalMutations += s.Mutations
}
