// Package validate implements the strict pre-flight validators for
// authored documents.
//
// These are deliberately stricter than the ingestion path's reader:
// a change document must carry a non-empty stats list and every
// assertion both pcm_id and name; a snapshot document must use
// numeric ids, known stat keys, and numeric stat values.
//
// Validators return ok plus a list of reasons instead of erroring, so
// a caller can report every violation before deciding whether to
// proceed. Shape checking is expressed as CUE schemas (embedded below)
// unified against the document.
package validate

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed change_schema.cue
var changeSchemaCUE string

//go:embed stats_schema.cue
var statsSchemaCUE string

// Issue is one validation violation.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Result reports the outcome of validating one document.
type Result struct {
	OK     bool    `json:"ok"`
	Issues []Issue `json:"issues,omitempty"`
}

func failure(issues ...Issue) Result {
	return Result{OK: false, Issues: issues}
}

var (
	schemaOnce   sync.Once
	cueCtx       *cue.Context
	changeSchema cue.Value
	statsSchema  cue.Value
)

func schemas() (*cue.Context, cue.Value, cue.Value) {
	schemaOnce.Do(func() {
		cueCtx = cuecontext.New()
		changeSchema = cueCtx.CompileString(changeSchemaCUE).LookupPath(cue.ParsePath("#Change"))
		statsSchema = cueCtx.CompileString(statsSchemaCUE).LookupPath(cue.ParsePath("#Snapshot"))
	})
	return cueCtx, changeSchema, statsSchema
}

// ChangeDocument validates a change document against the strict
// change schema.
func ChangeDocument(doc []byte) Result {
	ctx, schema, _ := schemas()
	return validateAgainst(ctx, schema, "change", doc)
}

// StatsDocument validates a snapshot document against the strict
// stats schema. An empty document is rejected: a stats file exists
// only once there is something to project.
func StatsDocument(doc []byte) Result {
	var probe map[string]any
	if err := yaml.Unmarshal(doc, &probe); err != nil {
		return failure(Issue{Message: "yaml syntax error: " + err.Error()})
	}
	if len(probe) == 0 {
		return failure(Issue{Message: "stats file cannot be empty"})
	}

	ctx, _, schema := schemas()
	return validateAgainst(ctx, schema, "stats", doc)
}

// ChangeFile validates the change document at path.
func ChangeFile(path string) Result {
	doc, err := os.ReadFile(path)
	if err != nil {
		return failure(Issue{Message: fmt.Sprintf("read %s: %v", path, err)})
	}
	return ChangeDocument(doc)
}

// StatsFile validates the snapshot document at path.
func StatsFile(path string) Result {
	doc, err := os.ReadFile(path)
	if err != nil {
		return failure(Issue{Message: fmt.Sprintf("read %s: %v", path, err)})
	}
	return StatsDocument(doc)
}

// validateAgainst unifies a YAML document with a CUE schema and
// collects every violation.
func validateAgainst(ctx *cue.Context, schema cue.Value, filename string, doc []byte) Result {
	if err := schema.Err(); err != nil {
		return failure(Issue{Message: "schema error: " + err.Error()})
	}

	file, err := cueyaml.Extract(filename, doc)
	if err != nil {
		return failure(Issue{Message: "yaml syntax error: " + err.Error()})
	}

	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return failure(cueIssues(err)...)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return failure(cueIssues(err)...)
	}

	return Result{OK: true}
}

// cueIssues flattens a CUE error list into issues with dotted paths.
func cueIssues(err error) []Issue {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []Issue{{Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(errs))
	for _, e := range errs {
		issues = append(issues, Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: e.Error(),
		})
	}
	return issues
}
