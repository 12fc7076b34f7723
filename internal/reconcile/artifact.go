package reconcile

import (
	"fmt"
	"os"
	"strings"
)

// WriteArtifact renders a reconciliation result into the reviewable
// inserts.sql file for a change. The file carries a fixed header and
// two sections: the ledger + cyclist inserts and the stat history
// inserts. Statements are rendered with literal values so a reviewer
// can read them without the bound arguments.
func WriteArtifact(path, changeName string, res *Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Generated SQL INSERT statements for %s\n", changeName)
	b.WriteString("-- Review before executing\n\n")

	if len(res.Ledger) > 0 {
		b.WriteString("-- Step 1: tbl_changes and tbl_cyclists\n")
		for _, st := range res.Ledger {
			b.WriteString(st.Render())
			b.WriteString(";\n")
		}
		b.WriteString("\n")
	}

	if len(res.History) > 0 {
		b.WriteString("-- Step 2: tbl_change_stat_history\n")
		for _, st := range res.History {
			b.WriteString(st.Render())
			b.WriteString(";\n")
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// SplitScript breaks an artifact file's content into executable
// statements: comment lines are dropped, the remainder is joined and
// split on semicolons. The inverse of WriteArtifact's rendering, used
// by the apply phase.
func SplitScript(content string) []string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		kept = append(kept, line)
	}

	joined := strings.Join(kept, " ")
	var statements []string
	for _, part := range strings.Split(joined, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			statements = append(statements, part)
		}
	}
	return statements
}
