package reconcile

import (
	"fmt"
	"strings"

	"github.com/pelotonworks/stattrack/internal/stat"
)

// Statement is one parameterized SQL mutation. The execution path
// always binds Args through the driver; Render exists only for the
// human-reviewable artifact file.
type Statement struct {
	SQL  string
	Args []any
}

// Render substitutes Args into the SQL as literals, producing the
// reviewable form written to inserts.sql. String literals have
// embedded single quotes doubled; numeric values are embedded bare;
// nil renders as NULL.
func (s Statement) Render() string {
	var b strings.Builder
	arg := 0
	for _, r := range s.SQL {
		if r == '?' && arg < len(s.Args) {
			b.WriteString(renderLiteral(s.Args[arg]))
			arg++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func renderLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case float64:
		return stat.FormatValue(t)
	case int:
		return stat.FormatValue(float64(t))
	case int64:
		return stat.FormatValue(float64(t))
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", t), "'", "''") + "'"
	}
}
