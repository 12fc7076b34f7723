// Package record parses authored change documents into validated
// in-memory change records.
//
// A change record lives in its own directory under a namespace's
// changes/ tree and is identified by that directory's name. The
// document itself (change.yaml or change.yml) carries the date, the
// optional author and description, and a list of per-cyclist stat
// assertions. An empty list is accepted here; only the strict
// pre-flight validator rejects it.
package record

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pelotonworks/stattrack/internal/stat"
)

// DefaultAuthor is recorded when a change document omits the author.
const DefaultAuthor = "Unknown"

// nullSentinel is the literal string some authored documents use to
// mean "no first_cycling_id".
const nullSentinel = "NULL"

// Change is one validated change record.
type Change struct {
	// Identifier is the containing directory's name, the natural key
	// into the changes ledger. It is supplied by the caller, not read
	// from the document.
	Identifier string

	Date        string
	Author      string
	Description string

	// Assertions preserves the document's entry order.
	Assertions []Assertion
}

// Assertion is one per-cyclist entry from the document's stats list.
type Assertion struct {
	// PCMID is the stable external cyclist identifier, normalized to a
	// string.
	PCMID string

	// Name is the cyclist's display name.
	Name string

	// FirstCyclingID is the optional secondary identifier, "" when the
	// document omits it or carries the NULL sentinel.
	FirstCyclingID string

	// Values holds the asserted stat values, keyed by stat key. Keys
	// absent from the document (or carrying an empty string) are absent
	// here.
	Values map[string]float64
}

// Value returns the asserted value for a stat key.
func (a Assertion) Value(key string) (float64, bool) {
	v, ok := a.Values[key]
	return v, ok
}

// ErrorKind classifies validation failures.
type ErrorKind string

const (
	// KindSyntax marks a document that is not well-formed YAML.
	KindSyntax ErrorKind = "syntax"
	// KindMissingFields marks a document lacking date or stats.
	KindMissingFields ErrorKind = "missing_fields"
	// KindBadStatValue marks a stat value that is not numeric.
	KindBadStatValue ErrorKind = "bad_stat_value"
)

// ValidationError reports why a change document was rejected. The
// whole record is rejected: there is no partial application of an
// invalid document.
type ValidationError struct {
	Kind   ErrorKind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid change record (%s): %s", e.Kind, e.Detail)
}

// rawChange mirrors the document shape. Pointer fields distinguish
// missing keys from present-but-empty ones.
type rawChange struct {
	Date        *string          `yaml:"date"`
	Author      string           `yaml:"author"`
	Description string           `yaml:"description"`
	Stats       *[]map[string]any `yaml:"stats"`
}

// Read parses a change document and validates it for ingestion.
//
// Required keys are date and stats; author and description default.
// Entries lacking pcm_id or name carry no usable identity and are
// dropped. A present-but-empty stats list passes here; only the strict
// pre-flight validator rejects it.
func Read(identifier string, doc []byte) (*Change, error) {
	var raw rawChange
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, &ValidationError{Kind: KindSyntax, Detail: err.Error()}
	}

	var missing []string
	if raw.Date == nil {
		missing = append(missing, "date")
	}
	if raw.Stats == nil {
		missing = append(missing, "stats")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Kind:   KindMissingFields,
			Detail: "missing required fields: " + strings.Join(missing, ", "),
		}
	}

	author := raw.Author
	if author == "" {
		author = DefaultAuthor
	}

	ch := &Change{
		Identifier:  identifier,
		Date:        *raw.Date,
		Author:      author,
		Description: raw.Description,
	}

	for i, entry := range *raw.Stats {
		a, ok, err := parseAssertion(i, entry)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ch.Assertions = append(ch.Assertions, a)
	}

	return ch, nil
}

// ReadFile reads and parses the change document at path.
func ReadFile(identifier, path string) (*Change, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read change record %q: %w", identifier, err)
	}
	return Read(identifier, doc)
}

// parseAssertion extracts one stats entry. ok is false when the entry
// has no usable identity (missing pcm_id or name).
func parseAssertion(idx int, entry map[string]any) (Assertion, bool, error) {
	pcmID := scalarString(entry["pcm_id"])
	name := scalarString(entry["name"])
	if pcmID == "" || name == "" {
		return Assertion{}, false, nil
	}

	a := Assertion{
		PCMID:  pcmID,
		Name:   name,
		Values: make(map[string]float64),
	}

	if fc := scalarString(entry["first_cycling_id"]); fc != "" && fc != nullSentinel {
		a.FirstCyclingID = fc
	}

	for _, key := range stat.Keys {
		v, present := entry[key]
		if !present || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		num, err := numericValue(v)
		if err != nil {
			return Assertion{}, false, &ValidationError{
				Kind:   KindBadStatValue,
				Detail: fmt.Sprintf("stats[%d] %s: %v", idx, key, err),
			}
		}
		a.Values[key] = num
	}

	return a, true, nil
}

// scalarString normalizes a YAML scalar to a string.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return stat.FormatValue(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// numericValue coerces a YAML scalar to a numeric stat value.
func numericValue(v any) (float64, error) {
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not numeric: %v (%T)", v, v)
	}
}
