// Package stat defines the closed set of PCM stat keys and their
// canonical iteration order.
//
// Every component that walks stat keys (the reconciler, the snapshot
// projector, the export view) must iterate in this one order so that
// generated SQL and serialized snapshots are byte-stable across runs.
package stat

import (
	"math"
	"strconv"
)

// Keys is the canonical ordered set of the 14 stat keys.
// The order is load-bearing: do not sort, append, or reorder.
var Keys = []string{
	"fla", "mo", "mm", "dh", "cob", "tt", "prl",
	"spr", "acc", "end", "res", "rec", "hil", "att",
}

var keySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Keys))
	for _, k := range Keys {
		m[k] = struct{}{}
	}
	return m
}()

// IsKey reports whether name is one of the 14 stat keys.
func IsKey(name string) bool {
	_, ok := keySet[name]
	return ok
}

// FormatValue renders a stat value the way it appears in documents and
// generated SQL: integral values without a decimal point.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// IsIntegral reports whether v has no fractional part.
func IsIntegral(v float64) bool {
	return v == math.Trunc(v) && !math.IsInf(v, 0)
}
