package record

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDoc = `date: "2025-08-11"
author: Race Desk
description: Post-Tour adjustments
stats:
  - pcm_id: 1001
    name: Tadej Poga
    first_cycling_id: 58275
    mo: 82
    hil: 79.5
  - pcm_id: "1002"
    name: Jonas Vinge
    first_cycling_id: NULL
    mo: 81
`

func TestRead_FullDocument(t *testing.T) {
	ch, err := Read("2025-08-11-tdf", []byte(fullDoc))
	require.NoError(t, err)

	assert.Equal(t, "2025-08-11-tdf", ch.Identifier)
	assert.Equal(t, "2025-08-11", ch.Date)
	assert.Equal(t, "Race Desk", ch.Author)
	assert.Equal(t, "Post-Tour adjustments", ch.Description)
	require.Len(t, ch.Assertions, 2)

	first := ch.Assertions[0]
	assert.Equal(t, "1001", first.PCMID)
	assert.Equal(t, "Tadej Poga", first.Name)
	assert.Equal(t, "58275", first.FirstCyclingID)
	assert.Equal(t, map[string]float64{"mo": 82, "hil": 79.5}, first.Values)

	// NULL sentinel means no first_cycling_id.
	second := ch.Assertions[1]
	assert.Equal(t, "1002", second.PCMID)
	assert.Empty(t, second.FirstCyclingID)
}

func TestRead_AuthorDefaults(t *testing.T) {
	doc := "date: \"2025-01-01\"\nstats: []\n"
	ch, err := Read("c1", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, DefaultAuthor, ch.Author)
	assert.Empty(t, ch.Assertions)
}

func TestRead_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no date", "stats: []\n", "date"},
		{"no stats", "date: \"2025-01-01\"\n", "stats"},
		{"empty doc", "author: someone\n", "date, stats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read("c1", []byte(tt.doc))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, KindMissingFields, verr.Kind)
			assert.Contains(t, verr.Detail, tt.want)
		})
	}
}

func TestRead_MalformedYAML(t *testing.T) {
	_, err := Read("c1", []byte("date: [unclosed\n"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindSyntax, verr.Kind)
}

func TestRead_BadStatValue(t *testing.T) {
	doc := `date: "2025-01-01"
stats:
  - pcm_id: 1
    name: A
    mo: strong
`
	_, err := Read("c1", []byte(doc))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindBadStatValue, verr.Kind)
	assert.Contains(t, verr.Detail, "mo")
}

func TestRead_DropsEntriesWithoutIdentity(t *testing.T) {
	doc := `date: "2025-01-01"
stats:
  - name: No Id
    mo: 70
  - pcm_id: 7
    mo: 70
  - pcm_id: 8
    name: Kept
    mo: 70
`
	ch, err := Read("c1", []byte(doc))
	require.NoError(t, err)
	require.Len(t, ch.Assertions, 1)
	assert.Equal(t, "8", ch.Assertions[0].PCMID)
}

func TestRead_SkipsEmptyAndNilStatValues(t *testing.T) {
	doc := `date: "2025-01-01"
stats:
  - pcm_id: 1
    name: A
    mo: ""
    fla:
    hil: 71
`
	ch, err := Read("c1", []byte(doc))
	require.NoError(t, err)
	require.Len(t, ch.Assertions, 1)

	a := ch.Assertions[0]
	assert.Equal(t, map[string]float64{"hil": 71}, a.Values)
	_, ok := a.Value("mo")
	assert.False(t, ok)
}

func TestRead_NumericStringStatValue(t *testing.T) {
	doc := `date: "2025-01-01"
stats:
  - pcm_id: 1
    name: A
    tt: "68.5"
`
	ch, err := Read("c1", []byte(doc))
	require.NoError(t, err)
	v, ok := ch.Assertions[0].Value("tt")
	require.True(t, ok)
	assert.Equal(t, 68.5, v)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "change.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullDoc), 0o644))

	ch, err := ReadFile("2025-08-11-tdf", path)
	require.NoError(t, err)
	assert.Len(t, ch.Assertions, 2)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile("c1", filepath.Join(t.TempDir(), "change.yaml"))
	require.Error(t, err)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "missing file is an IO error, not a validation error")
}
