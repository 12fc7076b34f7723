package snapshot

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalYAML_Golden(t *testing.T) {
	doc := New()
	doc.Cyclists["1001"] = &Cyclist{
		Name:           "Ben O'Connor",
		FirstCyclingID: "58275",
		Stats:          map[string]float64{"mo": 82, "hil": 79.5},
	}
	doc.Cyclists["1002"] = &Cyclist{
		Name:  "Jonas Vinge",
		Stats: map[string]float64{"mo": 81},
	}

	data, err := doc.MarshalYAML()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "snapshot", data)
}

func TestParse_NestedLayout(t *testing.T) {
	data := []byte(`"1001":
  name: Ben O'Connor
  first_cycling_id: 58275
  stats: {mo: 82, hil: 79.5}
"1002":
  name: Jonas Vinge
  stats: {mo: 81}
`)

	doc, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, doc.Cyclists, 2)

	c := doc.Cyclists["1001"]
	assert.Equal(t, "Ben O'Connor", c.Name)
	// Integer scalar normalized to a string identifier.
	assert.Equal(t, "58275", c.FirstCyclingID)
	assert.Equal(t, map[string]float64{"mo": 82, "hil": 79.5}, c.Stats)

	assert.Empty(t, doc.Cyclists["1002"].FirstCyclingID)
}

func TestParse_MarshalStable(t *testing.T) {
	doc := New()
	doc.Cyclists["3"] = &Cyclist{Name: "C", Stats: map[string]float64{"tt": 68}}
	doc.Cyclists["12"] = &Cyclist{Name: "L", Stats: map[string]float64{"fla": 70}}

	first, err := doc.MarshalYAML()
	require.NoError(t, err)

	reparsed, err := Parse(first)
	require.NoError(t, err)
	second, err := reparsed.MarshalYAML()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestLoad_MissingFileIsEmptyDocument(t *testing.T) {
	doc, err := Load(t.TempDir() + "/nope.yaml")
	require.NoError(t, err)
	assert.Empty(t, doc.Cyclists)
}
