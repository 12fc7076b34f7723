package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifact_Golden(t *testing.T) {
	res, err := Reconcile(context.Background(), testChange(), newFakeStore())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "inserts.sql")
	require.NoError(t, WriteArtifact(path, "2025-08-11-tdf", res))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "artifact", content)
}

func TestSplitScript_RoundTrip(t *testing.T) {
	res, err := Reconcile(context.Background(), testChange(), newFakeStore())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "inserts.sql")
	require.NoError(t, WriteArtifact(path, "2025-08-11-tdf", res))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	stmts := SplitScript(string(content))
	require.Len(t, stmts, 4) // ledger + cyclist + 2 history

	assert.True(t, strings.HasPrefix(stmts[0], "INSERT INTO tbl_changes"))
	assert.True(t, strings.HasPrefix(stmts[1], "INSERT INTO tbl_cyclists"))
	assert.True(t, strings.HasPrefix(stmts[2], "INSERT INTO tbl_change_stat_history"))
	assert.True(t, strings.HasPrefix(stmts[3], "INSERT INTO tbl_change_stat_history"))
}

func TestSplitScript_DropsCommentsAndBlanks(t *testing.T) {
	script := "-- a comment\n\nSELECT 1;\n-- another\nSELECT 2;\n"
	stmts := SplitScript(script)
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, stmts)
}
