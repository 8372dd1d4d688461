package cte

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_NoWith(t *testing.T) {
	ext := Extract("  SELECT x / y FROM t \n")

	assert.Empty(t, ext.Definitions)
	assert.Equal(t, "SELECT x / y FROM t", ext.Main)
	assert.False(t, ext.MissingSelect)
}

func TestExtract_SingleDefinition(t *testing.T) {
	ext := Extract("WITH a AS (SELECT 1 AS v) SELECT * FROM a")

	require.Len(t, ext.Definitions, 1)
	assert.Equal(t, Definition{Key: "a", Name: "a", Body: "SELECT 1 AS v"}, ext.Definitions[0])
	assert.Equal(t, "SELECT * FROM a", ext.Main)
}

func TestExtract_CommasInsideBody(t *testing.T) {
	ext := Extract("WITH a AS (SELECT x, y FROM t), b AS (SELECT * FROM a) SELECT * FROM b")

	require.Len(t, ext.Definitions, 2)
	assert.Equal(t, "SELECT x, y FROM t", ext.Definitions[0].Body)
	assert.Equal(t, "SELECT * FROM a", ext.Definitions[1].Body)
	assert.Equal(t, []string{"a", "b"}, ext.Names())
}

func TestExtract_NameKeyIsCaseFolded(t *testing.T) {
	ext := Extract("WITH Sales AS (SELECT 1) SELECT * FROM sales")

	require.Len(t, ext.Definitions, 1)
	assert.Equal(t, "sales", ext.Definitions[0].Key)
	assert.Equal(t, "Sales", ext.Definitions[0].Name)

	def, ok := ext.Lookup("SALES")
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", def.Body)

	_, ok = ext.Lookup("missing")
	assert.False(t, ok)
}

func TestExtract_NonASCIIName(t *testing.T) {
	ext := Extract("WITH a AS (SELECT 1 v), é AS (SELECT * FROM a), CAFÉ AS (SELECT 2) SELECT * FROM é")

	assert.Empty(t, ext.Skipped)
	assert.Equal(t, []string{"a", "é", "CAFÉ"}, ext.Names())
	assert.Equal(t, "café", ext.Definitions[2].Key)

	def, ok := ext.Lookup("café")
	require.True(t, ok)
	assert.Equal(t, "SELECT 2", def.Body)
}

func TestExtract_KeyUsesFullCaseFolding(t *testing.T) {
	ext := Extract("WITH STRASSE AS (SELECT 1), Straße AS (SELECT 2) SELECT 1")

	require.Len(t, ext.Definitions, 1)
	assert.Equal(t, "strasse", ext.Definitions[0].Key)
	assert.Equal(t, "SELECT 2", ext.Definitions[0].Body)
	assert.Len(t, ext.Duplicates, 1)
}

func TestExtract_MalformedChunkSkipped(t *testing.T) {
	ext := Extract("WITH a AS (SELECT 1), b (SELECT 2) SELECT * FROM a")

	require.Len(t, ext.Definitions, 1)
	assert.Equal(t, "a", ext.Definitions[0].Name)
	assert.Equal(t, []string{"b (SELECT 2)"}, ext.Skipped)
}

func TestExtract_TrailingTextAfterBodySkipped(t *testing.T) {
	ext := Extract("WITH a AS (SELECT 1) x, b AS (SELECT 1) (SELECT 2), c AS (SELECT 3) SELECT * FROM c")

	require.Len(t, ext.Definitions, 1)
	assert.Equal(t, "c", ext.Definitions[0].Name)
	assert.Len(t, ext.Skipped, 2)
}

func TestExtract_EmptyChunksDropped(t *testing.T) {
	ext := Extract("WITH a AS (SELECT 1),, SELECT * FROM a")

	require.Len(t, ext.Definitions, 1)
	assert.Empty(t, ext.Skipped)
}

func TestExtract_DuplicateKeepsPositionTakesLastBody(t *testing.T) {
	ext := Extract("WITH a AS (SELECT 1), b AS (SELECT 2), A AS (SELECT 3) SELECT * FROM a")

	require.Len(t, ext.Definitions, 2)
	assert.Equal(t, Definition{Key: "a", Name: "A", Body: "SELECT 3"}, ext.Definitions[0])
	assert.Equal(t, "b", ext.Definitions[1].Name)
	assert.Equal(t, []string{"A"}, ext.Duplicates)
}

func TestExtract_MissingSelect(t *testing.T) {
	ext := Extract(" WITH a AS (SELECT 1) ")

	assert.True(t, ext.MissingSelect)
	assert.Empty(t, ext.Definitions)
	assert.Equal(t, "WITH a AS (SELECT 1)", ext.Main)
}

func TestExtract_BodyKeepsComments(t *testing.T) {
	ext := Extract("WITH a AS (SELECT 1 /* one ) */) SELECT * FROM a")

	require.Len(t, ext.Definitions, 1)
	assert.Equal(t, "SELECT 1 /* one ) */", ext.Definitions[0].Body)
}
