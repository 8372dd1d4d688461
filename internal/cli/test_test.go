package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessCases = "../harness/testdata/cases"

const sampleCase = `name: sample
description: "single CTE"
input: "WITH a AS (SELECT 1 AS v) SELECT * FROM a"
expect:
  order: [a]
`

func TestTestCommand_HarnessCasesPass(t *testing.T) {
	out, _, err := execute(t, "test", harnessCases)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ single-cte")
	assert.Contains(t, out, "0 failed")
	assert.Contains(t, out, "✓ All cases passed")
}

func TestTestCommand_Filter(t *testing.T) {
	out, _, err := execute(t, "test", harnessCases, "--filter", "cycle-*", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "cycle-left-in-place", resp.Data.Cases[0].Name)
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.yaml", sampleCase)

	out, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ sample (golden updated)")

	golden := filepath.Join(dir, "golden", "sample.golden")
	assert.Equal(t, singleCTEOut, readFile(t, golden))

	_, _, err = execute(t, "test", dir)
	require.NoError(t, err)
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.yaml", sampleCase)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	writeFile(t, filepath.Join(dir, "golden"), "sample.golden", "SELECT 1\n")

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ sample")
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommand_FailingExpectation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: "expects the wrong order"
input: "WITH a AS (SELECT 1 AS v) SELECT * FROM a"
expect:
  order: [b]
`)

	out, _, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\n")

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load case")
}

func TestTestCommand_EmptyDir(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No cases found.")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/cases")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "cases directory not found")
}

func TestFindCaseFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", sampleCase)
	writeFile(t, dir, "b.yml", sampleCase)
	writeFile(t, dir, "notes.txt", "ignored")

	files, err := findCaseFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = findCaseFiles(dir, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml")}, files)

	_, err = findCaseFiles(dir, "[")
	require.Error(t, err)
}
