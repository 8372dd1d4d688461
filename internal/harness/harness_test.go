package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Cases(t *testing.T) {
	files, err := filepath.Glob("testdata/cases/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		stem := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(stem, func(t *testing.T) {
			c, err := LoadCase(file)
			require.NoError(t, err)
			assert.Equal(t, stem, c.Name, "case name should match its file name")

			res := Run(c)
			require.NotNil(t, res.Rewrite)
			assert.True(t, res.Pass, "errors: %v", res.Errors)

			AssertGolden(t, "testdata/cases/golden", stem, res.Rewrite.SQL)
		})
	}
}

func TestRun_ReportsEveryFailedExpectation(t *testing.T) {
	c := &Case{
		Name:        "wrong",
		Description: "every expectation is wrong",
		Input:       "WITH a AS (SELECT 1 AS v) SELECT * FROM a",
		Expect: Expect{
			SQL:         "SELECT 1",
			Contains:    []string{"NOT THERE"},
			NotContains: []string{"SELECT"},
			Order:       []string{"b"},
			Warnings:    []string{"CYCLE_DETECTED"},
		},
	}

	res := Run(c)
	assert.False(t, res.Pass)
	assert.Len(t, res.Errors, 5)
	assert.Contains(t, res.Errors[0], "sql mismatch")
}

func TestRun_UnexpectedError(t *testing.T) {
	c := &Case{
		Name:        "strict",
		Description: "strict cycle without expectation",
		Input:       "WITH a AS (SELECT * FROM b), b AS (SELECT * FROM a) SELECT * FROM a",
		Options:     CaseOptions{FailOnCycle: true},
	}

	res := Run(c)
	assert.False(t, res.Pass)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "unexpected error")
}

func TestRun_WrongErrorCode(t *testing.T) {
	c := &Case{
		Name:        "strict",
		Description: "cycle reported as malformed",
		Input:       "WITH a AS (SELECT * FROM b), b AS (SELECT * FROM a) SELECT * FROM a",
		Options:     CaseOptions{FailOnCycle: true},
		Expect:      Expect{Error: "MALFORMED_CHUNK"},
	}

	res := Run(c)
	assert.False(t, res.Pass)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "got CYCLE_DETECTED")
}

func TestRun_MissingError(t *testing.T) {
	c := &Case{
		Name:        "lenient",
		Description: "no cycle, no error",
		Input:       "WITH a AS (SELECT 1) SELECT * FROM a",
		Options:     CaseOptions{FailOnCycle: true},
		Expect:      Expect{Error: "CYCLE_DETECTED"},
	}

	res := Run(c)
	assert.False(t, res.Pass)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "expected error CYCLE_DETECTED")
}

func TestGoldenPath(t *testing.T) {
	got := GoldenPath(filepath.Join("cases", "single-cte.yaml"))
	assert.Equal(t, filepath.Join("cases", "golden", "single-cte.golden"), got)
}

func TestUpdateAndCompareGolden(t *testing.T) {
	caseFile := filepath.Join(t.TempDir(), "sample.yaml")

	match, exists, err := CompareGolden(caseFile, "SELECT 1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.False(t, match)

	require.NoError(t, UpdateGolden(caseFile, "SELECT 1"))

	data, err := os.ReadFile(GoldenPath(caseFile))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1\n", string(data))

	match, exists, err = CompareGolden(caseFile, "SELECT 1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, match)

	match, _, err = CompareGolden(caseFile, "SELECT 2")
	require.NoError(t, err)
	assert.False(t, match)
}
