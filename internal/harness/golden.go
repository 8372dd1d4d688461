package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden file content for rewritten SQL.
func Snapshot(sql string) []byte {
	return []byte(sql + "\n")
}

// GoldenPath returns the golden file for a case file:
// <dir>/golden/<stem>.golden.
func GoldenPath(caseFile string) string {
	dir := filepath.Dir(caseFile)
	base := filepath.Base(caseFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// CompareGolden reports whether sql matches the golden file for caseFile.
// The returned bool is false, with a nil error, when no golden file exists.
func CompareGolden(caseFile, sql string) (match bool, exists bool, err error) {
	data, err := os.ReadFile(GoldenPath(caseFile))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("failed to read golden file: %w", err)
	}
	return string(data) == string(Snapshot(sql)), true, nil
}

// UpdateGolden writes sql as the golden file for caseFile.
func UpdateGolden(caseFile, sql string) error {
	path := GoldenPath(caseFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, Snapshot(sql), 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// AssertGolden compares sql against fixtureDir/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, fixtureDir, name, sql string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(fixtureDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(sql))
}
