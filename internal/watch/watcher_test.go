package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/decteify/internal/config"
)

const sampleSQL = "WITH a AS (SELECT 1 AS v) SELECT * FROM a\n"

func TestRewriteFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.sql")
	require.NoError(t, os.WriteFile(input, []byte(sampleSQL), 0644))

	event := RewriteFile(input, config.Default(), nil)
	require.NoError(t, event.Err)
	assert.Equal(t, filepath.Join(dir, "report_decteified.sql"), event.Output)
	assert.Equal(t, []string{"a"}, event.Result.Order)

	data, err := os.ReadFile(event.Output)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ((\nSELECT 1 AS v\n)) AS a\n", string(data))
}

func TestRewriteFile_StrictFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "loop.sql")
	require.NoError(t, os.WriteFile(input,
		[]byte("WITH a AS (SELECT * FROM b), b AS (SELECT * FROM a) SELECT * FROM a"), 0644))

	cfg := config.Default()
	cfg.Strict.FailOnCycle = true

	event := RewriteFile(input, cfg, nil)
	require.Error(t, event.Err)
	require.NotNil(t, event.Result)
	assert.NoFileExists(t, event.Output)
}

func TestRewriteFile_MissingInput(t *testing.T) {
	event := RewriteFile(filepath.Join(t.TempDir(), "missing.sql"), config.Default(), nil)
	require.Error(t, event.Err)
	assert.Contains(t, event.Err.Error(), "failed to read input")
}

func TestNew_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.sql")
	require.NoError(t, os.WriteFile(path, []byte(sampleSQL), 0644))

	_, err := New(path, config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestWatcher_RewritesNewFiles(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()

	cfg := config.Default()
	cfg.OutputDir = outDir

	events := make(chan Event, 10)
	w, err := New(dir, cfg,
		WithDebounce(10*time.Millisecond),
		WithOnRewrite(func(e Event) { events <- e }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "q_decteified.sql"), []byte(sampleSQL), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "q.sql"), []byte(sampleSQL), 0644))

	var got Event
	select {
	case got = <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rewrite")
	}
	require.NoError(t, got.Err)
	assert.Equal(t, filepath.Join(dir, "q.sql"), got.Input)
	assert.Equal(t, filepath.Join(outDir, "q_decteified.sql"), got.Output)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(got.Output)
		return err == nil && string(data) == "SELECT * FROM ((\nSELECT 1 AS v\n)) AS a\n"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	assert.NoFileExists(t, filepath.Join(outDir, "q_decteified_decteified.sql"))
	assert.NoFileExists(t, filepath.Join(outDir, "notes_decteified.txt"))
}
