package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	var opts []Option
	if len(ids) > 0 {
		opts = append(opts, WithIDGenerator(NewFixedGenerator(ids...)))
	}
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(input string) Run {
	return Run{
		InputPath:    input,
		OutputPath:   input + ".out",
		InputHash:    "in-" + input,
		OutputHash:   "out-" + input,
		CTECount:     2,
		InlinedCount: 1,
		Warnings:     []string{"CYCLE_DETECTED"},
	}
}

func TestWriteRun_AssignsIdentity(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()

	run, err := s.WriteRun(ctx, testRun("a.sql"))
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, int64(1), run.Seq)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestWriteRun_ReadBack(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()

	in := testRun("a.sql")
	in.VerifiedDialect = "tsql"
	in.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	written, err := s.WriteRun(ctx, in)
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, written, got)
	assert.Equal(t, []string{"CYCLE_DETECTED"}, got.Warnings)
	assert.Equal(t, "tsql", got.VerifiedDialect)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
}

func TestWriteRun_NilWarningsStoredEmpty(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()

	run := testRun("a.sql")
	run.Warnings = nil
	_, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Warnings)
}

func TestWriteRun_DuplicateIDFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := testRun("a.sql")
	run.ID = "same"
	_, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	_, err = s.WriteRun(ctx, run)
	assert.Error(t, err)
}

func TestWriteRun_DefaultIDsAreUUIDv7(t *testing.T) {
	s := createTestStore(t)

	run, err := s.WriteRun(context.Background(), testRun("a.sql"))
	require.NoError(t, err)

	assert.Len(t, run.ID, 36)
	assert.Equal(t, byte('7'), run.ID[14], "version nibble")
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t, "r1", "r2", "r3")
	ctx := context.Background()

	for _, input := range []string{"a.sql", "b.sql", "c.sql"} {
		_, err := s.WriteRun(ctx, testRun(input))
		require.NoError(t, err)
	}

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"r3", "r2", "r1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, "r3", limited[0].ID)
}

func TestListRuns_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestRunsForInput(t *testing.T) {
	s := createTestStore(t, "r1", "r2", "r3")
	ctx := context.Background()

	for _, input := range []string{"a.sql", "b.sql", "a.sql"} {
		_, err := s.WriteRun(ctx, testRun(input))
		require.NoError(t, err)
	}

	runs, err := s.RunsForInput(ctx, "in-a.sql")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r1", runs[1].ID)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	assert.Equal(t, "only", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
