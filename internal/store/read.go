package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by ReadRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `seq, id, input_path, output_path, input_hash, output_hash,
	cte_count, inlined_count, warnings, verified_dialect, created_at`

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
//
// Returns an empty slice (not nil) if the history is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// RunsForInput returns every run whose input hashed to inputHash, newest
// first.
func (s *Store) RunsForInput(ctx context.Context, inputHash string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE input_hash = ?
		ORDER BY seq DESC
	`, inputHash)
}

// ReadRun returns the run with the given ID, or an error wrapping
// ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run          Run
		warningsJSON string
		createdAt    string
	)
	err := row.Scan(
		&run.Seq,
		&run.ID,
		&run.InputPath,
		&run.OutputPath,
		&run.InputHash,
		&run.OutputHash,
		&run.CTECount,
		&run.InlinedCount,
		&warningsJSON,
		&run.VerifiedDialect,
		&createdAt,
	)
	if err != nil {
		return Run{}, err
	}

	if err := json.Unmarshal([]byte(warningsJSON), &run.Warnings); err != nil {
		return Run{}, fmt.Errorf("decode warnings for run %s: %w", run.ID, err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("decode created_at for run %s: %w", run.ID, err)
	}
	return run, nil
}
