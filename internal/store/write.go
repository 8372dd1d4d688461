package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Run is one recorded rewrite.
type Run struct {
	Seq             int64     `json:"seq"`
	ID              string    `json:"id"`
	InputPath       string    `json:"input_path"`
	OutputPath      string    `json:"output_path"`
	InputHash       string    `json:"input_hash"`
	OutputHash      string    `json:"output_hash"`
	CTECount        int       `json:"cte_count"`
	InlinedCount    int       `json:"inlined_count"`
	Warnings        []string  `json:"warnings"`
	VerifiedDialect string    `json:"verified_dialect,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// WriteRun appends run to the history and returns it with Seq, ID and
// CreatedAt filled in. A caller-supplied ID or CreatedAt is kept.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Warnings == nil {
		run.Warnings = []string{}
	}

	warningsJSON, err := json.Marshal(run.Warnings)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, input_path, output_path, input_hash, output_hash, cte_count, inlined_count, warnings, verified_dialect, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.InputPath,
		run.OutputPath,
		run.InputHash,
		run.OutputHash,
		run.CTECount,
		run.InlinedCount,
		string(warningsJSON),
		run.VerifiedDialect,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	run.Seq, err = res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	return run, nil
}
