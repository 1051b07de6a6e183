package index

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/srulre/classiq-library/pkg/types"
)

// RecordRun stores a lint run and its findings under the given run id.
func (s *Store) RecordRun(ctx context.Context, runID string, rep *types.Report) error {
	startedAt := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning run record: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, checked, errors, warnings) VALUES (?, ?, ?, ?, ?)`,
		runID, startedAt, rep.Checked,
		rep.Count(types.SeverityError), rep.Count(types.SeverityWarning),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	for _, f := range rep.Findings {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO findings (run_id, rule, severity, path, line, message) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, f.Rule, f.Severity.String(), f.Path, f.Line, f.Message,
		)
		if err != nil {
			return fmt.Errorf("recording finding for %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run record: %w", err)
	}
	return nil
}

// NewRunID generates a UUIDv7 run id, falling back to v4 when the
// clock-based generator fails. Callers mint the id before the run so
// it can correlate logs with the recorded row.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
