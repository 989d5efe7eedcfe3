package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type IngestionHistoryStore struct {
	db *sqlx.DB
}

var (
	TriggerTypeManual    = "manual"
	TriggerTypeScheduled = "scheduled"
	TriggerTypeAPI       = "api"
)

var (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

const insertRunQuery = `INSERT INTO ingestion_runs (
	id,
	source_file,
	mode,
	trigger_type,
	status,
	failed_stage,
	error,
	rows_read,
	malformed_rows,
	skipped_rows,
	local_count,
	partido_count,
	fornecedor_count,
	prestador_count,
	documento_count,
	despesa_count,
	started_at,
	finished_at
) VALUES (
	:id,
	:source_file,
	:mode,
	:trigger_type,
	:status,
	:failed_stage,
	:error,
	:rows_read,
	:malformed_rows,
	:skipped_rows,
	:local_count,
	:partido_count,
	:fornecedor_count,
	:prestador_count,
	:documento_count,
	:despesa_count,
	:started_at,
	:finished_at
)`

func insertRun(ctx context.Context, ext sqlx.ExtContext, run *IngestionRun) error {
	_, err := sqlx.NamedExecContext(ctx, ext, insertRunQuery, run)
	return err
}

// InsertIngestionRun records a run outside of a load, typically a failure.
func (ih *IngestionHistoryStore) InsertIngestionRun(ctx context.Context, run *IngestionRun) error {
	return insertRun(ctx, ih.db, run)
}

// GetLatest returns up to limit runs, newest first.
func (ih *IngestionHistoryStore) GetLatest(ctx context.Context, limit int) ([]IngestionRun, error) {
	query := `SELECT * FROM ingestion_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`

	runs := []IngestionRun{}
	if err := ih.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// LatestSuccessful returns the newest successful run or ErrNoRuns.
func (ih *IngestionHistoryStore) LatestSuccessful(ctx context.Context) (*IngestionRun, error) {
	query := `SELECT * FROM ingestion_runs WHERE status = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`

	var run IngestionRun
	err := ih.db.GetContext(ctx, &run, query, StatusSuccess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
