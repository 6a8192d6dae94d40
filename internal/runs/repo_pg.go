package runs

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, session_id, request_id, provider, model, status, error_kind, error_message,
       prompt_hash, duration_ms, created_at`

// Create inserts a run. Inserting an existing ID is a no-op so replayed
// run events are harmless.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO enhancement_runs (
	id, session_id, request_id, provider, model, status, error_kind, error_message,
	prompt_hash, duration_ms, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		nullString(run.SessionID),
		nullString(run.RequestID),
		run.Provider,
		run.Model,
		run.Status,
		nullString(run.ErrorKind),
		nullString(run.ErrorMessage),
		nullString(run.PromptHash),
		run.DurationMs,
		run.CreatedAt,
	)
	return err
}

// GetByID returns a run by ID.
func (r *PGRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	query := `SELECT ` + selectColumns + `
FROM enhancement_runs
WHERE id = $1
LIMIT 1`
	run, err := scanRun(r.DB.QueryRowContext(ctx, query, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

// List returns runs newest first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Run, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + selectColumns + `
FROM enhancement_runs
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var sessionID, requestID, errorKind, errorMessage, promptHash sql.NullString
	err := row.Scan(
		&run.ID,
		&sessionID,
		&requestID,
		&run.Provider,
		&run.Model,
		&run.Status,
		&errorKind,
		&errorMessage,
		&promptHash,
		&run.DurationMs,
		&run.CreatedAt,
	)
	if err != nil {
		return Run{}, err
	}
	run.SessionID = sessionID.String
	run.RequestID = requestID.String
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMessage.String
	run.PromptHash = promptHash.String
	return run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
