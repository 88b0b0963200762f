package runrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
)

// Schema creates the summary_runs table when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS summary_runs (
	id                      UUID PRIMARY KEY,
	title                   TEXT NOT NULL DEFAULT '',
	model                   TEXT NOT NULL DEFAULT '',
	status                  TEXT NOT NULL,
	storage_key             TEXT NOT NULL,
	summary                 TEXT NOT NULL DEFAULT '',
	error                   TEXT NOT NULL DEFAULT '',
	error_code              TEXT NOT NULL DEFAULT '',
	chunks                  INTEGER NOT NULL DEFAULT 0,
	completion_calls        INTEGER NOT NULL DEFAULT 0,
	estimated_prompt_tokens INTEGER NOT NULL DEFAULT 0,
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL
)`

// PostgresRepository implements summarizer.RunRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema applies Schema.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create summary_runs: %w", err)
	}
	return nil
}

// Create inserts a new run row.
func (r *PostgresRepository) Create(ctx context.Context, run summarizer.Run) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO summary_runs (id, title, model, status, storage_key, summary, error, error_code,
			chunks, completion_calls, estimated_prompt_tokens, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, run.ID, run.Title, run.Model, string(run.Status), run.StorageKey, run.Summary, run.Error, run.ErrorCode,
		run.Chunks, run.Usage.CompletionCalls, run.Usage.EstimatedPromptTokens, run.CreatedAt, run.UpdatedAt)
	return err
}

// Update overwrites the mutable columns of a run.
func (r *PostgresRepository) Update(ctx context.Context, run summarizer.Run) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE summary_runs
		SET model = $2, status = $3, summary = $4, error = $5, error_code = $6,
			chunks = $7, completion_calls = $8, estimated_prompt_tokens = $9, updated_at = $10
		WHERE id = $1
	`, run.ID, run.Model, string(run.Status), run.Summary, run.Error, run.ErrorCode,
		run.Chunks, run.Usage.CompletionCalls, run.Usage.EstimatedPromptTokens, run.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// Get fetches a run by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (summarizer.Run, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, model, status, storage_key, summary, error, error_code,
			chunks, completion_calls, estimated_prompt_tokens, created_at, updated_at
		FROM summary_runs
		WHERE id = $1
	`, id)
	var (
		run    summarizer.Run
		status string
	)
	err := row.Scan(&run.ID, &run.Title, &run.Model, &status, &run.StorageKey, &run.Summary, &run.Error, &run.ErrorCode,
		&run.Chunks, &run.Usage.CompletionCalls, &run.Usage.EstimatedPromptTokens, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return summarizer.Run{}, false, nil
	}
	if err != nil {
		return summarizer.Run{}, false, err
	}
	run.Status = summarizer.RunStatus(status)
	return run, true, nil
}

var _ summarizer.RunRepository = (*PostgresRepository)(nil)
