// Package repo contains the persistence adapters behind the domain ports: a
// PostgreSQL store with a LISTEN/NOTIFY change feed, and an in-memory store
// used when no database is configured.
package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/infra"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO video_jobs (id, session_id, video_type, style, duration, format, user_prompt, generated_prompt, status, progress, is_demo)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.SessionID,
		job.VideoType,
		job.Style,
		job.Duration,
		job.Format,
		job.UserPrompt,
		job.GeneratedPrompt,
		job.Status,
		job.Progress,
		job.IsDemo,
	)
	return err
}

func (r *JobRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `
SELECT id, session_id, video_type, style, duration, format, user_prompt, generated_prompt,
       status, progress, video_url, thumbnail_url, error_message, is_demo, created_at, completed_at
FROM video_jobs
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var job domain.Job
	var completedAt *time.Time
	if err := row.Scan(
		&job.ID,
		&job.SessionID,
		&job.VideoType,
		&job.Style,
		&job.Duration,
		&job.Format,
		&job.UserPrompt,
		&job.GeneratedPrompt,
		&job.Status,
		&job.Progress,
		&job.VideoURL,
		&job.ThumbnailURL,
		&job.ErrorMessage,
		&job.IsDemo,
		&job.CreatedAt,
		&completedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.CompletedAt = completedAt
	return &job, nil
}

func (r *JobRepositoryPG) MarkProcessing(ctx context.Context, id string) error {
	query := `
UPDATE video_jobs
SET status = 'processing'
WHERE id = $1 AND status = 'pending';
`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// UpdateProgress never lowers progress and never touches terminal rows.
func (r *JobRepositoryPG) UpdateProgress(ctx context.Context, id string, progress int) error {
	query := `
UPDATE video_jobs
SET progress = GREATEST(progress, $2)
WHERE id = $1 AND status IN ('pending', 'processing');
`
	_, err := r.pool.Exec(ctx, query, id, progress)
	return err
}

func (r *JobRepositoryPG) Complete(ctx context.Context, id, videoURL, thumbnailURL string) error {
	query := `
UPDATE video_jobs
SET status = 'completed',
    progress = 100,
    video_url = $2,
    thumbnail_url = $3,
    completed_at = now()
WHERE id = $1 AND status IN ('pending', 'processing');
`
	_, err := r.pool.Exec(ctx, query, id, videoURL, thumbnailURL)
	return err
}

func (r *JobRepositoryPG) Fail(ctx context.Context, id, errorMessage string) error {
	query := `
UPDATE video_jobs
SET status = 'failed',
    error_message = $2
WHERE id = $1 AND status IN ('pending', 'processing');
`
	_, err := r.pool.Exec(ctx, query, id, errorMessage)
	return err
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
