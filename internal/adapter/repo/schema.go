package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements executed at boot. Terminal rows persist indefinitely;
// no retention policy is defined for them yet.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS video_jobs (
		id UUID PRIMARY KEY,
		session_id TEXT NOT NULL,
		video_type TEXT NOT NULL,
		style TEXT NOT NULL,
		duration TEXT NOT NULL,
		format TEXT NOT NULL,
		user_prompt TEXT NOT NULL,
		generated_prompt TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		progress INT NOT NULL DEFAULT 0,
		video_url TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		is_demo BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_video_jobs_session ON video_jobs (session_id)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		key_name TEXT NOT NULL,
		key_value TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE OR REPLACE FUNCTION notify_video_job_changed() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('video_jobs_changed', json_build_object(
			'id', NEW.id,
			'status', NEW.status,
			'progress', NEW.progress,
			'video_url', NEW.video_url,
			'thumbnail_url', NEW.thumbnail_url,
			'error_message', NEW.error_message,
			'isDemo', NEW.is_demo,
			'created_at', NEW.created_at,
			'completed_at', NEW.completed_at
		)::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS video_jobs_changed ON video_jobs`,
	`CREATE TRIGGER video_jobs_changed
		AFTER UPDATE ON video_jobs
		FOR EACH ROW EXECUTE FUNCTION notify_video_job_changed()`,
}

// EnsureSchema creates the tables and the row-change trigger if missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
