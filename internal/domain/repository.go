package domain

import "context"

// JobRepository is the persistence port for job rows. Exactly one generation
// task writes to a given job id, so the implementations do not need
// row-versioning, only non-regressing progress updates.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	MarkProcessing(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	Complete(ctx context.Context, id, videoURL, thumbnailURL string) error
	Fail(ctx context.Context, id, errorMessage string) error
}

// JobFeed delivers row-level change notifications scoped to a single job id.
// The returned channel closes when ctx is done or the feed shuts down;
// receivers must tolerate missed intermediate updates and rely on polling for
// recovery.
type JobFeed interface {
	Subscribe(ctx context.Context, jobID string) (<-chan View, error)
}
