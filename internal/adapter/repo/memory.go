package repo

import (
	"context"
	"sync"
	"time"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

// Memory is a process-local job store with the same change-feed semantics as
// the PostgreSQL adapter. It backs the zero-configuration mode (no
// DATABASE_URL) and the tests. Rows are never evicted, matching the
// unresolved retention question of the persistent store.
type Memory struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
	subs map[string]map[chan domain.View]struct{}

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		jobs: make(map[string]*domain.Job),
		subs: make(map[string]map[chan domain.View]struct{}),
		now:  time.Now,
	}
}

func (m *Memory) Create(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *job
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = m.now()
	}
	m.jobs[job.ID] = &clone
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *job
	return &clone, nil
}

func (m *Memory) MarkProcessing(_ context.Context, id string) error {
	return m.mutate(id, func(job *domain.Job) {
		if job.Status == domain.JobStatusPending {
			job.Status = domain.JobStatusProcessing
		}
	})
}

func (m *Memory) UpdateProgress(_ context.Context, id string, progress int) error {
	return m.mutate(id, func(job *domain.Job) {
		if !job.Status.Terminal() && progress > job.Progress {
			job.Progress = progress
		}
	})
}

func (m *Memory) Complete(_ context.Context, id, videoURL, thumbnailURL string) error {
	return m.mutate(id, func(job *domain.Job) {
		if job.Status.Terminal() {
			return
		}
		job.Status = domain.JobStatusCompleted
		job.Progress = 100
		job.VideoURL = videoURL
		job.ThumbnailURL = thumbnailURL
		completedAt := m.now()
		job.CompletedAt = &completedAt
	})
}

func (m *Memory) Fail(_ context.Context, id, errorMessage string) error {
	return m.mutate(id, func(job *domain.Job) {
		if job.Status.Terminal() {
			return
		}
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = errorMessage
	})
}

func (m *Memory) mutate(id string, fn func(*domain.Job)) error {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	fn(job)
	view := job.View()
	for ch := range m.subs[id] {
		select {
		case ch <- view:
		default:
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, jobID string) (<-chan domain.View, error) {
	// Sized past the full demo progress walk so a briefly stalled reader
	// does not lose the terminal update.
	ch := make(chan domain.View, 16)

	m.mu.Lock()
	if m.subs[jobID] == nil {
		m.subs[jobID] = make(map[chan domain.View]struct{})
	}
	m.subs[jobID][ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs[jobID], ch)
		if len(m.subs[jobID]) == 0 {
			delete(m.subs, jobID)
		}
		m.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

var (
	_ domain.JobRepository = (*Memory)(nil)
	_ domain.JobFeed       = (*Memory)(nil)
)
