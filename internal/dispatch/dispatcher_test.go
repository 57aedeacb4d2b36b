package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/providers/video"
	"github.com/jeckxploit/video-generate-ai/internal/ratelimit"
	"github.com/jeckxploit/video-generate-ai/internal/validate"
)

type stubRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job

	createErr   error
	completeErr error
	terminal    chan string // receives the job id on Complete/Fail
}

func newStubRepo() *stubRepo {
	return &stubRepo{jobs: make(map[string]*domain.Job), terminal: make(chan string, 1)}
}

func (r *stubRepo) Create(_ context.Context, job *domain.Job) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *job
	return &clone, nil
}

func (r *stubRepo) MarkProcessing(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = domain.JobStatusProcessing
	}
	return nil
}

func (r *stubRepo) UpdateProgress(_ context.Context, id string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok && progress > job.Progress {
		job.Progress = progress
	}
	return nil
}

func (r *stubRepo) Complete(_ context.Context, id, videoURL, thumbnailURL string) error {
	if r.completeErr != nil {
		return r.completeErr
	}
	r.mu.Lock()
	if job, ok := r.jobs[id]; ok {
		job.Status = domain.JobStatusCompleted
		job.Progress = 100
		job.VideoURL = videoURL
		job.ThumbnailURL = thumbnailURL
	}
	r.mu.Unlock()
	r.terminal <- id
	return nil
}

func (r *stubRepo) Fail(_ context.Context, id, errorMessage string) error {
	r.mu.Lock()
	if job, ok := r.jobs[id]; ok {
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = errorMessage
	}
	r.mu.Unlock()
	r.terminal <- id
	return nil
}

type stubBackend struct {
	result *video.Result
	err    error
	block  bool // ignore the result and wait for ctx cancellation
}

func (b *stubBackend) Generate(ctx context.Context, _ string, _ *domain.Submission, onProgress video.ProgressFunc) (*video.Result, error) {
	if b.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if b.err != nil {
		return nil, b.err
	}
	_ = onProgress(ctx, 50)
	return b.result, nil
}

type stubSelector struct {
	backend video.Generator
	isDemo  bool
}

func (s *stubSelector) Select(_ context.Context) (video.Generator, bool) {
	return s.backend, s.isDemo
}

func idMessage(code domain.ErrorCode) string { return string(code) + " message" }

func validSubmission() validate.RawSubmission {
	return validate.RawSubmission{
		SessionID:  "s1",
		VideoType:  "tutorial",
		Style:      "modern",
		Duration:   "short",
		Format:     "landscape",
		UserPrompt: "Tampilkan cara membuat kopi tubruk step by step dengan detail",
	}
}

func newTestDispatcher(repo *stubRepo, backend video.Generator, isDemo bool, opts Options) *Dispatcher {
	return New(repo, ratelimit.NewMemoryLimiter(100, time.Minute), &stubSelector{backend: backend, isDemo: isDemo}, idMessage, zerolog.Nop(), opts)
}

func waitTerminal(t *testing.T, repo *stubRepo) string {
	t.Helper()
	select {
	case id := <-repo.terminal:
		return id
	case <-time.After(5 * time.Second):
		t.Fatalf("job never reached a terminal state")
		return ""
	}
}

func TestSubmitCreatesPendingJobAndCompletes(t *testing.T) {
	repo := newStubRepo()
	backend := &stubBackend{result: &video.Result{VideoURL: "https://cdn/video.mp4", ThumbnailURL: "https://cdn/thumb.jpg", IsDemo: true}}
	d := newTestDispatcher(repo, backend, true, Options{})

	result, err := d.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := uuid.Parse(result.JobID); err != nil {
		t.Fatalf("job id %q is not a uuid", result.JobID)
	}
	if !result.IsDemo {
		t.Fatalf("IsDemo = false, want true")
	}
	if !strings.Contains(result.NormalizedPrompt, "tutorial video") {
		t.Fatalf("normalized prompt = %q", result.NormalizedPrompt)
	}

	waitTerminal(t, repo)

	job, err := repo.GetByID(context.Background(), result.JobID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", job.Status)
	}
	if job.Progress != 100 {
		t.Fatalf("progress = %d, want 100", job.Progress)
	}
	if job.VideoURL == "" {
		t.Fatalf("video url empty on completed job")
	}
	if !strings.Contains(job.GeneratedPrompt, "NORMALIZED AI PROMPT") {
		t.Fatalf("audit prompt not stored: %q", job.GeneratedPrompt)
	}
	if !job.IsDemo {
		t.Fatalf("backend decision not persisted on row")
	}
}

func TestSubmitCompleteWriteFailureMarksJobFailed(t *testing.T) {
	repo := newStubRepo()
	repo.completeErr = errors.New("connection reset by peer")
	backend := &stubBackend{result: &video.Result{VideoURL: "https://cdn/video.mp4", ThumbnailURL: "https://cdn/thumb.jpg"}}
	d := newTestDispatcher(repo, backend, true, Options{})

	result, err := d.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitTerminal(t, repo)

	// A lost success write must not strand the job mid-flight.
	job, _ := repo.GetByID(context.Background(), result.JobID)
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed when the completion update is lost", job.Status)
	}
	if job.ErrorMessage != idMessage(domain.CodeInternal) {
		t.Fatalf("error message = %q, want internal copy", job.ErrorMessage)
	}
}

func TestSubmitRejectsInvalidPayloadWithoutStoreWrite(t *testing.T) {
	repo := newStubRepo()
	d := newTestDispatcher(repo, &stubBackend{}, true, Options{})

	raw := validSubmission()
	raw.VideoType = "vlog"

	_, err := d.Submit(context.Background(), raw)
	domErr, ok := domain.AsError(err)
	if !ok || domErr.Code != domain.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.jobs) != 0 {
		t.Fatalf("store has %d jobs, want 0 after rejected submission", len(repo.jobs))
	}
}

func TestSubmitRateLimited(t *testing.T) {
	repo := newStubRepo()
	backend := &stubBackend{result: &video.Result{VideoURL: "v", ThumbnailURL: "t"}}
	limiter := ratelimit.NewMemoryLimiter(1, time.Minute)
	d := New(repo, limiter, &stubSelector{backend: backend, isDemo: true}, idMessage, zerolog.Nop(), Options{})

	if _, err := d.Submit(context.Background(), validSubmission()); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := d.Submit(context.Background(), validSubmission())
	domErr, ok := domain.AsError(err)
	if !ok || domErr.Code != domain.CodeRateLimit {
		t.Fatalf("err = %v, want RATE_LIMIT", err)
	}
	if domErr.RetryAfterSeconds <= 0 {
		t.Fatalf("retryAfter = %d, want > 0", domErr.RetryAfterSeconds)
	}
}

func TestSubmitBackendFailureMarksJobFailed(t *testing.T) {
	repo := newStubRepo()
	backend := &stubBackend{err: domain.NewError(domain.CodeAPIFailure, 502, "replicate: generation failed: NSFW")}
	d := newTestDispatcher(repo, backend, false, Options{})

	result, err := d.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitTerminal(t, repo)

	job, _ := repo.GetByID(context.Background(), result.JobID)
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", job.Status)
	}
	// The row carries catalog copy, never the technical cause.
	if job.ErrorMessage != idMessage(domain.CodeAPIFailure) {
		t.Fatalf("error message = %q", job.ErrorMessage)
	}
	if strings.Contains(job.ErrorMessage, "NSFW") {
		t.Fatalf("technical detail leaked into row: %q", job.ErrorMessage)
	}
	if job.IsDemo {
		t.Fatalf("IsDemo = true on a remote-backend row")
	}
}

func TestSubmitTimeoutCeilingFailsJob(t *testing.T) {
	repo := newStubRepo()
	d := newTestDispatcher(repo, &stubBackend{block: true}, true, Options{DemoTimeout: 20 * time.Millisecond})

	result, err := d.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitTerminal(t, repo)

	job, _ := repo.GetByID(context.Background(), result.JobID)
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed after ceiling", job.Status)
	}
	if job.ErrorMessage != idMessage(domain.CodeAPITimeout) {
		t.Fatalf("error message = %q, want timeout copy", job.ErrorMessage)
	}
}

func TestSubmitStoreErrorSurfacesAsInternal(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = errors.New("connection refused")
	d := newTestDispatcher(repo, &stubBackend{}, true, Options{})

	_, err := d.Submit(context.Background(), validSubmission())
	domErr, ok := domain.AsError(err)
	if !ok || domErr.Code != domain.CodeInternal {
		t.Fatalf("err = %v, want INTERNAL_ERROR", err)
	}
}

func TestStatusValidation(t *testing.T) {
	repo := newStubRepo()
	d := newTestDispatcher(repo, &stubBackend{}, true, Options{})

	_, err := d.Status(context.Background(), "not-a-uuid")
	if domErr, ok := domain.AsError(err); !ok || domErr.Code != domain.CodeInvalidJobID {
		t.Fatalf("err = %v, want INVALID_JOB_ID", err)
	}

	_, err = d.Status(context.Background(), uuid.NewString())
	if domErr, ok := domain.AsError(err); !ok || domErr.Code != domain.CodeJobNotFound {
		t.Fatalf("err = %v, want JOB_NOT_FOUND", err)
	}
}
