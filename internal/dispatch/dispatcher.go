// Package dispatch orchestrates a submission: validation, rate limiting, job
// creation and the detached generation task that drives the job row to a
// terminal state.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/prompt"
	"github.com/jeckxploit/video-generate-ai/internal/providers/video"
	"github.com/jeckxploit/video-generate-ai/internal/ratelimit"
	"github.com/jeckxploit/video-generate-ai/internal/validate"
)

// BackendSelector picks the generation backend for one submission.
// *video.Factory implements it.
type BackendSelector interface {
	Select(ctx context.Context) (video.Generator, bool)
}

type Options struct {
	// Hard ceilings so a job never stays non-terminal when a backend hangs.
	// The remote ceiling is higher because it rides an external network call.
	DemoTimeout   time.Duration
	RemoteTimeout time.Duration
}

type Dispatcher struct {
	repo     domain.JobRepository
	limiter  ratelimit.Limiter
	backends BackendSelector
	logger   zerolog.Logger
	opts     Options

	// userMessage resolves the safe copy written to failed rows; injected so
	// the dispatcher stays free of catalog wiring.
	userMessage func(code domain.ErrorCode) string
}

func New(repo domain.JobRepository, limiter ratelimit.Limiter, backends BackendSelector, userMessage func(domain.ErrorCode) string, logger zerolog.Logger, opts Options) *Dispatcher {
	if opts.DemoTimeout <= 0 {
		opts.DemoTimeout = 2 * time.Minute
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = 5 * time.Minute
	}
	return &Dispatcher{
		repo:        repo,
		limiter:     limiter,
		backends:    backends,
		logger:      logger,
		opts:        opts,
		userMessage: userMessage,
	}
}

// SubmitResult is returned synchronously, before generation completes.
type SubmitResult struct {
	JobID            string
	NormalizedPrompt string
	IsDemo           bool
}

// Submit validates and rate-limits the raw payload, persists a pending job
// and spawns the generation task. The task is deliberately not awaited; the
// caller observes completion through the status channel. Each job id gets
// exactly one task, spawned here at creation.
func (d *Dispatcher) Submit(ctx context.Context, raw validate.RawSubmission) (*SubmitResult, error) {
	sub, verr := validate.Input(raw)
	if verr != nil {
		return nil, verr
	}

	limit, err := d.limiter.Allow(ctx, sub.SessionID)
	if err != nil {
		d.logger.Error().Err(err).Msg("dispatch: rate limiter unavailable")
		return nil, domain.NewError(domain.CodeInternal, 500, "rate limiter unavailable: "+err.Error())
	}
	if !limit.Allowed {
		d.logger.Warn().Str("session_id", sub.SessionID).Msg("dispatch: rate limit exceeded")
		return nil, domain.NewRateLimitError(limit.RetryAfterSeconds)
	}

	normalized := prompt.Directive(sub)
	backend, isDemo := d.backends.Select(ctx)

	job := &domain.Job{
		ID:              uuid.NewString(),
		SessionID:       sub.SessionID,
		VideoType:       sub.VideoType,
		Style:           sub.Style,
		Duration:        sub.Duration,
		Format:          sub.Format,
		UserPrompt:      sub.UserPrompt,
		GeneratedPrompt: prompt.Audit(sub),
		Status:          domain.JobStatusPending,
		Progress:        0,
		IsDemo:          isDemo,
		CreatedAt:       time.Now(),
	}
	if err := d.repo.Create(ctx, job); err != nil {
		d.logger.Error().Err(err).Msg("dispatch: job insert failed")
		return nil, domain.NewError(domain.CodeInternal, 500, "job insert failed: "+err.Error())
	}

	d.logger.Info().
		Str("job_id", job.ID).
		Bool("is_demo", isDemo).
		Str("normalized_prompt", normalized).
		Msg("dispatch: job created")

	go d.process(job.ID, sub, backend, isDemo)

	return &SubmitResult{JobID: job.ID, NormalizedPrompt: normalized, IsDemo: isDemo}, nil
}

// Status validates the id format and returns the current projection.
func (d *Dispatcher) Status(ctx context.Context, jobID string) (*domain.View, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, domain.NewError(domain.CodeInvalidJobID, 400, "invalid job id format: "+jobID)
	}
	job, err := d.repo.GetByID(ctx, jobID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewError(domain.CodeJobNotFound, 404, "job not found: "+jobID)
		}
		d.logger.Error().Err(err).Str("job_id", jobID).Msg("dispatch: job fetch failed")
		return nil, domain.NewError(domain.CodeInternal, 500, "job fetch failed: "+err.Error())
	}
	view := job.View()
	return &view, nil
}

// process runs detached from the request: its error boundary writes failure
// state to the job row instead of propagating.
func (d *Dispatcher) process(jobID string, sub *domain.Submission, backend video.Generator, isDemo bool) {
	ceiling := d.opts.RemoteTimeout
	if isDemo {
		ceiling = d.opts.DemoTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), ceiling)
	defer cancel()

	if err := d.repo.MarkProcessing(ctx, jobID); err != nil {
		d.logger.Error().Err(err).Str("job_id", jobID).Msg("dispatch: mark processing failed")
	}

	onProgress := func(ctx context.Context, progress int) error {
		return d.repo.UpdateProgress(ctx, jobID, progress)
	}

	result, err := backend.Generate(ctx, jobID, sub, onProgress)
	if err != nil {
		d.fail(jobID, err)
		return
	}

	if err := d.repo.Complete(ctx, jobID, result.VideoURL, result.ThumbnailURL); err != nil {
		// The job must still end terminal even when the success write is lost.
		d.logger.Error().Err(err).Str("job_id", jobID).Msg("dispatch: complete update failed")
		d.fail(jobID, err)
		return
	}
	d.logger.Info().Str("job_id", jobID).Str("video_url", result.VideoURL).Msg("dispatch: job completed")
}

// fail maps the technical error onto the taxonomy, logs the full detail and
// writes only the pre-approved user-facing message to the row.
func (d *Dispatcher) fail(jobID string, cause error) {
	classified := domain.Classify(cause)
	d.logger.Error().
		Err(cause).
		Str("job_id", jobID).
		Str("code", string(classified.Code)).
		Msg("dispatch: job failed")

	// The generation context may already be expired; give the terminal write
	// its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.repo.Fail(ctx, jobID, d.userMessage(classified.Code)); err != nil {
		d.logger.Error().Err(err).Str("job_id", jobID).Msg("dispatch: fail update failed")
	}
}
