// Package client implements the caller-side job monitor: it submits a wizard
// configuration and then observes the job through two concurrent channels, a
// fixed-interval poll loop and a push subscription, merged into one state
// slot.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/prompt"
)

const defaultPollInterval = 1500 * time.Millisecond

// Config is the wizard selection to submit.
type Config struct {
	VideoType string
	Style     string
	Duration  string
	Format    string
	Prompt    string
}

// Job is the monitor's view of the submitted job.
type Job struct {
	ID           string
	Status       domain.JobStatus
	Progress     int
	VideoURL     string
	ThumbnailURL string
	ErrorMessage string
	IsDemo       bool
}

type Options struct {
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
}

// Monitor drives one job at a time. The session id is generated once and
// reused across submissions, mirroring a browser session.
type Monitor struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	sessionID    string
	logger       zerolog.Logger

	mu          sync.Mutex
	job         *Job
	cancelWatch context.CancelFunc

	updates chan Job
}

func NewMonitor(opts Options, logger zerolog.Logger) *Monitor {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Monitor{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		httpClient:   httpClient,
		pollInterval: interval,
		sessionID:    uuid.NewString(),
		logger:       logger,
		updates:      make(chan Job, 16),
	}
}

// Updates delivers every state change, including the terminal one. Slow
// consumers miss intermediate updates, never the latest: sends are
// drop-oldest.
func (m *Monitor) Updates() <-chan Job {
	return m.updates
}

// Job returns the current state, nil while idle.
func (m *Monitor) Job() *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil {
		return nil
	}
	clone := *m.job
	return &clone
}

type submitRequest struct {
	SessionID  string `json:"sessionId"`
	VideoType  string `json:"videoType"`
	Style      string `json:"style"`
	Duration   string `json:"duration"`
	Format     string `json:"format"`
	UserPrompt string `json:"userPrompt"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	IsDemo  bool   `json:"isDemo"`
	Message string `json:"message"`
	Error   *struct {
		Code              string `json:"code"`
		Message           string `json:"message"`
		RetryAfterSeconds int    `json:"retryAfterSeconds"`
	} `json:"error"`
}

// Submit issues the create request and, on success, starts both observation
// channels. Failures leave the monitor idle. The client-side directive is
// computed only for optimistic display; the server's normalization is
// authoritative.
func (m *Monitor) Submit(ctx context.Context, cfg Config) (string, error) {
	optimistic := prompt.Directive(&domain.Submission{
		VideoType:  cfg.VideoType,
		Style:      cfg.Style,
		Duration:   cfg.Duration,
		Format:     cfg.Format,
		UserPrompt: cfg.Prompt,
	})
	m.logger.Debug().Str("directive", optimistic).Msg("monitor: submitting")

	body, err := json.Marshal(submitRequest{
		SessionID:  m.sessionID,
		VideoType:  cfg.VideoType,
		Style:      cfg.Style,
		Duration:   cfg.Duration,
		Format:     cfg.Format,
		UserPrompt: cfg.Prompt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/functions/v1/generate-video?action=submit", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("monitor: submit: %w", err)
	}
	defer resp.Body.Close()

	var decoded submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("monitor: decode submit response: %w", err)
	}
	if !decoded.Success || decoded.JobID == "" {
		if decoded.Error != nil {
			return "", fmt.Errorf("monitor: submit rejected (%s): %s", decoded.Error.Code, decoded.Error.Message)
		}
		return "", fmt.Errorf("monitor: submit failed with status %d", resp.StatusCode)
	}

	watchCtx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if m.cancelWatch != nil {
		m.cancelWatch()
	}
	m.cancelWatch = cancel
	m.job = &Job{ID: decoded.JobID, Status: domain.JobStatusPending, Progress: 0, IsDemo: decoded.IsDemo}
	current := *m.job
	m.mu.Unlock()

	m.emit(current)

	go m.pollLoop(watchCtx, decoded.JobID)
	go m.subscribeLoop(watchCtx, decoded.JobID)

	return decoded.JobID, nil
}

// Reset clears the state slot and halts both observation channels. It does
// not stop server-side generation.
func (m *Monitor) Reset() {
	m.mu.Lock()
	if m.cancelWatch != nil {
		m.cancelWatch()
		m.cancelWatch = nil
	}
	m.job = nil
	m.mu.Unlock()
}

type statusPayload struct {
	ID           string           `json:"id"`
	Status       domain.JobStatus `json:"status"`
	Progress     int              `json:"progress"`
	VideoURL     string           `json:"video_url"`
	ThumbnailURL string           `json:"thumbnail_url"`
	ErrorMessage string           `json:"error_message"`
	IsDemo       bool             `json:"isDemo"`
}

// pollLoop fetches the status projection on a fixed tick. Transient failures
// are logged and retried on the next tick; a fetch error is never conflated
// with the job itself failing.
func (m *Monitor) pollLoop(ctx context.Context, jobID string) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		payload, err := m.fetchStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn().Err(err).Str("job_id", jobID).Msg("monitor: poll failed")
			continue
		}
		m.apply(*payload)
	}
}

func (m *Monitor) fetchStatus(ctx context.Context, jobID string) (*statusPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/functions/v1/generate-video?action=status&jobId="+jobID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status fetch returned %d", resp.StatusCode)
	}
	var payload statusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// subscribeLoop consumes the SSE push stream for the job, reconnecting after
// transient breaks. Polling covers any gap, so reconnects are unhurried.
func (m *Monitor) subscribeLoop(ctx context.Context, jobID string) {
	for ctx.Err() == nil {
		if err := m.consumeStream(ctx, jobID); err != nil && ctx.Err() == nil {
			m.logger.Warn().Err(err).Str("job_id", jobID).Msg("monitor: push subscription interrupted")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}
	}
}

func (m *Monitor) consumeStream(ctx context.Context, jobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/functions/v1/generate-video?action=watch&jobId="+jobID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream lives as long as the job; bypass the client-wide timeout.
	streamClient := &http.Client{Transport: m.httpClient.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("watch returned %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var view domain.View
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &view); err != nil {
			m.logger.Warn().Err(err).Msg("monitor: malformed push payload")
			continue
		}
		m.apply(statusPayload{
			ID:           view.ID,
			Status:       view.Status,
			Progress:     view.Progress,
			VideoURL:     view.VideoURL,
			ThumbnailURL: view.ThumbnailURL,
			ErrorMessage: view.ErrorMessage,
			IsDemo:       view.IsDemo,
		})
	}
	return scanner.Err()
}

// apply merges one update into the state slot. Status and terminal fields are
// last-write-wins; progress never regresses, so a stale poll response racing
// a newer push cannot walk the bar backwards. The first terminal update tears
// both channels down.
func (m *Monitor) apply(payload statusPayload) {
	m.mu.Lock()
	job := m.job
	if job == nil || job.ID != payload.ID || job.Status.Terminal() {
		m.mu.Unlock()
		return
	}

	job.Status = payload.Status
	if payload.Progress > job.Progress {
		job.Progress = payload.Progress
	}
	job.VideoURL = payload.VideoURL
	job.ThumbnailURL = payload.ThumbnailURL
	job.ErrorMessage = payload.ErrorMessage
	job.IsDemo = payload.IsDemo

	terminal := job.Status.Terminal()
	cancel := m.cancelWatch
	current := *job
	m.mu.Unlock()

	m.emit(current)

	if terminal && cancel != nil {
		cancel()
	}
}

func (m *Monitor) emit(job Job) {
	for {
		select {
		case m.updates <- job:
			return
		default:
			// Drop the oldest buffered update to make room.
			select {
			case <-m.updates:
			default:
			}
		}
	}
}
