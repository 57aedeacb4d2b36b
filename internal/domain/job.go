package domain

import "time"

// JobStatus enumerates job lifecycle states. The machine only moves forward:
// pending -> processing -> completed | failed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// rank orders statuses along the forward-only lifecycle.
func (s JobStatus) rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusProcessing:
		return 1
	case JobStatusCompleted, JobStatusFailed:
		return 2
	default:
		return -1
	}
}

// Before reports whether s precedes other in the lifecycle.
func (s JobStatus) Before(other JobStatus) bool {
	return s.rank() < other.rank()
}

// Submission is the validated, trimmed, enum-lowercased form of a raw wizard
// payload. Instances only exist after validation succeeded.
type Submission struct {
	SessionID  string
	VideoType  string
	Style      string
	Duration   string
	Format     string
	UserPrompt string
}

// Job encapsulates one request-to-generate-a-video lifecycle record.
type Job struct {
	ID              string
	SessionID       string
	VideoType       string
	Style           string
	Duration        string
	Format          string
	UserPrompt      string
	GeneratedPrompt string
	Status          JobStatus
	Progress        int
	VideoURL        string
	ThumbnailURL    string
	ErrorMessage    string
	IsDemo          bool
	CreatedAt       time.Time
	CompletedAt     *time.Time
}

// View is the client-facing projection of a Job. It never carries internal
// fields such as the audit prompt or the session id.
type View struct {
	ID           string     `json:"id"`
	Status       JobStatus  `json:"status"`
	Progress     int        `json:"progress"`
	VideoURL     string     `json:"video_url,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	IsDemo       bool       `json:"isDemo"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// View projects the job for client consumption.
func (j *Job) View() View {
	return View{
		ID:           j.ID,
		Status:       j.Status,
		Progress:     j.Progress,
		VideoURL:     j.VideoURL,
		ThumbnailURL: j.ThumbnailURL,
		ErrorMessage: j.ErrorMessage,
		IsDemo:       j.IsDemo,
		CreatedAt:    j.CreatedAt,
		CompletedAt:  j.CompletedAt,
	}
}
