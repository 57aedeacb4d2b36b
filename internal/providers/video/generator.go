// Package video holds the generation backends. Two implementations exist: a
// demo backend returning curated stock assets after a scripted progress
// sequence, and a Replicate-backed remote backend.
package video

import (
	"context"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

// ProgressFunc receives progress percentages (0-100) as generation advances.
// Errors are logged by the dispatcher but never abort the generation.
type ProgressFunc func(ctx context.Context, progress int) error

// Result is the terminal success payload of a generation. A successful return
// implies progress 100.
type Result struct {
	VideoURL     string
	ThumbnailURL string
	IsDemo       bool
}

// Generator is the backend contract. Failures are reported through the error
// return, never a sentinel Result.
type Generator interface {
	Generate(ctx context.Context, jobID string, sub *domain.Submission, onProgress ProgressFunc) (*Result, error)
}
