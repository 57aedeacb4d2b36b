package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/prompt"
)

const (
	// Zeroscope v2 XL text-to-video model.
	replicateModelVersion = "lucataco/zeroscope-v2-xl:9f747673945c62801b13b84701c783929c0ee784e4748ec062204894dda1a351"

	defaultReplicateBaseURL = "https://api.replicate.com/v1"
	defaultPollInterval     = 2 * time.Second

	fallbackThumbnail = "https://images.unsplash.com/photo-1536440136628-849c177e76a1?w=640&h=360&fit=crop"
)

type ReplicateOptions struct {
	BaseURL      string
	APIToken     string
	HTTPClient   *http.Client
	PollInterval time.Duration
}

// Replicate submits a prediction to the Replicate API and mirrors that
// prediction's own lifecycle until it is terminal.
type Replicate struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	pollInterval time.Duration
	logger       zerolog.Logger
}

func NewReplicate(opts ReplicateOptions, logger zerolog.Logger) *Replicate {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultReplicateBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Replicate{
		httpClient:   client,
		baseURL:      base,
		token:        strings.TrimSpace(opts.APIToken),
		pollInterval: interval,
		logger:       logger,
	}
}

type predictionInput struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	NumFrames         int     `json:"num_frames"`
	FPS               int     `json:"fps"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	Seed              int     `json:"seed"`
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type prediction struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Progress float64         `json:"progress"`
	Output   json.RawMessage `json:"output"`
	Error    string          `json:"error"`
}

func (r *Replicate) Generate(ctx context.Context, jobID string, sub *domain.Submission, onProgress ProgressFunc) (*Result, error) {
	if r.token == "" {
		return nil, fmt.Errorf("replicate: api token is missing")
	}

	modelPrompt := prompt.Enhanced(sub.VideoType, sub.Style, sub.UserPrompt)

	width, height := 1024, 576
	if sub.Format != "landscape" {
		width, height = 576, 1024
	}

	r.logger.Info().
		Str("job_id", jobID).
		Str("model", replicateModelVersion).
		Msg("replicate: submitting prediction")

	var pred prediction
	err := r.request(ctx, http.MethodPost, "/predictions", predictionRequest{
		Version: replicateModelVersion,
		Input: predictionInput{
			Prompt:            modelPrompt,
			NegativePrompt:    prompt.NegativePrompt,
			NumFrames:         24,
			FPS:               8,
			Width:             width,
			Height:            height,
			GuidanceScale:     17.5,
			NumInferenceSteps: 50,
			Seed:              rand.Intn(1000000),
		},
	}, &pred)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("job_id", jobID).
		Str("prediction_id", pred.ID).
		Str("status", pred.Status).
		Msg("replicate: prediction created")

	for pred.Status == "starting" || pred.Status == "processing" {
		select {
		case <-time.After(r.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if err := r.request(ctx, http.MethodGet, "/predictions/"+pred.ID, nil, &pred); err != nil {
			return nil, err
		}

		if pred.Status == "failed" || pred.Status == "canceled" {
			remoteErr := pred.Error
			if remoteErr == "" {
				remoteErr = "unknown error"
			}
			return nil, domain.NewError(domain.CodeAPIFailure, 502, fmt.Sprintf("replicate: generation %s: %s", pred.Status, remoteErr))
		}

		if pred.Status == "starting" || pred.Status == "processing" {
			progress := int(pred.Progress + 0.5)
			if progress == 0 {
				// The API omits progress early on; report a coarse estimate.
				if pred.Status == "starting" {
					progress = 10
				} else {
					progress = 50
				}
			}
			if err := onProgress(ctx, progress); err != nil {
				r.logger.Warn().Err(err).Str("job_id", jobID).Msg("replicate: progress update failed")
			}
		}
	}

	videoURL := extractOutputURL(pred.Output)
	if videoURL == "" {
		return nil, domain.NewError(domain.CodeAPIFailure, 502, "replicate: no video url in prediction output")
	}

	if err := onProgress(ctx, 100); err != nil {
		r.logger.Warn().Err(err).Str("job_id", jobID).Msg("replicate: final progress update failed")
	}

	return &Result{VideoURL: videoURL, ThumbnailURL: fallbackThumbnail, IsDemo: false}, nil
}

// request performs one JSON round trip against the Replicate API.
func (r *Replicate) request(ctx context.Context, method, endpoint string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("replicate: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("replicate: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Detail == "" {
			errBody.Detail = "unknown error"
		}
		return fmt.Errorf("replicate: api error %d: %s", resp.StatusCode, errBody.Detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("replicate: decode response: %w", err)
	}
	return nil
}

// extractOutputURL handles both output shapes the API returns: a bare string
// or an array of frame/video URLs.
func extractOutputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil && len(asList) > 0 {
		return asList[0]
	}
	return ""
}

var _ Generator = (*Replicate)(nil)
