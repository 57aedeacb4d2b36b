package video

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

// Curated stock pools keyed by category. The selection rule makes demo output
// feel configuration-aware without a real model behind it.
var (
	educationVideos = []string{
		"https://storage.googleapis.com/gtv-videos-bucket/sample/TearsOfSteel.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4",
	}
	socialVideos = []string{
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerFun.mp4",
	}
	cinematicVideos = []string{
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/TearsOfSteel.mp4",
	}
	animatedVideos = []string{
		"https://storage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
	}
	corporateVideos = []string{
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerJoyrides.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerMeltdowns.mp4",
	}
	promotionalVideos = []string{
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
	}

	thumbnailsByCategory = map[string][]string{
		"education": {
			"https://images.unsplash.com/photo-1516321318423-f06f85e504b3?w=640&h=360&fit=crop",
			"https://images.unsplash.com/photo-1434030216411-0b793f4b4173?w=640&h=360&fit=crop",
		},
		"social": {
			"https://images.unsplash.com/photo-1611162616305-c69b3fa7fbe0?w=640&h=360&fit=crop",
			"https://images.unsplash.com/photo-1432888498266-38ffec3eaf0a?w=640&h=360&fit=crop",
		},
		"cinematic": {
			"https://images.unsplash.com/photo-1536440136628-849c177e76a1?w=640&h=360&fit=crop",
			"https://images.unsplash.com/photo-1485846234645-a62644f84728?w=640&h=360&fit=crop",
		},
		"animated": {
			"https://images.unsplash.com/photo-1534447677768-be436bb09401?w=640&h=360&fit=crop",
			"https://images.unsplash.com/photo-1578632767115-351597cf2477?w=640&h=360&fit=crop",
		},
		"corporate": {
			"https://images.unsplash.com/photo-1556761175-4b46a572b786?w=640&h=360&fit=crop",
			"https://images.unsplash.com/photo-1497366216548-37526070297c?w=640&h=360&fit=crop",
		},
		"promotional": {
			"https://images.unsplash.com/photo-1557804506-669a67965ba0?w=640&h=360&fit=crop",
			"https://images.unsplash.com/photo-1551434678-e076c223a692?w=640&h=360&fit=crop",
		},
	}
)

// demoStage is one checkpoint of the scripted progress walk.
type demoStage struct {
	progress int
	delay    time.Duration
}

var demoStages = []demoStage{
	{5, 500 * time.Millisecond},
	{15, time.Second},
	{25, 1500 * time.Millisecond},
	{40, 2 * time.Second},
	{55, 2 * time.Second},
	{70, 1500 * time.Millisecond},
	{85, 1500 * time.Millisecond},
	{95, time.Second},
}

// Demo walks a fixed progress sequence with artificial delays, then returns a
// stock asset matched to the submitted configuration.
type Demo struct {
	logger zerolog.Logger
	rand   *rand.Rand

	// delayScale shrinks stage delays; tests set it to 0.
	delayScale float64
}

type DemoOption func(*Demo)

// WithDelayScale scales the artificial stage delays (1 is real time, 0 skips
// them entirely).
func WithDelayScale(scale float64) DemoOption {
	return func(d *Demo) { d.delayScale = scale }
}

func NewDemo(logger zerolog.Logger, opts ...DemoOption) *Demo {
	d := &Demo{
		logger:     logger,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		delayScale: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Demo) Generate(ctx context.Context, jobID string, sub *domain.Submission, onProgress ProgressFunc) (*Result, error) {
	d.logger.Info().
		Str("job_id", jobID).
		Str("video_type", sub.VideoType).
		Str("style", sub.Style).
		Msg("demo: starting staged generation")

	for _, stage := range demoStages {
		delay := time.Duration(float64(stage.delay) * d.delayScale)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if err := onProgress(ctx, stage.progress); err != nil {
			d.logger.Warn().Err(err).Str("job_id", jobID).Msg("demo: progress update failed")
		}
	}

	category, videos := selectPool(sub.VideoType, sub.Style)
	videoURL := videos[d.rand.Intn(len(videos))]

	thumbnails, ok := thumbnailsByCategory[category]
	if !ok {
		thumbnails = thumbnailsByCategory["promotional"]
	}
	thumbnailURL := thumbnails[d.rand.Intn(len(thumbnails))]

	d.logger.Info().
		Str("job_id", jobID).
		Str("category", category).
		Str("video_url", videoURL).
		Msg("demo: selected asset")

	return &Result{VideoURL: videoURL, ThumbnailURL: thumbnailURL, IsDemo: true}, nil
}

// selectPool picks an asset pool: style rules first, then videoType rules,
// defaulting to promotional.
func selectPool(videoType, style string) (string, []string) {
	switch style {
	case "cinematic":
		return "cinematic", cinematicVideos
	case "playful", "retro":
		return "animated", animatedVideos
	case "corporate":
		return "corporate", corporateVideos
	case "futuristic", "modern":
		// Neutral styles defer to the type-based rules below, except for
		// social content which has its own pool.
		if videoType == "social" {
			return "social", socialVideos
		}
	}

	switch videoType {
	case "tutorial", "explainer", "presentation":
		return "education", educationVideos
	case "social":
		return "social", socialVideos
	case "story":
		return "cinematic", cinematicVideos
	case "promotional":
		return "promotional", promotionalVideos
	}

	return "promotional", promotionalVideos
}

var _ Generator = (*Demo)(nil)
