// Package validate checks raw wizard submissions before anything touches the
// job store. It is pure: no clock, no IO, no logging.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

const (
	MinPromptLength = 10
	MaxPromptLength = 2000
)

// Closed enumeration sets. Submissions referencing anything outside these
// never reach the job store.
var (
	VideoTypes = []string{"promotional", "explainer", "social", "presentation", "story", "tutorial"}
	Styles     = []string{"modern", "cinematic", "playful", "corporate", "retro", "futuristic"}
	Durations  = []string{"short", "medium", "standard", "long"}
	Formats    = []string{"landscape", "portrait", "square"}
)

// forbiddenPatterns is the content-safety filter applied to user prompts.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(hack|exploit|malware|virus)\b`),
	regexp.MustCompile(`(?i)\b(weapon|bomb|explosive)\b`),
	regexp.MustCompile(`(?i)<script|javascript:|data:`),
	// Control characters, except the tab/newline/carriage-return a textarea
	// legitimately produces.
	regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]"),
}

// RawSubmission is the loosely-typed payload as decoded from the request body.
type RawSubmission struct {
	SessionID  string `json:"sessionId"`
	VideoType  string `json:"videoType"`
	Style      string `json:"style"`
	Duration   string `json:"duration"`
	Format     string `json:"format"`
	UserPrompt string `json:"userPrompt"`
}

// Input validates a raw submission. Enumeration and presence violations are
// accumulated and reported together as one VALIDATION_ERROR; prompt length
// and content-safety violations short-circuit immediately with the dedicated
// INVALID_PROMPT code, because the UI routes those to the prompt field rather
// than a general banner.
func Input(raw RawSubmission) (*domain.Submission, *domain.Error) {
	var fieldErrors []string

	if strings.TrimSpace(raw.SessionID) == "" {
		fieldErrors = append(fieldErrors, "session_required")
	}
	fieldErrors = appendEnumErrors(fieldErrors, raw.VideoType, VideoTypes, "video_type")
	fieldErrors = appendEnumErrors(fieldErrors, raw.Style, Styles, "style")
	fieldErrors = appendEnumErrors(fieldErrors, raw.Duration, Durations, "duration")
	fieldErrors = appendEnumErrors(fieldErrors, raw.Format, Formats, "format")

	if strings.TrimSpace(raw.UserPrompt) == "" {
		fieldErrors = append(fieldErrors, "prompt_required")
	} else {
		prompt := strings.TrimSpace(raw.UserPrompt)
		if utf8.RuneCountInString(prompt) < MinPromptLength {
			return nil, domain.NewInvalidPromptError("prompt_too_short", "prompt shorter than minimum")
		}
		if utf8.RuneCountInString(prompt) > MaxPromptLength {
			return nil, domain.NewInvalidPromptError("prompt_too_long", "prompt longer than maximum")
		}
		for _, pattern := range forbiddenPatterns {
			if pattern.MatchString(prompt) {
				return nil, domain.NewInvalidPromptError("prompt_forbidden", "prompt matched forbidden pattern "+pattern.String())
			}
		}
	}

	if len(fieldErrors) > 0 {
		return nil, domain.NewValidationError(fieldErrors)
	}

	return &domain.Submission{
		SessionID:  strings.TrimSpace(raw.SessionID),
		VideoType:  strings.ToLower(strings.TrimSpace(raw.VideoType)),
		Style:      strings.ToLower(strings.TrimSpace(raw.Style)),
		Duration:   strings.ToLower(strings.TrimSpace(raw.Duration)),
		Format:     strings.ToLower(strings.TrimSpace(raw.Format)),
		UserPrompt: strings.TrimSpace(raw.UserPrompt),
	}, nil
}

func appendEnumErrors(errs []string, value string, allowed []string, field string) []string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return append(errs, field+"_required")
	}
	for _, candidate := range allowed {
		if value == candidate {
			return errs
		}
	}
	return append(errs, field+"_invalid")
}
