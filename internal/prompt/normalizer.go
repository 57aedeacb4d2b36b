// Package prompt turns a normalized submission into the bounded directive
// strings consumed by the generation backends. Deterministic, no side effects.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

const (
	maxUserContentLength = 200
	maxDirectiveLength   = 500
)

var videoTypeEnglish = map[string]string{
	"promotional":  "promotional",
	"explainer":    "educational explainer",
	"social":       "social media",
	"presentation": "presentation",
	"story":        "storytelling",
	"tutorial":     "tutorial",
}

var styleEnglish = map[string]string{
	"modern":     "modern clean style",
	"cinematic":  "cinematic",
	"playful":    "playful animated",
	"corporate":  "professional corporate",
	"retro":      "retro vintage",
	"futuristic": "futuristic sci-fi",
}

var durationEnglish = map[string]string{
	"short":    "15 seconds",
	"medium":   "30 seconds",
	"standard": "60 seconds",
	"long":     "2 minutes",
}

var formatEnglish = map[string]string{
	"landscape": "horizontal 16:9",
	"portrait":  "vertical 9:16",
	"square":    "square 1:1",
}

var motionStyle = map[string]string{
	"promotional":  "dynamic camera movement",
	"explainer":    "smooth transitions",
	"social":       "fast-paced editing",
	"presentation": "steady professional shots",
	"story":        "cinematic camera flow",
	"tutorial":     "clear focused framing",
}

// fillerWords are dropped from user content so the directive stays focused.
// Mixed Indonesian/English because that is what users actually type.
var fillerWords = []string{
	"tolong", "buatkan", "buat", "saya", "ingin", "mau", "video", "tentang",
	"please", "create", "make", "want", "need", "about", "the", "a", "an",
	"yang", "untuk", "dengan", "dan", "atau", "ini", "itu",
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	bracketsRe   = regexp.MustCompile(`[<>{}\[\]\\]`)
	quotesRe     = regexp.MustCompile("[\"'`]")
	fillerRes    = buildFillerRes()
)

func buildFillerRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(fillerWords))
	for _, word := range fillerWords {
		res = append(res, regexp.MustCompile(`(?i)\b`+word+`\b`))
	}
	return res
}

// CleanUserInput collapses whitespace, strips characters that break prompts
// and truncates to a word boundary near the content budget.
func CleanUserInput(input string) string {
	cleaned := bracketsRe.ReplaceAllString(input, "")
	cleaned = quotesRe.ReplaceAllString(cleaned, "'")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))

	if len(cleaned) > maxUserContentLength {
		cleaned = truncate(cleaned, maxUserContentLength)
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxUserContentLength*7/10 {
			cleaned = cleaned[:lastSpace]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// contentFocus removes filler words and capitalizes the result. Falls back to
// the cleaned input when filtering leaves nothing behind.
func contentFocus(userPrompt string) string {
	normalized := CleanUserInput(userPrompt)

	focused := strings.ToLower(normalized)
	for _, re := range fillerRes {
		focused = re.ReplaceAllString(focused, " ")
	}
	focused = strings.TrimSpace(whitespaceRe.ReplaceAllString(focused, " "))
	if focused == "" {
		return normalized
	}
	return capitalize(focused)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Directive builds the normalized generation directive:
// "[Style] [type] video about [content], duration [X], [format], [motion]."
// The result never exceeds the directive budget.
func Directive(sub *domain.Submission) string {
	style := lookup(styleEnglish, sub.Style, "modern clean style")
	typ := lookup(videoTypeEnglish, sub.VideoType, "promotional")
	duration := lookup(durationEnglish, sub.Duration, "30 seconds")
	format := lookup(formatEnglish, sub.Format, "horizontal 16:9")
	motion := lookup(motionStyle, sub.VideoType, "smooth camera movement")

	content := contentFocus(sub.UserPrompt)
	directive := assemble(style, typ, content, duration, format, motion)

	if len(directive) > maxDirectiveLength {
		// Reserve room for the fixed parts and shorten only the content.
		budget := maxDirectiveLength - 150
		short := content
		if len(short) > budget {
			short = truncate(short, budget)
			if lastSpace := strings.LastIndex(short, " "); lastSpace > 0 {
				short = short[:lastSpace]
			}
		}
		directive = assemble(style, typ, short, duration, format, motion)
	}

	return directive
}

func assemble(style, typ, content, duration, format, motion string) string {
	parts := []string{capitalize(style) + " " + typ + " video"}
	if content != "" {
		parts = append(parts, "about "+content)
	}
	parts = append(parts, "duration "+duration, format, motion)
	return strings.Join(parts, ", ") + "."
}

// Audit builds the detailed internal prompt stored on the job row for
// debugging. It is never sent to a provider.
func Audit(sub *domain.Submission) string {
	return strings.TrimSpace(fmt.Sprintf(`[INTERNAL REFERENCE - NOT FOR AI API]
Type: %s
Style: %s
Duration: %s
Format: %s
Original User Input: %s
---
NORMALIZED AI PROMPT:
%s`, sub.VideoType, sub.Style, sub.Duration, sub.Format, sub.UserPrompt, Directive(sub)))
}

func lookup(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}
