package prompt

import "strings"

// NegativePrompt steers the diffusion model away from common artifacts. Sent
// verbatim with every remote generation request.
const NegativePrompt = "low quality, blurry, distorted, deformed, ugly, bad anatomy, disfigured, poorly drawn, watermark, signature, text overlay, title"

var typeOpeners = map[string]string{
	"promotional":  "A professional promotional video showcasing",
	"explainer":    "An educational video explaining",
	"social":       "Engaging social media content featuring",
	"presentation": "A professional presentation about",
	"story":        "A cinematic story about",
	"tutorial":     "A step-by-step tutorial demonstrating",
}

var styleQualities = map[string]string{
	"modern":     "modern clean aesthetic with minimalist design",
	"cinematic":  "cinematic with dramatic lighting and film grain",
	"playful":    "playful and colorful animated style",
	"corporate":  "professional corporate business style",
	"retro":      "retro vintage aesthetic with nostalgic feel",
	"futuristic": "futuristic sci-fi with neon and holographic elements",
}

// Enhanced builds the model-facing prompt for the remote backend. Richer than
// Directive because diffusion models reward explicit quality descriptors.
func Enhanced(videoType, style, userPrompt string) string {
	opener := lookup(typeOpeners, videoType, "A video about")
	quality := lookup(styleQualities, style, "modern clean style")

	content := strings.TrimSpace(whitespaceRe.ReplaceAllString(userPrompt, " "))
	if len(content) > maxDirectiveLength {
		content = truncate(content, maxDirectiveLength)
	}

	parts := []string{
		opener + ": " + content,
		quality,
		"high quality, professional, detailed, sharp focus, 4K",
		"smooth motion, natural movement, fluid transitions",
		"professional lighting, well-lit, clear visibility",
		"well-composed, balanced framing, professional cinematography",
	}
	return strings.Join(parts, ", ")
}
