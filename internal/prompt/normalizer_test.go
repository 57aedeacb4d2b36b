package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

func TestCleanUserInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "produk   kopi\n\tlokal", "produk kopi lokal"},
		{"strips brackets", "promo <b>spesial</b> {diskon}", "promo bspesial/b diskon"},
		{"normalizes quotes", `kopi "arabica" dari 'Gayo'`, "kopi 'arabica' dari 'Gayo'"},
		{"trims", "   kopi susu   ", "kopi susu"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanUserInput(tc.input); got != tc.want {
				t.Fatalf("CleanUserInput(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCleanUserInputTruncatesAtWordBoundary(t *testing.T) {
	input := strings.Repeat("katakata ", 40) // well past the content budget
	got := CleanUserInput(input)

	if len(got) > maxUserContentLength {
		t.Fatalf("len = %d, want <= %d", len(got), maxUserContentLength)
	}
	if strings.HasSuffix(got, " ") {
		t.Fatalf("trailing space after truncation: %q", got)
	}
	// Cut must land between words, not inside one.
	for _, word := range strings.Fields(got) {
		if word != "katakata" {
			t.Fatalf("truncation split a word: %q", word)
		}
	}
}

func TestCleanUserInputTruncatesOnRuneBoundary(t *testing.T) {
	// 240 bytes of 3-byte runes with no spaces: the byte cut at the content
	// budget lands mid-rune and no word boundary can rescue it.
	input := strings.Repeat("日", 80)
	got := CleanUserInput(input)

	if len(got) > maxUserContentLength {
		t.Fatalf("len = %d, want <= %d", len(got), maxUserContentLength)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
}

func TestDirectiveKeepsValidUTF8ForUnspacedMultibytePrompt(t *testing.T) {
	sub := &domain.Submission{
		VideoType:  "tutorial",
		Style:      "modern",
		Duration:   "short",
		Format:     "landscape",
		UserPrompt: strings.Repeat("世", 300),
	}
	got := Directive(sub)

	if len(got) > maxDirectiveLength {
		t.Fatalf("len = %d, want <= %d", len(got), maxDirectiveLength)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("directive is not valid UTF-8: %q", got)
	}
}

func TestContentFocusDropsFillerWords(t *testing.T) {
	got := contentFocus("Tolong buatkan saya video tentang kopi susu gula aren")
	want := "Kopi susu gula aren"
	if got != want {
		t.Fatalf("contentFocus = %q, want %q", got, want)
	}
}

func TestContentFocusFallsBackWhenAllFiller(t *testing.T) {
	got := contentFocus("tolong buatkan video")
	if got == "" {
		t.Fatalf("expected fallback to cleaned input, got empty string")
	}
}

func TestDirectiveAssembly(t *testing.T) {
	sub := &domain.Submission{
		VideoType:  "tutorial",
		Style:      "modern",
		Duration:   "short",
		Format:     "landscape",
		UserPrompt: "cara membuat kopi tubruk",
	}

	got := Directive(sub)
	want := "Modern clean style tutorial video, about Cara membuat kopi tubruk, duration 15 seconds, horizontal 16:9, clear focused framing."
	if got != want {
		t.Fatalf("Directive = %q, want %q", got, want)
	}
}

func TestDirectiveUnknownEnumsUseDefaults(t *testing.T) {
	sub := &domain.Submission{
		VideoType:  "unknown",
		Style:      "unknown",
		Duration:   "unknown",
		Format:     "unknown",
		UserPrompt: "peluncuran produk baru",
	}

	got := Directive(sub)
	for _, fragment := range []string{"Modern clean style", "promotional video", "30 seconds", "horizontal 16:9", "smooth camera movement"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("Directive = %q, missing %q", got, fragment)
		}
	}
}

func TestDirectiveNeverExceedsBudget(t *testing.T) {
	sub := &domain.Submission{
		VideoType:  "story",
		Style:      "cinematic",
		Duration:   "long",
		Format:     "portrait",
		UserPrompt: strings.Repeat("narasi panjang mengenai perjalanan seorang barista ", 30),
	}

	got := Directive(sub)
	if len(got) > maxDirectiveLength {
		t.Fatalf("len = %d, want <= %d", len(got), maxDirectiveLength)
	}
	if !strings.HasSuffix(got, ".") {
		t.Fatalf("directive missing terminator: %q", got)
	}
}

func TestAuditEmbedsDirectiveAndOriginalInput(t *testing.T) {
	sub := &domain.Submission{
		VideoType:  "social",
		Style:      "playful",
		Duration:   "medium",
		Format:     "square",
		UserPrompt: "behind the scenes di kedai kopi",
	}

	got := Audit(sub)
	if !strings.Contains(got, sub.UserPrompt) {
		t.Fatalf("audit prompt missing original input")
	}
	if !strings.Contains(got, Directive(sub)) {
		t.Fatalf("audit prompt missing normalized directive")
	}
	if !strings.Contains(got, "NOT FOR AI API") {
		t.Fatalf("audit prompt missing internal marker")
	}
}

func TestEnhancedPrompt(t *testing.T) {
	got := Enhanced("tutorial", "cinematic", "membuat latte art untuk pemula")

	if !strings.HasPrefix(got, "A step-by-step tutorial demonstrating: membuat latte art untuk pemula") {
		t.Fatalf("Enhanced = %q, wrong opener", got)
	}
	if !strings.Contains(got, "cinematic with dramatic lighting and film grain") {
		t.Fatalf("Enhanced = %q, missing style quality", got)
	}
	if !strings.Contains(got, "4K") {
		t.Fatalf("Enhanced = %q, missing quality descriptors", got)
	}
}

func TestEnhancedTruncatesLongPromptOnRuneBoundary(t *testing.T) {
	// 600 bytes of 3-byte runes: the directive-budget cut falls mid-rune.
	got := Enhanced("tutorial", "modern", strings.Repeat("世", 200))
	if !utf8.ValidString(got) {
		t.Fatalf("Enhanced produced invalid UTF-8: %q", got)
	}
}

func TestEnhancedUnknownTypeUsesGenericOpener(t *testing.T) {
	got := Enhanced("mystery", "mystery", "sesuatu yang baru")
	if !strings.HasPrefix(got, "A video about: sesuatu yang baru") {
		t.Fatalf("Enhanced = %q, want generic opener", got)
	}
}
