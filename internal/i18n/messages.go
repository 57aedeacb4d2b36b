package i18n

import (
	"strings"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

// Supported locales. The product launched in Indonesian, so "id" is the
// canonical copy and "en" the translation.
const (
	LocaleID = "id"
	LocaleEN = "en"
)

// Normalize collapses a locale tag to a supported catalog locale.
func Normalize(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	switch locale {
	case LocaleID, "in":
		return LocaleID
	default:
		return LocaleEN
	}
}

var codeMessages = map[domain.ErrorCode]map[string]string{
	domain.CodeValidation: {
		LocaleID: "Data yang dikirim tidak valid. Silakan periksa konfigurasi video Anda.",
		LocaleEN: "The submitted data is invalid. Please review your video configuration.",
	},
	domain.CodeInvalidPrompt: {
		LocaleID: "Deskripsi video tidak valid. Pastikan deskripsi minimal 10 karakter dan tidak mengandung konten yang tidak diizinkan.",
		LocaleEN: "The video description is invalid. Make sure it is at least 10 characters and contains no disallowed content.",
	},
	domain.CodeRateLimit: {
		LocaleID: "Terlalu banyak permintaan. Silakan tunggu beberapa saat sebelum mencoba lagi.",
		LocaleEN: "Too many requests. Please wait a moment before trying again.",
	},
	domain.CodeAPITimeout: {
		LocaleID: "Pembuatan video memakan waktu terlalu lama. Silakan coba lagi.",
		LocaleEN: "Video generation took too long. Please try again.",
	},
	domain.CodeAPIFailure: {
		LocaleID: "Terjadi kendala saat membuat video. Tim kami sedang menangani masalah ini.",
		LocaleEN: "Something went wrong while creating the video. Our team is looking into it.",
	},
	domain.CodeServiceUnavailable: {
		LocaleID: "Layanan pembuatan video sedang dalam pemeliharaan. Silakan coba lagi nanti.",
		LocaleEN: "The video generation service is under maintenance. Please try again later.",
	},
	domain.CodeJobNotFound: {
		LocaleID: "Video tidak ditemukan. Mungkin sudah kadaluarsa atau ID tidak valid.",
		LocaleEN: "Video not found. It may have expired or the ID is invalid.",
	},
	domain.CodeInvalidJobID: {
		LocaleID: "Format ID video tidak valid.",
		LocaleEN: "The video ID format is invalid.",
	},
	domain.CodeInternal: {
		LocaleID: "Terjadi kesalahan sistem. Silakan coba lagi atau hubungi dukungan.",
		LocaleEN: "A system error occurred. Please try again or contact support.",
	},
}

var fieldMessages = map[string]map[string]string{
	"session_required": {
		LocaleID: "Session ID diperlukan",
		LocaleEN: "Session ID is required",
	},
	"video_type_required": {
		LocaleID: "Tipe video harus dipilih",
		LocaleEN: "A video type must be selected",
	},
	"video_type_invalid": {
		LocaleID: "Tipe video yang dipilih tidak valid",
		LocaleEN: "The selected video type is invalid",
	},
	"style_required": {
		LocaleID: "Gaya visual harus dipilih",
		LocaleEN: "A visual style must be selected",
	},
	"style_invalid": {
		LocaleID: "Gaya visual yang dipilih tidak valid",
		LocaleEN: "The selected visual style is invalid",
	},
	"duration_required": {
		LocaleID: "Durasi video harus dipilih",
		LocaleEN: "A video duration must be selected",
	},
	"duration_invalid": {
		LocaleID: "Durasi yang dipilih tidak valid",
		LocaleEN: "The selected duration is invalid",
	},
	"format_required": {
		LocaleID: "Format video harus dipilih",
		LocaleEN: "A video format must be selected",
	},
	"format_invalid": {
		LocaleID: "Format yang dipilih tidak valid",
		LocaleEN: "The selected format is invalid",
	},
	"prompt_required": {
		LocaleID: "Deskripsi video diperlukan",
		LocaleEN: "A video description is required",
	},
	"prompt_too_short": {
		LocaleID: "Deskripsi video minimal 10 karakter",
		LocaleEN: "The video description must be at least 10 characters",
	},
	"prompt_too_long": {
		LocaleID: "Deskripsi video maksimal 2000 karakter",
		LocaleEN: "The video description must be at most 2000 characters",
	},
	"prompt_forbidden": {
		LocaleID: "Deskripsi mengandung konten yang tidak diizinkan",
		LocaleEN: "The description contains disallowed content",
	},
}

var submitAccepted = map[string]string{
	LocaleID: "Pembuatan video dimulai",
	LocaleEN: "Video generation started",
}

// UserMessage resolves the safe, client-facing message for a taxonomy code.
func UserMessage(locale string, code domain.ErrorCode) string {
	loc := Normalize(locale)
	if m, ok := codeMessages[code]; ok {
		if s, ok := m[loc]; ok {
			return s
		}
	}
	return codeMessages[domain.CodeInternal][loc]
}

// Field resolves a validation message key. Unknown keys fall back to the
// general validation copy so a missing catalog entry never leaks a raw key.
func Field(locale, key string) string {
	loc := Normalize(locale)
	if m, ok := fieldMessages[key]; ok {
		if s, ok := m[loc]; ok {
			return s
		}
	}
	return UserMessage(loc, domain.CodeValidation)
}

// Fields resolves a list of validation message keys.
func Fields(locale string, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, Field(locale, key))
	}
	return out
}

// SubmitAccepted returns the success message attached to submit responses.
func SubmitAccepted(locale string) string {
	return submitAccepted[Normalize(locale)]
}
