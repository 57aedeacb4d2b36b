// Package handlers exposes the job API over HTTP: one action-routed endpoint
// for submit/status/watch plus a health probe.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/dispatch"
	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/i18n"
	"github.com/jeckxploit/video-generate-ai/internal/middleware"
)

type App struct {
	Dispatcher *dispatch.Dispatcher
	Feed       domain.JobFeed
	Logger     zerolog.Logger
}

func NewApp(dispatcher *dispatch.Dispatcher, feed domain.JobFeed, logger zerolog.Logger) *App {
	return &App{
		Dispatcher: dispatcher,
		Feed:       feed,
		Logger:     logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code              domain.ErrorCode `json:"code"`
	Message           string           `json:"message"`
	Retryable         bool             `json:"retryable"`
	RetryAfterSeconds int              `json:"retryAfterSeconds,omitempty"`
	Details           []string         `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// error writes the safe error envelope. Technical detail goes to the log;
// clients only ever see catalog copy.
func (a *App) error(w http.ResponseWriter, r *http.Request, err error) {
	classified := domain.Classify(err)
	locale := middleware.LocaleFromContext(r.Context())

	a.Logger.Error().
		Str("code", string(classified.Code)).
		Str("path", r.URL.Path).
		Msg(classified.Error())

	message := i18n.UserMessage(locale, classified.Code)
	var details []string
	if len(classified.FieldErrors) > 0 {
		details = i18n.Fields(locale, classified.FieldErrors)
		// Field-level copy is more actionable than the generic banner.
		message = details[0]
	}

	if classified.RetryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(classified.RetryAfterSeconds))
	}

	a.json(w, classified.StatusCode, errorResponse{
		Success: false,
		Error: errorBody{
			Code:              classified.Code,
			Message:           message,
			Retryable:         classified.Retryable,
			RetryAfterSeconds: classified.RetryAfterSeconds,
			Details:           details,
		},
	})
}
