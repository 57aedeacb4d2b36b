package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/i18n"
	"github.com/jeckxploit/video-generate-ai/internal/middleware"
	"github.com/jeckxploit/video-generate-ai/internal/validate"
)

// GenerateVideo is the single action-routed endpoint:
//
//	POST ?action=submit           submit a new job
//	GET  ?action=status&jobId=ID  read the current projection
//	GET  ?action=watch&jobId=ID   SSE stream of row changes
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")

	switch {
	case r.Method == http.MethodPost && action == "submit":
		a.submit(w, r)
	case r.Method == http.MethodGet && action == "status":
		a.status(w, r)
	case r.Method == http.MethodGet && action == "watch":
		a.watch(w, r)
	default:
		a.error(w, r, domain.NewError(domain.CodeValidation, 400, "invalid action or method"))
	}
}

type submitResponse struct {
	Success          bool   `json:"success"`
	JobID            string `json:"jobId"`
	NormalizedPrompt string `json:"normalizedPrompt"`
	IsDemo           bool   `json:"isDemo"`
	Message          string `json:"message"`
}

func (a *App) submit(w http.ResponseWriter, r *http.Request) {
	var raw validate.RawSubmission
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		a.error(w, r, domain.NewError(domain.CodeValidation, 400, "invalid json body: "+err.Error()))
		return
	}

	result, err := a.Dispatcher.Submit(r.Context(), raw)
	if err != nil {
		a.error(w, r, err)
		return
	}

	a.json(w, http.StatusOK, submitResponse{
		Success:          true,
		JobID:            result.JobID,
		NormalizedPrompt: result.NormalizedPrompt,
		IsDemo:           result.IsDemo,
		Message:          i18n.SubmitAccepted(middleware.LocaleFromContext(r.Context())),
	})
}

type statusResponse struct {
	ID           string           `json:"id"`
	Status       domain.JobStatus `json:"status"`
	Progress     int              `json:"progress"`
	VideoURL     string           `json:"video_url,omitempty"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	IsDemo       bool             `json:"isDemo"`
}

func (a *App) status(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		a.error(w, r, domain.NewError(domain.CodeValidation, 400, "jobId parameter is required"))
		return
	}

	view, err := a.Dispatcher.Status(r.Context(), jobID)
	if err != nil {
		a.error(w, r, err)
		return
	}

	a.json(w, http.StatusOK, statusResponse{
		ID:           view.ID,
		Status:       view.Status,
		Progress:     view.Progress,
		VideoURL:     view.VideoURL,
		ThumbnailURL: view.ThumbnailURL,
		ErrorMessage: view.ErrorMessage,
		CreatedAt:    view.CreatedAt,
		CompletedAt:  view.CompletedAt,
		IsDemo:       view.IsDemo,
	})
}

// watch streams row changes for one job as server-sent events. The stream
// opens with the current snapshot and closes after a terminal update, so a
// client that subscribes late still converges.
func (a *App) watch(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		a.error(w, r, domain.NewError(domain.CodeValidation, 400, "jobId parameter is required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, r, domain.NewError(domain.CodeInternal, 500, "streaming unsupported"))
		return
	}

	// Subscribe before reading the snapshot so a terminal transition in
	// between is still delivered and the stream cannot hang open.
	updates, err := a.Feed.Subscribe(r.Context(), jobID)
	if err != nil {
		a.error(w, r, err)
		return
	}

	snapshot, err := a.Dispatcher.Status(r.Context(), jobID)
	if err != nil {
		a.error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Generation can outlive the server write timeout; lift it for this
	// stream only.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	writeEvent := func(view domain.View) bool {
		payload, err := json.Marshal(view)
		if err != nil {
			return false
		}
		if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
			return false
		}
		flusher.Flush()
		return !view.Status.Terminal()
	}

	if !writeEvent(*snapshot) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case view, ok := <-updates:
			if !ok {
				return
			}
			if !writeEvent(view) {
				return
			}
		}
	}
}
