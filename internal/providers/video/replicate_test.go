package video

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

func testSubmission() *domain.Submission {
	return &domain.Submission{
		SessionID:  "s1",
		VideoType:  "promotional",
		Style:      "modern",
		Duration:   "medium",
		Format:     "landscape",
		UserPrompt: "peluncuran kopi susu gula aren",
	}
}

func newTestReplicate(t *testing.T, handler http.HandlerFunc) (*Replicate, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	r := NewReplicate(ReplicateOptions{
		BaseURL:      srv.URL,
		APIToken:     "r8_test_token_value",
		HTTPClient:   srv.Client(),
		PollInterval: time.Millisecond,
	}, zerolog.Nop())
	return r, srv
}

func TestReplicateGenerateSucceeds(t *testing.T) {
	polls := 0
	var createReq predictionRequest

	r, _ := newTestReplicate(t, func(w http.ResponseWriter, req *http.Request) {
		switch {
		case req.Method == http.MethodPost && req.URL.Path == "/predictions":
			if got := req.Header.Get("Authorization"); got != "Bearer r8_test_token_value" {
				t.Errorf("authorization = %q", got)
			}
			if err := json.NewDecoder(req.Body).Decode(&createReq); err != nil {
				t.Errorf("decode create request: %v", err)
			}
			json.NewEncoder(w).Encode(prediction{ID: "p1", Status: "starting"})
		case req.Method == http.MethodGet && req.URL.Path == "/predictions/p1":
			polls++
			switch polls {
			case 1:
				json.NewEncoder(w).Encode(prediction{ID: "p1", Status: "starting"})
			case 2:
				json.NewEncoder(w).Encode(prediction{ID: "p1", Status: "processing"})
			default:
				json.NewEncoder(w).Encode(map[string]any{
					"id":     "p1",
					"status": "succeeded",
					"output": []string{"https://replicate.delivery/out/video.mp4"},
				})
			}
		default:
			t.Errorf("unexpected request: %s %s", req.Method, req.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	var progress []int
	result, err := r.Generate(context.Background(), "job-1", testSubmission(), func(_ context.Context, p int) error {
		progress = append(progress, p)
		return nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.VideoURL != "https://replicate.delivery/out/video.mp4" {
		t.Fatalf("video url = %q", result.VideoURL)
	}
	if result.IsDemo {
		t.Fatalf("IsDemo = true, want false")
	}

	// Coarse estimates while the API reports no progress, then the final 100.
	want := []int{10, 50, 100}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("progress[%d] = %d, want %d", i, progress[i], want[i])
		}
	}

	if createReq.Version != replicateModelVersion {
		t.Fatalf("version = %q, want %q", createReq.Version, replicateModelVersion)
	}
	if createReq.Input.Width != 1024 || createReq.Input.Height != 576 {
		t.Fatalf("dimensions = %dx%d, want 1024x576 for landscape", createReq.Input.Width, createReq.Input.Height)
	}
	if createReq.Input.NegativePrompt == "" {
		t.Fatalf("negative prompt missing")
	}
	if !strings.Contains(createReq.Input.Prompt, "peluncuran kopi susu gula aren") {
		t.Fatalf("prompt = %q, missing user content", createReq.Input.Prompt)
	}
}

func TestReplicateGeneratePortraitDimensions(t *testing.T) {
	var createReq predictionRequest
	r, _ := newTestReplicate(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodPost {
			json.NewDecoder(req.Body).Decode(&createReq)
			json.NewEncoder(w).Encode(map[string]any{"id": "p1", "status": "succeeded", "output": "https://replicate.delivery/out/v.mp4"})
			return
		}
		t.Errorf("unexpected request: %s %s", req.Method, req.URL.Path)
	})

	sub := testSubmission()
	sub.Format = "portrait"
	if _, err := r.Generate(context.Background(), "job-1", sub, func(_ context.Context, _ int) error { return nil }); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if createReq.Input.Width != 576 || createReq.Input.Height != 1024 {
		t.Fatalf("dimensions = %dx%d, want 576x1024 for portrait", createReq.Input.Width, createReq.Input.Height)
	}
}

func TestReplicateGenerateRemoteFailure(t *testing.T) {
	r, _ := newTestReplicate(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodPost {
			json.NewEncoder(w).Encode(prediction{ID: "p1", Status: "starting"})
			return
		}
		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: "failed", Error: "NSFW content detected"})
	})

	_, err := r.Generate(context.Background(), "job-1", testSubmission(), func(_ context.Context, _ int) error { return nil })
	if err == nil {
		t.Fatalf("expected error")
	}
	domErr, ok := domain.AsError(err)
	if !ok {
		t.Fatalf("err = %v, want taxonomy error", err)
	}
	if domErr.Code != domain.CodeAPIFailure {
		t.Fatalf("code = %s, want %s", domErr.Code, domain.CodeAPIFailure)
	}
	if !strings.Contains(err.Error(), "NSFW content detected") {
		t.Fatalf("err = %v, missing remote error text", err)
	}
}

func TestReplicateGenerateTimeout(t *testing.T) {
	r, _ := newTestReplicate(t, func(w http.ResponseWriter, req *http.Request) {
		// Never leaves "processing"; the caller's deadline must end the loop.
		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: "processing"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Generate(ctx, "job-1", testSubmission(), func(_ context.Context, _ int) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context deadline", err)
	}
}

func TestReplicateGenerateAPIErrorDetail(t *testing.T) {
	r, _ := newTestReplicate(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid token"})
	})

	_, err := r.Generate(context.Background(), "job-1", testSubmission(), func(_ context.Context, _ int) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "Invalid token") {
		t.Fatalf("err = %v, want api error detail", err)
	}
}

func TestReplicateGenerateWithoutToken(t *testing.T) {
	r := NewReplicate(ReplicateOptions{BaseURL: "http://localhost:0"}, zerolog.Nop())
	if _, err := r.Generate(context.Background(), "job-1", testSubmission(), nil); err == nil {
		t.Fatalf("expected error with empty token")
	}
}

func TestExtractOutputURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string output", `"https://example.com/v.mp4"`, "https://example.com/v.mp4"},
		{"list output", `["https://example.com/a.mp4", "https://example.com/b.mp4"]`, "https://example.com/a.mp4"},
		{"empty list", `[]`, ""},
		{"null", `null`, ""},
		{"missing", ``, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractOutputURL(json.RawMessage(tc.raw)); got != tc.want {
				t.Fatalf("extractOutputURL(%s) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
