package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markerlens/platform/internal/errors"
	"github.com/markerlens/platform/internal/orchestrator"
	"github.com/markerlens/platform/internal/orchestrator/playback"
	"github.com/markerlens/platform/internal/vision"
)

// mockOrchestrator for testing.
type mockOrchestrator struct {
	locked      bool
	playing     bool
	viewport    vision.Viewport
	startErr    error
	stopped     bool
	detections  chan orchestrator.Detection
	playbackCh  chan playback.Event
	viewportErr error
}

func newMockOrchestrator() *mockOrchestrator {
	return &mockOrchestrator{
		detections: make(chan orchestrator.Detection, 10),
		playbackCh: make(chan playback.Event, 10),
	}
}

func (m *mockOrchestrator) Detections() <-chan orchestrator.Detection { return m.detections }
func (m *mockOrchestrator) PlaybackEvents() <-chan playback.Event     { return m.playbackCh }
func (m *mockOrchestrator) StartPlayback(ctx context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.playing = true
	return nil
}
func (m *mockOrchestrator) StopPlayback() { m.playing = false; m.stopped = true }
func (m *mockOrchestrator) SetViewport(ctx context.Context, v vision.Viewport) error {
	if m.viewportErr != nil {
		return m.viewportErr
	}
	m.viewport = v
	return nil
}
func (m *mockOrchestrator) Status() orchestrator.Status {
	return orchestrator.Status{Locked: m.locked, Playing: m.playing, Phase: "idle"}
}

func TestCORSMiddleware(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Test OPTIONS request
	req := httptest.NewRequest("OPTIONS", "/test", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want %d", rec.Code, http.StatusOK)
	}
	if v := rec.Header().Get("Access-Control-Allow-Origin"); v != "*" {
		t.Errorf("CORS origin = %q, want %q", v, "*")
	}

	// Test regular request
	req = httptest.NewRequest("GET", "/test", http.NoBody)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestStatusEndpoint(t *testing.T) {
	orch := newMockOrchestrator()
	orch.locked = true
	s := New(orch)

	req := httptest.NewRequest("GET", "/api/status", http.NoBody)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var status orchestrator.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Locked {
		t.Error("status should report locked")
	}
}

func TestPlaybackStartEndpoint(t *testing.T) {
	orch := newMockOrchestrator()
	s := New(orch)

	req := httptest.NewRequest("POST", "/api/playback/start", http.NoBody)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !orch.playing {
		t.Error("orchestrator should be playing")
	}
}

func TestPlaybackStartNotLocked(t *testing.T) {
	orch := newMockOrchestrator()
	orch.startErr = errors.New(errors.PlaybackNotLocked, "marker not locked")
	s := New(orch)

	req := httptest.NewRequest("POST", "/api/playback/start", http.NoBody)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Error("error body should carry a message")
	}
}

func TestPlaybackStopEndpoint(t *testing.T) {
	orch := newMockOrchestrator()
	orch.playing = true
	s := New(orch)

	req := httptest.NewRequest("POST", "/api/playback/stop", http.NoBody)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !orch.stopped {
		t.Error("orchestrator should be stopped")
	}
}

func TestViewportEndpoint(t *testing.T) {
	orch := newMockOrchestrator()
	s := New(orch)

	body := `{"left": 10, "top": 20, "width": 640, "height": 480}`
	req := httptest.NewRequest("POST", "/api/viewport", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := vision.Viewport{Left: 10, Top: 20, Width: 640, Height: 480}
	if orch.viewport != want {
		t.Errorf("viewport = %+v, want %+v", orch.viewport, want)
	}
}

func TestViewportEndpointRejectsInvalid(t *testing.T) {
	orch := newMockOrchestrator()
	orch.viewportErr = errors.New(errors.InvalidArgument, "invalid viewport")
	s := New(orch)

	body := `{"left": 0, "top": 0, "width": -1, "height": 0}`
	req := httptest.NewRequest("POST", "/api/viewport", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestViewportEndpointBadJSON(t *testing.T) {
	s := New(newMockOrchestrator())

	req := httptest.NewRequest("POST", "/api/viewport", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMessageTypes(t *testing.T) {
	// Test message serialization
	tests := []struct {
		name    string
		msg     interface{}
		typeVal string
	}{
		{
			"detection",
			DetectionMessage{Type: "detection", Locked: true, Count: 5, Score: 1200},
			"detection",
		},
		{
			"playback",
			PlaybackMessage{Type: "playback", Phase: "phase1"},
			"playback",
		},
		{
			"error",
			ErrorMessage{Type: "error", Message: "rate limit exceeded"},
			"error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("json.Marshal error: %v", err)
			}

			var base Message
			if err := json.Unmarshal(data, &base); err != nil {
				t.Fatalf("json.Unmarshal error: %v", err)
			}

			if base.Type != tt.typeVal {
				t.Errorf("type = %q, want %q", base.Type, tt.typeVal)
			}
		})
	}
}

func TestViewportMessageParsing(t *testing.T) {
	input := `{"type": "viewport", "left": 5.5, "top": 8, "width": 360, "height": 360}`

	var vp ViewportMessage
	if err := json.Unmarshal([]byte(input), &vp); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}

	if vp.Type != "viewport" {
		t.Errorf("type = %q, want %q", vp.Type, "viewport")
	}
	if vp.Left != 5.5 || vp.Width != 360 {
		t.Errorf("geometry = %+v", vp)
	}
}

func TestDetectionMessageOmitsEmptyOverlay(t *testing.T) {
	data, err := json.Marshal(DetectionMessage{Type: "detection"})
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	if strings.Contains(string(data), "overlay") {
		t.Errorf("unlocked detection should omit overlay: %s", data)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := &rateLimiter{}

	for i := 0; i < RateLimitMessages; i++ {
		if !rl.allow() {
			t.Fatalf("message %d should be allowed", i)
		}
	}
	if rl.allow() {
		t.Error("message over the limit should be rejected")
	}
}
