// Package server provides HTTP and WebSocket handlers
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/markerlens/platform/internal/errors"
	"github.com/markerlens/platform/internal/orchestrator"
	"github.com/markerlens/platform/internal/orchestrator/playback"
	"github.com/markerlens/platform/internal/trace"
	"github.com/markerlens/platform/internal/vision"
)

// Orchestrator is the surface the server drives.
type Orchestrator interface {
	Detections() <-chan orchestrator.Detection
	PlaybackEvents() <-chan playback.Event
	StartPlayback(ctx context.Context) error
	StopPlayback()
	SetViewport(ctx context.Context, v vision.Viewport) error
	Status() orchestrator.Status
}

// Message types.
type Message struct {
	Type string `json:"type"`
}

type DetectionMessage struct {
	Type    string       `json:"type"`
	Locked  bool         `json:"locked"`
	Count   int          `json:"count"`
	Score   float64      `json:"score"`
	Overlay *vision.Rect `json:"overlay,omitempty"`
}

type PlaybackMessage struct {
	Type  string `json:"type"`
	Phase string `json:"phase"`
	Done  bool   `json:"done"`
}

type ViewportMessage struct {
	Type    string  `json:"type"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	TraceID string  `json:"trace_id,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	// Prune old timestamps
	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	orch       Orchestrator
	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	rateLimits map[*websocket.Conn]*rateLimiter
}

// New creates a new server.
func New(orch Orchestrator) *Server {
	s := &Server{
		orch:       orch,
		conns:      make(map[*websocket.Conn]struct{}),
		rateLimits: make(map[*websocket.Conn]*rateLimiter),
	}

	// Start broadcasters
	go s.broadcastDetections()
	go s.broadcastPlayback()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/playback/start", s.handlePlaybackStart)
	mux.HandleFunc("POST /api/playback/stop", s.handlePlaybackStop)
	mux.HandleFunc("POST /api/viewport", s.handleViewport)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	// Get trace context from HTTP upgrade request
	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		// Check rate limit
		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(baseCtx, conn, ErrorMessage{
				Type:    "error",
				Message: "rate limit exceeded",
			})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		// Messages may carry a trace_id from the page
		ctx := baseCtx
		if tc, ok := trace.ExtractFromJSON(msg); ok {
			ctx = trace.WithContext(ctx, tc)
		} else {
			ctx, _ = trace.EnsureContext(ctx)
		}

		switch base.Type {
		case "play":
			if err := s.orch.StartPlayback(ctx); err != nil {
				trace.Logger(ctx).Warn("playback start rejected", "error", err)
				_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: err.Error()})
			}
		case "stop":
			s.orch.StopPlayback()
		case "viewport":
			var vp ViewportMessage
			if err := json.Unmarshal(msg, &vp); err != nil {
				continue
			}
			v := vision.Viewport{Left: vp.Left, Top: vp.Top, Width: vp.Width, Height: vp.Height}
			if err := s.orch.SetViewport(ctx, v); err != nil {
				_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: err.Error()})
			}
		}
	}
}

func (s *Server) broadcastDetections() {
	for d := range s.orch.Detections() {
		msg := DetectionMessage{
			Type:    "detection",
			Locked:  d.Locked,
			Count:   d.Count,
			Score:   d.Score,
			Overlay: d.Overlay,
		}
		s.broadcast(msg)
	}
}

func (s *Server) broadcastPlayback() {
	for e := range s.orch.PlaybackEvents() {
		msg := PlaybackMessage{
			Type:  "playback",
			Phase: e.Phase.String(),
			Done:  e.Done,
		}
		s.broadcast(msg)
	}
}

func (s *Server) broadcast(msg interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.conns {
		go func(c *websocket.Conn) {
			_ = wsjson.Write(context.Background(), c, msg)
		}(conn)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.orch.Status())
}

func (s *Server) handlePlaybackStart(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.StartPlayback(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "playback_started"})
}

func (s *Server) handlePlaybackStop(w http.ResponseWriter, r *http.Request) {
	s.orch.StopPlayback()
	writeJSON(w, map[string]string{"status": "playback_stopped"})
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var vp ViewportMessage
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		writeError(w, r, errors.Wrap(err, errors.InvalidArgument, "decode viewport"))
		return
	}
	v := vision.Viewport{Left: vp.Left, Top: vp.Top, Width: vp.Width, Height: vp.Height}
	if err := s.orch.SetViewport(r.Context(), v); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "viewport_set"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := err.(*errors.AppError); ok {
		status = appErr.HTTPStatus()
	}
	trace.Logger(r.Context()).Warn("request failed", "path", r.URL.Path, "status", status, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
