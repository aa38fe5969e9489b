// Package trace - HTTP/WebSocket middleware for trace extraction.
package trace

import (
	"encoding/json"
	"net/http"
)

// Middleware extracts or creates trace context for HTTP requests. Browser
// pages propagate trace IDs through headers on REST calls and through the
// trace_id field on WebSocket messages.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := Context{
			TraceID:      r.Header.Get(TraceIDKey),
			ParentSpanID: r.Header.Get(SpanIDKey),
			SpanID:       generateSpanID(),
		}
		if tc.TraceID == "" {
			tc.TraceID = generateTraceID()
		}
		ctx := WithContext(r.Context(), tc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractFromJSON extracts trace_id from a client JSON message. Returns the
// context and whether a trace_id was found; without one a fresh trace is
// started so the message is still traceable.
func ExtractFromJSON(data []byte) (Context, bool) {
	var msg struct {
		TraceID string `json:"trace_id"`
	}
	if err := json.Unmarshal(data, &msg); err != nil || msg.TraceID == "" {
		return New(), false
	}
	return Context{
		TraceID: msg.TraceID,
		SpanID:  generateSpanID(),
	}, true
}
