// Package server provides HTTP and WebSocket handlers
package server

import "time"

// Server configuration constants
const (
	// Per-connection inbound rate limiting
	RateLimitMessages = 20          // Max messages per connection per window
	RateLimitWindow   = time.Second // Sliding window duration
)
