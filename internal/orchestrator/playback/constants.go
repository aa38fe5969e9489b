// Package playback drives the scripted three-phase overlay sequence.
package playback

import "time"

// Sequence defaults: three phases of five seconds each.
const (
	DefaultPhaseCount    = 3
	DefaultPhaseDuration = 5 * time.Second

	// Event channel buffer
	EventBuffer = 10
)

// DefaultPhases returns the standard 15-second script.
func DefaultPhases() []time.Duration {
	phases := make([]time.Duration, DefaultPhaseCount)
	for i := range phases {
		phases[i] = DefaultPhaseDuration
	}
	return phases
}
