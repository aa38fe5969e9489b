// Package audio plays the scripted playback soundtrack.
package audio

import "time"

// Audio defaults
const (
	DefaultSampleRate = 44100

	// Fallback chime shaping
	chimeDuration = 600 * time.Millisecond
	chimeAttack   = 15 * time.Millisecond
	chimeRelease  = 250 * time.Millisecond
	chimeVolume   = 0.6
)

// chimeFreqs are the per-phase fallback pitches, one rising step per phase.
var chimeFreqs = []float64{660, 880, 990}
