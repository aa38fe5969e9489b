// Package detect turns per-frame match results into a debounced
// locked/unlocked detection state.
package detect

// Stabilizer defaults
const (
	// Consecutive hits to saturate the counter. Tuned with the score
	// threshold for the 192-wide / 64-template / stride-4 pipeline.
	DefaultLockFrames = 6

	// Sum-of-absolute-differences ceiling for a hit; at the default
	// sub-sampling (1024 samples) this is about 2.5 gray levels per sample.
	DefaultScoreThreshold = 2600
)
