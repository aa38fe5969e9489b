// Package detect turns per-frame match results into a debounced
// locked/unlocked detection state.
package detect

import (
	"github.com/markerlens/platform/internal/vision"
)

// State is the detection state after folding in one tick.
type State struct {
	Count  int
	Locked bool
	Box    vision.Box
	HasBox bool
}

// Stabilizer is a saturating hit/miss counter over match results. A hit is a
// result scoring under the threshold; misses decay the counter but never
// clear the last box, so overlay placement survives brief flicker.
//
// Lock is reported one frame early: locked when count >= lockFrames-1.
// Building from zero takes lockFrames-1 consecutive hits; once saturated it
// takes two consecutive misses to unlock.
type Stabilizer struct {
	threshold  float64
	lockFrames int

	count  int
	box    vision.Box
	hasBox bool
}

// NewStabilizer creates a stabilizer. Non-positive parameters fall back to
// defaults.
func NewStabilizer(threshold float64, lockFrames int) *Stabilizer {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	if lockFrames <= 0 {
		lockFrames = DefaultLockFrames
	}
	return &Stabilizer{threshold: threshold, lockFrames: lockFrames}
}

// Observe folds one tick's match result into the counter and returns the
// resulting state. ok=false means no valid window existed this tick (frame
// not ready or smaller than the template) and counts as a miss.
func (s *Stabilizer) Observe(m vision.Match, ok bool) State {
	if ok && m.Score < s.threshold {
		if s.count < s.lockFrames {
			s.count++
		}
		s.box = m.Box
		s.hasBox = true
	} else if s.count > 0 {
		s.count--
	}
	return s.State()
}

// State returns the current state without observing a tick.
func (s *Stabilizer) State() State {
	return State{
		Count:  s.count,
		Locked: s.count >= s.lockFrames-1,
		Box:    s.box,
		HasBox: s.hasBox,
	}
}

// Locked reports the current debounced detection state.
func (s *Stabilizer) Locked() bool {
	return s.count >= s.lockFrames-1
}
