package detect

import (
	"testing"

	"github.com/markerlens/platform/internal/vision"
)

func hit(score float64) vision.Match {
	return vision.Match{Score: score, Box: vision.Box{X: 8, Y: 12, W: 64, H: 64}}
}

func TestLockAfterConsecutiveHits(t *testing.T) {
	s := NewStabilizer(2600, 6)

	// Locked exactly when the counter first reaches lockFrames-1 = 5.
	for i := 1; i <= 4; i++ {
		st := s.Observe(hit(100), true)
		if st.Locked {
			t.Fatalf("locked after %d hits, want locked only at 5", i)
		}
		if st.Count != i {
			t.Fatalf("count after %d hits = %d", i, st.Count)
		}
	}
	st := s.Observe(hit(100), true)
	if !st.Locked {
		t.Error("should lock at the 5th consecutive hit")
	}
	if st.Count != 5 {
		t.Errorf("count = %d, want 5", st.Count)
	}
}

func TestCounterSaturates(t *testing.T) {
	s := NewStabilizer(2600, 6)

	for i := 0; i < 20; i++ {
		st := s.Observe(hit(0), true)
		if st.Count > 6 {
			t.Fatalf("count = %d, exceeded lockFrames", st.Count)
		}
	}
	if s.State().Count != 6 {
		t.Errorf("count = %d, want saturated at 6", s.State().Count)
	}
}

func TestUnlockAfterTwoMissesFromSaturation(t *testing.T) {
	s := NewStabilizer(2600, 6)
	for i := 0; i < 10; i++ {
		s.Observe(hit(0), true)
	}

	// 6 -> 5: still locked (one frame of slack).
	st := s.Observe(vision.Match{}, false)
	if !st.Locked {
		t.Error("first miss should keep lock (count 5)")
	}
	// 5 -> 4: unlocked at the second consecutive miss.
	st = s.Observe(vision.Match{}, false)
	if st.Locked {
		t.Error("second miss should drop lock (count 4)")
	}
}

func TestCounterFloorsAtZero(t *testing.T) {
	s := NewStabilizer(2600, 6)

	for i := 0; i < 5; i++ {
		st := s.Observe(vision.Match{}, false)
		if st.Count != 0 {
			t.Fatalf("count = %d, want floor at 0", st.Count)
		}
	}
}

func TestScoreAboveThresholdIsMiss(t *testing.T) {
	s := NewStabilizer(2600, 6)
	s.Observe(hit(100), true)
	s.Observe(hit(100), true)

	st := s.Observe(hit(9000), true)
	if st.Count != 1 {
		t.Errorf("count = %d, want 1 (high score decrements)", st.Count)
	}
}

func TestThresholdBoundaryIsExclusive(t *testing.T) {
	s := NewStabilizer(2600, 6)

	st := s.Observe(hit(2600), true)
	if st.Count != 0 {
		t.Errorf("count = %d, score equal to threshold must be a miss", st.Count)
	}
	st = s.Observe(hit(2599.5), true)
	if st.Count != 1 {
		t.Errorf("count = %d, score under threshold must be a hit", st.Count)
	}
}

func TestLastBoxPersistsThroughMisses(t *testing.T) {
	s := NewStabilizer(2600, 6)
	want := vision.Box{X: 8, Y: 12, W: 64, H: 64}

	s.Observe(hit(10), true)
	st := s.Observe(vision.Match{}, false)

	if !st.HasBox {
		t.Fatal("box should persist through a miss")
	}
	if st.Box != want {
		t.Errorf("box = %+v, want %+v", st.Box, want)
	}

	// Even decaying all the way to zero keeps the stale box; there is no
	// explicit reset.
	for i := 0; i < 10; i++ {
		st = s.Observe(vision.Match{}, false)
	}
	if !st.HasBox || st.Box != want {
		t.Errorf("stale box lost after decay: %+v", st)
	}
}

func TestNoBoxBeforeFirstHit(t *testing.T) {
	s := NewStabilizer(2600, 6)

	st := s.Observe(vision.Match{}, false)
	if st.HasBox {
		t.Error("no box should be reported before the first hit")
	}
}

func TestRelockAfterDecay(t *testing.T) {
	s := NewStabilizer(2600, 6)
	for i := 0; i < 6; i++ {
		s.Observe(hit(0), true)
	}
	for i := 0; i < 3; i++ {
		s.Observe(vision.Match{}, false)
	}
	// Count is 3; two more hits reach 5 and re-lock.
	s.Observe(hit(0), true)
	st := s.Observe(hit(0), true)
	if !st.Locked {
		t.Errorf("count = %d, want re-locked at 5", st.Count)
	}
}

func TestDefaultsOnBadParams(t *testing.T) {
	s := NewStabilizer(0, 0)

	st := s.Observe(hit(DefaultScoreThreshold-1), true)
	if st.Count != 1 {
		t.Errorf("count = %d, defaulted stabilizer should accept hits", st.Count)
	}
}
