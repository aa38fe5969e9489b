// Package playback drives the scripted three-phase overlay sequence.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/markerlens/platform/internal/errors"
)

// Phase identifies the current step of the scripted sequence. Zero is idle;
// positive values are 1-based phase numbers.
type Phase int

// PhaseIdle means no sequence is running.
const PhaseIdle Phase = 0

func (p Phase) String() string {
	if p == PhaseIdle {
		return "idle"
	}
	return fmt.Sprintf("phase%d", int(p))
}

// Event reports a phase transition.
type Event struct {
	Phase Phase
	Done  bool // true on the final return to idle of a completed run
}

// Sequencer runs Idle -> Phase1 -> ... -> PhaseN -> Idle with cancellable
// timed transitions. It owns no audio or rendering; consumers act on events.
type Sequencer struct {
	phases []time.Duration
	events chan Event

	mu     sync.Mutex
	phase  Phase
	cancel context.CancelFunc
}

// NewSequencer creates a sequencer with the given phase durations.
func NewSequencer(phases []time.Duration) *Sequencer {
	if len(phases) == 0 {
		phases = DefaultPhases()
	}
	return &Sequencer{
		phases: phases,
		events: make(chan Event, EventBuffer),
	}
}

// Events returns the phase transition channel.
func (s *Sequencer) Events() <-chan Event { return s.events }

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Playing reports whether a sequence is in progress.
func (s *Sequencer) Playing() bool {
	return s.Phase() != PhaseIdle
}

// Total returns the full sequence duration.
func (s *Sequencer) Total() time.Duration {
	var total time.Duration
	for _, p := range s.phases {
		total += p
	}
	return total
}

// Start begins the sequence. Fails when one is already running.
func (s *Sequencer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return errors.New(errors.PlaybackBusy, "sequence already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.phase = Phase(1)
	s.mu.Unlock()

	slog.Info("playback started", "phases", len(s.phases), "total", s.Total())
	go s.run(runCtx)
	return nil
}

// Stop cancels a running sequence; idle is a no-op.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Sequencer) run(ctx context.Context) {
	completed := true
	for i, d := range s.phases {
		phase := Phase(i + 1)
		s.mu.Lock()
		s.phase = phase
		s.mu.Unlock()
		s.emit(Event{Phase: phase})

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			completed = false
		case <-timer.C:
		}
		if !completed {
			break
		}
	}

	s.mu.Lock()
	s.phase = PhaseIdle
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.emit(Event{Phase: PhaseIdle, Done: completed})
	slog.Info("playback finished", "completed", completed)
}

// emit sends without blocking the transition path.
func (s *Sequencer) emit(e Event) {
	select {
	case s.events <- e:
	default:
		slog.Debug("playback event channel full")
	}
}
