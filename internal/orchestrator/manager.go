// Package orchestrator coordinates camera capture, template detection, and
// scripted playback.
package orchestrator

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/markerlens/platform/internal/audio"
	"github.com/markerlens/platform/internal/camera"
	"github.com/markerlens/platform/internal/config"
	"github.com/markerlens/platform/internal/detect"
	"github.com/markerlens/platform/internal/errors"
	"github.com/markerlens/platform/internal/orchestrator/playback"
	"github.com/markerlens/platform/internal/resilience"
	"github.com/markerlens/platform/internal/syncx"
	"github.com/markerlens/platform/internal/trace"
	"github.com/markerlens/platform/internal/vision"
)

// Detection is a per-tick detection result pushed to clients.
type Detection struct {
	Locked  bool           `json:"locked"`
	Count   int            `json:"count"`
	Score   float64        `json:"score"`
	Phase   playback.Phase `json:"-"`
	Overlay *vision.Rect   `json:"overlay,omitempty"`
}

// Status is a point-in-time snapshot for the REST surface.
type Status struct {
	Locked           bool    `json:"locked"`
	Count            int     `json:"count"`
	Playing          bool    `json:"playing"`
	Phase            string  `json:"phase"`
	ViewportSet      bool    `json:"viewport_set"`
	TemplateDegraded bool    `json:"template_degraded"`
	CaptureBreaker   string  `json:"capture_breaker"`
	DetectRate       float64 `json:"detect_rate"`
}

// Manager runs the detection loop: grab a frame, downsample, match against
// the reference template, stabilize, and map the locked box into the
// client's element coordinates.
type Manager struct {
	cfg      *config.Config
	cam      camera.Capturer
	sampler  *vision.Sampler
	matcher  *vision.Matcher
	template *vision.Template
	stab     *detect.Stabilizer
	player   *audio.Player
	seq      *playback.Sequencer
	breaker  *resilience.Breaker

	// The tick goroutine owns the stabilizer; everyone else reads the
	// latest snapshot.
	viewport *syncx.RWGuard[vision.Viewport]
	detState *syncx.RWGuard[detect.State]

	// Frame-skip state: perceptually identical frames reuse the previous
	// match so the stabilizer still observes every tick.
	lastHash  *goimagehash.ImageHash
	lastMatch vision.Match
	lastOK    bool
	hasResult bool
	wasLocked bool

	events     chan Detection
	playbackCh chan playback.Event

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
}

// New wires a manager from its parts. The player may be nil for headless runs.
func New(cfg *config.Config, cam camera.Capturer, tmpl *vision.Template, player *audio.Player) *Manager {
	return &Manager{
		cfg:      cfg,
		cam:      cam,
		sampler:  vision.NewSampler(cfg.ProcessingWidth),
		matcher:  vision.NewMatcher(cfg.SearchStride, cfg.SampleStep),
		template: tmpl,
		stab:     detect.NewStabilizer(cfg.ScoreThreshold, cfg.LockFrames),
		player:   player,
		seq:      playback.NewSequencer(phaseDurations(cfg.PhaseSeconds)),
		breaker: resilience.New(resilience.CaptureConfig()).WithHook(func(from, to resilience.State) {
			trace.Logger(context.Background()).Warn("capture breaker transition", "from", from, "to", to)
		}),
		viewport:   syncx.NewGuard(vision.Viewport{}),
		detState:   syncx.NewGuard(detect.State{}),
		events:     make(chan Detection, EventBuffer),
		playbackCh: make(chan playback.Event, playback.EventBuffer),
		stopCh:     make(chan struct{}),
	}
}

func phaseDurations(seconds []float64) []time.Duration {
	phases := make([]time.Duration, len(seconds))
	for i, s := range seconds {
		phases[i] = time.Duration(s * float64(time.Second))
	}
	return phases
}

// Detections returns the per-tick detection channel.
func (m *Manager) Detections() <-chan Detection { return m.events }

// PlaybackEvents returns the phase transition channel.
func (m *Manager) PlaybackEvents() <-chan playback.Event { return m.playbackCh }

// Start begins the detection and playback loops.
func (m *Manager) Start(ctx context.Context) error {
	trace.Logger(ctx).Info("orchestrator starting",
		"rate_hz", m.cfg.DetectRate,
		"processing_width", m.cfg.ProcessingWidth,
		"template_size", m.template.Size(),
		"template_degraded", m.template.Degraded)

	go m.detectLoop(ctx)
	go m.playbackLoop(ctx)
	return nil
}

// Stop halts the loops. Idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	close(m.stopCh)
	m.seq.Stop()
	m.player.Stop()
}

func (m *Manager) detectLoop(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / m.cfg.DetectRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Manager) tick(ctx context.Context) {
	frame, err := resilience.ExecuteWithResult(m.breaker, func() (image.Image, error) {
		f, _ := m.cam.Grab()
		if f == nil {
			return nil, errors.New(errors.CameraNotReady, "no frame available")
		}
		return f, nil
	})
	if err != nil {
		// Normal during warm-up and while the breaker cools down.
		trace.Logger(ctx).Debug("frame grab skipped", "error", err)
		return
	}

	bounds := frame.Bounds()
	small, ok := m.sampler.Sample(frame)
	if !ok {
		return
	}

	match, found := m.searchFrame(ctx, small)
	state := m.stab.Observe(match, found)
	m.detState.Set(state)

	if state.Locked != m.wasLocked {
		m.wasLocked = state.Locked
		if state.Locked {
			trace.Logger(ctx).Info("marker locked", "score", match.Score, "box", state.Box)
		} else {
			trace.Logger(ctx).Info("marker lost", "score", match.Score)
		}
	}

	d := Detection{
		Locked: state.Locked,
		Count:  state.Count,
		Score:  match.Score,
		Phase:  m.seq.Phase(),
	}
	// Playback keeps anchoring to the last known box even if the lock decays.
	if (state.Locked || m.seq.Playing()) && state.HasBox {
		sb := small.Bounds()
		vp := m.viewport.Get()
		if rect, mapped := vision.MapToScreen(state.Box, bounds.Dx(), bounds.Dy(), vp, sb.Dx(), sb.Dy()); mapped {
			d.Overlay = &rect
		}
	}
	m.emit(d)
}

// searchFrame runs the template match, short-circuiting when the frame is
// perceptually identical to the previous one.
func (m *Manager) searchFrame(ctx context.Context, small image.Image) (vision.Match, bool) {
	hash, err := goimagehash.PerceptionHash(small)
	if err == nil && m.lastHash != nil && m.hasResult {
		if dist, derr := hash.Distance(m.lastHash); derr == nil && dist <= m.cfg.HashSkipMax {
			return m.lastMatch, m.lastOK
		}
	}

	luma := vision.LumaFromImage(small)
	match, found := m.matcher.Search(luma, m.template.Luma)

	if err == nil {
		m.lastHash = hash
	} else {
		trace.Logger(ctx).Debug("frame hash failed", "error", err)
		m.lastHash = nil
	}
	m.lastMatch = match
	m.lastOK = found
	m.hasResult = true
	return match, found
}

func (m *Manager) emit(d Detection) {
	select {
	case m.events <- d:
	default:
	}
}

func (m *Manager) playbackLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case e := <-m.seq.Events():
			if e.Phase == playback.PhaseIdle {
				m.player.Stop()
			}
			select {
			case m.playbackCh <- e:
			default:
				trace.Logger(ctx).Debug("playback event dropped")
			}
		}
	}
}

// StartPlayback begins the scripted sequence. The marker must be locked.
func (m *Manager) StartPlayback(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "start_playback")
	defer span.End()

	if !m.detState.Get().Locked {
		return errors.New(errors.PlaybackNotLocked, "marker not locked")
	}
	// The sequence outlives the request that started it.
	if err := m.seq.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	if m.cfg.AudioEnabled && m.player != nil {
		score, err := audio.Score(m.cfg.AudioTrackPath, phaseDurations(m.cfg.PhaseSeconds), m.player.SampleRate())
		if err != nil {
			span.SetAttr("audio_fallback", true)
			trace.Logger(ctx).Warn("soundtrack unavailable, using fallback chimes", "error", err)
		}
		m.player.Play(score)
	}
	return nil
}

// StopPlayback cancels a running sequence and silences audio. Idle is a no-op.
func (m *Manager) StopPlayback() {
	m.seq.Stop()
	m.player.Stop()
}

// SetViewport records the client's video element geometry for overlay mapping.
func (m *Manager) SetViewport(ctx context.Context, v vision.Viewport) error {
	if !v.Valid() {
		return errors.Newf(errors.InvalidArgument, "invalid viewport %+v", v)
	}
	m.viewport.Set(v)
	trace.Logger(ctx).Debug("viewport updated", "width", v.Width, "height", v.Height)
	return nil
}

// Status reports the current detection and playback state.
func (m *Manager) Status() Status {
	state := m.detState.Get()
	return Status{
		Locked:           state.Locked,
		Count:            state.Count,
		Playing:          m.seq.Playing(),
		Phase:            m.seq.Phase().String(),
		ViewportSet:      m.viewport.Get().Valid(),
		TemplateDegraded: m.template.Degraded,
		CaptureBreaker:   m.breaker.State().String(),
		DetectRate:       m.cfg.DetectRate,
	}
}
