// Package audio plays the scripted playback soundtrack through the default
// output device.
package audio

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gordonklaus/portaudio"

	"github.com/markerlens/platform/internal/errors"
)

// framesPerBuffer trades latency for callback overhead (~23ms at 44100Hz).
const framesPerBuffer = 1024

// Player renders beep streamers through a portaudio output stream. A nil
// Player is valid and silently ignores all calls, so the platform runs
// headless when no output device exists.
type Player struct {
	rate   beep.SampleRate
	stream *portaudio.Stream

	mu  sync.Mutex
	src beep.Streamer
	buf [][2]float64
}

// NewPlayer opens the default output device.
func NewPlayer(sampleRate int) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, errors.AudioInitFailed, "portaudio init")
	}

	p := &Player{
		rate: beep.SampleRate(sampleRate),
		buf:  make([][2]float64, framesPerBuffer),
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(sampleRate), framesPerBuffer, p.render)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, errors.Wrap(err, errors.AudioInitFailed, "open output stream")
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, errors.Wrap(err, errors.AudioInitFailed, "start output stream")
	}

	p.stream = stream
	return p, nil
}

// render is the portaudio callback: it pulls from the current streamer and
// fills both output channels, zeroing whatever the streamer did not produce.
func (p *Player) render(out [][]float32) {
	p.mu.Lock()
	src := p.src
	p.mu.Unlock()

	n := 0
	if src != nil {
		want := len(out[0])
		if cap(p.buf) < want {
			p.buf = make([][2]float64, want)
		}
		buf := p.buf[:want]

		var ok bool
		n, ok = src.Stream(buf)
		for i := 0; i < n; i++ {
			out[0][i] = float32(buf[i][0])
			out[1][i] = float32(buf[i][1])
		}
		if !ok {
			p.mu.Lock()
			if p.src == src {
				p.src = nil
			}
			p.mu.Unlock()
		}
	}
	for i := n; i < len(out[0]); i++ {
		out[0][i] = 0
		out[1][i] = 0
	}
}

// Play replaces the current streamer. The previous one is dropped mid-stream.
func (p *Player) Play(s beep.Streamer) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.src = s
	p.mu.Unlock()
}

// Stop silences output without closing the device.
func (p *Player) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.src = nil
	p.mu.Unlock()
}

// SampleRate returns the output sample rate.
func (p *Player) SampleRate() beep.SampleRate {
	if p == nil {
		return beep.SampleRate(DefaultSampleRate)
	}
	return p.rate
}

// Close releases the output device.
func (p *Player) Close() {
	if p == nil {
		return
	}
	p.Stop()
	if p.stream != nil {
		_ = p.stream.Stop()
		_ = p.stream.Close()
	}
	_ = portaudio.Terminate()
}
