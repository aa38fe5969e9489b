package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// oscillator generates a fixed-length sine wave.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	rate     beep.SampleRate
}

// newOscillator creates a sine source for the given duration.
func newOscillator(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, duration: rate.N(duration), rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, false
		}
		val := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping so chimes do not click.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, false
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.totalSamples - e.releaseSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol * chimeVolume
		samples[i][1] *= vol * chimeVolume
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// Chime returns a single enveloped sine chime.
func Chime(freq float64, rate beep.SampleRate) beep.Streamer {
	osc := newOscillator(freq, chimeDuration, rate)
	return newEnvelope(osc, chimeDuration, chimeAttack, chimeRelease, rate)
}

// FallbackScore synthesizes the playback soundtrack when no track file is
// available: one chime at the start of each phase, padded with silence to
// the phase duration.
func FallbackScore(phases []time.Duration, rate beep.SampleRate) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(phases)*2)
	for i, phase := range phases {
		freq := chimeFreqs[i%len(chimeFreqs)]
		chime := chimeDuration
		if phase < chime {
			chime = phase
		}
		parts = append(parts, beep.Take(rate.N(chime), Chime(freq, rate)))
		if rest := phase - chime; rest > 0 {
			parts = append(parts, beep.Silence(rate.N(rest)))
		}
	}
	return beep.Seq(parts...)
}
