package audio

import (
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/markerlens/platform/internal/errors"
)

// resampleQuality balances CPU cost against artifacts for rate conversion.
const resampleQuality = 4

// LoadTrack decodes the WAV soundtrack at path and cuts it to the total
// playback duration, resampling to rate if needed.
func LoadTrack(path string, total time.Duration, rate beep.SampleRate) (beep.Streamer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.NotFound, "open track %s", path)
	}

	s, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, errors.InvalidArgument, "decode track %s", path)
	}

	var out beep.Streamer = s
	if format.SampleRate != rate {
		out = beep.Resample(resampleQuality, format.SampleRate, rate, s)
	}
	return beep.Take(rate.N(total), out), nil
}

// Score returns the playback soundtrack: the decoded track when available,
// otherwise the synthesized per-phase fallback chimes. The degradation is
// reported through the error for logging; the streamer is always usable.
func Score(trackPath string, phases []time.Duration, rate beep.SampleRate) (beep.Streamer, error) {
	var total time.Duration
	for _, p := range phases {
		total += p
	}

	track, err := LoadTrack(trackPath, total, rate)
	if err != nil {
		return FallbackScore(phases, rate), err
	}
	return track, nil
}
