package vision

// Box is an axis-aligned rectangle in processing-space pixels.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Match is the best window found in a frame. Score is the sum of absolute
// luminance differences over the sampled window grid; lower is better, 0 is
// a pixel-identical window.
type Match struct {
	X     int
	Y     int
	Score float64
	Box   Box
}

// Matcher scans a luminance frame for the window most similar to a template.
type Matcher struct {
	stride     int // window offset step in both axes
	sampleStep int // interior sub-sampling step in both axes
}

// NewMatcher creates a matcher. Non-positive values fall back to defaults.
func NewMatcher(stride, sampleStep int) *Matcher {
	if stride <= 0 {
		stride = DefaultSearchStride
	}
	if sampleStep <= 0 {
		sampleStep = DefaultSampleStep
	}
	return &Matcher{stride: stride, sampleStep: sampleStep}
}

// Search scans every window offset in row-major order (y outer, x inner)
// with the configured stride and returns the minimum-score window. Ties keep
// the first offset found. Returns false when the frame is smaller than the
// template in either axis, so a missing window is never reported as a match.
func (m *Matcher) Search(frame, tmpl *Luma) (Match, bool) {
	if frame == nil || tmpl == nil {
		return Match{}, false
	}
	tw, th := tmpl.W, tmpl.H
	if tw == 0 || th == 0 || frame.W < tw || frame.H < th {
		return Match{}, false
	}

	best := Match{Score: -1}
	for y := 0; y <= frame.H-th; y += m.stride {
		for x := 0; x <= frame.W-tw; x += m.stride {
			score := m.windowScore(frame, tmpl, x, y, best.Score)
			if best.Score < 0 || score < best.Score {
				best = Match{X: x, Y: y, Score: score}
			}
		}
	}
	best.Box = Box{X: best.X, Y: best.Y, W: tw, H: th}
	return best, true
}

// windowScore sums absolute differences over every sampleStep-th row and
// column of the window at (ox, oy). It bails out once the running sum
// exceeds the current best; the partial sum is still >= best, so strict
// less-than comparison in Search keeps first-found tie resolution intact.
func (m *Matcher) windowScore(frame, tmpl *Luma, ox, oy int, best float64) float64 {
	sum := 0
	for ty := 0; ty < tmpl.H; ty += m.sampleStep {
		frow := frame.Pix[(oy+ty)*frame.W+ox:]
		trow := tmpl.Pix[ty*tmpl.W:]
		for tx := 0; tx < tmpl.W; tx += m.sampleStep {
			d := int(frow[tx]) - int(trow[tx])
			if d < 0 {
				d = -d
			}
			sum += d
		}
		if best >= 0 && float64(sum) > best {
			break
		}
	}
	return float64(sum)
}
