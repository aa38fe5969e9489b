package vision

import "testing"

// flatLuma builds a uniform buffer.
func flatLuma(w, h int, v uint8) *Luma {
	l := NewLuma(w, h)
	for i := range l.Pix {
		l.Pix[i] = v
	}
	return l
}

// patternLuma builds a buffer with position-dependent values.
func patternLuma(w, h int) *Luma {
	l := NewLuma(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l.Set(x, y, uint8((x*7+y*13)%256))
		}
	}
	return l
}

// embed copies tmpl into frame at (ox, oy).
func embed(frame, tmpl *Luma, ox, oy int) {
	for y := 0; y < tmpl.H; y++ {
		for x := 0; x < tmpl.W; x++ {
			frame.Set(ox+x, oy+y, tmpl.At(x, y))
		}
	}
}

func TestSearchFrameSmallerThanTemplate(t *testing.T) {
	m := NewMatcher(4, 2)
	tmpl := flatLuma(64, 64, 100)

	cases := []struct {
		name string
		w, h int
	}{
		{"narrower", 32, 128},
		{"shorter", 128, 32},
		{"both", 16, 16},
	}
	for _, c := range cases {
		frame := flatLuma(c.w, c.h, 100)
		if _, ok := m.Search(frame, tmpl); ok {
			t.Errorf("%s frame (%dx%d) should produce no match", c.name, c.w, c.h)
		}
	}
}

func TestSearchNilInputs(t *testing.T) {
	m := NewMatcher(4, 2)
	if _, ok := m.Search(nil, flatLuma(8, 8, 0)); ok {
		t.Error("nil frame should produce no match")
	}
	if _, ok := m.Search(flatLuma(8, 8, 0), nil); ok {
		t.Error("nil template should produce no match")
	}
}

func TestSearchExactEmbeddedCopy(t *testing.T) {
	m := NewMatcher(4, 2)
	tmpl := patternLuma(64, 64)

	// Bright background everywhere the template is not, so every other
	// window scores well above zero.
	frame := flatLuma(192, 108, 255)
	const ox, oy = 16, 20 // stride-aligned
	embed(frame, tmpl, ox, oy)

	match, ok := m.Search(frame, tmpl)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Score != 0 {
		t.Errorf("score at exact copy = %f, want 0", match.Score)
	}
	if match.X != ox || match.Y != oy {
		t.Errorf("offset = (%d,%d), want (%d,%d)", match.X, match.Y, ox, oy)
	}
	if match.Box != (Box{X: ox, Y: oy, W: 64, H: 64}) {
		t.Errorf("box = %+v, want {%d %d 64 64}", match.Box, ox, oy)
	}
}

func TestSearchTieKeepsFirstOffset(t *testing.T) {
	m := NewMatcher(4, 2)
	tmpl := flatLuma(64, 64, 50)
	frame := flatLuma(128, 96, 50)

	// Every window scores 0; row-major scan order keeps (0,0).
	match, ok := m.Search(frame, tmpl)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.X != 0 || match.Y != 0 {
		t.Errorf("tie broken to (%d,%d), want first-found (0,0)", match.X, match.Y)
	}
	if match.Score != 0 {
		t.Errorf("score = %f, want 0", match.Score)
	}
}

func TestSearchIgnoresUnsampledPixels(t *testing.T) {
	m := NewMatcher(4, 2)
	tmpl := flatLuma(8, 8, 100)
	frame := flatLuma(16, 16, 100)

	// With step 2 only even rows/columns are scored; a lone difference at
	// odd coordinates is invisible to the matcher.
	frame.Set(3, 5, 0)

	match, ok := m.Search(frame, tmpl)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Score != 0 {
		t.Errorf("score = %f, want 0 (odd-coordinate pixels are not sampled)", match.Score)
	}
}

func TestSearchScoreIsSampledAbsoluteSum(t *testing.T) {
	m := NewMatcher(4, 2)
	tmpl := flatLuma(8, 8, 100)
	frame := flatLuma(8, 8, 110)

	// Single window; 4x4 sampled pixels each differing by 10.
	match, ok := m.Search(frame, tmpl)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Score != 160 {
		t.Errorf("score = %f, want 160", match.Score)
	}
}

func TestSearchStrideAlignment(t *testing.T) {
	m := NewMatcher(4, 2)
	tmpl := patternLuma(16, 16)
	frame := flatLuma(64, 64, 255)

	// Offset not on the stride grid; the matcher still finds the nearest
	// strided window as the minimum, just with a non-zero score.
	embed(frame, tmpl, 6, 6)

	match, ok := m.Search(frame, tmpl)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.X%4 != 0 || match.Y%4 != 0 {
		t.Errorf("offset (%d,%d) not on stride grid", match.X, match.Y)
	}
	if match.Score == 0 {
		t.Error("misaligned embed should not score 0")
	}
}

func TestSearchDefaultsOnBadParams(t *testing.T) {
	m := NewMatcher(0, -1)
	tmpl := flatLuma(64, 64, 10)
	frame := flatLuma(96, 96, 10)

	if _, ok := m.Search(frame, tmpl); !ok {
		t.Error("matcher with defaulted params should still search")
	}
}
