// Package vision implements the template-detection core: luminance
// conversion, frame downscaling, sliding-window matching, and the
// processing-space to viewport projection.
package vision

import "image"

// Luma is a single-channel luminance buffer with values in [0,255].
type Luma struct {
	Pix []uint8
	W   int
	H   int
}

// NewLuma allocates a zeroed buffer.
func NewLuma(w, h int) *Luma {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Luma{Pix: make([]uint8, w*h), W: w, H: h}
}

// At returns the luminance at (x, y). No bounds check; callers own the loop.
func (l *Luma) At(x, y int) uint8 {
	return l.Pix[y*l.W+x]
}

// Set stores the luminance at (x, y).
func (l *Luma) Set(x, y int, v uint8) {
	l.Pix[y*l.W+x] = v
}

// Luminance converts an 8-bit RGB triple to integer luminance using the
// BT.601 weights 0.299/0.587/0.114, truncated toward zero.
func Luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

// LumaFromImage converts an image to a luminance buffer of the same size.
func LumaFromImage(img image.Image) *Luma {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := NewLuma(w, h)

	// Fast path for RGBA avoids the color interface per pixel.
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < w; x++ {
				p := row[x*4:]
				out.Pix[y*w+x] = Luminance(p[0], p[1], p[2])
			}
		}
		return out
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.Pix[y*w+x] = Luminance(uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return out
}
