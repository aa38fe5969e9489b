package vision

import (
	"image"

	"github.com/nfnt/resize"
)

// Sampler downscales live frames to the processing resolution.
type Sampler struct {
	width int
}

// NewSampler creates a sampler targeting the given processing width.
func NewSampler(width int) *Sampler {
	if width <= 0 {
		width = DefaultProcessingWidth
	}
	return &Sampler{width: width}
}

// Width returns the processing width.
func (s *Sampler) Width() int { return s.width }

// Sample resamples the frame to the processing width with aspect-preserving
// height. Returns false when the source has no usable dimensions yet; that
// tick is a no-op for the caller, never an error.
func (s *Sampler) Sample(frame image.Image) (image.Image, bool) {
	if frame == nil {
		return nil, false
	}
	b := frame.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, false
	}
	// Height 0 keeps the source aspect ratio.
	return resize.Resize(uint(s.width), 0, frame, resize.NearestNeighbor), true
}
