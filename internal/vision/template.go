package vision

import (
	"image"
	_ "image/jpeg" // reference decoder
	_ "image/png"  // reference decoder
	"os"

	"github.com/disintegration/gift"

	"github.com/markerlens/platform/internal/errors"
)

// fallbackLevel is the flat luminance used when no reference is available.
const fallbackLevel = 128

// Template is the fixed reference luminance pattern searched for in each
// frame. Immutable after preparation; lives for the whole session.
type Template struct {
	Luma     *Luma
	Degraded bool
}

// Size returns the template side length.
func (t *Template) Size() int { return t.Luma.W }

// PrepareTemplate derives a size×size template from the reference image:
// centered square crop, scale to size, luminance conversion.
func PrepareTemplate(ref image.Image, size int) *Template {
	if size <= 0 {
		size = DefaultTemplateSize
	}
	if ref == nil {
		return fallbackTemplate(size)
	}
	b := ref.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side <= 0 {
		return fallbackTemplate(size)
	}

	g := gift.New(
		gift.CropToSize(side, side, gift.CenterAnchor),
		gift.Resize(size, size, gift.LanczosResampling),
	)
	dst := image.NewRGBA(g.Bounds(ref.Bounds()))
	g.Draw(dst, ref)

	return &Template{Luma: LumaFromImage(dst)}
}

// LoadTemplate reads the reference image at path and prepares the template.
// A missing or undecodable reference degrades to a flat template instead of
// failing: detection quality drops but the pipeline keeps running. The
// returned error describes the degradation for logging only.
func LoadTemplate(path string, size int) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return fallbackTemplate(size), errors.Wrapf(err, errors.ReferenceLoadFailed, "open reference %s", path)
	}
	defer f.Close()

	ref, _, err := image.Decode(f)
	if err != nil {
		return fallbackTemplate(size), errors.Wrapf(err, errors.ReferenceLoadFailed, "decode reference %s", path)
	}
	return PrepareTemplate(ref, size), nil
}

func fallbackTemplate(size int) *Template {
	if size <= 0 {
		size = DefaultTemplateSize
	}
	l := NewLuma(size, size)
	for i := range l.Pix {
		l.Pix[i] = fallbackLevel
	}
	return &Template{Luma: l, Degraded: true}
}
