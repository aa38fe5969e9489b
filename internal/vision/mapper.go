package vision

// Viewport is the rendered bounding rectangle of the video element in
// viewport pixels, reported by the client and re-read every tick since
// layout can change at any time.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the rectangle has usable extents.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Rect is a screen rectangle in viewport pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MapToScreen projects a processing-space box onto the viewport, reproducing
// "contain" fit of a vw×vh source inside the element rectangle: the source
// fills the limiting axis and is letterboxed symmetrically on the other.
// Pure function of its inputs.
func MapToScreen(box Box, vw, vh int, el Viewport, pw, ph int) (Rect, bool) {
	if vw <= 0 || vh <= 0 || pw <= 0 || ph <= 0 || !el.Valid() {
		return Rect{}, false
	}

	srcRatio := float64(vw) / float64(vh)
	elRatio := el.Width / el.Height

	var renderedW, renderedH, offsetX, offsetY float64
	if srcRatio > elRatio {
		// Source wider: full element width, vertical letterbox.
		renderedW = el.Width
		renderedH = el.Width / srcRatio
		offsetY = (el.Height - renderedH) / 2
	} else {
		// Source taller or equal: full element height, horizontal letterbox.
		renderedH = el.Height
		renderedW = el.Height * srcRatio
		offsetX = (el.Width - renderedW) / 2
	}

	sx := renderedW / float64(pw)
	sy := renderedH / float64(ph)

	return Rect{
		X:      el.Left + offsetX + float64(box.X)*sx,
		Y:      el.Top + offsetY + float64(box.Y)*sy,
		Width:  float64(box.W) * sx,
		Height: float64(box.H) * sy,
	}, true
}
