// Package vision implements the template-detection core.
package vision

// Detection pipeline defaults, tuned together: the scan cost is
// O((PW/stride)^2 * (T/step)^2) per tick and has to fit the tick budget.
const (
	DefaultProcessingWidth = 192
	DefaultTemplateSize    = 64
	DefaultSearchStride    = 4
	DefaultSampleStep      = 2
)
