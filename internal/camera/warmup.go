package camera

import (
	"context"

	"github.com/markerlens/platform/internal/errors"
	"github.com/markerlens/platform/internal/resilience"
)

// Warmup grabs frames until the device yields a decodable one. Cameras
// commonly need a few attempts right after acquisition.
func Warmup(ctx context.Context, c Capturer) error {
	return resilience.Retry(ctx, resilience.CameraRetryConfig(), func() error {
		if frame := c.GrabAlways(); frame != nil {
			return nil
		}
		return errors.New(errors.CameraNotReady, "no frame from device yet")
	})
}
