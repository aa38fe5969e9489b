// Package camera provides platform-agnostic single-frame camera capture
package camera

import (
	"bytes"
	"crypto/md5"
	"image"
	_ "image/jpeg" // frame decoder
	_ "image/png"  // frame decoder
	"log/slog"
	"os"
)

// Capturer grabs decoded camera frames with quick change detection
type Capturer interface {
	// Grab returns the current frame and whether it differs from the
	// previous grab. A nil frame means the device is not ready; that is
	// normal during warm-up and never an error.
	Grab() (image.Image, bool)
	// GrabAlways returns the current frame regardless of change detection.
	GrabAlways() image.Image
	Close()
}

// backend implements platform-specific raw capture
type backend interface {
	grabRaw() []byte
	cleanup()
}

// baseCapturer provides shared decode and hash-based change detection
type baseCapturer struct {
	backend
	lastHash  [16]byte
	lastFrame image.Image
	tempDir   string
}

func newBase(b backend, tempDir string) *baseCapturer {
	return &baseCapturer{backend: b, tempDir: tempDir}
}

func (c *baseCapturer) Grab() (image.Image, bool) {
	data := c.grabRaw()
	if data == nil {
		return nil, false
	}
	hash := md5.Sum(data[:min(len(data), 4096)]) // Hash first 4KB for speed
	if hash == c.lastHash && c.lastFrame != nil {
		return c.lastFrame, false
	}

	frame := decodeFrame(data)
	if frame == nil {
		return nil, false
	}
	c.lastHash = hash
	c.lastFrame = frame
	return frame, true
}

func (c *baseCapturer) GrabAlways() image.Image {
	data := c.grabRaw()
	if data == nil {
		return nil
	}
	frame := decodeFrame(data)
	if frame != nil {
		c.lastHash = md5.Sum(data[:min(len(data), 4096)])
		c.lastFrame = frame
	}
	return frame
}

func (c *baseCapturer) Close() {
	c.cleanup()
	if c.tempDir != "" {
		os.RemoveAll(c.tempDir)
	}
}

func decodeFrame(data []byte) image.Image {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("frame decode failed", "error", err)
		return nil
	}
	return img
}
