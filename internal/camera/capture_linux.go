// Package camera handles frame capture from V4L2 devices via ffmpeg
package camera

import (
	"bytes"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// v4l2Backend grabs single frames from a V4L2 device
type v4l2Backend struct {
	device  string
	tempDir string
}

func newPlatformBackend(device, tempDir string) backend {
	if device == "" {
		device = "/dev/video0"
	}
	return &v4l2Backend{device: device, tempDir: tempDir}
}

func (b *v4l2Backend) grabRaw() []byte {
	tmpFile := filepath.Join(b.tempDir, "frame.jpg")

	// -frames:v 1: single frame, -y: overwrite previous grab
	cmd := exec.Command("ffmpeg",
		"-loglevel", "error",
		"-f", "v4l2",
		"-i", b.device,
		"-frames:v", "1",
		"-y", tmpFile,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Debug("ffmpeg grab failed", "device", b.device, "error", err, "stderr", stderr.String())
		return nil
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		slog.Debug("failed to read frame", "error", err)
		return nil
	}
	os.Remove(tmpFile)
	return data
}

func (b *v4l2Backend) cleanup() {}
