// Package camera handles frame capture from AVFoundation devices via ffmpeg
package camera

import (
	"bytes"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// avfBackend grabs single frames from an AVFoundation device index
type avfBackend struct {
	device  string
	tempDir string
}

func newPlatformBackend(device, tempDir string) backend {
	if device == "" {
		device = "0" // default camera index
	}
	return &avfBackend{device: device, tempDir: tempDir}
}

func (b *avfBackend) grabRaw() []byte {
	tmpFile := filepath.Join(b.tempDir, "frame.jpg")

	cmd := exec.Command("ffmpeg",
		"-loglevel", "error",
		"-f", "avfoundation",
		"-framerate", "30",
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

func (b *avfBackend) cleanup() {}
