// Package camera handles frame capture from DirectShow devices via ffmpeg
package camera

import (
	"bytes"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// dshowBackend grabs single frames from a DirectShow device
type dshowBackend struct {
	device  string
	tempDir string
}

func newPlatformBackend(device, tempDir string) backend {
	if device == "" {
		device = "Integrated Camera"
	}
	return &dshowBackend{device: device, tempDir: tempDir}
}

func (b *dshowBackend) grabRaw() []byte {
	tmpFile := filepath.Join(b.tempDir, "frame.jpg")

	cmd := exec.Command("ffmpeg",
		"-loglevel", "error",
		"-f", "dshow",
		"-i", "video="+b.device,
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

func (b *dshowBackend) cleanup() {}
