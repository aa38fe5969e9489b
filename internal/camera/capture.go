package camera

import (
	"log/slog"
	"os"
)

// New creates a capturer for the platform camera backend. An empty device
// selects the platform default.
func New(device string) Capturer {
	tmpDir, err := os.MkdirTemp("", "markerlens-camera-*")
	if err != nil {
		slog.Error("failed to create temp dir for frames", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(newPlatformBackend(device, tmpDir), tmpDir)
}
