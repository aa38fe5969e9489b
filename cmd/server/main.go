// Platform server - orchestrates camera capture, marker detection, and WebSocket connections
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markerlens/platform/internal/audio"
	"github.com/markerlens/platform/internal/camera"
	"github.com/markerlens/platform/internal/config"
	"github.com/markerlens/platform/internal/orchestrator"
	"github.com/markerlens/platform/internal/server"
	"github.com/markerlens/platform/internal/vision"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg := config.Load()

	// Load the reference template; a degraded fallback still lets the
	// server come up for diagnostics.
	tmpl, err := vision.LoadTemplate(cfg.ReferencePath, cfg.TemplateSize)
	if err != nil {
		slog.Warn("reference template unavailable, detection degraded", "path", cfg.ReferencePath, "error", err)
	}

	// Open the camera and wait for the first frame
	cam := camera.New(cfg.CameraDevice)
	defer cam.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	warmupCtx, warmupCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := camera.Warmup(warmupCtx, cam); err != nil {
		warmupCancel()
		slog.Error("camera warmup failed", "device", cfg.CameraDevice, "error", err)
		os.Exit(1)
	}
	warmupCancel()

	// Audio output is optional; headless hosts run silent
	var player *audio.Player
	if cfg.AudioEnabled {
		player, err = audio.NewPlayer(cfg.SampleRate)
		if err != nil {
			slog.Warn("audio output unavailable, running silent", "error", err)
			player = nil
		}
	}
	defer player.Close()

	// Create orchestrator
	orch := orchestrator.New(cfg, cam, tmpl, player)

	// Create HTTP/WebSocket server
	srv := server.New(orch)

	go func() {
		if err := orch.Start(ctx); err != nil {
			slog.Error("orchestrator error", "error", err)
		}
	}()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("platform server starting", "http", cfg.HTTPAddr, "camera", cfg.CameraDevice)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	orch.Stop()
	slog.Info("shutdown complete")
}
