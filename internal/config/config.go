// Package config handles platform configuration
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr        string
	CameraDevice    string
	ReferencePath   string
	AudioTrackPath  string
	ProcessingWidth int
	TemplateSize    int
	SearchStride    int
	SampleStep      int
	ScoreThreshold  float64
	LockFrames      int
	DetectRate      float64 // Hz
	HashSkipMax     int     // max pHash distance treated as "same frame"
	PhaseSeconds    []float64
	AudioEnabled    bool
	SampleRate      int
}

func Load() *Config {
	return &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
		CameraDevice:    getEnv("CAMERA_DEVICE", ""), // empty selects the platform default
		ReferencePath:   getEnv("REFERENCE_PATH", "reference.png"),
		AudioTrackPath:  getEnv("AUDIO_TRACK_PATH", "track.wav"),
		ProcessingWidth: getEnvInt("PROCESSING_WIDTH", 192),
		TemplateSize:    getEnvInt("TEMPLATE_SIZE", 64),
		SearchStride:    getEnvInt("SEARCH_STRIDE", 4),
		SampleStep:      getEnvInt("SAMPLE_STEP", 2),
		ScoreThreshold:  getEnvFloat("SCORE_THRESHOLD", 2600),
		LockFrames:      getEnvInt("LOCK_FRAMES", 6),
		DetectRate:      getEnvFloat("DETECT_RATE", 10.0),
		HashSkipMax:     getEnvInt("HASH_SKIP_MAX", 2),
		PhaseSeconds:    getEnvFloatList("PHASE_SECONDS", []float64{5, 5, 5}),
		AudioEnabled:    getEnvBool("AUDIO_ENABLED", true),
		SampleRate:      getEnvInt("SAMPLE_RATE", 44100),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvFloatList(key string, def []float64) []float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	result := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || f <= 0 {
			return def
		}
		result = append(result, f)
	}
	if len(result) == 0 {
		return def
	}
	return result
}
