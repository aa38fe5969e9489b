// Package errors provides unified error handling with structured error codes.
package errors

import (
	"fmt"
	"net/http"
)

// Code classifies an error for callers and for the HTTP surface.
type Code int

const (
	Unknown Code = iota
	Internal
	InvalidArgument
	NotFound
	Unavailable
	Timeout
	Cancelled
	FailedPrecondition

	// Camera pipeline
	CameraNotReady
	CameraCaptureFailed
	CameraInitFailed

	// Detection pipeline
	ReferenceLoadFailed
	NoValidWindow

	// Playback
	PlaybackNotLocked
	PlaybackBusy
	AudioInitFailed

	// Configuration
	ConfigInvalid
)

var codeNames = map[Code]string{
	Unknown:             "UNKNOWN",
	Internal:            "INTERNAL",
	InvalidArgument:     "INVALID_ARGUMENT",
	NotFound:            "NOT_FOUND",
	Unavailable:         "UNAVAILABLE",
	Timeout:             "TIMEOUT",
	Cancelled:           "CANCELLED",
	FailedPrecondition:  "FAILED_PRECONDITION",
	CameraNotReady:      "CAMERA_NOT_READY",
	CameraCaptureFailed: "CAMERA_CAPTURE_FAILED",
	CameraInitFailed:    "CAMERA_INIT_FAILED",
	ReferenceLoadFailed: "REFERENCE_LOAD_FAILED",
	NoValidWindow:       "NO_VALID_WINDOW",
	PlaybackNotLocked:   "PLAYBACK_NOT_LOCKED",
	PlaybackBusy:        "PLAYBACK_BUSY",
	AudioInitFailed:     "AUDIO_INIT_FAILED",
	ConfigInvalid:       "CONFIG_INVALID",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// httpCodeMap maps error codes to HTTP status codes for the REST surface.
var httpCodeMap = map[Code]int{
	Unknown:             http.StatusInternalServerError,
	Internal:            http.StatusInternalServerError,
	InvalidArgument:     http.StatusBadRequest,
	NotFound:            http.StatusNotFound,
	Unavailable:         http.StatusServiceUnavailable,
	Timeout:             http.StatusGatewayTimeout,
	Cancelled:           http.StatusRequestTimeout,
	FailedPrecondition:  http.StatusConflict,
	CameraNotReady:      http.StatusServiceUnavailable,
	CameraCaptureFailed: http.StatusServiceUnavailable,
	CameraInitFailed:    http.StatusServiceUnavailable,
	ReferenceLoadFailed: http.StatusInternalServerError,
	NoValidWindow:       http.StatusUnprocessableEntity,
	PlaybackNotLocked:   http.StatusConflict,
	PlaybackBusy:        http.StatusConflict,
	AudioInitFailed:     http.StatusServiceUnavailable,
	ConfigInvalid:       http.StatusBadRequest,
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// HTTPStatus returns the corresponding HTTP status code.
func (e *AppError) HTTPStatus() int {
	if c, ok := httpCodeMap[e.Code]; ok {
		return c
	}
	return http.StatusInternalServerError
}

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code Code) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// IsRetryable returns true if the error is potentially retryable.
func IsRetryable(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	switch appErr.Code {
	case Unavailable, Timeout, CameraNotReady, CameraCaptureFailed:
		return true
	default:
		return false
	}
}
