package signal

import (
	"errors"
	"fmt"

	"github.com/cbegin/rays-go/internal/capture"
)

// ErrDisposed is returned by Initialize when the source was disposed before
// or while the device was being opened.
var ErrDisposed = errors.New("signal source disposed")

// ErrorKind classifies capture failures so callers can pick guidance text.
type ErrorKind int

const (
	// KindOther covers driver failures, cancelled probes and anything
	// unexpected during setup.
	KindOther ErrorKind = iota
	// KindPermissionDenied means the user or OS refused microphone access.
	KindPermissionDenied
	// KindDeviceUnavailable means there is no usable capture hardware.
	KindDeviceUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission denied"
	case KindDeviceUnavailable:
		return "device unavailable"
	default:
		return "other"
	}
}

// CaptureError is the typed failure returned from Live.Initialize.
type CaptureError struct {
	Kind ErrorKind
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("audio capture (%s): %v", e.Kind, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// PermissionDenied reports whether err is a capture failure caused by a
// refused microphone permission.
func PermissionDenied(err error) bool {
	var ce *CaptureError
	return errors.As(err, &ce) && ce.Kind == KindPermissionDenied
}

func classifyCaptureError(err error) *CaptureError {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce
	}
	switch {
	case errors.Is(err, capture.ErrPermissionDenied):
		return &CaptureError{Kind: KindPermissionDenied, Err: err}
	case errors.Is(err, capture.ErrNoDevice):
		return &CaptureError{Kind: KindDeviceUnavailable, Err: err}
	default:
		return &CaptureError{Kind: KindOther, Err: err}
	}
}

// Probe result strings.
const (
	NoDeviceName           = "None"
	DefaultDeviceName      = "Default Audio Device"
	PermissionDeniedReason = "Microphone access denied"
)

// ProbeResult is the capability probe outcome produced once at startup.
// Error is set only when Success is false.
type ProbeResult struct {
	Success    bool
	DeviceName string
	Error      string
}

func probeSuccess(deviceName string) ProbeResult {
	if deviceName == "" {
		deviceName = DefaultDeviceName
	}
	return ProbeResult{Success: true, DeviceName: deviceName}
}

func probeFailure(err *CaptureError) ProbeResult {
	reason := err.Err.Error()
	if err.Kind == KindPermissionDenied {
		reason = PermissionDeniedReason
	}
	return ProbeResult{Success: false, DeviceName: NoDeviceName, Error: reason}
}
