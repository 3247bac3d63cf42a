// Package capture provides the sample sources that feed frequency analysis:
// the default microphone, a played-back audio file, and silence.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Device is a mono sample source that can be opened once and read from the
// frame loop while its driver writes from another thread.
type Device interface {
	// Open acquires the device and starts capture. It may block while the
	// platform negotiates access. The returned name may be empty.
	Open(ctx context.Context) (name string, err error)
	// Latest copies the newest len(dst) samples into dst, oldest first, and
	// returns how many were written. Missing history reads as zeros.
	Latest(dst []float32) int
	// Close stops capture. It is safe to call on a device that never opened.
	Close() error
}

var (
	// ErrPermissionDenied marks a capture failure caused by the user or OS
	// refusing microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrNoDevice marks a missing or unusable capture device.
	ErrNoDevice = errors.New("no capture device")
	// ErrClosed is returned by Open on a device that was already closed.
	ErrClosed = errors.New("capture device closed")
)

var permissionHints = []string{
	"permission",
	"denied",
	"not permitted",
	"not authorized",
	"unauthorized",
}

var noDeviceHints = []string{
	"no device",
	"no default input",
	"invalid device",
	"device unavailable",
	"no such file",
}

// ClassifyError wraps a driver error with ErrPermissionDenied or ErrNoDevice
// when its message identifies one of those conditions. Other errors are
// returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrNoDevice) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, h := range permissionHints {
		if strings.Contains(msg, h) {
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
	}
	for _, h := range noDeviceHints {
		if strings.Contains(msg, h) {
			return fmt.Errorf("%w: %v", ErrNoDevice, err)
		}
	}
	return err
}
