package rawinput

import (
	"errors"
	"fmt"
)

var (
	// ErrResolutionUnavailable is returned when the input library or the
	// entry point for the event kind could not be resolved. It is permanent
	// for the lifetime of the process.
	ErrResolutionUnavailable = errors.New("raw injection entry point unavailable")

	// ErrUnsupportedEventKind is returned for keyboard events the raw path
	// cannot represent (unicode code points).
	ErrUnsupportedEventKind = errors.New("event kind not supported by raw injection")

	// ErrOSCallFailure is returned when the entry point reports a negative status
	ErrOSCallFailure = errors.New("raw injection call failed")
)

// StatusError carries the negative status returned by an entry point.
type StatusError struct {
	Symbol string
	Status int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status 0x%08X", e.Symbol, uint32(e.Status))
}

// Unwrap lets errors.Is match ErrOSCallFailure.
func (e *StatusError) Unwrap() error {
	return ErrOSCallFailure
}

// checkStatus maps a signed status to nil or a *StatusError.
func checkStatus(symbol string, status int32) error {
	if status < 0 {
		return &StatusError{Symbol: symbol, Status: status}
	}
	return nil
}
