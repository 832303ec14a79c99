//go:build !windows

package input

import "rawkvm/internal/rawinput"

// Stub implementation for non-Windows platforms
type unsupportedSender struct{}

// NewConventionalSender returns a sender that always fails
func NewConventionalSender() ConventionalSender {
	return unsupportedSender{}
}

func (unsupportedSender) SendMouseMove(dx, dy int32) error {
	return ErrUnsupported
}

func (unsupportedSender) SendKey(virtualKey, scanCode uint16, flags rawinput.KeyFlags) error {
	return ErrUnsupported
}
