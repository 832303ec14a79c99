// Package input delivers remote input events to the local system.
package input

import "rawkvm/internal/rawinput"

// Event types carried by InputEvent.
const (
	EventMouseMove = "mouse_move"
	EventKey       = "key"
)

// InputEvent represents a keyboard or mouse input event
type InputEvent struct {
	Type       string            `json:"type"` // "mouse_move", "key"
	DeltaX     int               `json:"dx,omitempty"`
	DeltaY     int               `json:"dy,omitempty"`
	VirtualKey uint16            `json:"vk,omitempty"`
	ScanCode   uint16            `json:"scan,omitempty"`
	Flags      rawinput.KeyFlags `json:"flags,omitempty"`
	Timestamp  int64             `json:"ts"` // Unix ms timestamp
}

// InputInjector defines the interface for injecting input events
type InputInjector interface {
	InjectMouseMove(dx, dy int) error
	InjectKey(virtualKey, scanCode uint16, flags rawinput.KeyFlags) error
	InjectEvent(event InputEvent) error
}

// RawPath is the below-SendInput injector. A false result means the
// event was not delivered and may be retried elsewhere.
type RawPath interface {
	InjectRelativeMouseMove(dx, dy int32) bool
	InjectKeyEvent(virtualKey, scanCode uint16, flags rawinput.KeyFlags) bool
}

// ConventionalSender injects through the documented input API.
type ConventionalSender interface {
	SendMouseMove(dx, dy int32) error
	SendKey(virtualKey, scanCode uint16, flags rawinput.KeyFlags) error
}
