package input

import "errors"

var (
	// ErrUnsupported is returned by the conventional sender on platforms
	// without an injection API.
	ErrUnsupported = errors.New("input injection not supported on this platform")

	// ErrNotDelivered is returned when neither path accepted the event
	ErrNotDelivered = errors.New("input event not delivered")

	// ErrUnknownEvent is returned for an InputEvent with an unknown Type
	ErrUnknownEvent = errors.New("unknown input event type")
)
