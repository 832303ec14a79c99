// Package rawinput injects mouse and keyboard input through the
// undocumented win32u.dll entry points that sit below SendInput.
//
// The entry points are resolved at runtime, once per process. Every
// failure collapses to a false result at the adapter boundary so the
// caller can switch to conventional injection.
package rawinput

import (
	"sync"

	"rawkvm/internal/logging"
)

var logger = logging.Child("[rawinput]")

// MouseEntryPoint consumes mouse records synchronously.
type MouseEntryPoint interface {
	InjectMouseRecords(records []MouseInputRecord) error
}

// KeyboardEntryPoint consumes keyboard records synchronously.
type KeyboardEntryPoint interface {
	InjectKeyboardRecords(records []KeyboardInputRecord) error
}

// EntryPoints is the outcome of one resolution attempt. A nil field
// means the symbol was not found.
type EntryPoints struct {
	Mouse    MouseEntryPoint
	Keyboard KeyboardEntryPoint
}

// Loader performs a single resolution attempt.
type Loader func() EntryPoints

// unavailable stands in for an entry point that could not be resolved.
type unavailable struct{}

func (unavailable) InjectMouseRecords([]MouseInputRecord) error {
	return ErrResolutionUnavailable
}

func (unavailable) InjectKeyboardRecords([]KeyboardInputRecord) error {
	return ErrResolutionUnavailable
}

// Capabilities reports which event kinds have a resolved entry point.
type Capabilities struct {
	Mouse    bool
	Keyboard bool
}

// Injector owns one lazily resolved pair of entry points.
type Injector struct {
	load    Loader
	once    sync.Once
	entries EntryPoints
	caps    Capabilities
}

// New returns an injector that resolves through load on first use.
func New(load Loader) *Injector {
	return &Injector{load: load}
}

var (
	defaultOnce     sync.Once
	defaultInjector *Injector
)

// Default returns the process-wide injector backed by the OS loader.
func Default() *Injector {
	defaultOnce.Do(func() {
		defaultInjector = New(loadEntryPoints)
	})
	return defaultInjector
}

// InjectRelativeMouseMove injects a relative move through Default.
func InjectRelativeMouseMove(dx, dy int32) bool {
	return Default().InjectRelativeMouseMove(dx, dy)
}

// InjectKeyEvent injects a key event through Default.
func InjectKeyEvent(virtualKey, scanCode uint16, flags KeyFlags) bool {
	return Default().InjectKeyEvent(virtualKey, scanCode, flags)
}

// ensureResolved runs the loader at most once. Concurrent first callers
// block until the single attempt is published; the entries are read-only
// afterwards.
func (i *Injector) ensureResolved() *EntryPoints {
	i.once.Do(func() {
		var ep EntryPoints
		if i.load != nil {
			ep = i.load()
		}
		i.caps = Capabilities{Mouse: ep.Mouse != nil, Keyboard: ep.Keyboard != nil}
		if ep.Mouse == nil {
			ep.Mouse = unavailable{}
		}
		if ep.Keyboard == nil {
			ep.Keyboard = unavailable{}
		}
		i.entries = ep
		logger.Infof("resolution finished: mouse=%v keyboard=%v", i.caps.Mouse, i.caps.Keyboard)
	})
	return &i.entries
}

// Capabilities resolves if needed and reports what is available.
func (i *Injector) Capabilities() Capabilities {
	i.ensureResolved()
	return i.caps
}

// MoveMouse injects a relative move and returns the classified error.
// dx and dy are passed to the OS verbatim.
func (i *Injector) MoveMouse(dx, dy int32) error {
	ep := i.ensureResolved()
	records := [1]MouseInputRecord{newMouseMoveRecord(dx, dy)}
	return ep.Mouse.InjectMouseRecords(records[:])
}

// InjectRelativeMouseMove reports whether the move was delivered.
func (i *Injector) InjectRelativeMouseMove(dx, dy int32) bool {
	if err := i.MoveMouse(dx, dy); err != nil {
		logger.Debugf("mouse move (%d, %d) not delivered: %v", dx, dy, err)
		return false
	}
	return true
}

// SendKey injects one key transition and returns the classified error.
//
// virtualKey is accepted for symmetry with the conventional path and is
// currently ignored: the raw record carries only the scan code.
// Unicode requests are rejected before any OS call.
func (i *Injector) SendKey(virtualKey, scanCode uint16, flags KeyFlags) error {
	ep := i.ensureResolved()
	raw, err := TranslateKeyFlags(flags)
	if err != nil {
		return err
	}
	records := [1]KeyboardInputRecord{newKeyboardRecord(scanCode, raw)}
	return ep.Keyboard.InjectKeyboardRecords(records[:])
}

// InjectKeyEvent reports whether the key event was delivered.
func (i *Injector) InjectKeyEvent(virtualKey, scanCode uint16, flags KeyFlags) bool {
	if err := i.SendKey(virtualKey, scanCode, flags); err != nil {
		logger.Debugf("key vk=0x%02X scan=0x%02X flags=0x%X not delivered: %v", virtualKey, scanCode, uint32(flags), err)
		return false
	}
	return true
}
