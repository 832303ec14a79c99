package input

import (
	"fmt"
	"math"
	"sync/atomic"

	"rawkvm/internal/logging"
	"rawkvm/internal/rawinput"
)

var logger = logging.Child("[input]")

// Options selects which delivery paths the Injector may use.
type Options struct {
	RawEnabled      bool
	FallbackEnabled bool
}

// Stats counts how events were delivered.
type Stats struct {
	Raw      uint64
	Fallback uint64
	Dropped  uint64
}

// Injector tries the raw path first and falls back to the conventional
// sender when the raw path declines an event.
type Injector struct {
	raw      RawPath
	fallback ConventionalSender
	opts     Options

	rawCount      atomic.Uint64
	fallbackCount atomic.Uint64
	droppedCount  atomic.Uint64
}

// NewInjector creates an injector over the process-wide raw path and the
// platform conventional sender.
func NewInjector(opts Options) *Injector {
	return NewInjectorWith(rawinput.Default(), NewConventionalSender(), opts)
}

// NewInjectorWith creates an injector over explicit paths. Either may be nil.
func NewInjectorWith(raw RawPath, fallback ConventionalSender, opts Options) *Injector {
	return &Injector{raw: raw, fallback: fallback, opts: opts}
}

// InjectMouseMove injects a relative mouse movement
func (i *Injector) InjectMouseMove(dx, dy int) error {
	x, y := clampInt32(dx), clampInt32(dy)
	if i.opts.RawEnabled && i.raw != nil && i.raw.InjectRelativeMouseMove(x, y) {
		i.rawCount.Add(1)
		return nil
	}
	return i.deliverFallback(func(s ConventionalSender) error {
		return s.SendMouseMove(x, y)
	})
}

// InjectKey injects a single key transition
func (i *Injector) InjectKey(virtualKey, scanCode uint16, flags rawinput.KeyFlags) error {
	if i.opts.RawEnabled && i.raw != nil && i.raw.InjectKeyEvent(virtualKey, scanCode, flags) {
		i.rawCount.Add(1)
		return nil
	}
	return i.deliverFallback(func(s ConventionalSender) error {
		return s.SendKey(virtualKey, scanCode, flags)
	})
}

// InjectEvent dispatches an InputEvent by type
func (i *Injector) InjectEvent(event InputEvent) error {
	switch event.Type {
	case EventMouseMove:
		return i.InjectMouseMove(event.DeltaX, event.DeltaY)
	case EventKey:
		return i.InjectKey(event.VirtualKey, event.ScanCode, event.Flags)
	default:
		i.droppedCount.Add(1)
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}
}

// Stats returns a snapshot of the delivery counters
func (i *Injector) Stats() Stats {
	return Stats{
		Raw:      i.rawCount.Load(),
		Fallback: i.fallbackCount.Load(),
		Dropped:  i.droppedCount.Load(),
	}
}

func (i *Injector) deliverFallback(send func(ConventionalSender) error) error {
	if !i.opts.FallbackEnabled || i.fallback == nil {
		i.droppedCount.Add(1)
		return ErrNotDelivered
	}
	if err := send(i.fallback); err != nil {
		i.droppedCount.Add(1)
		logger.Debugf("conventional injection failed: %v", err)
		return fmt.Errorf("%w: %w", ErrNotDelivered, err)
	}
	i.fallbackCount.Add(1)
	return nil
}

func clampInt32(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
