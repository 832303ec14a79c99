//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"rawkvm/internal/rawinput"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	INPUT_MOUSE    = 0
	INPUT_KEYBOARD = 1

	MOUSEEVENTF_MOVE = 0x0001

	KEYEVENTF_EXTENDEDKEY = 0x0001
	KEYEVENTF_KEYUP       = 0x0002
	KEYEVENTF_UNICODE     = 0x0004
	KEYEVENTF_SCANCODE    = 0x0008
)

type MOUSEINPUT struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type KEYBDINPUT struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// mouseINPUT and keyboardINPUT are the two shapes of INPUT. MOUSEINPUT is
// the largest union member, so the keyboard form pads to the same size.
type mouseINPUT struct {
	Type uint32
	Mi   MOUSEINPUT
}

type keyboardINPUT struct {
	Type uint32
	Ki   KEYBDINPUT
	_    [8]byte
}

// sendInputSender injects through SendInput.
type sendInputSender struct{}

// NewConventionalSender returns the SendInput based sender
func NewConventionalSender() ConventionalSender {
	return sendInputSender{}
}

func (sendInputSender) SendMouseMove(dx, dy int32) error {
	in := mouseINPUT{
		Type: INPUT_MOUSE,
		Mi: MOUSEINPUT{
			Dx:      dx,
			Dy:      dy,
			DwFlags: MOUSEEVENTF_MOVE,
		},
	}
	return sendInput(unsafe.Pointer(&in), unsafe.Sizeof(in))
}

func (sendInputSender) SendKey(virtualKey, scanCode uint16, flags rawinput.KeyFlags) error {
	// The portable flags share bit values with KEYEVENTF_*.
	dwFlags := uint32(flags) & (KEYEVENTF_EXTENDEDKEY | KEYEVENTF_KEYUP | KEYEVENTF_UNICODE)
	vk := virtualKey
	if flags.Has(rawinput.KeyUnicode) {
		vk = 0
	} else if vk == 0 {
		dwFlags |= KEYEVENTF_SCANCODE
	}

	in := keyboardINPUT{
		Type: INPUT_KEYBOARD,
		Ki: KEYBDINPUT{
			WVk:     vk,
			WScan:   scanCode,
			DwFlags: dwFlags,
		},
	}
	return sendInput(unsafe.Pointer(&in), unsafe.Sizeof(in))
}

func sendInput(in unsafe.Pointer, size uintptr) error {
	n, _, err := procSendInput.Call(1, uintptr(in), size)
	if n != 1 {
		return fmt.Errorf("SendInput failed: %v", err)
	}
	return nil
}
