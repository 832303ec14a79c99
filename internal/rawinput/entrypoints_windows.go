//go:build windows

package rawinput

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	libraryName    = "win32u.dll"
	mouseSymbol    = "NtUserInjectMouseInput"
	keyboardSymbol = "NtUserInjectKeyboardInput"
)

// Both entry points take (count, first record, record size) and return
// a signed 32-bit status.
type mouseProc struct {
	proc *windows.LazyProc
}

func (p mouseProc) InjectMouseRecords(records []MouseInputRecord) error {
	if len(records) == 0 {
		return nil
	}
	r1, _, _ := p.proc.Call(
		uintptr(len(records)),
		uintptr(unsafe.Pointer(&records[0])),
		unsafe.Sizeof(records[0]),
	)
	return checkStatus(mouseSymbol, int32(uint32(r1)))
}

type keyboardProc struct {
	proc *windows.LazyProc
}

func (p keyboardProc) InjectKeyboardRecords(records []KeyboardInputRecord) error {
	if len(records) == 0 {
		return nil
	}
	r1, _, _ := p.proc.Call(
		uintptr(len(records)),
		uintptr(unsafe.Pointer(&records[0])),
		unsafe.Sizeof(records[0]),
	)
	return checkStatus(keyboardSymbol, int32(uint32(r1)))
}

// loadEntryPoints loads win32u.dll from the system directory and looks up
// each symbol independently. The library is never unloaded.
func loadEntryPoints() EntryPoints {
	var ep EntryPoints

	dll := windows.NewLazySystemDLL(libraryName)
	if err := dll.Load(); err != nil {
		logger.Warnf("failed to load %s: %v", libraryName, err)
		return ep
	}

	mouse := dll.NewProc(mouseSymbol)
	if err := mouse.Find(); err != nil {
		logger.Warnf("%s not found: %v", mouseSymbol, err)
	} else {
		ep.Mouse = mouseProc{proc: mouse}
	}

	keyboard := dll.NewProc(keyboardSymbol)
	if err := keyboard.Find(); err != nil {
		logger.Warnf("%s not found: %v", keyboardSymbol, err)
	} else {
		ep.Keyboard = keyboardProc{proc: keyboard}
	}

	return ep
}
