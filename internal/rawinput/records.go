package rawinput

// Records mirror the driver-level input packets consumed by the win32u
// entry points. Field order and widths are a binary contract: the entry
// point reads raw memory, so nothing here may be reordered or resized.

// MouseInputRecord mirrors MOUSE_INPUT_DATA (24 bytes).
//
//	Field             Width  Offset  Meaning
//	UnitID            2      0       device unit, always 0
//	Flags             2      2       0 = relative movement
//	ButtonFlags       2      4       button transitions (low half of the Buttons union)
//	ButtonData        2      6       wheel data (high half of the Buttons union)
//	RawButtons        4      8       raw button bits
//	LastX             4      12      signed X delta
//	LastY             4      16      signed Y delta
//	ExtraInformation  4      20      device specific
type MouseInputRecord struct {
	UnitID           uint16
	Flags            uint16
	ButtonFlags      uint16
	ButtonData       uint16
	RawButtons       uint32
	LastX            int32
	LastY            int32
	ExtraInformation uint32
}

// KeyboardInputRecord mirrors KEYBOARD_INPUT_DATA (12 bytes).
//
//	Field             Width  Offset  Meaning
//	UnitID            2      0       device unit, always 0
//	MakeCode          2      2       scan code
//	Flags             2      4       KeyBreak | KeyE0
//	Reserved          2      6       0
//	ExtraInformation  4      8       0
type KeyboardInputRecord struct {
	UnitID           uint16
	MakeCode         uint16
	Flags            uint16
	Reserved         uint16
	ExtraInformation uint32
}

const (
	mouseRecordSize    = 24
	keyboardRecordSize = 12
)

// MouseMoveRelative is the Flags value for a relative move.
const MouseMoveRelative uint16 = 0x0000

// Raw keyboard record flag bits.
const (
	KeyMake  uint16 = 0x0000
	KeyBreak uint16 = 0x0001
	KeyE0    uint16 = 0x0002
)

// KeyFlags is the portable keyboard flag set accepted by InjectKeyEvent.
// The bit values match the conventional keyboard-event flags so callers
// can hand the same set to a fallback path unchanged.
type KeyFlags uint32

const (
	KeyExtended KeyFlags = 0x0001
	KeyUp       KeyFlags = 0x0002
	KeyUnicode  KeyFlags = 0x0004
)

// Has reports whether all bits of f2 are set in f.
func (f KeyFlags) Has(f2 KeyFlags) bool {
	return f&f2 == f2
}

// TranslateKeyFlags converts portable flags into raw record flags.
// Any set containing KeyUnicode is rejected with ErrUnsupportedEventKind.
func TranslateKeyFlags(flags KeyFlags) (uint16, error) {
	if flags.Has(KeyUnicode) {
		return 0, ErrUnsupportedEventKind
	}
	raw := KeyMake
	if flags.Has(KeyUp) {
		raw |= KeyBreak
	}
	if flags.Has(KeyExtended) {
		raw |= KeyE0
	}
	return raw, nil
}

func newMouseMoveRecord(dx, dy int32) MouseInputRecord {
	return MouseInputRecord{
		UnitID:      0,
		Flags:       MouseMoveRelative,
		ButtonFlags: 0,
		LastX:       dx,
		LastY:       dy,
	}
}

func newKeyboardRecord(scanCode, flags uint16) KeyboardInputRecord {
	return KeyboardInputRecord{
		UnitID:   0,
		MakeCode: scanCode,
		Flags:    flags,
		Reserved: 0,
	}
}
