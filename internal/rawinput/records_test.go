package rawinput

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMouseInputRecordLayout(t *testing.T) {
	var r MouseInputRecord
	require.Equal(t, uintptr(mouseRecordSize), unsafe.Sizeof(r))
	require.Equal(t, mouseRecordSize, binary.Size(r))

	offsets := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"UnitID", unsafe.Offsetof(r.UnitID), 0},
		{"Flags", unsafe.Offsetof(r.Flags), 2},
		{"ButtonFlags", unsafe.Offsetof(r.ButtonFlags), 4},
		{"ButtonData", unsafe.Offsetof(r.ButtonData), 6},
		{"RawButtons", unsafe.Offsetof(r.RawButtons), 8},
		{"LastX", unsafe.Offsetof(r.LastX), 12},
		{"LastY", unsafe.Offsetof(r.LastY), 16},
		{"ExtraInformation", unsafe.Offsetof(r.ExtraInformation), 20},
	}
	for _, o := range offsets {
		assert.Equal(t, o.want, o.got, o.name)
	}
}

func TestKeyboardInputRecordLayout(t *testing.T) {
	var r KeyboardInputRecord
	require.Equal(t, uintptr(keyboardRecordSize), unsafe.Sizeof(r))
	require.Equal(t, keyboardRecordSize, binary.Size(r))

	assert.Equal(t, uintptr(0), unsafe.Offsetof(r.UnitID))
	assert.Equal(t, uintptr(2), unsafe.Offsetof(r.MakeCode))
	assert.Equal(t, uintptr(4), unsafe.Offsetof(r.Flags))
	assert.Equal(t, uintptr(6), unsafe.Offsetof(r.Reserved))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(r.ExtraInformation))
}

func TestTranslateKeyFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags KeyFlags
		want  uint16
	}{
		{"key down", 0, 0x0},
		{"key up", KeyUp, 0x1},
		{"extended", KeyExtended, 0x2},
		{"extended key up", KeyUp | KeyExtended, 0x3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TranslateKeyFlags(tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslateKeyFlagsRejectsUnicode(t *testing.T) {
	for _, flags := range []KeyFlags{
		KeyUnicode,
		KeyUnicode | KeyUp,
		KeyUnicode | KeyExtended,
		KeyUnicode | KeyUp | KeyExtended,
	} {
		_, err := TranslateKeyFlags(flags)
		assert.ErrorIs(t, err, ErrUnsupportedEventKind, "flags 0x%X", uint32(flags))
	}
}

func TestStatusError(t *testing.T) {
	assert.NoError(t, checkStatus("NtUserInjectMouseInput", 0))
	assert.NoError(t, checkStatus("NtUserInjectMouseInput", 1))

	err := checkStatus("NtUserInjectMouseInput", -1073741790) // STATUS_ACCESS_DENIED
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOSCallFailure)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, int32(-1073741790), se.Status)
	assert.Contains(t, err.Error(), "0xC0000022")
}
