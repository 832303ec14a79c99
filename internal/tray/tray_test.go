package tray

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuBookkeeping(t *testing.T) {
	tr := New("rawkvm", "test")
	status := tr.AddStatusItem("Raw mouse: unknown")
	tr.AddSeparator()
	quit := tr.AddMenuItem("Quit", func() {})

	assert.Equal(t, 0, status)
	assert.Equal(t, 2, quit)
	require.Len(t, tr.items, 3)
	assert.Nil(t, tr.items[1])
	assert.True(t, tr.items[status].Disabled)

	tr.SetItemTitle(status, "Raw mouse: available")
	assert.Equal(t, "Raw mouse: available", tr.items[status].Title)

	// Out of range and separator ids are ignored.
	tr.SetItemTitle(1, "x")
	tr.SetItemTitle(99, "x")
}

func TestIconHeader(t *testing.T) {
	icon := getIcon()
	require.Len(t, icon, 1118)
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(icon[2:4]))
	assert.Equal(t, uint32(1096), binary.LittleEndian.Uint32(icon[14:18]))
	assert.Equal(t, uint32(22), binary.LittleEndian.Uint32(icon[18:22]))
}
