package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMouseMove(t *testing.T) {
	data := EncodeUDPPacket(&UDPPacket{Type: UDPPacketMouseMove, Seq: 7, Timestamp: 1000, DeltaX: 10, DeltaY: -5})
	require.Len(t, data, 21)
	assert.Equal(t, UDPPacketMouseMove, data[0])
	assert.Equal(t, []byte{0, 0, 0, 7}, data[1:5])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFB}, data[17:21])

	pkt, err := DecodeUDPPacket(data)
	require.NoError(t, err)
	assert.Equal(t, int32(10), pkt.DeltaX)
	assert.Equal(t, int32(-5), pkt.DeltaY)
	assert.Equal(t, uint32(7), pkt.Seq)
	assert.Equal(t, int64(1000), pkt.Timestamp)
}

func TestEncodeKeyEvent(t *testing.T) {
	data := EncodeUDPPacket(&UDPPacket{Type: UDPPacketKeyEvent, Seq: 1, VirtualKey: 0x41, ScanCode: 0x1E, KeyFlags: 0x3})
	require.Len(t, data, 18)
	assert.Equal(t, []byte{0x00, 0x41, 0x00, 0x1E, 0x03}, data[13:18])

	pkt, err := DecodeUDPPacket(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x41), pkt.VirtualKey)
	assert.Equal(t, uint16(0x1E), pkt.ScanCode)
	assert.Equal(t, uint8(0x3), pkt.KeyFlags)
}

func TestControlPacketsAreHeaderOnly(t *testing.T) {
	for _, typ := range []uint8{UDPPacketRegister, UDPPacketHeartbeat, UDPPacketAck} {
		data := EncodeUDPPacket(&UDPPacket{Type: typ})
		assert.Len(t, data, UDPHeaderSize)
		pkt, err := DecodeUDPPacket(data)
		require.NoError(t, err)
		assert.True(t, pkt.IsControl())
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeUDPPacket([]byte{UDPPacketMouseMove, 0, 0})
	assert.ErrorIs(t, err, ErrPacketTooShort)

	move := EncodeUDPPacket(&UDPPacket{Type: UDPPacketMouseMove})
	_, err = DecodeUDPPacket(move[:len(move)-1])
	assert.ErrorIs(t, err, ErrPayloadTooShort)

	key := EncodeUDPPacket(&UDPPacket{Type: UDPPacketKeyEvent})
	_, err = DecodeUDPPacket(key[:UDPHeaderSize+2])
	assert.ErrorIs(t, err, ErrPayloadTooShort)

	unknown := make([]byte, UDPHeaderSize)
	unknown[0] = 0x02
	_, err = DecodeUDPPacket(unknown)
	assert.ErrorIs(t, err, ErrUnknownPacketType)
}
