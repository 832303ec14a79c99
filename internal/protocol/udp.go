// Package protocol defines the binary wire format for forwarded input.
package protocol

import (
	"encoding/binary"
	"errors"
)

// UDP Packet types
const (
	UDPPacketMouseMove uint8 = 0x01
	UDPPacketKeyEvent  uint8 = 0x04
	UDPPacketRegister  uint8 = 0x10
	UDPPacketHeartbeat uint8 = 0x11
	UDPPacketAck       uint8 = 0x12 // Host -> Agent: confirms UDP path is open
)

// Header: [type(1)] [seq(4)] [timestamp(8)] = 13 bytes
const UDPHeaderSize = 13

const (
	mouseMovePayloadSize = 8
	keyEventPayloadSize  = 5
)

var (
	ErrPacketTooShort    = errors.New("udp: packet too short")
	ErrPayloadTooShort   = errors.New("udp: payload too short")
	ErrUnknownPacketType = errors.New("udp: unknown packet type")
)

// UDPPacket represents a binary-encoded input event for low-latency UDP transport.
//
// Wire format per type:
//
//	MouseMove (0x01): header + dx(int32) + dy(int32)                     = 21 bytes
//	KeyEvent  (0x04): header + vk(uint16) + scan(uint16) + flags(uint8)  = 18 bytes
//	Register  (0x10): header only                                        = 13 bytes
//	Heartbeat (0x11): header only                                        = 13 bytes
//	Ack       (0x12): header only                                        = 13 bytes
type UDPPacket struct {
	Type       uint8
	Seq        uint32
	Timestamp  int64
	DeltaX     int32  // mouse move
	DeltaY     int32  // mouse move
	VirtualKey uint16 // key event
	ScanCode   uint16 // key event
	KeyFlags   uint8  // key event: extended(0x1) | up(0x2) | unicode(0x4)
}

// EncodeUDPPacket serializes a UDPPacket to wire format.
func EncodeUDPPacket(pkt *UDPPacket) []byte {
	size := UDPHeaderSize
	switch pkt.Type {
	case UDPPacketMouseMove:
		size += mouseMovePayloadSize
	case UDPPacketKeyEvent:
		size += keyEventPayloadSize
	}

	buf := make([]byte, size)
	buf[0] = pkt.Type
	binary.BigEndian.PutUint32(buf[1:5], pkt.Seq)
	binary.BigEndian.PutUint64(buf[5:13], uint64(pkt.Timestamp))

	payload := buf[UDPHeaderSize:]
	switch pkt.Type {
	case UDPPacketMouseMove:
		binary.BigEndian.PutUint32(payload[0:4], uint32(pkt.DeltaX))
		binary.BigEndian.PutUint32(payload[4:8], uint32(pkt.DeltaY))
	case UDPPacketKeyEvent:
		binary.BigEndian.PutUint16(payload[0:2], pkt.VirtualKey)
		binary.BigEndian.PutUint16(payload[2:4], pkt.ScanCode)
		payload[4] = pkt.KeyFlags
	}

	return buf
}

// DecodeUDPPacket deserializes wire bytes into a UDPPacket.
func DecodeUDPPacket(data []byte) (*UDPPacket, error) {
	if len(data) < UDPHeaderSize {
		return nil, ErrPacketTooShort
	}

	pkt := &UDPPacket{
		Type:      data[0],
		Seq:       binary.BigEndian.Uint32(data[1:5]),
		Timestamp: int64(binary.BigEndian.Uint64(data[5:13])),
	}

	payload := data[UDPHeaderSize:]
	switch pkt.Type {
	case UDPPacketMouseMove:
		if len(payload) < mouseMovePayloadSize {
			return nil, ErrPayloadTooShort
		}
		pkt.DeltaX = int32(binary.BigEndian.Uint32(payload[0:4]))
		pkt.DeltaY = int32(binary.BigEndian.Uint32(payload[4:8]))
	case UDPPacketKeyEvent:
		if len(payload) < keyEventPayloadSize {
			return nil, ErrPayloadTooShort
		}
		pkt.VirtualKey = binary.BigEndian.Uint16(payload[0:2])
		pkt.ScanCode = binary.BigEndian.Uint16(payload[2:4])
		pkt.KeyFlags = payload[4]
	case UDPPacketRegister, UDPPacketHeartbeat, UDPPacketAck:
		// no payload
	default:
		return nil, ErrUnknownPacketType
	}

	return pkt, nil
}

// IsControl reports whether the packet is a register/heartbeat/ack.
func (p *UDPPacket) IsControl() bool {
	switch p.Type {
	case UDPPacketRegister, UDPPacketHeartbeat, UDPPacketAck:
		return true
	}
	return false
}
