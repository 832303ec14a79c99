package network

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rawkvm/internal/input"
	"rawkvm/internal/protocol"
	"rawkvm/internal/rawinput"
)

func TestSeqDedup(t *testing.T) {
	d := newSeqDedup()
	assert.False(t, d.isDuplicate(1))
	assert.True(t, d.isDuplicate(1))
	assert.False(t, d.isDuplicate(2))

	// Push seq 1 out of the ring.
	for seq := uint32(3); seq < 3+uint32(len(d.ring)); seq++ {
		d.isDuplicate(seq)
	}
	assert.False(t, d.isDuplicate(1))
}

func TestSeqDedupZeroSequence(t *testing.T) {
	d := newSeqDedup()
	assert.False(t, d.isDuplicate(0))
	assert.True(t, d.isDuplicate(0))

	// Zero is evicted like any other sequence number.
	for seq := uint32(1); seq <= uint32(len(d.ring)); seq++ {
		assert.False(t, d.isDuplicate(seq))
	}
	assert.Len(t, d.seen, len(d.ring))
	assert.False(t, d.isDuplicate(0))
	assert.Len(t, d.seen, len(d.ring))
}

func TestSeqDedupReset(t *testing.T) {
	d := newSeqDedup()
	for seq := uint32(1); seq <= 5; seq++ {
		d.isDuplicate(seq)
	}
	d.reset()
	for seq := uint32(1); seq <= 5; seq++ {
		assert.False(t, d.isDuplicate(seq))
	}
}

func startSender(t *testing.T) *UDPSender {
	t.Helper()
	s := NewUDPSender("127.0.0.1:0")
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return s
}

func TestReceiverProbe(t *testing.T) {
	s := startSender(t)
	r := NewUDPReceiver(s.LocalAddr().String())
	assert.True(t, r.Probe())
}

func TestReceiverProbeNoHost(t *testing.T) {
	// Bind and close to get a port nobody answers on.
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	conn.Close()

	r := NewUDPReceiver(addr)
	assert.False(t, r.Probe())
}

func TestSenderToReceiver(t *testing.T) {
	s := startSender(t)

	events := make(chan input.InputEvent, 16)
	r := NewUDPReceiver(s.LocalAddr().String())
	r.OnInput = func(ev input.InputEvent) { events <- ev }
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)

	require.Eventually(t, s.HasAgents, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.SendInput(input.InputEvent{Type: input.EventMouseMove, DeltaX: 10, DeltaY: -5, Timestamp: 1}))
	require.NoError(t, s.SendInput(input.InputEvent{
		Type:       input.EventKey,
		VirtualKey: 0x41,
		ScanCode:   0x1E,
		Flags:      rawinput.KeyUp | rawinput.KeyExtended,
		Timestamp:  2,
	}))

	recv := func() input.InputEvent {
		select {
		case ev := <-events:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
			return input.InputEvent{}
		}
	}

	move := recv()
	assert.Equal(t, input.InputEvent{Type: input.EventMouseMove, DeltaX: 10, DeltaY: -5, Timestamp: 1}, move)

	key := recv()
	assert.Equal(t, input.EventKey, key.Type)
	assert.Equal(t, uint16(0x41), key.VirtualKey)
	assert.Equal(t, uint16(0x1E), key.ScanCode)
	assert.Equal(t, rawinput.KeyUp|rawinput.KeyExtended, key.Flags)

	// Redundant copies of the key event are dropped.
	select {
	case ev := <-events:
		t.Fatalf("unexpected duplicate event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReceiverIgnoresGarbage(t *testing.T) {
	s := startSender(t)

	events := make(chan input.InputEvent, 4)
	r := NewUDPReceiver(s.LocalAddr().String())
	r.OnInput = func(ev input.InputEvent) { events <- ev }
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)

	port := r.conn.LocalAddr().(*net.UDPAddr).Port
	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port})
	require.NoError(t, err)
	defer conn.Close()

	conn.Write([]byte{0xFF, 0x00})
	conn.Write(protocol.EncodeUDPPacket(&protocol.UDPPacket{Type: protocol.UDPPacketAck}))
	conn.Write(protocol.EncodeUDPPacket(&protocol.UDPPacket{Type: protocol.UDPPacketMouseMove, Seq: 99, DeltaX: 1, DeltaY: 2}))

	select {
	case ev := <-events:
		assert.Equal(t, 1, ev.DeltaX)
		assert.Equal(t, 2, ev.DeltaY)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSenderRejectsUnknownEvent(t *testing.T) {
	s := NewUDPSender("127.0.0.1:0")
	assert.ErrorIs(t, s.SendInput(input.InputEvent{Type: "mouse_btn"}), input.ErrUnknownEvent)
}

func TestSenderExpiresStaleAgents(t *testing.T) {
	s := NewUDPSender("127.0.0.1:0")
	now := time.Now()
	s.agents["a"] = &udpAgent{addr: &net.UDPAddr{}, lastSeen: now.Add(-time.Minute)}
	s.agents["b"] = &udpAgent{addr: &net.UDPAddr{}, lastSeen: now}

	s.expireAgents(now)
	assert.NotContains(t, s.agents, "a")
	assert.Contains(t, s.agents, "b")
}

func TestReceiverSurvivesHostRestart(t *testing.T) {
	first := NewUDPSender("127.0.0.1:0")
	require.NoError(t, first.Start())
	addr := first.LocalAddr().String()

	events := make(chan input.InputEvent, 16)
	r := NewUDPReceiver(addr)
	r.heartbeat = 20 * time.Millisecond
	r.OnInput = func(ev input.InputEvent) { events <- ev }
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)

	sendMoves := func(s *UDPSender) {
		for i := 1; i <= 5; i++ {
			require.NoError(t, s.SendInput(input.InputEvent{Type: input.EventMouseMove, DeltaX: i, Timestamp: int64(i)}))
		}
	}
	expectMoves := func() {
		for i := 1; i <= 5; i++ {
			select {
			case ev := <-events:
				assert.Equal(t, i, ev.DeltaX)
			case <-time.After(2 * time.Second):
				t.Fatalf("timed out waiting for move %d", i)
			}
		}
	}

	require.Eventually(t, first.HasAgents, 2*time.Second, 10*time.Millisecond)
	sendMoves(first)
	expectMoves()
	first.Stop()

	// Same address, sequence numbers start over at 1.
	second := NewUDPSender(addr)
	require.NoError(t, second.Start())
	t.Cleanup(second.Stop)

	require.Eventually(t, second.HasAgents, 2*time.Second, 10*time.Millisecond)
	sendMoves(second)
	expectMoves()
}
