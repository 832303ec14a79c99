// Package network carries forwarded input between host and agent over UDP.
package network

import (
	"errors"
	"net"
	"sync"
	"time"

	"rawkvm/internal/input"
	"rawkvm/internal/logging"
	"rawkvm/internal/protocol"
	"rawkvm/internal/rawinput"
)

var logger = logging.Child("[network]")

const (
	heartbeatInterval = 5 * time.Second
	probeAttempts     = 3
	probeTimeout      = 500 * time.Millisecond
)

// UDPReceiver is the Agent-side UDP listener that receives binary input events
// from the Host with minimal latency.
type UDPReceiver struct {
	hostAddr string // host address in "ip:port" format
	conn     *net.UDPConn
	done     chan struct{}
	stopOnce sync.Once

	// OnInput is called for each received input event.
	OnInput func(event input.InputEvent)

	// dedup ring buffer for redundant packets
	dedup seqDedup

	heartbeat time.Duration
}

// seqDedup tracks recently seen sequence numbers to discard redundant packets.
// Uses a fixed-size ring buffer, no allocation after construction.
// Every sequence number is a valid value, so occupancy is counted rather
// than marked with a sentinel.
type seqDedup struct {
	ring   [512]uint32
	pos    int
	filled int
	seen   map[uint32]struct{}
}

func newSeqDedup() seqDedup {
	return seqDedup{seen: make(map[uint32]struct{}, 512)}
}

func (d *seqDedup) isDuplicate(seq uint32) bool {
	if _, ok := d.seen[seq]; ok {
		return true
	}
	// Evict oldest entry once the ring has wrapped
	if d.filled == len(d.ring) {
		delete(d.seen, d.ring[d.pos])
	} else {
		d.filled++
	}
	d.ring[d.pos] = seq
	d.seen[seq] = struct{}{}
	d.pos = (d.pos + 1) % len(d.ring)
	return false
}

// reset forgets every sequence number. A restarted host counts from 1 again.
func (d *seqDedup) reset() {
	clear(d.seen)
	d.pos = 0
	d.filled = 0
}

// NewUDPReceiver creates a new UDP receiver for the agent.
func NewUDPReceiver(hostAddr string) *UDPReceiver {
	return &UDPReceiver{
		hostAddr:  hostAddr,
		done:      make(chan struct{}),
		dedup:     newSeqDedup(),
		heartbeat: heartbeatInterval,
	}
}

// Probe tests whether UDP connectivity to the host is available.
// It sends register packets and waits for an Ack response.
func (r *UDPReceiver) Probe() bool {
	hostUDP, err := net.ResolveUDPAddr("udp", r.hostAddr)
	if err != nil {
		logger.Warnf("probe: failed to resolve host: %v", err)
		return false
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		logger.Warnf("probe: failed to bind: %v", err)
		return false
	}
	defer conn.Close()

	buf := make([]byte, 64)
	for attempt := 0; attempt < probeAttempts; attempt++ {
		pkt := &protocol.UDPPacket{
			Type:      protocol.UDPPacketRegister,
			Timestamp: time.Now().UnixMilli(),
		}
		conn.WriteToUDP(protocol.EncodeUDPPacket(pkt), hostUDP)

		conn.SetReadDeadline(time.Now().Add(probeTimeout))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}
		resp, err := protocol.DecodeUDPPacket(buf[:n])
		if err != nil {
			continue
		}
		if resp.Type == protocol.UDPPacketAck {
			logger.Infof("probe: host replied with Ack (attempt %d)", attempt+1)
			return true
		}
	}

	logger.Warnf("probe: no Ack received after %d attempts", probeAttempts)
	return false
}

// Start opens a UDP socket, registers with the host, and begins receiving.
func (r *UDPReceiver) Start() error {
	hostUDP, err := net.ResolveUDPAddr("udp", r.hostAddr)
	if err != nil {
		return err
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		return err
	}
	r.conn = conn

	// Large read buffer for burst receives
	conn.SetReadBuffer(1 << 20)

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	logger.Infof("receiver listening on :%d, host=%s", localAddr.Port, r.hostAddr)

	r.sendControl(protocol.UDPPacketRegister, hostUDP)

	go r.heartbeatLoop(hostUDP)
	go r.readLoop()

	return nil
}

// heartbeatLoop sends periodic heartbeat packets to keep the registration alive.
func (r *UDPReceiver) heartbeatLoop(hostAddr *net.UDPAddr) {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sendControl(protocol.UDPPacketHeartbeat, hostAddr)
		case <-r.done:
			return
		}
	}
}

// sendControl sends a register or heartbeat packet (header-only, no payload).
func (r *UDPReceiver) sendControl(pktType uint8, addr *net.UDPAddr) {
	pkt := &protocol.UDPPacket{
		Type:      pktType,
		Timestamp: time.Now().UnixMilli(),
	}
	r.conn.WriteToUDP(protocol.EncodeUDPPacket(pkt), addr)
}

// readLoop reads and dispatches incoming binary input packets.
func (r *UDPReceiver) readLoop() {
	buf := make([]byte, 64)
	for {
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-r.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		pkt, err := protocol.DecodeUDPPacket(buf[:n])
		if err != nil {
			logger.Debugf("dropping packet: %v", err)
			continue
		}
		if pkt.IsControl() {
			// The host acks a registration it did not know about, which is
			// also what a restarted host does. Its sequence starts over.
			if pkt.Type == protocol.UDPPacketAck {
				logger.Debug("host acknowledged registration, resetting sequence window")
				r.dedup.reset()
			}
			continue
		}

		// Deduplicate redundant packets (same seq number)
		if r.dedup.isDuplicate(pkt.Seq) {
			continue
		}

		r.dispatch(pkt)
	}
}

// dispatch converts a binary packet into an InputEvent.
func (r *UDPReceiver) dispatch(pkt *protocol.UDPPacket) {
	if r.OnInput == nil {
		return
	}

	switch pkt.Type {
	case protocol.UDPPacketMouseMove:
		r.OnInput(input.InputEvent{
			Type:      input.EventMouseMove,
			DeltaX:    int(pkt.DeltaX),
			DeltaY:    int(pkt.DeltaY),
			Timestamp: pkt.Timestamp,
		})
	case protocol.UDPPacketKeyEvent:
		r.OnInput(input.InputEvent{
			Type:       input.EventKey,
			VirtualKey: pkt.VirtualKey,
			ScanCode:   pkt.ScanCode,
			Flags:      rawinput.KeyFlags(pkt.KeyFlags),
			Timestamp:  pkt.Timestamp,
		})
	}
}

// Stop shuts down the UDP receiver.
func (r *UDPReceiver) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		if r.conn != nil {
			r.conn.Close()
		}
	})
}
