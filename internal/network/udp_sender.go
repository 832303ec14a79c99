package network

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"rawkvm/internal/input"
	"rawkvm/internal/protocol"
)

const (
	agentTimeout   = 30 * time.Second
	cleanupPeriod  = 10 * time.Second
	keyRedundancy  = 3
	moveRedundancy = 1
)

// UDPSender is the Host-side UDP broadcaster that sends binary input events
// to all registered agents with minimal overhead.
type UDPSender struct {
	addr     string
	conn     *net.UDPConn
	agents   map[string]*udpAgent
	agentsMu sync.RWMutex
	seq      atomic.Uint32
	done     chan struct{}
	stopOnce sync.Once
}

type udpAgent struct {
	addr     *net.UDPAddr
	lastSeen time.Time
}

// NewUDPSender creates a new UDP sender bound to addr ("host:port").
func NewUDPSender(addr string) *UDPSender {
	return &UDPSender{
		addr:   addr,
		agents: make(map[string]*udpAgent),
		done:   make(chan struct{}),
	}
}

// Start binds the UDP socket and begins listening for agent registrations.
func (s *UDPSender) Start() error {
	addr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	s.conn = conn

	// 1 MB write buffer for burst writes
	conn.SetWriteBuffer(1 << 20)
	// 64 KB read buffer for register/heartbeat
	conn.SetReadBuffer(1 << 16)

	logger.Infof("sender listening on %s", conn.LocalAddr())

	go s.readLoop()
	go s.cleanupLoop()

	return nil
}

// LocalAddr returns the bound address, or nil before Start.
func (s *UDPSender) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// readLoop listens for register and heartbeat packets from agents.
func (s *UDPSender) readLoop() {
	buf := make([]byte, 64)
	for {
		n, remoteAddr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.done:
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
			continue
		}

		// The Ack goes out before the agent is added so that it precedes
		// any input broadcast to the agent.
		switch pkt.Type {
		case protocol.UDPPacketRegister:
			s.sendAck(remoteAddr)
			s.touchAgent(remoteAddr)

		case protocol.UDPPacketHeartbeat:
			// A heartbeat from an agent we don't know means we restarted
			// while it kept running.
			if !s.knowsAgent(remoteAddr) {
				s.sendAck(remoteAddr)
			}
			s.touchAgent(remoteAddr)
		}
	}
}

// sendAck replies to an agent so it can confirm UDP connectivity.
func (s *UDPSender) sendAck(addr *net.UDPAddr) {
	ack := &protocol.UDPPacket{
		Type:      protocol.UDPPacketAck,
		Timestamp: time.Now().UnixMilli(),
	}
	s.conn.WriteToUDP(protocol.EncodeUDPPacket(ack), addr)
}

func (s *UDPSender) knowsAgent(addr *net.UDPAddr) bool {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()
	_, ok := s.agents[addr.String()]
	return ok
}

func (s *UDPSender) touchAgent(addr *net.UDPAddr) {
	key := addr.String()
	s.agentsMu.Lock()
	if _, exists := s.agents[key]; !exists {
		logger.Infof("agent registered from %s", key)
	}
	s.agents[key] = &udpAgent{addr: addr, lastSeen: time.Now()}
	s.agentsMu.Unlock()
}

// cleanupLoop removes agents that haven't sent a heartbeat recently.
func (s *UDPSender) cleanupLoop() {
	ticker := time.NewTicker(cleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.expireAgents(time.Now())
		case <-s.done:
			return
		}
	}
}

func (s *UDPSender) expireAgents(now time.Time) {
	s.agentsMu.Lock()
	defer s.agentsMu.Unlock()
	for key, agent := range s.agents {
		if now.Sub(agent.lastSeen) > agentTimeout {
			logger.Infof("removing stale agent %s", key)
			delete(s.agents, key)
		}
	}
}

// SendInput encodes an input event as a binary UDP packet and sends it to all
// registered agents. Key events are sent several times since UDP has no
// delivery guarantee; receivers drop the duplicates by sequence number.
func (s *UDPSender) SendInput(event input.InputEvent) error {
	pkt := &protocol.UDPPacket{
		Seq:       s.seq.Add(1),
		Timestamp: event.Timestamp,
	}
	redundancy := moveRedundancy

	switch event.Type {
	case input.EventMouseMove:
		pkt.Type = protocol.UDPPacketMouseMove
		pkt.DeltaX = int32(event.DeltaX)
		pkt.DeltaY = int32(event.DeltaY)
	case input.EventKey:
		pkt.Type = protocol.UDPPacketKeyEvent
		pkt.VirtualKey = event.VirtualKey
		pkt.ScanCode = event.ScanCode
		pkt.KeyFlags = uint8(event.Flags)
		redundancy = keyRedundancy
	default:
		return input.ErrUnknownEvent
	}

	s.broadcast(protocol.EncodeUDPPacket(pkt), redundancy)
	return nil
}

// broadcast sends data to all registered agents.
func (s *UDPSender) broadcast(data []byte, redundancy int) {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()

	for _, agent := range s.agents {
		for i := 0; i < redundancy; i++ {
			s.conn.WriteToUDP(data, agent.addr)
		}
	}
}

// HasAgents returns true if at least one agent is registered.
func (s *UDPSender) HasAgents() bool {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()
	return len(s.agents) > 0
}

// Stop shuts down the UDP sender.
func (s *UDPSender) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}
