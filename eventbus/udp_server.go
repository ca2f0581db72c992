package eventbus

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/chipsenkbeil/over-there-sub000/cmn/cos"
	"github.com/chipsenkbeil/over-there-sub000/transport"
)

// UDPServer demuxes datagrams arriving on one shared socket into
// per-peer associations, each with its own Wire/Decoder so reassembly
// state never needs cross-task locking, spawning an EventManager for a
// peer the first time a datagram is seen from it.
type UDPServer struct {
	adapter  *transport.UDPAdapter
	codec    *transport.Codec
	maxPkt   int
	groupTTL time.Duration
	queueLen int
	inbox    chan<- Inbound

	mu     sync.Mutex
	byPeer map[string]*udpPeer
}

type udpPeer struct {
	ch          chan []byte
	em          *EventManager
	lastTouched *cos.TTLValue[struct{}]
}

func NewUDPServer(adapter *transport.UDPAdapter, codec *transport.Codec, maxPkt int, groupTTL time.Duration, queueLen int, inbox chan<- Inbound) *UDPServer {
	return &UDPServer{
		adapter:  adapter,
		codec:    codec,
		maxPkt:   maxPkt,
		groupTTL: groupTTL,
		queueLen: queueLen,
		inbox:    inbox,
		byPeer:   make(map[string]*udpPeer),
	}
}

// Serve blocks reading datagrams until the socket errors (e.g. closed).
func (s *UDPServer) Serve() error {
	buf := make([]byte, 65535)
	for {
		data, peer, err := s.adapter.ReadPacket(buf)
		if err != nil {
			return err
		}
		s.dispatch(data, peer)
	}
}

func (s *UDPServer) dispatch(data []byte, peer net.Addr) {
	s.mu.Lock()
	p, ok := s.byPeer[peer.String()]
	if !ok {
		p = s.spawn(peer)
		s.byPeer[peer.String()] = p
	}
	p.lastTouched.Touch()
	s.mu.Unlock()

	select {
	case p.ch <- data:
	default:
		// Outbound-style backpressure has no meaning for a raw socket
		// read; a full per-peer queue here means that peer's inbound
		// task is wedged, so the datagram is dropped rather than
		// blocking every other peer sharing this socket.
	}
}

func (s *UDPServer) spawn(peer net.Addr) *udpPeer {
	ch := make(chan []byte, 256)
	w := transport.NewWire(s.codec, s.maxPkt, s.groupTTL)
	read := func() ([]byte, error) {
		b, ok := <-ch
		if !ok {
			return nil, io.EOF
		}
		return b, nil
	}
	write := func(b []byte) error { return s.adapter.WritePacket(b, peer) }

	p := &udpPeer{ch: ch, lastTouched: cos.NewTTLValue(struct{}{})}
	p.em = New(w, read, write, peer, s.inbox, s.queueLen, func() error {
		s.mu.Lock()
		delete(s.byPeer, peer.String())
		s.mu.Unlock()
		return nil
	})
	return p
}

// ReapIdle closes associations that have not produced a datagram within
// ttl, bounding the per-peer state this otherwise-connectionless
// transport would accumulate forever.
func (s *UDPServer) ReapIdle(ttl time.Duration) int {
	s.mu.Lock()
	var idle []*udpPeer
	for addr, p := range s.byPeer {
		if p.lastTouched.Expired(ttl) {
			idle = append(idle, p)
			delete(s.byPeer, addr)
		}
	}
	s.mu.Unlock()
	for _, p := range idle {
		close(p.ch)
		p.em.Close()
	}
	return len(idle)
}

// Peers returns currently tracked peer addresses.
func (s *UDPServer) Peers() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]net.Addr, 0, len(s.byPeer))
	for _, p := range s.byPeer {
		out = append(out, p.em.Peer())
	}
	return out
}
