package eventbus

import (
	"net"
	"sync"
	"time"

	"github.com/chipsenkbeil/over-there-sub000/cmn/nlog"
	"github.com/chipsenkbeil/over-there-sub000/transport"
)

// AddrEventManager wraps a peer -> EventManager map, spawning a new
// EventManager per accepted stream and tearing it down on disconnect.
type AddrEventManager struct {
	mu       sync.Mutex
	byPeer   map[string]*EventManager
	codec    *transport.Codec
	maxPkt   int
	groupTTL time.Duration
	queueLen int
	inbox    chan<- Inbound
}

func NewAddrEventManager(codec *transport.Codec, maxPkt int, groupTTL time.Duration, queueLen int, inbox chan<- Inbound) *AddrEventManager {
	return &AddrEventManager{
		byPeer:   make(map[string]*EventManager),
		codec:    codec,
		maxPkt:   maxPkt,
		groupTTL: groupTTL,
		queueLen: queueLen,
		inbox:    inbox,
	}
}

// ServeTCP accepts connections on ln until it errors (typically because
// ln was closed), spawning one EventManager per accepted stream.
func (a *AddrEventManager) ServeTCP(ln net.Listener, sentinel []byte, ringSize int) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		adapter := transport.NewTCPStreamAdapter(conn, sentinel, ringSize)
		w := transport.NewWire(a.codec, a.maxPkt, a.groupTTL)
		peer := conn.RemoteAddr()

		em := New(w,
			adapter.ReadFrame,
			adapter.WriteFrame,
			peer,
			a.inbox,
			a.queueLen,
			adapter.Close,
		)
		a.register(peer, em)
		nlog.Infof("eventbus: accepted %v", peer)
	}
}

// SendTo routes bytes to the per-connection outbound queue for peer,
// dropping the message (with a log line) if the peer is unknown.
func (a *AddrEventManager) SendTo(peer net.Addr, send func(em *EventManager) error) error {
	a.mu.Lock()
	em, ok := a.byPeer[peer.String()]
	a.mu.Unlock()
	if !ok {
		nlog.Warningf("eventbus: dropping outbound message, unknown peer %v", peer)
		return nil
	}
	return send(em)
}

func (a *AddrEventManager) register(peer net.Addr, em *EventManager) {
	a.mu.Lock()
	a.byPeer[peer.String()] = em
	a.mu.Unlock()
	go func() {
		<-em.done
		a.mu.Lock()
		delete(a.byPeer, peer.String())
		a.mu.Unlock()
		nlog.Infof("eventbus: disconnected %v", peer)
	}()
}

// Peers returns the currently connected peer addresses; used by tests
// and the InternalDebug handler.
func (a *AddrEventManager) Peers() []net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]net.Addr, 0, len(a.byPeer))
	for _, em := range a.byPeer {
		out = append(out, em.Peer())
	}
	return out
}
