// Package eventbus owns the per-association read/write tasks: one
// EventManager per point-to-point association (a UDP socket's view of one
// peer, or one accepted TCP stream), each exposing a bounded outbound
// queue and forwarding completed inbound messages to a shared dispatch
// channel.
package eventbus

import (
	"net"
	"sync"

	"github.com/chipsenkbeil/over-there-sub000/cmn/cos"
	"github.com/chipsenkbeil/over-there-sub000/cmn/nlog"
	"github.com/chipsenkbeil/over-there-sub000/msg"
	"github.com/chipsenkbeil/over-there-sub000/transport"
)

// Inbound is the tuple the inbound task forwards to the dispatcher: a
// decoded message, the peer it arrived from, and a handle
// back into this same association's outbound queue so a handler can
// reply without knowing anything about transports.
type Inbound struct {
	Msg   *msg.Msg
	Peer  net.Addr
	Reply func(*msg.Msg) error
}

// ReadFunc performs one blocking read of a single serialized packet. A
// non-nil error is always fatal: the caller tears down the association.
type ReadFunc func() ([]byte, error)

// WriteFunc performs one blocking write of a single serialized packet.
type WriteFunc func([]byte) error

// EventManager runs the outbound-drain and inbound-dispatch goroutines
// for one association.
type EventManager struct {
	wire  *transport.Wire
	read  ReadFunc
	write WriteFunc
	peer  net.Addr
	inbox chan<- Inbound

	outboundCh chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	closeFn    func() error
}

// New starts an EventManager's outbound and inbound tasks. queueSize is
// the bounded outbound channel capacity.
func New(wire *transport.Wire, read ReadFunc, write WriteFunc, peer net.Addr, inbox chan<- Inbound, queueSize int, closeFn func() error) *EventManager {
	em := &EventManager{
		wire:       wire,
		read:       read,
		write:      write,
		peer:       peer,
		inbox:      inbox,
		outboundCh: make(chan []byte, queueSize),
		done:       make(chan struct{}),
		closeFn:    closeFn,
	}
	go em.outboundLoop()
	go em.inboundLoop()
	return em
}

// Send encodes m and enqueues its packets onto the outbound queue, in
// order; a full queue blocks the caller, propagating backpressure up to
// whatever triggered the send.
func (em *EventManager) Send(m *msg.Msg) error {
	payload, err := msg.Encode(m)
	if err != nil {
		return err
	}
	groupID := cos.RandUint32()
	packets, err := em.wire.EncodeOutbound(groupID, payload)
	if err != nil {
		return err
	}
	for _, p := range packets {
		select {
		case em.outboundCh <- p:
		case <-em.done:
			return errAssociationClosed
		}
	}
	return nil
}

func (em *EventManager) outboundLoop() {
	for {
		select {
		case p, ok := <-em.outboundCh:
			if !ok {
				return
			}
			if err := em.write(p); err != nil {
				nlog.Warningf("eventbus: write failed for %v: %v", em.peer, err)
				em.Close()
				return
			}
		case <-em.done:
			return
		}
	}
}

func (em *EventManager) inboundLoop() {
	for {
		raw, err := em.read()
		if err != nil {
			nlog.Warningf("eventbus: read failed for %v: %v", em.peer, err)
			em.Close()
			return
		}
		result, err := em.wire.DecodeInbound(raw)
		if err != nil {
			// Processor-level errors are logged, not fatal:
			// a forged or malformed packet must not tear down the link.
			nlog.Warningf("eventbus: dropping packet from %v: %v", em.peer, err)
			continue
		}
		if !result.Done {
			continue
		}
		m, err := msg.Decode(result.Payload)
		if err != nil {
			nlog.Warningf("eventbus: bad envelope from %v: %v", em.peer, err)
			continue
		}
		select {
		case em.inbox <- Inbound{Msg: m, Peer: em.peer, Reply: em.Send}:
		case <-em.done:
			return
		}
	}
}

// Close tears down both tasks; idempotent.
func (em *EventManager) Close() {
	em.closeOnce.Do(func() {
		close(em.done)
		if em.closeFn != nil {
			_ = em.closeFn()
		}
	})
}

// Peer returns the association's remote address.
func (em *EventManager) Peer() net.Addr { return em.peer }

var errAssociationClosed = &associationClosedError{}

type associationClosedError struct{}

func (*associationClosedError) Error() string { return "eventbus: association closed" }
