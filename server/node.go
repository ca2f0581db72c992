// Package server wires the core packages (crypto, transport, eventbus,
// dispatch, fsx, procx, callback) into a running node: it owns the file
// and process tables, the dispatcher, the UDP/TCP listeners, the
// periodic cleanup sweep, and the admin HTTP surface used for
// health/metrics/debug. None of this is part of the wire protocol engine
// itself; this package is the one place that assembles the core into
// something runnable.
package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/chipsenkbeil/over-there-sub000/callback"
	"github.com/chipsenkbeil/over-there-sub000/cmn/config"
	"github.com/chipsenkbeil/over-there-sub000/cmn/mono"
	"github.com/chipsenkbeil/over-there-sub000/cmn/nlog"
	"github.com/chipsenkbeil/over-there-sub000/crypto"
	"github.com/chipsenkbeil/over-there-sub000/dispatch"
	"github.com/chipsenkbeil/over-there-sub000/eventbus"
	"github.com/chipsenkbeil/over-there-sub000/fsx"
	"github.com/chipsenkbeil/over-there-sub000/procx"
	"github.com/chipsenkbeil/over-there-sub000/transport"
)

const version = "0.1.0"

// Node owns every piece of long-lived server state: the handle tables,
// the dispatcher, both transport listeners, and the callback registry that
// replies arriving on those listeners are handed to. Forward requests do
// not use it: each one dials its own client, which has its own registry.
type Node struct {
	cfg *config.Config

	files *fsx.Table
	procs *procx.Table
	disp  *dispatch.Dispatcher
	calls *callback.Registry

	codec *transport.Codec

	udpServer *eventbus.UDPServer
	udpConn   *transport.UDPAdapter
	tcpLn     net.Listener
	addrMgr   *eventbus.AddrEventManager

	inbox chan eventbus.Inbound

	metrics *Metrics

	startedAt int64

	mu       sync.Mutex
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a Node from cfg and a signer/bicrypter pair; it does not yet
// bind any sockets (call ListenUDP/ListenTCP) or start serving (call Run).
func New(cfg *config.Config, signer crypto.Signer, verifier crypto.Verifier, bicrypter crypto.Bicrypter) *Node {
	n := &Node{
		cfg:       cfg,
		files:     fsx.NewTable(cfg.FileAliveTTL),
		procs:     procx.NewTable(cfg.ProcAliveTTL, cfg.ProcDeadTTL),
		calls:     callback.NewRegistry(),
		codec:     transport.NewCodec(signer, verifier, bicrypter),
		inbox:     make(chan eventbus.Inbound, cfg.OutboundQueueSize),
		metrics:   NewMetrics(),
		startedAt: mono.NanoTime(),
		stopCh:    make(chan struct{}),
	}
	n.disp = dispatch.New(&handlers{node: n}, &forwarder{node: n}, cfg.MaxCompositeDepth)
	return n
}

// ListenUDP binds the datagram transport on cfg.UDPListenAddr.
func (n *Node) ListenUDP() error {
	adapter, err := transport.ListenUDP(n.cfg.UDPListenAddr)
	if err != nil {
		return errors.Wrap(err, "server: listen udp")
	}
	groupTTL := n.cfg.GroupTTL
	n.udpConn = adapter
	n.udpServer = eventbus.NewUDPServer(adapter, n.codec, transport.MTUForClass(n.cfg.UDPMTUClass), groupTTL, n.cfg.OutboundQueueSize, n.inbox)
	return nil
}

// ListenTCP binds the stream transport on cfg.TCPListenAddr.
func (n *Node) ListenTCP() error {
	ln, err := net.Listen("tcp", n.cfg.TCPListenAddr)
	if err != nil {
		return errors.Wrap(err, "server: listen tcp")
	}
	n.tcpLn = ln
	n.addrMgr = eventbus.NewAddrEventManager(n.codec, transport.MTUEthernetClass, n.cfg.GroupTTL, n.cfg.OutboundQueueSize, n.inbox)
	return nil
}

// UDPAddr reports the bound datagram address, valid after ListenUDP.
func (n *Node) UDPAddr() net.Addr {
	if n.udpConn == nil {
		return nil
	}
	return n.udpConn.LocalAddr()
}

// TCPAddr reports the bound stream address, valid after ListenTCP.
func (n *Node) TCPAddr() net.Addr {
	if n.tcpLn == nil {
		return nil
	}
	return n.tcpLn.Addr()
}

// Run starts the dispatch loop, both transport accept loops (whichever
// were bound), and the periodic cleanup sweep. It blocks until ctx is
// cancelled, then closes the node and waits for every loop to exit. A
// transport accept loop that stops with an error is logged; that does not
// end Run.
func (n *Node) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		n.dispatchLoop(ctx)
	}()

	if n.udpServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := n.udpServer.Serve(); err != nil {
				nlog.Warningf("server: udp serve stopped: %v", err)
			}
		}()
	}
	if n.tcpLn != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sentinel := []byte(n.cfg.StreamSentinel)
			if err := n.addrMgr.ServeTCP(n.tcpLn, sentinel, n.cfg.StreamBufferSize); err != nil {
				nlog.Warningf("server: tcp serve stopped: %v", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		n.cleanupLoop()
	}()

	<-ctx.Done()
	n.Close()
	wg.Wait()
	return ctx.Err()
}

// dispatchLoop drains the shared inbox, dispatching each inbound message
// either to the callback registry (it is a reply) or to the action
// dispatcher (it is a request).
func (n *Node) dispatchLoop(ctx context.Context) {
	for {
		select {
		case in, ok := <-n.inbox:
			if !ok {
				return
			}
			n.handleInbound(ctx, in)
		case <-n.stopCh:
			return
		}
	}
}

func (n *Node) handleInbound(ctx context.Context, in eventbus.Inbound) {
	if in.Msg.IsReply() {
		n.calls.Fulfill(*in.Msg.Header.ParentID, in.Msg)
		return
	}
	reply := n.disp.Dispatch(ctx, in.Msg)
	if err := in.Reply(reply); err != nil {
		nlog.Warningf("server: failed to send reply to %v: %v", in.Peer, err)
	}
}

// cleanupLoop is the periodic housekeeping task: every CleanupInterval
// it evicts stale file handles and stale process handles, and reaps idle
// UDP associations. Packet-reassembly groups are not swept here; an
// association's decoder state goes away only with the association itself.
func (n *Node) cleanupLoop() {
	t := time.NewTicker(n.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			n.evict()
		case <-n.stopCh:
			return
		}
	}
}

func (n *Node) evict() {
	files := n.files.EvictExpired()
	procs := n.procs.EvictExpired()
	if files > 0 || procs > 0 {
		nlog.Infof("server: housekeeping evicted %d files, %d procs", files, procs)
	}
	n.metrics.ObserveEviction(files, procs)
	if n.udpServer != nil {
		idle := n.udpServer.ReapIdle(n.cfg.GroupTTL * 4)
		if idle > 0 {
			nlog.Infof("server: housekeeping reaped %d idle udp associations", idle)
		}
	}
}

// Close tears down both listeners and signals every loop to exit;
// idempotent.
func (n *Node) Close() {
	n.stopOnce.Do(func() {
		close(n.stopCh)
		if n.udpConn != nil {
			_ = n.udpConn.Close()
		}
		if n.tcpLn != nil {
			_ = n.tcpLn.Close()
		}
	})
}

// Uptime reports elapsed time since the node was constructed; backs the
// InternalDebug reply.
func (n *Node) Uptime() time.Duration {
	return mono.Since(n.startedAt)
}
