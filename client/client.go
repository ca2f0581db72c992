// Package client is a thin ask/tell wrapper over callback+transport: it
// owns one association (a UDP socket pointed at a single peer, or a TCP
// connection), an EventManager driving it, and a callback registry
// correlating replies. It deliberately knows nothing about dispatch or
// the handle tables -- those are server-side concerns.
package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/chipsenkbeil/over-there-sub000/callback"
	"github.com/chipsenkbeil/over-there-sub000/cmn/config"
	"github.com/chipsenkbeil/over-there-sub000/eventbus"
	"github.com/chipsenkbeil/over-there-sub000/msg"
	"github.com/chipsenkbeil/over-there-sub000/transport"
)

// AskError enumerates the failures an ask() caller can observe.
type AskError struct {
	Kind string // Timeout, SendFailed, EncodingFailed, CallbackLost, Failure, InvalidResponse, Io
	Err  error
}

func (e *AskError) Error() string { return fmt.Sprintf("ask: %s: %v", e.Kind, e.Err) }
func (e *AskError) Unwrap() error { return e.Err }

// Client is a connected association plus the machinery to ask()/tell() a
// single peer.
type Client struct {
	em    *eventbus.EventManager
	calls *callback.Registry
	peer  net.Addr

	askTimeout time.Duration
}

// DialUDP opens a UDP "connection" to addr (a connected UDP socket sees
// only replies from that peer) and starts its EventManager.
func DialUDP(addr string, codec *transport.Codec, cfg *config.Config) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "client: resolve %s", addr)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrapf(err, "client: dial %s", addr)
	}

	calls := callback.NewRegistry()
	inbox := make(chan eventbus.Inbound, cfg.OutboundQueueSize)

	w := transport.NewWire(codec, transport.MTUForClass(cfg.UDPMTUClass), cfg.GroupTTL)
	read := func() ([]byte, error) {
		buf := make([]byte, 65535)
		n, err := conn.Read(buf)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	}
	write := func(b []byte) error {
		_, err := conn.Write(b)
		return err
	}

	c := &Client{calls: calls, peer: raddr, askTimeout: cfg.AskTimeout}
	c.em = eventbus.New(w, read, write, raddr, inbox, cfg.OutboundQueueSize, conn.Close)

	go c.drainReplies(inbox)
	return c, nil
}

// DialTCP opens a TCP stream to addr.
func DialTCP(addr string, codec *transport.Codec, cfg *config.Config) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "client: dial %s", addr)
	}
	adapter := transport.NewTCPStreamAdapter(conn, []byte(cfg.StreamSentinel), cfg.StreamBufferSize)
	w := transport.NewWire(codec, transport.MTUEthernetClass, cfg.GroupTTL)

	calls := callback.NewRegistry()
	inbox := make(chan eventbus.Inbound, cfg.OutboundQueueSize)

	c := &Client{calls: calls, peer: conn.RemoteAddr(), askTimeout: cfg.AskTimeout}
	c.em = eventbus.New(w, adapter.ReadFrame, adapter.WriteFrame, conn.RemoteAddr(), inbox, cfg.OutboundQueueSize, adapter.Close)

	go c.drainReplies(inbox)
	return c, nil
}

// drainReplies feeds every inbound message (always a reply, for a
// client-side association) to the callback registry.
func (c *Client) drainReplies(inbox <-chan eventbus.Inbound) {
	for in := range inbox {
		if in.Msg.IsReply() {
			c.calls.Fulfill(*in.Msg.Header.ParentID, in.Msg)
		}
	}
}

// Ask sends a request built from kind/args and blocks for its reply or
// the configured timeout, decoding the reply into out.
func (c *Client) Ask(ctx context.Context, kind string, args, out any) error {
	req, err := msg.NewRequest(kind, args)
	if err != nil {
		return &AskError{Kind: "EncodingFailed", Err: err}
	}
	reply, err := c.AskMsg(ctx, req)
	if err != nil {
		return err
	}
	if errMsg, failed := describeErrorReply(reply); failed {
		return &AskError{Kind: "Failure", Err: errors.New(errMsg)}
	}
	if out != nil {
		if err := reply.DecodeArgs(out); err != nil {
			return &AskError{Kind: "InvalidResponse", Err: err}
		}
	}
	return nil
}

// describeErrorReply reports whether reply is one of the three failure
// kinds every operation can return and a human-readable
// description of it.
func describeErrorReply(reply *msg.Msg) (string, bool) {
	switch reply.Kind {
	case msg.KindGenericErrorReply:
		var a msg.GenericErrorReplyArgs
		_ = reply.DecodeArgs(&a)
		return a.Msg, true
	case msg.KindIoErrorReply:
		var a msg.IoErrorReplyArgs
		_ = reply.DecodeArgs(&a)
		return fmt.Sprintf("%s: %s", a.Kind, a.Description), true
	case msg.KindFileSigChangedReply:
		var a msg.FileSigChangedReplyArgs
		_ = reply.DecodeArgs(&a)
		return fmt.Sprintf("file %d sig changed, current sig %d", a.ID, a.Sig), true
	default:
		return "", false
	}
}

// AskMsg is Ask's envelope-level primitive, used directly by the server's
// Forward handler, which already has a fully formed inner request.
func (c *Client) AskMsg(ctx context.Context, req *msg.Msg) (*msg.Msg, error) {
	c.calls.Register(req.Header.ID)
	if err := c.em.Send(req); err != nil {
		return nil, &AskError{Kind: "SendFailed", Err: err}
	}
	reply, err := c.calls.Wait(ctx, req.Header.ID, c.askTimeout)
	if err != nil {
		if errors.Is(err, callback.ErrTimeout) {
			return nil, &AskError{Kind: "Timeout", Err: err}
		}
		var lost *callback.CallbackLostError
		if errors.As(err, &lost) {
			return nil, &AskError{Kind: "CallbackLost", Err: err}
		}
		return nil, &AskError{Kind: "Io", Err: err}
	}
	return reply, nil
}

// Tell sends a fire-and-forget request, never waiting for a reply.
func (c *Client) Tell(kind string, args any) error {
	req, err := msg.NewRequest(kind, args)
	if err != nil {
		return &AskError{Kind: "EncodingFailed", Err: err}
	}
	if err := c.em.Send(req); err != nil {
		return &AskError{Kind: "SendFailed", Err: err}
	}
	return nil
}

// Close tears down the underlying association.
func (c *Client) Close() { c.em.Close() }

// Peer reports the address this client is talking to.
func (c *Client) Peer() net.Addr { return c.peer }
