package server

import (
	"context"

	"github.com/pkg/errors"

	"github.com/chipsenkbeil/over-there-sub000/client"
	"github.com/chipsenkbeil/over-there-sub000/msg"
)

// forwarder backs dispatch.Forwarder for ForwardRequest:
// it opens a short-lived client connection to addr over this node's own
// UDP socket semantics and relays the inner request, returning the inner
// reply untouched.
type forwarder struct {
	node *Node
}

func (f *forwarder) Forward(ctx context.Context, addr string, op *msg.Msg) (*msg.Msg, error) {
	c, err := client.DialUDP(addr, f.node.codec, f.node.cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "forward to %s", addr)
	}
	defer c.Close()
	return c.AskMsg(ctx, op)
}
