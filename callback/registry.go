// Package callback implements the registry that correlates replies to
// outstanding requests: a msg_id keyed map of one-shot sinks, each
// fulfilled exactly once or dropped on timeout.
package callback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chipsenkbeil/over-there-sub000/cmn/nlog"
	"github.com/chipsenkbeil/over-there-sub000/msg"
)

// ErrTimeout is returned by Wait when no reply arrived before the
// deadline; the entry is removed from the registry before returning.
var ErrTimeout = errors.New("callback: timeout waiting for reply")

// CallbackLostError wraps a reply-side failure delivered via Fail (e.g.
// the association closed before a reply arrived).
type CallbackLostError struct {
	Cause error
}

func (e *CallbackLostError) Error() string { return fmt.Sprintf("callback lost: %v", e.Cause) }
func (e *CallbackLostError) Unwrap() error { return e.Cause }

type result struct {
	reply *msg.Msg
	err   error
}

// Registry maps a request's message id to a single-shot sink. Register is
// idempotent: registering the same id twice replaces (and silently drops)
// the prior sink.
type Registry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]chan result
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]chan result)}
}

// Register inserts a fresh one-shot sink for id. Any previously registered
// sink for id is dropped.
func (r *Registry) Register(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = make(chan result, 1)
}

// Fulfill delivers reply to id's sink, whether or not Wait has started;
// Wait removes the entry once it collects the reply. A reply for an id
// with no registered entry is logged, not treated as an error (the
// requester may already have timed out), and so is a second reply for an
// id whose first one has not been collected yet.
func (r *Registry) Fulfill(id uuid.UUID, reply *msg.Msg) {
	r.deliver(id, result{reply: reply})
}

// Fail is Fulfill's error counterpart, used when the association dies
// before any reply can arrive.
func (r *Registry) Fail(id uuid.UUID, err error) {
	r.deliver(id, result{err: &CallbackLostError{Cause: err}})
}

func (r *Registry) deliver(id uuid.UUID, res result) {
	r.mu.Lock()
	ch, ok := r.entries[id]
	r.mu.Unlock()

	if !ok {
		nlog.Warningf("callback: no entry registered for %s", id)
		return
	}
	select {
	case ch <- res:
	default:
		nlog.Warningf("callback: %s already holds an uncollected reply; dropping", id)
	}
}

// Wait blocks on id's registered sink until it is fulfilled, the context
// is cancelled, or timeout elapses, whichever comes first. On timeout the
// entry is removed and ErrTimeout is returned.
func (r *Registry) Wait(ctx context.Context, id uuid.UUID, timeout time.Duration) (*msg.Msg, error) {
	r.mu.Lock()
	ch, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("callback: id %s was never registered", id)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		r.remove(id)
		if res.err != nil {
			return nil, res.err
		}
		return res.reply, nil
	case <-timer.C:
		r.remove(id)
		return nil, ErrTimeout
	case <-ctx.Done():
		r.remove(id)
		return nil, ctx.Err()
	}
}

func (r *Registry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Pending reports how many requests are still awaiting a reply; used by
// tests and the InternalDebug handler.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
