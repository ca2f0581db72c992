package callback

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chipsenkbeil/over-there-sub000/msg"
)

func TestFulfillDeliversExactlyOnce(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	r.Register(id)

	reply, _ := msg.NewRequest(msg.KindHeartbeatReply, msg.HeartbeatReplyArgs{})
	r.Fulfill(id, reply)

	got, err := r.Wait(context.Background(), id, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got.Kind != msg.KindHeartbeatReply {
		t.Fatalf("got kind %q", got.Kind)
	}
}

func TestWaitTimesOutAndRemovesEntry(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	r.Register(id)

	_, err := r.Wait(context.Background(), id, 20*time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if r.Pending() != 0 {
		t.Fatalf("expected entry removed after timeout, pending=%d", r.Pending())
	}
}

func TestFulfillWithNoEntryIsNotFatal(t *testing.T) {
	r := NewRegistry()
	reply, _ := msg.NewRequest(msg.KindHeartbeatReply, msg.HeartbeatReplyArgs{})
	r.Fulfill(uuid.New(), reply) // no panic, no block
}

func TestRegisterCollisionDropsPriorSink(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	r.Register(id)
	r.Register(id) // replaces the first sink

	reply, _ := msg.NewRequest(msg.KindHeartbeatReply, msg.HeartbeatReplyArgs{})
	r.Fulfill(id, reply)

	got, err := r.Wait(context.Background(), id, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got == nil {
		t.Fatal("expected a reply from the second registration")
	}
}
