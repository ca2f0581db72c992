package transport

import (
	"bytes"
	"testing"
	"time"

	"github.com/chipsenkbeil/over-there-sub000/crypto"
	"github.com/chipsenkbeil/over-there-sub000/wire"
)

// TestWireDuplicatePacketDeliveredOnce replays the middle packet of a
// fragmented message: the duplicate is rejected (PacketExists surfaces as
// a recoverable inbound error) and the payload is still delivered exactly
// once when the remaining packets arrive.
func TestWireDuplicatePacketDeliveredOnce(t *testing.T) {
	codec := newTestCodec(t, []byte("shared-key"), crypto.EncryptionNone)
	tx := NewWire(codec, 64, time.Minute)
	rx := NewWire(codec, 64, time.Minute)

	payload := bytes.Repeat([]byte("d"), 64)
	packets, err := tx.EncodeOutbound(8, payload)
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}
	if len(packets) < 3 {
		t.Fatalf("scenario needs at least 3 packets, got %d", len(packets))
	}

	mid := len(packets) / 2
	deliveries := 0
	var delivered []byte
	feed := func(raw []byte) error {
		res, err := rx.DecodeInbound(raw)
		if res.Done {
			deliveries++
			delivered = res.Payload
		}
		return err
	}

	for i, raw := range packets {
		if err := feed(raw); err != nil {
			t.Fatalf("packet %d: %v", i, err)
		}
		if i == mid {
			// The wire duplicates the middle packet.
			if err := feed(raw); err == nil {
				t.Fatal("expected PacketExists for the duplicate")
			} else if _, ok := err.(*wire.PacketExists); !ok {
				t.Fatalf("expected PacketExists for the duplicate, got %v", err)
			}
		}
	}

	if deliveries != 1 {
		t.Fatalf("payload delivered %d times, want exactly once", deliveries)
	}
	if !bytes.Equal(delivered, payload) {
		t.Fatalf("delivered %q, want %q", delivered, payload)
	}
}

// TestWireEncryptedNoncePlacement pins the nonce's position on the wire:
// for an encrypted multi-packet message the first packet is NotFinal and
// only the last carries the 128-bit nonce.
func TestWireEncryptedNoncePlacement(t *testing.T) {
	codec := newTestCodec(t, []byte("shared-key"), crypto.EncryptionNonce128)
	tx := NewWire(codec, 80, time.Minute)
	rx := NewWire(codec, 80, time.Minute)

	payload := bytes.Repeat([]byte{1, 2, 3}, 20)
	raws, err := tx.EncodeOutbound(9, payload)
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}
	if len(raws) < 2 {
		t.Fatalf("expected fragmentation, got %d packets", len(raws))
	}

	for i, raw := range raws {
		p, err := wire.FromSlice(raw)
		if err != nil {
			t.Fatalf("FromSlice: %v", err)
		}
		last := i == len(raws)-1
		if p.IsFinal() != last {
			t.Fatalf("packet %d: Final=%v, want %v", i, p.IsFinal(), last)
		}
		if last {
			if len(p.Nonce()) != 16 {
				t.Fatalf("final packet nonce len = %d, want 16", len(p.Nonce()))
			}
		} else if p.Nonce() != nil {
			t.Fatalf("packet %d carries a nonce but is not final", i)
		}
	}

	var res DecodeResult
	for _, raw := range raws {
		res, err = rx.DecodeInbound(raw)
		if err != nil {
			t.Fatalf("DecodeInbound: %v", err)
		}
	}
	if !res.Done || !bytes.Equal(res.Payload, payload) {
		t.Fatalf("decrypted payload mismatch")
	}
}

// TestWireInterleavedGroups feeds two messages' packets alternately into
// one inbound Wire: each group assembles independently and completes when
// its own final packet lands.
func TestWireInterleavedGroups(t *testing.T) {
	codec := newTestCodec(t, []byte("shared-key"), crypto.EncryptionNone)
	tx := NewWire(codec, 64, time.Minute)
	rx := NewWire(codec, 64, time.Minute)

	payloadA := bytes.Repeat([]byte("A"), 24)
	payloadB := bytes.Repeat([]byte("B"), 24)
	rawA, err := tx.EncodeOutbound(100, payloadA)
	if err != nil {
		t.Fatal(err)
	}
	rawB, err := tx.EncodeOutbound(200, payloadB)
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[uint32][]byte)
	n := len(rawA)
	if len(rawB) > n {
		n = len(rawB)
	}
	for i := 0; i < n; i++ {
		for _, raws := range [][][]byte{rawA, rawB} {
			if i >= len(raws) {
				continue
			}
			res, err := rx.DecodeInbound(raws[i])
			if err != nil {
				t.Fatalf("DecodeInbound: %v", err)
			}
			if res.Done {
				got[res.GroupID] = res.Payload
			}
		}
	}

	if !bytes.Equal(got[100], payloadA) || !bytes.Equal(got[200], payloadB) {
		t.Fatalf("interleaved groups misassembled: %v", got)
	}
}
