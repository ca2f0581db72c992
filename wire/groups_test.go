package wire

import (
	"bytes"
	"testing"
	"time"

	"github.com/chipsenkbeil/over-there-sub000/crypto"
)

func TestDecoderEvictsExpiredGroups(t *testing.T) {
	dec := NewDecoder(5 * time.Millisecond)

	// Never-completed group: one non-final packet, then silence.
	if err := dec.AddPacket(&Packet{Meta: Meta{ID: 10, Index: 0}}); err != nil {
		t.Fatalf("AddPacket: %v", err)
	}
	if evicted := dec.RemoveExpired(); len(evicted) != 0 {
		t.Fatalf("fresh group evicted early: %v", evicted)
	}

	time.Sleep(10 * time.Millisecond)
	evicted := dec.RemoveExpired()
	if len(evicted) != 1 || evicted[0] != 10 {
		t.Fatalf("expected group 10 evicted, got %v", evicted)
	}

	// The id is reusable after eviction: a fresh group starts clean.
	if err := dec.AddPacket(&Packet{Meta: Meta{ID: 10, Index: 0, Final: true}}); err != nil {
		t.Fatalf("AddPacket after eviction: %v", err)
	}
	if !dec.Verify(10) {
		t.Fatal("expected fresh single-packet group to verify")
	}
}

func TestDecoderTouchResetsGroupTTL(t *testing.T) {
	dec := NewDecoder(20 * time.Millisecond)
	if err := dec.AddPacket(&Packet{Meta: Meta{ID: 4, Index: 0}}); err != nil {
		t.Fatal(err)
	}
	// Keep the group alive past its original deadline by feeding it.
	time.Sleep(12 * time.Millisecond)
	if err := dec.AddPacket(&Packet{Meta: Meta{ID: 4, Index: 1}}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(12 * time.Millisecond)
	if evicted := dec.RemoveExpired(); len(evicted) != 0 {
		t.Fatalf("touched group evicted: %v", evicted)
	}
}

func TestDecoderOutOfOrderArrival(t *testing.T) {
	signer := testSigner(t)
	enc := NewEncoder(signer)
	payload := bytes.Repeat([]byte("q"), 64)
	packets, err := enc.Encode(11, crypto.EncryptionNone, nil, 72, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(packets) < 3 {
		t.Fatalf("need at least 3 packets for a meaningful shuffle, got %d", len(packets))
	}

	dec := NewDecoder(0)
	// Final first, then the rest in reverse.
	if err := dec.AddPacket(packets[len(packets)-1]); err != nil {
		t.Fatalf("add final: %v", err)
	}
	for i := len(packets) - 2; i >= 0; i-- {
		if err := dec.AddPacket(packets[i]); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	got, err := dec.Assemble(11)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("out-of-order arrival must still assemble in index order")
	}
}

func TestDecoderAssembleBeforeCompleteIsNotReady(t *testing.T) {
	dec := NewDecoder(0)
	if err := dec.AddPacket(&Packet{Meta: Meta{ID: 2, Index: 0}}); err != nil {
		t.Fatal(err)
	}
	_, err := dec.Assemble(2)
	if _, ok := err.(*NotReady); !ok {
		t.Fatalf("expected NotReady, got %v", err)
	}
}

// TestEncoderForcesTrailingFinal pins the middle branch of the
// packetization loop: when the remainder fits a non-final packet but not a
// final one, the encoder holds one byte back so the group always ends in a
// Final packet.
func TestEncoderForcesTrailingFinal(t *testing.T) {
	signer := testSigner(t)
	enc := NewEncoder(signer)

	const max = 96
	f, err := enc.maxPayload(max, true, 16)
	if err != nil {
		t.Fatalf("maxPayload(final): %v", err)
	}
	n, err := enc.maxPayload(max, false, 0)
	if err != nil {
		t.Fatalf("maxPayload(notfinal): %v", err)
	}
	if f >= n {
		t.Skipf("final capacity %d >= non-final %d; nonce overhead did not separate them at max=%d", f, n, max)
	}

	// A payload strictly between F and N lands in the forcing branch.
	size := f + 1
	if size > n {
		t.Skipf("no integer strictly between F=%d and N=%d", f, n)
	}
	payload := bytes.Repeat([]byte("w"), size)
	packets, err := enc.Encode(21, crypto.EncryptionNonce128, make([]byte, 16), max, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("expected a held-back NotFinal plus a Final, got %d packets", len(packets))
	}
	if packets[0].IsFinal() || !packets[1].IsFinal() {
		t.Fatalf("expected [NotFinal, Final], got [%v, %v]", packets[0].IsFinal(), packets[1].IsFinal())
	}
	if len(packets[0].Data) != size-1 {
		t.Fatalf("first packet carries %d bytes, want %d (one byte held back)", len(packets[0].Data), size-1)
	}
	if len(packets[1].Data) != 1 {
		t.Fatalf("final packet carries %d bytes, want exactly the held-back byte", len(packets[1].Data))
	}
}

func TestEncoderEmptyPayloadYieldsSingleFinal(t *testing.T) {
	enc := NewEncoder(testSigner(t))
	packets, err := enc.Encode(30, crypto.EncryptionNone, nil, 256, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(packets) != 1 || !packets[0].IsFinal() {
		t.Fatalf("empty payload should produce exactly one Final packet, got %d", len(packets))
	}
	if len(packets[0].Data) != 0 {
		t.Fatalf("final packet data should be empty, got %d bytes", len(packets[0].Data))
	}
}

func TestFinalPacketCarriesNonce(t *testing.T) {
	enc := NewEncoder(testSigner(t))
	nonce := bytes.Repeat([]byte{0xAB}, 16)
	packets, err := enc.Encode(31, crypto.EncryptionNonce128, nonce, 112, bytes.Repeat([]byte("v"), 80))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i, p := range packets {
		last := i == len(packets)-1
		if last {
			if !bytes.Equal(p.Nonce(), nonce) {
				t.Fatalf("final packet nonce = %x, want %x", p.Nonce(), nonce)
			}
		} else if p.Nonce() != nil {
			t.Fatalf("packet %d is not final but carries a nonce", i)
		}
	}
}
