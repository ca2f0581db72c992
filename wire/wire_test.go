package wire

import (
	"bytes"
	"testing"

	"github.com/chipsenkbeil/over-there-sub000/crypto"
)

func testSigner(t *testing.T) crypto.Signer {
	t.Helper()
	return crypto.NewHMACSigner([]byte("test-key-0123456789"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	signer := testSigner(t)
	enc := NewEncoder(signer)

	payload := bytes.Repeat([]byte("x"), 16)
	packets, err := enc.Encode(42, crypto.EncryptionNone, nil, 64, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(packets) < 2 {
		t.Fatalf("expected fragmentation into multiple packets, got %d", len(packets))
	}

	for i, p := range packets {
		isLast := i == len(packets)-1
		if p.IsFinal() != isLast {
			t.Fatalf("packet %d: Final=%v, want %v", i, p.IsFinal(), isLast)
		}
		b, err := ToVec(p)
		if err != nil {
			t.Fatalf("ToVec: %v", err)
		}
		if len(b) > 64 {
			t.Fatalf("packet %d serialized to %d bytes > max 64", i, len(b))
		}
	}

	dec := NewDecoder(0)
	for _, p := range packets {
		if err := dec.AddPacket(p); err != nil {
			t.Fatalf("AddPacket: %v", err)
		}
	}
	if !dec.Verify(42) {
		t.Fatal("expected group to verify complete")
	}
	got, err := dec.Assemble(42)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("assembled = %q, want %q", got, payload)
	}
}

func TestDecoderDuplicatePacket(t *testing.T) {
	signer := testSigner(t)
	enc := NewEncoder(signer)
	packets, err := enc.Encode(1, crypto.EncryptionNone, nil, 64, bytes.Repeat([]byte("y"), 16))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := NewDecoder(0)
	mid := packets[len(packets)/2]
	if err := dec.AddPacket(mid); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err = dec.AddPacket(mid)
	if _, ok := err.(*PacketExists); !ok {
		t.Fatalf("expected PacketExists, got %v", err)
	}
}

func TestDecoderDuplicateFinal(t *testing.T) {
	signer := testSigner(t)
	enc := NewEncoder(signer)
	packets, err := enc.Encode(7, crypto.EncryptionNone, nil, 512, []byte("small"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	final := packets[len(packets)-1]

	dec := NewDecoder(0)
	if err := dec.AddPacket(final); err != nil {
		t.Fatalf("add final: %v", err)
	}
	// A second, distinct final packet for the same group/index collides on
	// index first (PacketExists); give it a fresh index to exercise the
	// "second final" rejection specifically.
	second := *final
	second.Meta.Index = final.Meta.Index + 1
	err = dec.AddPacket(&second)
	if _, ok := err.(*FinalPacketAlreadyExists); !ok {
		t.Fatalf("expected FinalPacketAlreadyExists, got %v", err)
	}
}

func TestDecoderBeyondLastIndex(t *testing.T) {
	dec := NewDecoder(0)
	final := &Packet{Meta: Meta{ID: 3, Index: 0, Final: true}}
	if err := dec.AddPacket(final); err != nil {
		t.Fatalf("add final: %v", err)
	}
	beyond := &Packet{Meta: Meta{ID: 3, Index: 5}}
	err := dec.AddPacket(beyond)
	if _, ok := err.(*PacketBeyondLastIndex); !ok {
		t.Fatalf("expected PacketBeyondLastIndex, got %v", err)
	}
}

func TestEncodeMaxPacketSizeTooSmall(t *testing.T) {
	enc := NewEncoder(testSigner(t))
	_, err := enc.Encode(1, crypto.EncryptionNonce128, make([]byte, 16), 4, []byte("data"))
	if _, ok := err.(*MaxPacketSizeTooSmall); !ok {
		t.Fatalf("expected MaxPacketSizeTooSmall, got %v", err)
	}
}

func TestPacketEveryOutputWithinMax(t *testing.T) {
	enc := NewEncoder(testSigner(t))
	for _, max := range []int{96, 128, 256, 1024} {
		payload := bytes.Repeat([]byte("z"), 5000)
		packets, err := enc.Encode(9, crypto.EncryptionNonce96, make([]byte, 12), max, payload)
		if err != nil {
			t.Fatalf("max=%d: Encode: %v", max, err)
		}
		for i, p := range packets {
			b, err := ToVec(p)
			if err != nil {
				t.Fatalf("ToVec: %v", err)
			}
			if len(b) > max {
				t.Fatalf("max=%d packet %d len=%d exceeds max", max, i, len(b))
			}
		}
	}
}

func TestForgedSignatureRejectedByVerifier(t *testing.T) {
	signer := testSigner(t)
	enc := NewEncoder(signer)
	packets, err := enc.Encode(5, crypto.EncryptionNone, nil, 512, []byte("hello"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	p := packets[0]
	if len(p.Data) == 0 {
		t.Fatal("expected non-empty data to tamper with")
	}
	tampered := *p
	tampered.Data = append([]byte(nil), p.Data...)
	tampered.Data[0] ^= 0xFF

	content, err := ContentForSignature(tampered.Meta, tampered.Data)
	if err != nil {
		t.Fatalf("ContentForSignature: %v", err)
	}
	if signer.(*crypto.HMACSigner).Verify(content, tampered.Signature) {
		t.Fatal("tampered packet should not verify")
	}
}
