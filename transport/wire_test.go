package transport

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/chipsenkbeil/over-there-sub000/crypto"
)

func newTestCodec(t *testing.T, key []byte, enc crypto.Encryption) *Codec {
	t.Helper()
	signer := crypto.NewHMACSigner(key)
	var bicrypter crypto.Bicrypter
	if enc == crypto.EncryptionNone {
		bicrypter = crypto.NoneBicrypter{}
	} else {
		aeadKey := bytes.Repeat([]byte{0x42}, 32)
		b, err := crypto.NewChaChaBicrypter(aeadKey, enc)
		if err != nil {
			t.Fatalf("NewChaChaBicrypter: %v", err)
		}
		bicrypter = b
	}
	return NewCodec(signer, signer, bicrypter)
}

func TestWireRoundTripNoEncryption(t *testing.T) {
	codec := newTestCodec(t, []byte("shared-key"), crypto.EncryptionNone)
	tx := NewWire(codec, 64, time.Minute)
	rx := NewWire(codec, 64, time.Minute)

	payload := []byte("hello over there")
	packets, err := tx.EncodeOutbound(1, payload)
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}
	if len(packets) < 2 {
		t.Fatalf("expected fragmentation, got %d packets", len(packets))
	}

	var result DecodeResult
	for _, raw := range packets {
		result, err = rx.DecodeInbound(raw)
		if err != nil {
			t.Fatalf("DecodeInbound: %v", err)
		}
	}
	if !result.Done || !bytes.Equal(result.Payload, payload) {
		t.Fatalf("got %+v, want payload %q", result, payload)
	}
}

func TestWireRoundTripEncrypted(t *testing.T) {
	codec := newTestCodec(t, []byte("shared-key"), crypto.EncryptionNonce128)
	tx := NewWire(codec, 512, time.Minute)
	rx := NewWire(codec, 512, time.Minute)

	payload := []byte{1, 2, 3}
	packets, err := tx.EncodeOutbound(2, payload)
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}

	var result DecodeResult
	for _, raw := range packets {
		result, err = rx.DecodeInbound(raw)
		if err != nil {
			t.Fatalf("DecodeInbound: %v", err)
		}
	}
	if !result.Done || !bytes.Equal(result.Payload, payload) {
		t.Fatalf("got %+v, want %v", result, payload)
	}
}

func TestWireForgedPacketRejected(t *testing.T) {
	codec := newTestCodec(t, []byte("shared-key"), crypto.EncryptionNone)
	tx := NewWire(codec, 512, time.Minute)
	// A zero group TTL makes any group the decoder holds count as expired,
	// so EvictExpiredGroups below reports whether the forged packet was
	// buffered.
	rx := NewWire(codec, 512, 0)

	packets, err := tx.EncodeOutbound(3, []byte("intact message"))
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}
	tampered := append([]byte(nil), packets[0]...)
	tampered[len(tampered)-1] ^= 0xFF

	if _, err := rx.DecodeInbound(tampered); err == nil {
		t.Fatal("expected signature verification failure")
	}
	if rx.EvictExpiredGroups() != 0 {
		t.Fatal("rejecting a forged packet should not touch decoder state")
	}
}

func TestTCPStreamAdapterRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	client := NewTCPStreamAdapter(clientConn, DefaultSentinel, 4096)
	server := NewTCPStreamAdapter(serverConn, DefaultSentinel, 4096)

	done := make(chan error, 1)
	go func() { done <- client.WriteFrame([]byte("frame-one")) }()

	frame, err := server.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(frame, []byte("frame-one")) {
		t.Fatalf("got %q", frame)
	}
	if err := <-done; err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
}

func TestUDPAdapterRoundTrip(t *testing.T) {
	server, err := ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenUDP server: %v", err)
	}
	defer server.Close()
	client, err := ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenUDP client: %v", err)
	}
	defer client.Close()

	if err := client.WritePacket([]byte("ping"), server.LocalAddr()); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	buf := make([]byte, 2048)
	data, peer, err := server.ReadPacket(buf)
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if string(data) != "ping" {
		t.Fatalf("got %q", data)
	}
	if peer == nil {
		t.Fatal("expected non-nil peer address")
	}
}
