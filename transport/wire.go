// Package transport composes wire.Encoder/Decoder with a Signer/Verifier
// and an Encrypter/Decrypter into byte-in/byte-out processors, then binds
// those processors to UDP datagrams and TCP framed streams.
package transport

import (
	"time"

	"github.com/chipsenkbeil/over-there-sub000/crypto"
	"github.com/chipsenkbeil/over-there-sub000/wire"
)

// Codec is the immutable, shareable half of a Wire: the signer/verifier
// pair, the encrypter/decrypter halves of a Bicrypter (kept as separate
// interface views so an outbound task only ever touches Encrypter and an
// inbound task only ever touches Decrypter), and the Encoder whose
// shape-keyed caches are safe to share across every association a process
// serves.
type Codec struct {
	Signer    crypto.Signer
	Verifier  crypto.Verifier
	Encrypter crypto.Encrypter
	Decrypter crypto.Decrypter
	encoder   *wire.Encoder
}

func NewCodec(signer crypto.Signer, verifier crypto.Verifier, bicrypter crypto.Bicrypter) *Codec {
	return &Codec{
		Signer:    signer,
		Verifier:  verifier,
		Encrypter: bicrypter,
		Decrypter: bicrypter,
		encoder:   wire.NewEncoder(signer),
	}
}

// Wire is a per-association byte-in/byte-out processor: one Decoder,
// owned solely by that association's inbound task, paired with a shared
// Codec.
type Wire struct {
	codec         *Codec
	decoder       *wire.Decoder
	maxPacketSize int
}

func NewWire(codec *Codec, maxPacketSize int, groupTTL time.Duration) *Wire {
	return &Wire{codec: codec, decoder: wire.NewDecoder(groupTTL), maxPacketSize: maxPacketSize}
}

// EncodeOutbound encrypts payload once as a whole under a freshly
// generated associated datum, then fragments the ciphertext into packets
// via the shared Encoder, returning one serialized byte buffer per packet
// ready for individual transmission.
func (w *Wire) EncodeOutbound(groupID uint32, payload []byte) ([][]byte, error) {
	assoc, err := w.codec.Encrypter.NewAssociatedData()
	if err != nil {
		return nil, &EncryptDataError{Cause: err}
	}
	ciphertext, err := w.codec.Encrypter.Encrypt(payload, assoc)
	if err != nil {
		return nil, &EncryptDataError{Cause: err}
	}
	packets, err := w.codec.encoder.Encode(groupID, w.codec.Encrypter.Encryption(), assoc, w.maxPacketSize, ciphertext)
	if err != nil {
		return nil, &EncodeDataError{Cause: err}
	}
	out := make([][]byte, len(packets))
	for i, p := range packets {
		b, err := wire.ToVec(p)
		if err != nil {
			return nil, &EncodeDataError{Cause: err}
		}
		out[i] = b
	}
	return out, nil
}

// DecodeResult is the outcome of feeding one received byte buffer into
// DecodeInbound.
type DecodeResult struct {
	GroupID uint32
	Done    bool   // true once the group's final packet completed reassembly
	Payload []byte // valid only when Done
}

// DecodeInbound parses one received byte buffer as a Packet, verifies its
// signature before it ever touches Decoder state (so forged packets
// cannot pollute or DoS reassembly), and folds it into the
// association's Decoder. When the packet completes its group, the
// ciphertext is assembled and decrypted using the associated data carried
// by the final packet.
func (w *Wire) DecodeInbound(raw []byte) (DecodeResult, error) {
	p, err := wire.FromSlice(raw)
	if err != nil {
		return DecodeResult{}, &DecodePacketError{Cause: err}
	}

	content, err := wire.ContentForSignature(p.Meta, p.Data)
	if err != nil {
		return DecodeResult{}, &DecodePacketError{Cause: err}
	}
	if !w.codec.Verifier.Verify(content, p.Signature) {
		return DecodeResult{GroupID: p.ID()}, &InvalidSignatureError{GroupID: p.ID()}
	}

	if err := w.decoder.AddPacket(p); err != nil {
		return DecodeResult{GroupID: p.ID()}, err
	}
	if !w.decoder.Verify(p.ID()) {
		return DecodeResult{GroupID: p.ID()}, nil
	}

	nonce := w.decoder.FinalNonce(p.ID())
	ciphertext, err := w.decoder.Assemble(p.ID())
	if err != nil {
		return DecodeResult{GroupID: p.ID()}, &AssembleDataError{Cause: err}
	}
	w.decoder.RemoveGroup(p.ID())

	plaintext, err := w.codec.Decrypter.Decrypt(ciphertext, nonce)
	if err != nil {
		return DecodeResult{GroupID: p.ID()}, &DecryptDataError{Cause: err}
	}
	return DecodeResult{GroupID: p.ID(), Done: true, Payload: plaintext}, nil
}

// EvictExpiredGroups drops reassembly state for groups whose TTL elapsed
// without completing, returning how many were evicted.
func (w *Wire) EvictExpiredGroups() int {
	return len(w.decoder.RemoveExpired())
}
