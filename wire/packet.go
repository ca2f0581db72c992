// Package wire implements the smallest on-wire unit, its Encoder and its
// Decoder. The serialization schema is CBOR (github.com/fxamacker/cbor/v2),
// a stable, self-describing binary codec, so no framing format is
// hand-rolled here.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chipsenkbeil/over-there-sub000/crypto"
)

// Meta is everything about a Packet except its signature and payload. The
// signature digest is computed over Meta's serialized bytes concatenated
// with Data, never over the packet's own serialized form, so a verifier
// recomputes the digest without first having to trust a parse of the
// signature field.
type Meta struct {
	ID         uint32          `cbor:"1,keyasint"`
	Index      uint32          `cbor:"2,keyasint"`
	Final      bool            `cbor:"3,keyasint"`
	Encryption crypto.Encryption `cbor:"4,keyasint"`
	Nonce      []byte          `cbor:"5,keyasint,omitempty"`
}

// Packet is the fixed binary container every message is fragmented into.
type Packet struct {
	Meta      Meta   `cbor:"1,keyasint"`
	Signature []byte `cbor:"2,keyasint"`
	Data      []byte `cbor:"3,keyasint"`
}

func (p *Packet) ID() uint32    { return p.Meta.ID }
func (p *Packet) Index() uint32 { return p.Meta.Index }
func (p *Packet) IsFinal() bool { return p.Meta.Final }

// Nonce returns the associated data carried by a final+encrypted packet,
// or nil otherwise.
func (p *Packet) Nonce() []byte {
	if !p.Meta.Final || p.Meta.Encryption == crypto.EncryptionNone {
		return nil
	}
	return p.Meta.Nonce
}

var cborEncMode = func() cbor.EncMode {
	m, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err) // CanonicalEncOptions() is always a valid EncMode
	}
	return m
}()

// ContentForSignature returns serialize(meta) || data -- the exact bytes a
// Signer signs and a Verifier checks.
func ContentForSignature(meta Meta, data []byte) ([]byte, error) {
	mb, err := cborEncMode.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode packet metadata: %w", err)
	}
	out := make([]byte, 0, len(mb)+len(data))
	out = append(out, mb...)
	out = append(out, data...)
	return out, nil
}

// ToVec serializes a whole Packet for transmission.
func ToVec(p *Packet) ([]byte, error) {
	b, err := cborEncMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode packet: %w", err)
	}
	return b, nil
}

// FromSlice parses one Packet out of a received byte buffer.
func FromSlice(b []byte) (*Packet, error) {
	var p Packet
	if err := cbor.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode packet: %w", err)
	}
	return &p, nil
}

// newSigned builds and signs a Packet in one step; used by Encoder.
func newSigned(meta Meta, data []byte, signer crypto.Signer) (*Packet, error) {
	content, err := ContentForSignature(meta, data)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(content)
	if err != nil {
		return nil, fmt.Errorf("sign packet: %w", err)
	}
	return &Packet{Meta: meta, Signature: sig, Data: data}, nil
}
