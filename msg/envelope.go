// Package msg defines the application-level message envelope and the
// complete Request/Reply variant set.
//
// Content is a tagged union in spirit: each Msg carries a Kind string and
// its concrete argument struct cbor-encoded into Args. Go has no native
// sum type, and a typed interface registry would need exactly this
// kind+payload pair underneath anyway.
package msg

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Header carries the fields every envelope shares: a fresh 128-bit id, an
// optional parent id linking a reply to its request, and a creation
// timestamp.
type Header struct {
	ID           uuid.UUID  `cbor:"1,keyasint"`
	ParentID     *uuid.UUID `cbor:"2,keyasint,omitempty"`
	CreationTime int64      `cbor:"3,keyasint"` // UnixNano
}

// Msg is the transport-agnostic envelope. Args holds the CBOR-encoded
// concrete argument struct named by Kind; callers use DecodeArgs to
// recover it.
type Msg struct {
	Header Header          `cbor:"1,keyasint"`
	Kind   string          `cbor:"2,keyasint"`
	Args   cbor.RawMessage `cbor:"3,keyasint"`
}

// NewRequest builds a fresh request envelope with a new header id.
func NewRequest(kind string, args any) (*Msg, error) {
	raw, err := cbor.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s args: %w", kind, err)
	}
	return &Msg{
		Header: Header{ID: uuid.New(), CreationTime: time.Now().UnixNano()},
		Kind:   kind,
		Args:   raw,
	}, nil
}

// NewReply builds a reply envelope whose ParentID links back to request.
func NewReply(request *Msg, kind string, args any) (*Msg, error) {
	raw, err := cbor.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s args: %w", kind, err)
	}
	parent := request.Header.ID
	return &Msg{
		Header: Header{ID: uuid.New(), ParentID: &parent, CreationTime: time.Now().UnixNano()},
		Kind:   kind,
		Args:   raw,
	}, nil
}

// DecodeArgs unmarshals m.Args into out, which must match the struct
// registered for m.Kind.
func (m *Msg) DecodeArgs(out any) error {
	if err := cbor.Unmarshal(m.Args, out); err != nil {
		return fmt.Errorf("decode %s args: %w", m.Kind, err)
	}
	return nil
}

// Encode serializes the whole envelope for the wire.
func Encode(m *Msg) ([]byte, error) {
	b, err := cbor.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return b, nil
}

// Decode parses a whole envelope received off the wire.
func Decode(b []byte) (*Msg, error) {
	var m Msg
	if err := cbor.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &m, nil
}

// IsReply reports whether m carries a parent id (i.e. is a reply).
func (m *Msg) IsReply() bool { return m.Header.ParentID != nil }

// WithArgs returns a copy of m with Args replaced by the CBOR encoding of
// args, keeping the same Header and Kind. Used by dispatch's path-rewrite
// engine to splice a substituted value back into a pending request without
// disturbing its identity.
func (m *Msg) WithArgs(args any) (*Msg, error) {
	raw, err := cbor.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s args: %w", m.Kind, err)
	}
	out := *m
	out.Args = raw
	return &out, nil
}
