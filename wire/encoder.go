package wire

import (
	"crypto/rand"
	"sync"

	"github.com/chipsenkbeil/over-there-sub000/crypto"
)

// Encoder splits a byte buffer into Packets whose serialized size never
// exceeds a caller-supplied maximum. It is safe for concurrent use: the
// two lookup caches it maintains are read-mostly and
// keyed only by shape (data size, final-ness, nonce length), never by
// packet contents, so they can be shared across every message a Wire
// ever encodes.
type Encoder struct {
	signer crypto.Signer

	mu        sync.Mutex
	sizeCache map[sizeKey]int
	maxCache  map[maxKey]int
}

type sizeKey struct {
	dataSize int
	final    bool
	encLen   int
}

type maxKey struct {
	maxPacketSize int
	final         bool
	encLen        int
}

func NewEncoder(signer crypto.Signer) *Encoder {
	return &Encoder{
		signer:    signer,
		sizeCache: make(map[sizeKey]int),
		maxCache:  make(map[maxKey]int),
	}
}

// Encode produces an ordered list of Packets for groupID whose concatenated
// Data equals data, with exactly one Final packet in the last position
// carrying nonce (nil for EncryptionNone).
func (e *Encoder) Encode(groupID uint32, enc crypto.Encryption, nonce []byte, maxPacketSize int, data []byte) ([]*Packet, error) {
	encLen := enc.NonceLen()

	f, err := e.maxPayload(maxPacketSize, true, encLen)
	if err != nil {
		return nil, err
	}
	n, err := e.maxPayload(maxPacketSize, false, 0)
	if err != nil {
		return nil, err
	}
	if f == 0 || n == 0 {
		return nil, &MaxPacketSizeTooSmall{MaxPacketSize: maxPacketSize}
	}

	var (
		packets   []*Packet
		remaining = data
		index     uint32
	)
	for {
		r := len(remaining)
		switch {
		case r <= f:
			meta := Meta{ID: groupID, Index: index, Final: true, Encryption: enc, Nonce: nonce}
			p, err := newSigned(meta, remaining, e.signer)
			if err != nil {
				return nil, &FailedToSignPacket{Cause: err}
			}
			packets = append(packets, p)
			return packets, nil
		case r <= n:
			sz := r - 1 // force a trailing Final packet
			meta := Meta{ID: groupID, Index: index}
			p, err := newSigned(meta, remaining[:sz], e.signer)
			if err != nil {
				return nil, &FailedToSignPacket{Cause: err}
			}
			packets = append(packets, p)
			remaining = remaining[sz:]
			index++
		default:
			meta := Meta{ID: groupID, Index: index}
			p, err := newSigned(meta, remaining[:n], e.signer)
			if err != nil {
				return nil, &FailedToSignPacket{Cause: err}
			}
			packets = append(packets, p)
			remaining = remaining[n:]
			index++
		}
	}
}

// maxPayload finds the largest data length whose serialized packet fits
// within maxPacketSize: start at max/2, then adjust by the observed
// overflow/underflow until the size converges.
func (e *Encoder) maxPayload(maxPacketSize int, final bool, encLen int) (int, error) {
	key := maxKey{maxPacketSize, final, encLen}

	e.mu.Lock()
	if v, ok := e.maxCache[key]; ok {
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()

	size := maxPacketSize / 2
	if size < 1 {
		size = 1
	}
	for i := 0; i < 64; i++ {
		n, err := e.serializedSize(size, final, encLen)
		if err != nil {
			return 0, err
		}
		diff := maxPacketSize - n
		if diff == 0 {
			break
		}
		next := size + diff
		if next == size || next <= 0 {
			if next <= 0 {
				size = 0
			}
			break
		}
		size = next
	}
	// Safety pass: the overhead of encoding an integer (e.g. index) can
	// itself grow by a byte as size changes; never hand back a size whose
	// packet would overflow the caller's limit.
	for size > 0 {
		n, err := e.serializedSize(size, final, encLen)
		if err != nil {
			return 0, err
		}
		if n <= maxPacketSize {
			break
		}
		size--
	}

	e.mu.Lock()
	e.maxCache[key] = size
	e.mu.Unlock()
	return size, nil
}

// serializedSize measures the on-wire length of a packet carrying dataSize
// bytes of payload, by signing and serializing one dummy packet of that
// shape. The dummy's id and index are pinned to their maximum values:
// CBOR integers widen with magnitude, so measuring at full width
// guarantees no real packet of the same shape serializes larger than the
// cached figure.
func (e *Encoder) serializedSize(dataSize int, final bool, encLen int) (int, error) {
	key := sizeKey{dataSize, final, encLen}

	e.mu.Lock()
	if v, ok := e.sizeCache[key]; ok {
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()

	data := make([]byte, dataSize)
	_, _ = rand.Read(data)

	meta := Meta{ID: ^uint32(0), Index: ^uint32(0), Final: final}
	if final && encLen > 0 {
		meta.Encryption = encryptionForLen(encLen)
		meta.Nonce = make([]byte, encLen)
		_, _ = rand.Read(meta.Nonce)
	}

	p, err := newSigned(meta, data, e.signer)
	if err != nil {
		return 0, &FailedToSignPacket{Cause: err}
	}
	b, err := ToVec(p)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	e.sizeCache[key] = len(b)
	e.mu.Unlock()
	return len(b), nil
}

func encryptionForLen(n int) crypto.Encryption {
	switch n {
	case 12:
		return crypto.EncryptionNonce96
	case 16:
		return crypto.EncryptionNonce128
	default:
		return crypto.EncryptionNone
	}
}
