package crypto

import (
	"crypto/rand"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/chipsenkbeil/over-there-sub000/cmn/nlog"
)

// ChaChaBicrypter is the default Bicrypter: ChaCha20-Poly1305
// whole-message AEAD whose per-message nonce is fitted to the packet
// wire's 96-bit or 128-bit nonce slot as configured.
type ChaChaBicrypter struct {
	aead  interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
	enc     Encryption
	tracker *NonceTracker
}

// NewChaChaBicrypter builds a Bicrypter keyed by a 32-byte key. enc selects
// whether the wire carries a 96-bit or 128-bit nonce; EncryptionNone is
// rejected since there would be nothing to key the AEAD with.
func NewChaChaBicrypter(key []byte, enc Encryption) (*ChaChaBicrypter, error) {
	if enc == EncryptionNone {
		return nil, fmt.Errorf("chacha bicrypter requires a nonce encryption mode")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &ChaChaBicrypter{aead: aead, enc: enc, tracker: NewNonceTracker(4096)}, nil
}

func (c *ChaChaBicrypter) Encryption() Encryption { return c.enc }

// NewAssociatedData draws a fresh random nonce sized to the AEAD's native
// nonce size (12 bytes for chacha20poly1305.New), then fits it to the
// wire's advertised encryption-mode width by truncating or zero-extending;
// EncryptionNonce128 callers get a 16-byte wire nonce whose low 12 bytes
// are what actually key the AEAD, the remaining bytes are wire padding the
// spec's packet format reserves for 128-bit nonce transports.
func (c *ChaChaBicrypter) NewAssociatedData() ([]byte, error) {
	raw := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	c.tracker.observe(raw)
	wire := make([]byte, c.enc.NonceLen())
	copy(wire, raw)
	return wire, nil
}

func (c *ChaChaBicrypter) Encrypt(plaintext, assoc []byte) ([]byte, error) {
	nonce := assoc[:c.aead.NonceSize()]
	return c.aead.Seal(nil, nonce, plaintext, nil), nil
}

func (c *ChaChaBicrypter) Decrypt(ciphertext, assoc []byte) ([]byte, error) {
	if len(assoc) < c.aead.NonceSize() {
		return nil, fmt.Errorf("associated data too short for nonce: %d", len(assoc))
	}
	nonce := assoc[:c.aead.NonceSize()]
	return c.aead.Open(nil, nonce, ciphertext, nil)
}

// NonceTracker keeps a small bounded ring of recently generated nonces to
// catch a broken RNG producing repeats during development -- it never
// rejects anything at runtime, since nonces are locally generated and
// never attacker-controlled.
type NonceTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	cap  int
}

func NewNonceTracker(capacity int) *NonceTracker {
	return &NonceTracker{seen: make(map[string]struct{}, capacity), cap: capacity}
}

func (t *NonceTracker) observe(nonce []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := string(nonce)
	if _, dup := t.seen[key]; dup {
		nlog.Warningf("crypto: nonce reuse detected (len=%d) -- check RNG source", len(nonce))
	}
	t.seen[key] = struct{}{}
	t.ring = append(t.ring, key)
	if len(t.ring) > t.cap {
		oldest := t.ring[0]
		t.ring = t.ring[1:]
		delete(t.seen, oldest)
	}
}
