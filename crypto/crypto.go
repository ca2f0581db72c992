// Package crypto defines the abstract signing/encryption contracts the
// wire engine is built against, plus one concrete implementation of each,
// so the engine is runnable out of the box without the host application
// picking its own algorithms.
//
// The core (wire, transport) only ever depends on the Signer/Verifier and
// Encrypter/Decrypter interfaces below; it is deliberately ignorant of
// chacha20poly1305 or HMAC. Swapping algorithms means swapping the struct
// passed to transport.NewCodec, nothing else.
package crypto

// Encryption describes how much associated data a Final packet's nonce
// carries: none, a 96-bit nonce, or a 128-bit nonce.
type Encryption int

const (
	EncryptionNone Encryption = iota
	EncryptionNonce96
	EncryptionNonce128
)

func (e Encryption) NonceLen() int {
	switch e {
	case EncryptionNonce96:
		return 12
	case EncryptionNonce128:
		return 16
	default:
		return 0
	}
}

func (e Encryption) String() string {
	switch e {
	case EncryptionNonce96:
		return "nonce96"
	case EncryptionNonce128:
		return "nonce128"
	default:
		return "none"
	}
}

// Signer produces a fixed-size keyed-hash digest over arbitrary bytes.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// Verifier checks a digest produced by the matching Signer.
type Verifier interface {
	Verify(data, signature []byte) bool
}

// Encrypter encrypts a whole message payload under a fresh associated
// datum (nonce) it generates itself; the nonce travels in the final
// packet's type so the receiver's Decrypter can use it.
type Encrypter interface {
	Encrypt(plaintext []byte, assoc []byte) ([]byte, error)
	// NewAssociatedData returns a fresh nonce (or nil for EncryptionNone).
	NewAssociatedData() ([]byte, error)
	Encryption() Encryption
}

// Decrypter reverses Encrypter given the associated data recovered from
// the final packet.
type Decrypter interface {
	Decrypt(ciphertext []byte, assoc []byte) ([]byte, error)
}

// Bicrypter is the configuration-time pairing of an Encrypter and
// Decrypter under one key. A Bicrypter is split into its Encrypter half
// (handed to the outbound task) and Decrypter half (handed to the inbound
// task) so the two halves can be moved into separate goroutines
// independently; neither half needs the other once split.
type Bicrypter interface {
	Encrypter
	Decrypter
}
