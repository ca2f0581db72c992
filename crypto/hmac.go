package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
)

// HMACSigner is the default Signer/Verifier: keyed SHA-256 over
// crypto/hmac, compared in constant time.
type HMACSigner struct {
	key []byte
}

func NewHMACSigner(key []byte) *HMACSigner {
	k := make([]byte, len(key))
	copy(k, key)
	return &HMACSigner{key: k}
}

func (s *HMACSigner) Sign(data []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (s *HMACSigner) Verify(data, signature []byte) bool {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)
	expected := mac.Sum(nil)
	return subtle.ConstantTimeCompare(expected, signature) == 1
}
