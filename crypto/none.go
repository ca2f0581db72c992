package crypto

// NoneBicrypter is the identity Bicrypter used when a deployment opts
// out of message encryption. Signing is unaffected -- every packet is
// still authenticated -- only the payload is left in the clear.
type NoneBicrypter struct{}

func (NoneBicrypter) Encryption() Encryption                          { return EncryptionNone }
func (NoneBicrypter) NewAssociatedData() ([]byte, error)               { return nil, nil }
func (NoneBicrypter) Encrypt(plaintext, _ []byte) ([]byte, error)      { return plaintext, nil }
func (NoneBicrypter) Decrypt(ciphertext, _ []byte) ([]byte, error)     { return ciphertext, nil }
