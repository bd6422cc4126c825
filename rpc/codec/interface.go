package codec

// ICodec encrypts and decrypts whole messages. Implementations hold no state that
// carries over from one message to the next.
type ICodec interface {
	// Encrypt returns the ciphertext of plain
	Encrypt(plain []byte) ([]byte, error)
	// Decrypt returns the plaintext of a ciphertext produced by Encrypt.
	// Tampered or truncated input results in a decode error.
	Decrypt(ciphertext []byte) ([]byte, error)
}
