package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// KeySize is the size of generated session keys
	KeySize = 16
	// IVSize is the size of the initialization vector
	IVSize = aes.BlockSize

	keySeparator = ";"
)

var (
	ErrInvalidBlockSize = errors.New("codec: ciphertext is not a multiple of the block size")
	ErrBadPadding       = errors.New("codec: invalid padding")
	ErrInvalidKey       = errors.New("codec: invalid key or iv")
)

// AESCodec is an ICodec using AES-CBC with PKCS#5 padding. Every message is encrypted
// with the same key and IV. The codec is immutable and safe for concurrent use.
type AESCodec struct {
	key   []byte
	iv    []byte
	block cipher.Block
}

// NewAESCodec creates a codec from a 16, 24 or 32 byte key and a 16 byte IV.
// Both slices are copied.
func NewAESCodec(key, iv []byte) (*AESCodec, error) {
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidKey, IVSize, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &AESCodec{
		key:   bytes.Clone(key),
		iv:    bytes.Clone(iv),
		block: block,
	}, nil
}

// GenerateAESCodec creates a codec with a random 16 byte key and a random IV
func GenerateAESCodec() (*AESCodec, error) {
	buf := make([]byte, KeySize+IVSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("codec: failed to generate key: %w", err)
	}
	return NewAESCodec(buf[:KeySize], buf[KeySize:])
}

// ParseAESCodec parses the "b64key;b64iv" form written by String
func ParseAESCodec(s string) (*AESCodec, error) {
	parts := strings.Split(strings.TrimSpace(s), keySeparator)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected <key>%s<iv>", ErrInvalidKey, keySeparator)
	}
	key, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrInvalidKey, err)
	}
	iv, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrInvalidKey, err)
	}
	return NewAESCodec(key, iv)
}

// String returns the key material as "b64key;b64iv". The result is secret.
func (c *AESCodec) String() string {
	return base64.StdEncoding.EncodeToString(c.key) + keySeparator + base64.StdEncoding.EncodeToString(c.iv)
}

// Key returns a copy of the key
func (c *AESCodec) Key() []byte {
	return bytes.Clone(c.key)
}

// IV returns a copy of the initialization vector
func (c *AESCodec) IV() []byte {
	return bytes.Clone(c.iv)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (c *AESCodec) Encrypt(plain []byte) ([]byte, error) {
	p := aes.BlockSize - len(plain)%aes.BlockSize
	padded := make([]byte, len(plain)+p)
	copy(padded, plain)
	for i := len(plain); i < len(padded); i++ {
		padded[i] = byte(p)
	}

	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(padded, padded)
	return padded, nil
}

func (c *AESCodec) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrInvalidBlockSize
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(plain, ciphertext)

	p := int(plain[len(plain)-1])
	if p == 0 || p > aes.BlockSize {
		return nil, ErrBadPadding
	}
	for _, b := range plain[len(plain)-p:] {
		if int(b) != p {
			return nil, ErrBadPadding
		}
	}
	return plain[:len(plain)-p], nil
}
