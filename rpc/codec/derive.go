package codec

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

var hkdfSalt = []byte("sKV bootstrap codec")

// DeriveAESCodec derives a bootstrap codec from a passphrase shared by client and
// server. The same passphrase always yields the same key and IV.
func DeriveAESCodec(passphrase string) (*AESCodec, error) {
	if passphrase == "" {
		return nil, errors.New("codec: empty passphrase")
	}

	material := make([]byte, KeySize+IVSize)
	r := hkdf.New(sha256.New, []byte(passphrase), hkdfSalt, []byte("aes-cbc key+iv"))
	if _, err := io.ReadFull(r, material); err != nil {
		return nil, fmt.Errorf("codec: failed to derive key: %w", err)
	}
	return NewAESCodec(material[:KeySize], material[KeySize:])
}
