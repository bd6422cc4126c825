package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAESRoundTrip(t *testing.T) {
	c, err := GenerateAESCodec()
	require.NoError(t, err)

	for _, plain := range [][]byte{{}, []byte("OK"), bytes.Repeat([]byte("a"), 16), bytes.Repeat([]byte("\n\\"), 100)} {
		ct, err := c.Encrypt(plain)
		require.NoError(t, err)
		assert.Zero(t, len(ct)%IVSize)
		assert.Greater(t, len(ct), len(plain))

		decrypted, err := c.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, plain, decrypted)
	}
}

func TestAESDeterministic(t *testing.T) {
	c, err := NewAESCodec(bytes.Repeat([]byte{1}, 16), bytes.Repeat([]byte{2}, 16))
	require.NoError(t, err)

	a, err := c.Encrypt([]byte("same message"))
	require.NoError(t, err)
	b, err := c.Encrypt([]byte("same message"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAESDecryptErrors(t *testing.T) {
	c, err := GenerateAESCodec()
	require.NoError(t, err)

	// 21 bytes of plaintext, 11 bytes of padding, two blocks
	ct, err := c.Encrypt([]byte("twenty-one bytes long"))
	require.NoError(t, err)
	require.Len(t, ct, 32)

	_, err = c.Decrypt(ct[:len(ct)-3])
	assert.ErrorIs(t, err, ErrInvalidBlockSize)

	_, err = c.Decrypt(nil)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)

	// flipping the high bit of the last byte of the first block flips the
	// high bit of the padding byte in the second block
	tampered := bytes.Clone(ct)
	tampered[15] ^= 0x80
	_, err = c.Decrypt(tampered)
	assert.ErrorIs(t, err, ErrBadPadding)
}

func TestAESWrongKey(t *testing.T) {
	a, err := GenerateAESCodec()
	require.NoError(t, err)
	b, err := GenerateAESCodec()
	require.NoError(t, err)

	ct, err := a.Encrypt([]byte("secret"))
	require.NoError(t, err)

	plain, err := b.Decrypt(ct)
	if err == nil {
		assert.NotEqual(t, []byte("secret"), plain)
	}
}

func TestAESStringParse(t *testing.T) {
	c, err := GenerateAESCodec()
	require.NoError(t, err)

	parsed, err := ParseAESCodec(c.String())
	require.NoError(t, err)
	assert.Equal(t, c.Key(), parsed.Key())
	assert.Equal(t, c.IV(), parsed.IV())

	for _, invalid := range []string{"", "abc", "a;b;c", "!!;AAAA", "AAAAAAAAAAAAAAAAAAAAAA==;AAAA"} {
		_, err := ParseAESCodec(invalid)
		assert.ErrorIs(t, err, ErrInvalidKey, invalid)
	}
}

func TestNewAESCodecValidation(t *testing.T) {
	_, err := NewAESCodec(make([]byte, 15), make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = NewAESCodec(make([]byte, 16), make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = NewAESCodec(make([]byte, 32), make([]byte, 16))
	assert.NoError(t, err)
}

func TestDeriveAESCodec(t *testing.T) {
	a, err := DeriveAESCodec("correct horse battery staple")
	require.NoError(t, err)
	b, err := DeriveAESCodec("correct horse battery staple")
	require.NoError(t, err)
	c, err := DeriveAESCodec("another passphrase")
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, a.String(), c.String())

	_, err = DeriveAESCodec("")
	assert.Error(t, err)
}
