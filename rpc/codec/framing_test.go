package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"abc\\mn\\\\\\n\ndef\\\n",
		"\n",
		"\\",
		"\\n",
		"\n\n\\\\",
		string([]byte{0, 1, '\\', '\n', 255, 'n'}),
	}
	for _, c := range cases {
		escaped := Escape([]byte(c))
		assert.NotContains(t, string(escaped), "\n", "escaped %q still contains a delimiter", c)
		assert.Equal(t, c, string(Unescape(escaped)), "round trip of %q", c)
	}
}

func TestEscapeIdentity(t *testing.T) {
	src := []byte("no special bytes here")
	escaped := Escape(src)
	assert.Equal(t, src, escaped)
	// same backing array
	assert.True(t, &src[0] == &escaped[0])
}

func TestEscapeOutput(t *testing.T) {
	assert.Equal(t, "a\\nb", string(Escape([]byte("a\nb"))))
	assert.Equal(t, "a\\\\b", string(Escape([]byte("a\\b"))))
	assert.Equal(t, "\\\\n", string(Escape([]byte("\\n"))))
}

func TestUnescapeUnknownSequence(t *testing.T) {
	assert.Equal(t, "\\x", string(Unescape([]byte("\\x"))))
	assert.Equal(t, "abc\\", string(Unescape([]byte("abc\\"))))
}

func TestEncodeDecodeFrame(t *testing.T) {
	c, err := GenerateAESCodec()
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		plain := bytes.Repeat([]byte{byte(i)}, i)
		frame, err := EncodeFrame(c, plain)
		require.NoError(t, err)

		require.Equal(t, Delimiter, frame[len(frame)-1])
		require.Equal(t, -1, bytes.IndexByte(frame[:len(frame)-1], Delimiter))

		decoded, err := DecodeFrame(c, frame[:len(frame)-1])
		require.NoError(t, err)
		assert.Equal(t, plain, decoded)
	}
}

func TestAppendFrame(t *testing.T) {
	dst := AppendFrame(nil, Escape([]byte("a\nb")))
	dst = AppendFrame(dst, []byte("c"))
	assert.Equal(t, "a\\nb\nc\n", string(dst))
}
