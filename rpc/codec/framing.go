package codec

// Delimiter terminates every frame on the wire
const Delimiter byte = '\n'

const (
	escapeByte   byte = '\\'
	escapedDelim byte = 'n'
)

// Escape doubles every backslash and replaces every delimiter with a backslash followed
// by 'n'. If src contains neither, src itself is returned.
func Escape(src []byte) []byte {
	c := 0
	for _, b := range src {
		if b == escapeByte || b == Delimiter {
			c++
		}
	}
	if c == 0 {
		return src
	}

	result := make([]byte, 0, len(src)+c)
	for _, b := range src {
		switch b {
		case escapeByte:
			result = append(result, escapeByte, escapeByte)
		case Delimiter:
			result = append(result, escapeByte, escapedDelim)
		default:
			result = append(result, b)
		}
	}
	return result
}

// Unescape reverses Escape. A backslash followed by a backslash becomes one backslash,
// a backslash followed by 'n' becomes the delimiter, every other byte is copied as is.
func Unescape(src []byte) []byte {
	result := make([]byte, 0, len(src))
	escaped := false
	for _, b := range src {
		if escaped {
			escaped = false
			switch b {
			case escapeByte:
				result = append(result, escapeByte)
			case escapedDelim:
				result = append(result, Delimiter)
			default:
				// not produced by Escape, keep both bytes
				result = append(result, escapeByte, b)
			}
			continue
		}
		if b == escapeByte {
			escaped = true
			continue
		}
		result = append(result, b)
	}
	if escaped {
		result = append(result, escapeByte)
	}
	return result
}

// EncodeFrame encrypts plain with c, escapes the ciphertext and appends the delimiter
func EncodeFrame(c ICodec, plain []byte) ([]byte, error) {
	ciphertext, err := c.Encrypt(plain)
	if err != nil {
		return nil, err
	}
	escaped := Escape(ciphertext)
	return AppendFrame(make([]byte, 0, len(escaped)+1), escaped), nil
}

// AppendFrame appends an already escaped payload and the delimiter to dst
func AppendFrame(dst, escaped []byte) []byte {
	dst = append(dst, escaped...)
	return append(dst, Delimiter)
}

// DecodeFrame unescapes a frame (without its delimiter) and decrypts it with c
func DecodeFrame(c ICodec, frame []byte) ([]byte, error) {
	return c.Decrypt(Unescape(frame))
}
