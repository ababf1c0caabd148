// Package hexenc converts between byte buffers and hexadecimal text.
//
// Decoding accepts both cases and can skip separator characters (such as ':'
// or ' ') between byte pairs.
package hexenc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidHex     = errors.New("hexenc: invalid hex input")
	ErrBufferTooSmall = errors.New("hexenc: output buffer too small")
)

// Encode returns the lowercase hex encoding of bin.
func Encode(bin []byte) string {
	return hex.EncodeToString(bin)
}

// EncodeTo writes the lowercase hex encoding of bin into dst and returns the
// written prefix of dst.
func EncodeTo(dst, bin []byte) ([]byte, error) {
	n := hex.EncodedLen(len(bin))
	if len(dst) < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, n, len(dst))
	}
	hex.Encode(dst, bin)
	return dst[:n], nil
}

// Decode parses s into dst and returns the written prefix of dst. Characters
// listed in ignore are skipped, but only between complete byte pairs.
func Decode(dst []byte, s, ignore string) ([]byte, error) {
	n := 0
	var hi byte
	half := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		v, ok := fromHexChar(c)
		if !ok {
			if !half && strings.IndexByte(ignore, c) >= 0 {
				continue
			}
			return nil, fmt.Errorf("%w: character %q at position %d", ErrInvalidHex, c, i)
		}
		if !half {
			hi = v
			half = true
			continue
		}
		if n >= len(dst) {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrBufferTooSmall, len(dst))
		}
		dst[n] = hi<<4 | v
		n++
		half = false
	}
	if half {
		return nil, fmt.Errorf("%w: odd number of digits", ErrInvalidHex)
	}
	return dst[:n], nil
}

// DecodeString is Decode into a freshly allocated buffer.
func DecodeString(s, ignore string) ([]byte, error) {
	return Decode(make([]byte, len(s)/2), s, ignore)
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
