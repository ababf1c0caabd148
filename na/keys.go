package na

import (
	"errors"
	"fmt"

	"github.com/TheusHen/na/na/biguint"
	"github.com/TheusHen/na/na/hexenc"
	"github.com/TheusHen/na/na/random"
)

// KeySize is the size of symmetric keys used by crypto and stream.
const KeySize = 32

// keyIgnore lists separators tolerated between byte pairs of a hex key.
const keyIgnore = ": \t\r\n"

var (
	ErrInvalidKey = errors.New("na: invalid key")
	ErrWeakKey    = errors.New("na: all-zero key")
)

// GenerateKey returns a fresh key from the default random source.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if err := random.Fill(key); err != nil {
		return nil, err
	}
	return key, nil
}

// ParseKey decodes a hex key. Colons and whitespace between byte pairs are
// ignored so keys may be grouped for readability.
func ParseKey(s string) ([]byte, error) {
	key, err := hexenc.DecodeString(s, keyIgnore)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(key) != KeySize {
		Wipe(key)
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidKey, len(key), KeySize)
	}
	if biguint.IsZero(key) {
		return nil, ErrWeakKey
	}
	return key, nil
}

// FormatKey returns the hex form of key, as read by ParseKey.
func FormatKey(key []byte) string {
	return hexenc.Encode(key)
}

// Wipe zeroes b.
func Wipe(b []byte) {
	clear(b)
}
