// Package padding implements ISO/IEC 7816-4 padding: a single 0x80 marker
// followed by zero bytes up to the next multiple of the block size.
//
// At least one byte is always added, so padding is reversible for any input.
package padding

import (
	"crypto/subtle"
	"errors"
)

const marker = 0x80

var (
	ErrInvalidBlockSize = errors.New("padding: block size must be positive")
	ErrInvalidLength    = errors.New("padding: unpadded length out of range")
	ErrBufferTooSmall   = errors.New("padding: buffer too small for padded data")
	ErrInvalidPadding   = errors.New("padding: invalid padding")
)

// PaddedLen returns the padded length of n bytes.
func PaddedLen(n, blockSize int) int {
	return n + blockSize - n%blockSize
}

// Pad pads the first unpaddedLen bytes of buf in place and returns buf up to
// the padded length.
func Pad(buf []byte, unpaddedLen, blockSize int) ([]byte, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if unpaddedLen < 0 || unpaddedLen > len(buf) {
		return nil, ErrInvalidLength
	}
	paddedLen := PaddedLen(unpaddedLen, blockSize)
	if paddedLen > len(buf) {
		return nil, ErrBufferTooSmall
	}
	buf[unpaddedLen] = marker
	clear(buf[unpaddedLen+1 : paddedLen])
	return buf[:paddedLen], nil
}

// Append appends data and its padding to dst.
func Append(dst, data []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	n := len(dst)
	out := append(dst, data...)
	out = append(out, make([]byte, PaddedLen(len(data), blockSize)-len(data))...)
	if _, err := Pad(out[n:], len(data), blockSize); err != nil {
		return nil, err
	}
	return out, nil
}

// Unpad returns the data preceding the padding of padded.
//
// Only the final block can hold padding. It is scanned in full without
// branching on its contents.
func Unpad(padded []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if len(padded) == 0 || len(padded)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	tail := padded[len(padded)-blockSize:]

	found, at, nonZero := 0, 0, 0
	for i := len(tail) - 1; i >= 0; i-- {
		// A marker counts only if every byte after it is zero.
		isMarker := subtle.ConstantTimeByteEq(tail[i], marker) & (1 ^ nonZero)
		at = subtle.ConstantTimeSelect(isMarker, i, at)
		found |= isMarker
		nonZero |= 1 ^ subtle.ConstantTimeByteEq(tail[i], 0)
	}
	if found != 1 {
		return nil, ErrInvalidPadding
	}
	return padded[:len(padded)-blockSize+at], nil
}
