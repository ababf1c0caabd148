package biguint

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch = errors.New("biguint: operand lengths differ")
)

func lengthMismatch(a, b []byte) error {
	return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
}

// Equals reports whether a and b have the same length and content.
// The time taken depends only on the lengths.
func Equals(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// IsZero reports whether every byte of n is zero.
func IsZero(n []byte) bool {
	var acc byte
	for _, d := range n {
		acc |= d
	}
	return subtle.ConstantTimeByteEq(acc, 0) == 1
}

// Compare returns -1, 0 or +1 as a is less than, equal to or greater than b.
//
// The most significant differing byte decides. Every byte is visited and no
// branch depends on the byte values.
func Compare(a, b []byte) (int, error) {
	if len(a) != len(b) {
		return 0, lengthMismatch(a, b)
	}
	gt, eq := 0, 1
	for i := len(a) - 1; i >= 0; i-- {
		x, y := int(a[i]), int(b[i])
		// (y-x)>>8 is -1 exactly when x > y; only counts while higher bytes matched.
		gt |= ((y - x) >> 8) & eq
		eq &= ((y ^ x) - 1) >> 8
	}
	return gt + gt + eq - 1, nil
}

// Increment adds one to n in place. A buffer of all 0xff wraps to zero.
func Increment(n []byte) {
	IncrementBy(n, 1)
}

// IncrementBy adds amount to n in place, modulo 2^(8*len(n)).
func IncrementBy(n []byte, amount uint64) {
	// carry holds the unconsumed part of amount plus the byte carry. Consuming
	// the low byte before adding keeps it from overflowing at amount = 2^64-1.
	carry := amount
	for i := range n {
		sum := uint64(n[i]) + carry&0xff
		n[i] = byte(sum)
		carry = carry>>8 + sum>>8
	}
}

// Add sets a = a + b modulo 2^(8*len(a)).
func Add(a, b []byte) error {
	if len(a) != len(b) {
		return lengthMismatch(a, b)
	}
	var carry uint16
	for i := range a {
		carry += uint16(a[i]) + uint16(b[i])
		a[i] = byte(carry)
		carry >>= 8
	}
	return nil
}

// Subtract sets a = a - b modulo 2^(8*len(a)). If b > a the result wraps.
func Subtract(a, b []byte) error {
	if len(a) != len(b) {
		return lengthMismatch(a, b)
	}
	var borrow uint16
	for i := range a {
		d := uint16(a[i]) - uint16(b[i]) - borrow
		a[i] = byte(d)
		borrow = (d >> 8) & 1
	}
	return nil
}
