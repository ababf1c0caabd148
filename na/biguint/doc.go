// Package biguint implements fixed-width unsigned integer arithmetic on byte
// buffers, for managing nonces and block counters.
//
// Design goals:
//   - Little-endian: index 0 is the least significant byte
//   - No allocation: every operation works in place on caller-owned buffers
//   - Modular: results wrap modulo 2^(8*len) on overflow and underflow
//   - Constant time in buffer contents for Equals, IsZero and Compare
//
// Binary arithmetic and ordering require operands of equal length and fail with
// ErrLengthMismatch otherwise. Equals is a predicate and simply reports false.
package biguint
