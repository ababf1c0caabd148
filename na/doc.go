// Package na provides fixed-width nonce arithmetic and the building blocks
// that consume it.
//
// The engine lives in package biguint: in-place little-endian arithmetic on
// caller-owned byte buffers, wrapping modulo 2^(8·len). Around it sit a
// ChaCha20 random source (random), reversible padding (padding), a hex codec
// (hexenc), AEAD nonce management (crypto) and sealed chunked streams
// (stream), with Reed-Solomon sharding for sealed blobs (stream/erasure).
//
// This package holds the key helpers shared by those layers and the CLI.
package na
