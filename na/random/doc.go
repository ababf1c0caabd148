// Package random provides the secure random source for na.
//
// Output comes from a ChaCha20-based generator:
//   - Keyed from crypto/rand, or from a 32-byte seed for reproducible output
//   - The key is replaced after every read so earlier output cannot be recovered
//   - The per-read nonce is a little-endian counter advanced with biguint
//
// A process-wide default generator backs Fill, Uint32 and Uniform; SetDefault
// swaps in a deterministic one for reproduction.
package random
