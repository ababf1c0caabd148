// Package stream seals byte streams into authenticated, chunked containers.
//
// Key features:
//   - XChaCha20-Poly1305 per chunk, nonce = random base + chunk index
//   - LZ4 compression of chunks when it helps (pierrec/lz4)
//   - ISO/IEC 7816-4 padding to a block multiple so chunk sizes leak less
//   - Final-chunk marking, so truncation and trailing garbage are detected
//
// Container layout:
//
//	4 bytes:  magic "NAS1"
//	2 bytes:  padding block size (big endian)
//	24 bytes: base nonce
//	frames:   1 byte flags | 4 bytes length (big endian) | sealed chunk
//
// The header and the frame flags are authenticated as associated data.
package stream
