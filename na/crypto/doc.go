// Package crypto provides the authenticated encryption that drives na's nonce
// counters.
//
// Design goals:
//   - Nonces are little-endian counters advanced through biguint, never reused
//   - A counter that comes back round to its start refuses to seal until re-keyed
//   - AEAD encryption via ChaCha20-Poly1305 (RFC 8439) and XChaCha20-Poly1305
//   - Forward secrecy via ephemeral X25519 key exchange
//   - Key derivation via HKDF-SHA256
//   - Replay rejection by ordered nonce comparison
package crypto
