package crypto

import (
	"crypto/cipher"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/TheusHen/na/na/random"
)

var (
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
	ErrDecryptionFailed   = errors.New("crypto: decryption failed")
	ErrInvalidKeySize     = errors.New("crypto: invalid key size for ChaCha20-Poly1305")
)

// AEAD wraps ChaCha20-Poly1305 or XChaCha20-Poly1305 with counter nonces.
// The nonce starts at a random value and is incremented as a little-endian
// integer for every sealed message. After 2^(8*NonceSize) messages Seal
// returns ErrNonceExhausted.
type AEAD struct {
	aead   cipher.AEAD
	nonces *NonceSequence
}

// NewAEAD creates a ChaCha20-Poly1305 cipher (12-byte nonce) from a 32-byte key.
func NewAEAD(key []byte) (*AEAD, error) {
	return newAEAD(key, chacha20poly1305.NonceSize, nil)
}

// NewXAEAD creates an XChaCha20-Poly1305 cipher (24-byte nonce) from a 32-byte key.
func NewXAEAD(key []byte) (*AEAD, error) {
	return newAEAD(key, chacha20poly1305.NonceSizeX, nil)
}

// NewAEADWithNonce creates a cipher whose first nonce is initial. The nonce
// length selects the construction: 12 bytes for ChaCha20-Poly1305, 24 for
// XChaCha20-Poly1305.
func NewAEADWithNonce(key, initial []byte) (*AEAD, error) {
	return newAEAD(key, len(initial), initial)
}

func newAEAD(key []byte, nonceSize int, initial []byte) (*AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKeySize
	}
	var (
		aead cipher.AEAD
		err  error
	)
	switch nonceSize {
	case chacha20poly1305.NonceSize:
		aead, err = chacha20poly1305.New(key)
	case chacha20poly1305.NonceSizeX:
		aead, err = chacha20poly1305.NewX(key)
	default:
		return nil, ErrNonceSize
	}
	if err != nil {
		return nil, err
	}
	if initial == nil {
		initial = make([]byte, nonceSize)
		if err := random.Fill(initial); err != nil {
			return nil, err
		}
	}
	return &AEAD{aead: aead, nonces: NewNonceSequence(initial)}, nil
}

// Seal encrypts and authenticates plaintext.
// Returns: nonce || ciphertext || tag (16 bytes)
func (a *AEAD) Seal(plaintext, additionalData []byte) ([]byte, error) {
	ns := a.aead.NonceSize()
	out := make([]byte, ns, ns+len(plaintext)+a.aead.Overhead())
	if err := a.nonces.Next(out); err != nil {
		return nil, err
	}
	return a.aead.Seal(out, out[:ns], plaintext, additionalData), nil
}

// Open decrypts and verifies ciphertext.
// Input format: nonce || ciphertext || tag (16 bytes)
func (a *AEAD) Open(ciphertext, additionalData []byte) ([]byte, error) {
	ns := a.aead.NonceSize()
	if len(ciphertext) < ns+a.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := a.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], additionalData)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// Overhead returns the authentication tag overhead.
func (a *AEAD) Overhead() int { return a.aead.Overhead() }

// NonceSize returns the nonce size.
func (a *AEAD) NonceSize() int { return a.aead.NonceSize() }

// Sealed returns how many messages have been sealed, little-endian.
func (a *AEAD) Sealed() []byte { return a.nonces.Used() }
