package crypto

import (
	"errors"

	"golang.org/x/crypto/curve25519"

	"github.com/TheusHen/na/na/biguint"
	"github.com/TheusHen/na/na/random"
)

// X25519KeyPair represents an ephemeral ECDH keypair.
type X25519KeyPair struct {
	PublicKey  [32]byte
	PrivateKey [32]byte
}

var (
	ErrInvalidPublicKey = errors.New("crypto: invalid X25519 public key")
)

// GenerateX25519 generates a new ephemeral X25519 keypair from the default
// random source.
func GenerateX25519() (X25519KeyPair, error) {
	var kp X25519KeyPair
	if err := random.Fill(kp.PrivateKey[:]); err != nil {
		return X25519KeyPair{}, err
	}
	// Clamp private key per RFC 7748
	kp.PrivateKey[0] &= 248
	kp.PrivateKey[31] &= 127
	kp.PrivateKey[31] |= 64

	curve25519.ScalarBaseMult(&kp.PublicKey, &kp.PrivateKey)
	return kp, nil
}

// ECDH computes the shared secret using X25519.
// Returns 32 bytes of raw shared secret (should be passed to HKDF).
func ECDH(privateKey, peerPublicKey [32]byte) ([]byte, error) {
	if biguint.IsZero(peerPublicKey[:]) {
		return nil, ErrInvalidPublicKey
	}
	shared, err := curve25519.X25519(privateKey[:], peerPublicKey[:])
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	// Low-order points yield an all-zero secret.
	if biguint.IsZero(shared) {
		return nil, ErrInvalidPublicKey
	}
	return shared, nil
}
