package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

var (
	lblSessionKeys = []byte("na session keys")
	lblRekey       = []byte("na rekey")
)

// DeriveKey derives a key of the specified length using HKDF-SHA256.
// salt can be nil (uses zero salt), info provides context binding.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveSessionKeys derives one key per direction from the shared secret,
// bound to both ephemeral public keys.
// Returns: (initiatorKey, responderKey, each 32 bytes)
func DeriveSessionKeys(sharedSecret []byte, initiatorPub, responderPub [32]byte) ([]byte, []byte, error) {
	info := make([]byte, 0, len(lblSessionKeys)+64)
	info = append(info, lblSessionKeys...)
	info = append(info, initiatorPub[:]...)
	info = append(info, responderPub[:]...)

	keyMaterial, err := DeriveKey(sharedSecret, nil, info, 64)
	if err != nil {
		return nil, nil, err
	}
	return keyMaterial[:32], keyMaterial[32:64], nil
}

// NextKey derives the successor of a traffic key. Both peers reach the same
// key without exchanging anything, and the old key cannot be recovered from it.
func NextKey(key []byte) ([]byte, error) {
	return DeriveKey(key, nil, lblRekey, len(key))
}
