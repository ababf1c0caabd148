package crypto

import (
	"errors"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrChannelNotEstablished = errors.New("crypto: secure channel not established")
)

// SecureChannel provides an encrypted, replay-protected channel over an
// ordered transport. Each direction has its own key and a counter nonce that
// starts at zero; the receiver accepts only strictly increasing nonces.
//
// When Encrypt returns ErrNonceExhausted both peers must call Rekey at the
// same point in the message flow.
type SecureChannel struct {
	mu          sync.Mutex
	established bool
	isInitiator bool
	localEph    X25519KeyPair
	sendKey     []byte
	recvKey     []byte
	send        *AEAD
	recv        *AEAD
	replay      *ReplayWindow
	epoch       uint64
}

// NewSecureChannelInitiator creates a channel as the initiating party.
func NewSecureChannelInitiator() (*SecureChannel, error) {
	return newSecureChannel(true)
}

// NewSecureChannelResponder creates a channel as the responding party.
func NewSecureChannelResponder() (*SecureChannel, error) {
	return newSecureChannel(false)
}

func newSecureChannel(initiator bool) (*SecureChannel, error) {
	eph, err := GenerateX25519()
	if err != nil {
		return nil, err
	}
	return &SecureChannel{
		isInitiator: initiator,
		localEph:    eph,
	}, nil
}

// LocalEphemeralPublic returns the local ephemeral public key (to send to peer).
func (sc *SecureChannel) LocalEphemeralPublic() [32]byte {
	return sc.localEph.PublicKey
}

// Complete completes the key exchange with the peer's ephemeral public key.
func (sc *SecureChannel) Complete(peerEphPub [32]byte) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.established {
		return nil
	}

	shared, err := ECDH(sc.localEph.PrivateKey, peerEphPub)
	if err != nil {
		return err
	}

	initiatorPub, responderPub := sc.localEph.PublicKey, peerEphPub
	if !sc.isInitiator {
		initiatorPub, responderPub = peerEphPub, sc.localEph.PublicKey
	}
	initiatorKey, responderKey, err := DeriveSessionKeys(shared, initiatorPub, responderPub)
	if err != nil {
		return err
	}

	if sc.isInitiator {
		sc.sendKey, sc.recvKey = initiatorKey, responderKey
	} else {
		sc.sendKey, sc.recvKey = responderKey, initiatorKey
	}
	if err := sc.install(); err != nil {
		return err
	}

	clear(sc.localEph.PrivateKey[:])
	sc.established = true
	return nil
}

// install builds both ciphers from the current keys with fresh nonces.
// Lock must be held by the caller.
func (sc *SecureChannel) install() error {
	var err error
	zero := make([]byte, chacha20poly1305.NonceSize)
	if sc.send, err = NewAEADWithNonce(sc.sendKey, zero); err != nil {
		return err
	}
	if sc.recv, err = NewAEADWithNonce(sc.recvKey, zero); err != nil {
		return err
	}
	sc.replay = NewReplayWindow(chacha20poly1305.NonceSize)
	return nil
}

// IsEstablished returns true if the channel is ready for use.
func (sc *SecureChannel) IsEstablished() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.established
}

// Encrypt encrypts a message under the next send nonce.
func (sc *SecureChannel) Encrypt(plaintext, ad []byte) ([]byte, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.established {
		return nil, ErrChannelNotEstablished
	}
	return sc.send.Seal(plaintext, ad)
}

// Decrypt decrypts a message. Messages older than or equal to the last
// accepted one fail with ErrReplay.
func (sc *SecureChannel) Decrypt(ciphertext, ad []byte) ([]byte, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.established {
		return nil, ErrChannelNotEstablished
	}
	if len(ciphertext) < chacha20poly1305.NonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce := ciphertext[:chacha20poly1305.NonceSize]
	if err := sc.replay.Check(nonce); err != nil {
		return nil, err
	}
	pt, err := sc.recv.Open(ciphertext, ad)
	if err != nil {
		return nil, err
	}
	// Only authenticated nonces move the window.
	if err := sc.replay.Accept(nonce); err != nil {
		return nil, err
	}
	return pt, nil
}

// Rekey replaces both traffic keys with their successors and resets nonces.
func (sc *SecureChannel) Rekey() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.established {
		return ErrChannelNotEstablished
	}
	nextSend, err := NextKey(sc.sendKey)
	if err != nil {
		return err
	}
	nextRecv, err := NextKey(sc.recvKey)
	if err != nil {
		return err
	}
	clear(sc.sendKey)
	clear(sc.recvKey)
	sc.sendKey, sc.recvKey = nextSend, nextRecv
	if err := sc.install(); err != nil {
		return err
	}
	sc.epoch++
	return nil
}

// Epoch returns how many times the channel has been re-keyed.
func (sc *SecureChannel) Epoch() uint64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.epoch
}

// Sent returns the number of messages sent in the current epoch, little-endian.
func (sc *SecureChannel) Sent() []byte {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.send == nil {
		return make([]byte, chacha20poly1305.NonceSize)
	}
	return sc.send.Sealed()
}
