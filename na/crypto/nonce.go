package crypto

import (
	"errors"
	"sync"

	"github.com/TheusHen/na/na/biguint"
)

var (
	ErrNonceExhausted = errors.New("crypto: nonce space exhausted, re-key required")
	ErrNonceSize      = errors.New("crypto: invalid nonce size")
	ErrReplay         = errors.New("crypto: nonce not newer than last accepted")
)

// NonceSequence hands out successive values of a little-endian counter.
// Once the counter wraps back to its starting value every nonce has been used
// and Next fails with ErrNonceExhausted.
type NonceSequence struct {
	mu        sync.Mutex
	next      []byte
	start     []byte
	exhausted bool
}

// NewNonceSequence starts a sequence at initial. The slice is copied.
func NewNonceSequence(initial []byte) *NonceSequence {
	return &NonceSequence{
		next:  append([]byte{}, initial...),
		start: append([]byte{}, initial...),
	}
}

// Size returns the nonce length in bytes.
func (s *NonceSequence) Size() int { return len(s.next) }

// Next writes the next nonce into dst, which must be exactly Size bytes.
func (s *NonceSequence) Next(dst []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(dst) != len(s.next) {
		return ErrNonceSize
	}
	if s.exhausted {
		return ErrNonceExhausted
	}
	copy(dst, s.next)
	biguint.Increment(s.next)
	if biguint.Equals(s.next, s.start) {
		s.exhausted = true
	}
	return nil
}

// Used returns the number of nonces handed out, as a little-endian value of
// Size bytes. It reads zero both before the first Next and once exhausted.
func (s *NonceSequence) Used() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := append([]byte{}, s.next...)
	_ = biguint.Subtract(used, s.start)
	return used
}

// Exhausted reports whether the sequence needs re-keying.
func (s *NonceSequence) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}

// ReplayWindow accepts only nonces strictly greater than the last one it
// accepted, so each nonce is honoured at most once on an ordered transport.
type ReplayWindow struct {
	mu   sync.Mutex
	last []byte
	seen bool
}

// NewReplayWindow creates a window for nonces of the given size.
func NewReplayWindow(size int) *ReplayWindow {
	return &ReplayWindow{last: make([]byte, size)}
}

// Check reports whether nonce would be accepted, without recording it.
func (w *ReplayWindow) Check(nonce []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.check(nonce)
}

// Accept records nonce as the newest accepted value.
func (w *ReplayWindow) Accept(nonce []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.check(nonce); err != nil {
		return err
	}
	copy(w.last, nonce)
	w.seen = true
	return nil
}

func (w *ReplayWindow) check(nonce []byte) error {
	c, err := biguint.Compare(nonce, w.last)
	if err != nil {
		return errors.Join(ErrNonceSize, err)
	}
	if w.seen && c <= 0 {
		return ErrReplay
	}
	return nil
}
