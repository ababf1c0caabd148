package random

import (
	"crypto/rand"
	"errors"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"

	"github.com/TheusHen/na/na/biguint"
)

const (
	// SeedSize is the seed length accepted by NewDeterministic and FillDeterministic.
	SeedSize = chacha20.KeySize

	// MaxRead bounds a single Read. Larger requests are served short; Fill loops.
	MaxRead = 1 << 20
)

var (
	ErrInvalidSeed = errors.New("random: seed must be 32 bytes")
	ErrClosed      = errors.New("random: generator closed")
)

// Generator is a ChaCha20 based pseudo-random generator.
//
// Every Read produces output from the current key and nonce, then replaces the
// key with further keystream and advances the nonce. Compromise of the state
// after a Read does not reveal what that Read returned.
//
// The resulting object is safe for concurrent use.
type Generator struct {
	mu            sync.Mutex
	key           [chacha20.KeySize]byte
	nonce         [chacha20.NonceSize]byte // little-endian counter
	deterministic bool
	closed        bool
}

// New returns a generator keyed from the operating system's entropy source.
func New() (*Generator, error) {
	g := &Generator{}
	if _, err := io.ReadFull(rand.Reader, g.key[:]); err != nil {
		return nil, err
	}
	return g, nil
}

// NewDeterministic returns a generator whose whole output sequence is
// determined by seed.
func NewDeterministic(seed []byte) (*Generator, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed
	}
	g := &Generator{deterministic: true}
	copy(g.key[:], seed)
	return g, nil
}

// Deterministic reports whether g was created from a seed.
func (g *Generator) Deterministic() bool {
	return g.deterministic
}

// Read fills p with pseudo-random bytes. At most MaxRead bytes are produced.
func (g *Generator) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return 0, ErrClosed
	}
	if len(p) > MaxRead {
		p = p[:MaxRead]
	}

	c, err := chacha20.NewUnauthenticatedCipher(g.key[:], g.nonce[:])
	if err != nil {
		return 0, err
	}
	clear(p)
	c.XORKeyStream(p, p)

	// The next key continues the same keystream, after the bytes handed out.
	var next [chacha20.KeySize]byte
	c.XORKeyStream(next[:], next[:])
	g.key = next
	clear(next[:])

	biguint.Increment(g.nonce[:])
	return len(p), nil
}

// Stir mixes fresh operating system entropy into the key. It does nothing on a
// deterministic generator.
func (g *Generator) Stir() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}
	if g.deterministic {
		return nil
	}
	var fresh [chacha20.KeySize]byte
	if _, err := io.ReadFull(rand.Reader, fresh[:]); err != nil {
		return err
	}
	for i := range g.key {
		g.key[i] ^= fresh[i]
	}
	clear(fresh[:])
	return nil
}

// Close wipes the generator state. Closing twice returns ErrClosed.
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}
	clear(g.key[:])
	clear(g.nonce[:])
	g.closed = true
	return nil
}
