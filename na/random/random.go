package random

import (
	"encoding/binary"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// drgNonce is the fixed nonce of the stateless deterministic stream.
var drgNonce = []byte("LibsodiumDRG")

var (
	defaultMu  sync.RWMutex
	defaultGen *Generator
)

// Default returns the process-wide generator, creating a system-keyed one on
// first use.
func Default() (*Generator, error) {
	defaultMu.RLock()
	g := defaultGen
	defaultMu.RUnlock()
	if g != nil {
		return g, nil
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultGen == nil {
		g, err := New()
		if err != nil {
			return nil, err
		}
		defaultGen = g
	}
	return defaultGen, nil
}

// SetDefault replaces the process-wide generator. Passing nil restores a fresh
// system-keyed generator on next use.
func SetDefault(g *Generator) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultGen = g
}

// Fill fills buf from the default generator.
func Fill(buf []byte) error {
	g, err := Default()
	if err != nil {
		return err
	}
	_, err = io.ReadFull(g, buf)
	return err
}

// Uint32 returns a random 32-bit value.
func Uint32() (uint32, error) {
	var b [4]byte
	if err := Fill(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Uniform returns a uniformly distributed value in [0, upper).
func Uniform(upper uint32) (uint32, error) {
	if upper < 2 {
		return 0, nil
	}
	// Values below floor would make r % upper biased.
	floor := -upper % upper
	for {
		r, err := Uint32()
		if err != nil {
			return 0, err
		}
		if r >= floor {
			return r % upper, nil
		}
	}
}

// FillDeterministic fills buf with bytes determined only by seed. It keeps no
// state: the same seed always yields the same bytes, and a shorter output is a
// prefix of a longer one.
func FillDeterministic(buf, seed []byte) error {
	if len(seed) != SeedSize {
		return ErrInvalidSeed
	}
	c, err := chacha20.NewUnauthenticatedCipher(seed, drgNonce)
	if err != nil {
		return err
	}
	clear(buf)
	c.XORKeyStream(buf, buf)
	return nil
}
