package stream

import (
	"crypto/cipher"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/TheusHen/na/na/padding"
	"github.com/TheusHen/na/na/random"
)

// Writer seals everything written to it into a container on the underlying
// writer. Close must be called to emit the final chunk.
type Writer struct {
	w      io.Writer
	aead   cipher.AEAD
	opts   Options
	log    *slog.Logger
	base   [NonceSize]byte
	nonce  [NonceSize]byte
	ad     []byte
	buf    []byte
	sealed []byte
	index  uint64
	err    error
	closed bool
}

// NewWriter writes the container header to w with a fresh random base nonce.
func NewWriter(w io.Writer, key []byte, opts Options) (*Writer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKey
	}

	h := header{blockSize: opts.BlockSize}
	if err := random.Fill(h.base[:]); err != nil {
		return nil, fmt.Errorf("stream: base nonce: %w", err)
	}
	enc := h.encode()
	if _, err := w.Write(enc); err != nil {
		return nil, err
	}

	return &Writer{
		w:    w,
		aead: aead,
		opts: opts,
		log:  opts.Logger,
		base: h.base,
		ad:   append(enc, 0),
		buf:  make([]byte, 0, opts.ChunkSize),
	}, nil
}

// Write buffers p and seals every chunk that is known not to be the last.
func (sw *Writer) Write(p []byte) (int, error) {
	if sw.closed {
		return 0, ErrClosed
	}
	if sw.err != nil {
		return 0, sw.err
	}
	n := 0
	for len(p) > 0 {
		// A full buffer is flushed only once more data arrives, so the
		// final chunk is never empty unless the whole stream is.
		if len(sw.buf) == sw.opts.ChunkSize {
			if err := sw.flush(false); err != nil {
				return n, err
			}
		}
		m := copy(sw.buf[len(sw.buf):sw.opts.ChunkSize], p)
		sw.buf = sw.buf[:len(sw.buf)+m]
		p = p[m:]
		n += m
	}
	return n, nil
}

// Close seals the buffered data as the final chunk. It does not close the
// underlying writer.
func (sw *Writer) Close() error {
	if sw.closed {
		return sw.err
	}
	sw.closed = true
	if sw.err != nil {
		return sw.err
	}
	if err := sw.flush(true); err != nil {
		return err
	}
	sw.log.Debug("stream sealed", "chunks", sw.index)
	return nil
}

// Chunks returns the number of chunks sealed so far.
func (sw *Writer) Chunks() uint64 {
	return sw.index
}

func (sw *Writer) flush(final bool) error {
	chunkNonce(sw.nonce[:], sw.base[:], sw.index)
	f, err := sealChunk(sw.aead, &sw.opts, sw.nonce[:], sw.ad, sw.sealed[:0], sw.buf, final)
	if err != nil {
		sw.err = err
		return err
	}
	sw.sealed = f.payload

	if err := writeFrame(sw.w, f); err != nil {
		sw.err = err
		return err
	}
	sw.log.Debug("chunk sealed",
		"index", sw.index,
		"plain", len(sw.buf),
		"sealed", len(f.payload),
		"compressed", f.flags&flagCompressed != 0,
		"final", final)

	sw.index++
	sw.buf = sw.buf[:0]
	return nil
}

// sealChunk compresses, pads and seals data into dst under nonce. ad holds the
// encoded header and one spare byte for the flags.
func sealChunk(aead cipher.AEAD, opts *Options, nonce, ad, dst, data []byte, final bool) (frame, error) {
	var flags byte
	if final {
		flags |= flagFinal
	}

	data, compressed, err := compressChunk(data, opts.Compression)
	if err != nil {
		return frame{}, err
	}
	if compressed {
		flags |= flagCompressed
	}

	padded, err := padding.Append(dst, data, opts.BlockSize)
	if err != nil {
		return frame{}, err
	}
	sealed := aead.Seal(padded[:0], nonce, padded, associatedData(ad, flags))
	return frame{flags: flags, payload: sealed}, nil
}
