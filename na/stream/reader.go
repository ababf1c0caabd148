package stream

import (
	"bufio"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/TheusHen/na/na/padding"
)

// Reader opens a container produced by Writer. It returns io.EOF only after
// the final chunk has been authenticated and no data follows it.
type Reader struct {
	r         *bufio.Reader
	aead      cipher.AEAD
	log       *slog.Logger
	blockSize int
	base      [NonceSize]byte
	nonce     [NonceSize]byte
	ad        []byte
	frameBuf  []byte
	plain     []byte
	index     uint64
	done      bool
	err       error
}

// NewReader reads and validates the container header from r.
func NewReader(r io.Reader, key []byte, logger *slog.Logger) (*Reader, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	br := bufio.NewReader(r)
	h, enc, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	return &Reader{
		r:         br,
		aead:      aead,
		log:       logger,
		blockSize: h.blockSize,
		base:      h.base,
		ad:        append(enc, 0),
	}, nil
}

func (sr *Reader) Read(p []byte) (int, error) {
	for len(sr.plain) == 0 {
		if sr.err != nil {
			return 0, sr.err
		}
		if sr.done {
			sr.err = sr.finish()
			return 0, sr.err
		}
		if err := sr.next(); err != nil {
			sr.err = err
			return 0, err
		}
	}
	n := copy(p, sr.plain)
	sr.plain = sr.plain[n:]
	return n, nil
}

func (sr *Reader) next() error {
	f, err := readFrame(sr.r, sr.frameBuf, maxPayload)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	sr.frameBuf = f.payload

	chunkNonce(sr.nonce[:], sr.base[:], sr.index)
	padded, err := sr.aead.Open(f.payload[:0], sr.nonce[:], f.payload, associatedData(sr.ad, f.flags))
	if err != nil {
		return fmt.Errorf("%w: chunk %d", ErrAuthFailed, sr.index)
	}
	data, err := padding.Unpad(padded, sr.blockSize)
	if err != nil {
		return fmt.Errorf("%w: chunk %d: %w", ErrCorrupt, sr.index, err)
	}
	if f.flags&flagCompressed != 0 {
		if data, err = decompressChunk(data, MaxChunkSize); err != nil {
			return fmt.Errorf("%w: chunk %d: %w", ErrCorrupt, sr.index, err)
		}
	}

	sr.log.Debug("chunk opened", "index", sr.index, "plain", len(data))
	sr.plain = data
	sr.index++
	sr.done = f.flags&flagFinal != 0
	return nil
}

// finish checks that nothing follows the final chunk.
func (sr *Reader) finish() error {
	if _, err := sr.r.Peek(1); err == nil {
		return ErrTrailingData
	} else if err != io.EOF {
		return err
	}
	return io.EOF
}
