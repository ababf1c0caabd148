package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/TheusHen/na/na/biguint"
)

const (
	Magic = "NAS1"

	KeySize   = chacha20poly1305.KeySize
	NonceSize = chacha20poly1305.NonceSizeX

	// HeaderSize is the length of the container header.
	HeaderSize = len(Magic) + 2 + NonceSize

	DefaultChunkSize = 64 * 1024
	MaxChunkSize     = 1 << 20

	DefaultBlockSize = 64
	MaxBlockSize     = 1 << 12

	// maxPayload bounds a sealed frame: a full chunk, a full block of
	// padding and the tag. Compression is only kept when it shrinks a chunk.
	maxPayload = MaxChunkSize + MaxBlockSize + chacha20poly1305.Overhead
)

var (
	ErrInvalidKey     = errors.New("stream: key must be 32 bytes")
	ErrInvalidOptions = errors.New("stream: invalid options")
	ErrBadHeader      = errors.New("stream: not a sealed stream")
	ErrAuthFailed     = errors.New("stream: chunk authentication failed")
	ErrCorrupt        = errors.New("stream: corrupt chunk")
	ErrFrameTooLarge  = errors.New("stream: frame too large")
	ErrTruncated      = errors.New("stream: stream truncated before final chunk")
	ErrTrailingData   = errors.New("stream: data after final chunk")
	ErrClosed         = errors.New("stream: writer closed")
)

// Options configure a Writer. The zero value selects the defaults.
type Options struct {
	// ChunkSize is the plaintext size of every chunk but the last.
	ChunkSize int
	// BlockSize is the padding granularity of sealed chunks.
	BlockSize int
	// Compression selects the LZ4 level, or CompressionOff.
	Compression CompressionLevel
	// Logger receives debug events; defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() (Options, error) {
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkSize < 0 || o.ChunkSize > MaxChunkSize {
		return o, fmt.Errorf("%w: chunk size %d", ErrInvalidOptions, o.ChunkSize)
	}
	if o.BlockSize == 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.BlockSize < 0 || o.BlockSize > MaxBlockSize {
		return o, fmt.Errorf("%w: block size %d", ErrInvalidOptions, o.BlockSize)
	}
	if o.Compression < CompressionFast || o.Compression > CompressionOff {
		return o, fmt.Errorf("%w: compression level %d", ErrInvalidOptions, o.Compression)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o, nil
}

// header is the container preamble. Its encoding is also the associated data
// prefix of every chunk.
type header struct {
	blockSize int
	base      [NonceSize]byte
}

func (h *header) encode() []byte {
	b := make([]byte, HeaderSize)
	copy(b, Magic)
	binary.BigEndian.PutUint16(b[len(Magic):], uint16(h.blockSize))
	copy(b[len(Magic)+2:], h.base[:])
	return b
}

func readHeader(r io.Reader) (header, []byte, error) {
	b := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return header{}, nil, ErrBadHeader
		}
		return header{}, nil, err
	}
	if string(b[:len(Magic)]) != Magic {
		return header{}, nil, ErrBadHeader
	}
	h := header{blockSize: int(binary.BigEndian.Uint16(b[len(Magic):]))}
	if h.blockSize == 0 || h.blockSize > MaxBlockSize {
		return header{}, nil, ErrBadHeader
	}
	copy(h.base[:], b[len(Magic)+2:])
	return h, b, nil
}

// chunkNonce sets dst to base + index.
func chunkNonce(dst, base []byte, index uint64) {
	copy(dst, base)
	biguint.IncrementBy(dst, index)
}

// associatedData sets ad to the header followed by the frame flags.
func associatedData(ad []byte, flags byte) []byte {
	ad[len(ad)-1] = flags
	return ad
}

// Seal is a convenience wrapper sealing plaintext into a complete container.
func Seal(key, plaintext []byte, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, key, opts)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Open is the counterpart of Seal.
func Open(key, sealed []byte, logger *slog.Logger) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(sealed), key, logger)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
