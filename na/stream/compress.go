package stream

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var (
	ErrCompressionFailed   = errors.New("stream: compression failed")
	ErrDecompressionFailed = errors.New("stream: decompression failed")
)

// CompressionLevel selects how hard chunks are compressed.
type CompressionLevel int

const (
	CompressionFast CompressionLevel = iota
	CompressionDefault
	CompressionBest
	CompressionOff
)

var lz4Levels = [...]lz4.CompressionLevel{
	CompressionFast:    lz4.Fast,
	CompressionDefault: lz4.Level4,
	CompressionBest:    lz4.Level9,
}

// Chunks are authenticated after compression, so the LZ4 frame checksums are
// left out. A chunk never exceeds MaxChunkSize, which fits one 1 MB block.
var lz4Options = []lz4.Option{
	lz4.ChecksumOption(false),
	lz4.BlockChecksumOption(false),
	lz4.BlockSizeOption(lz4.Block1Mb),
}

var writers = sync.Pool{
	New: func() any { return lz4.NewWriter(nil) },
}

var readers = sync.Pool{
	New: func() any { return lz4.NewReader(nil) },
}

// compressChunk returns data LZ4-compressed if that makes it smaller. The
// second result reports whether compression was kept.
func compressChunk(data []byte, level CompressionLevel) ([]byte, bool, error) {
	if level == CompressionOff || len(data) == 0 {
		return data, false, nil
	}

	w := writers.Get().(*lz4.Writer)
	defer writers.Put(w)

	var buf bytes.Buffer
	buf.Grow(len(data))
	w.Reset(&buf)
	opts := append([]lz4.Option{lz4.CompressionLevelOption(lz4Levels[level])}, lz4Options...)
	if err := w.Apply(opts...); err != nil {
		return nil, false, ErrCompressionFailed
	}
	if _, err := w.Write(data); err != nil {
		return nil, false, ErrCompressionFailed
	}
	if err := w.Close(); err != nil {
		return nil, false, ErrCompressionFailed
	}

	if buf.Len() >= len(data) {
		return data, false, nil
	}
	return buf.Bytes(), true, nil
}

// decompressChunk inflates data, failing if the result exceeds limit bytes.
func decompressChunk(data []byte, limit int) ([]byte, error) {
	r := readers.Get().(*lz4.Reader)
	defer readers.Put(r)
	r.Reset(bytes.NewReader(data))

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, int64(limit)+1))
	if err != nil || n > int64(limit) {
		return nil, ErrDecompressionFailed
	}
	return buf.Bytes(), nil
}
