package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/TheusHen/na/na/stream"
	"github.com/TheusHen/na/na/stream/erasure"
)

// File is the on-disk configuration of the na command.
type File struct {
	KeyFile   string `toml:"key_file,omitempty"`
	Verbosity string `toml:"verbosity,omitempty"`

	Stream  StreamSection  `toml:"stream"`
	Erasure ErasureSection `toml:"erasure"`
}

type StreamSection struct {
	ChunkSize   int    `toml:"chunk_size,omitempty"`
	BlockSize   int    `toml:"block_size,omitempty"`
	Compression string `toml:"compression,omitempty"`
}

type ErasureSection struct {
	DataShards   int `toml:"data_shards,omitempty"`
	ParityShards int `toml:"parity_shards,omitempty"`
}

// Default returns the configuration written by "na config init".
func Default() File {
	return File{
		Verbosity: "info",
		Stream: StreamSection{
			ChunkSize:   stream.DefaultChunkSize,
			BlockSize:   stream.DefaultBlockSize,
			Compression: "fast",
		},
		Erasure: ErasureSection{
			DataShards:   10,
			ParityShards: 4,
		},
	}
}

func (f *File) Load(r io.Reader) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(f)
}

func (f *File) Dump(w io.Writer) error {
	enc := toml.NewEncoder(w)
	return enc.Encode(f)
}

func (f *File) LoadFile(fn string) error {
	fh, err := os.Open(fn)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := f.Load(fh); err != nil {
		fh.Close()
		return fmt.Errorf("failed to parse %s: %w", fn, err)
	}

	if err := fh.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}

func (f *File) DumpFile(fn string) error {
	fh, err := os.OpenFile(fn, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := f.Dump(fh); err != nil {
		fh.Close()
		return err
	}

	if err := fh.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}

// StreamOptions converts the stream section. Zero values keep the stream
// package defaults.
func (f *File) StreamOptions(logger *slog.Logger) (stream.Options, error) {
	level, err := ParseCompression(f.Stream.Compression)
	if err != nil {
		return stream.Options{}, err
	}
	return stream.Options{
		ChunkSize:   f.Stream.ChunkSize,
		BlockSize:   f.Stream.BlockSize,
		Compression: level,
		Logger:      logger,
	}, nil
}

// Codec builds the erasure codec described by the erasure section.
func (f *File) Codec() (*erasure.Codec, error) {
	return erasure.NewCodec(f.Erasure.DataShards, f.Erasure.ParityShards)
}

// Level maps the verbosity setting to a log level.
func (f *File) Level() (slog.Level, error) {
	var lvl slog.Level
	if f.Verbosity == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(f.Verbosity)); err != nil {
		return lvl, fmt.Errorf("invalid verbosity %q: %w", f.Verbosity, err)
	}
	return lvl, nil
}

// ParseCompression maps a compression name to its level. The empty string
// selects the fast level.
func ParseCompression(name string) (stream.CompressionLevel, error) {
	switch name {
	case "", "fast":
		return stream.CompressionFast, nil
	case "default":
		return stream.CompressionDefault, nil
	case "best":
		return stream.CompressionBest, nil
	case "off", "none":
		return stream.CompressionOff, nil
	}
	return 0, fmt.Errorf("unknown compression %q", name)
}
