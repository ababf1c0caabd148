package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/TheusHen/na/na"
	"github.com/TheusHen/na/na/stream"
)

type ioFlags struct {
	keyFile, in, out string
}

func (f *ioFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.keyFile, "key-file", "k", "", "hex key file (default key_file from the config)")
	fs.StringVarP(&f.in, "input", "i", "", "input file (default stdin)")
	fs.StringVarP(&f.out, "output", "o", "", "output file (default stdout)")
}

func newSealCmd() *cobra.Command {
	var (
		flags       ioFlags
		chunkSize   int
		blockSize   int
		compression string
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt a stream into a sealed container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			if fs.Changed("chunk-size") {
				cfg.Stream.ChunkSize = chunkSize
			}
			if fs.Changed("block-size") {
				cfg.Stream.BlockSize = blockSize
			}
			if fs.Changed("compression") {
				cfg.Stream.Compression = compression
			}
			opts, err := cfg.StreamOptions(logger)
			if err != nil {
				return err
			}

			key, err := loadKey(flags.keyFile)
			if err != nil {
				return err
			}
			defer na.Wipe(key)

			in, err := openInput(cmd, flags.in)
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := openOutput(cmd, flags.out, 0o644)
			if err != nil {
				return err
			}

			if workers > 1 {
				err := sealParallel(cmd, in, out, key, opts, workers)
				if cerr := out.Close(); err == nil {
					err = cerr
				}
				return err
			}

			w, err := stream.NewWriter(out, key, opts)
			if err != nil {
				out.Close()
				return err
			}
			n, err := io.Copy(w, in)
			if err == nil {
				err = w.Close()
			}
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("failed to seal: %w", err)
			}

			logger.Debug("Sealed stream", slog.Int64("bytes", n), slog.Uint64("chunks", w.Chunks()))
			return nil
		},
	}

	flags.bind(cmd)
	f := cmd.Flags()
	f.IntVar(&chunkSize, "chunk-size", stream.DefaultChunkSize, "plaintext bytes per chunk")
	f.IntVar(&blockSize, "block-size", stream.DefaultBlockSize, "padding block size")
	f.StringVar(&compression, "compression", "fast", "compression: fast, default, best or off")
	f.IntVarP(&workers, "workers", "j", 1, "seal chunks in parallel (reads the whole input into memory)")
	return cmd
}

func sealParallel(cmd *cobra.Command, in io.Reader, out io.Writer, key []byte, opts stream.Options, workers int) error {
	plaintext, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	sealed, err := stream.SealParallel(cmd.Context(), key, plaintext, opts, workers)
	if err != nil {
		return fmt.Errorf("failed to seal: %w", err)
	}
	if _, err := out.Write(sealed); err != nil {
		return err
	}

	logger.Debug("Sealed stream", slog.Int("bytes", len(plaintext)), slog.Int("workers", workers))
	return nil
}

func newOpenCmd() *cobra.Command {
	var flags ioFlags

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt and verify a sealed container",
		Long:  "Output written before an error is detected must be discarded.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(flags.keyFile)
			if err != nil {
				return err
			}
			defer na.Wipe(key)

			in, err := openInput(cmd, flags.in)
			if err != nil {
				return err
			}
			defer in.Close()

			r, err := stream.NewReader(in, key, logger)
			if err != nil {
				return fmt.Errorf("failed to open: %w", err)
			}

			out, err := openOutput(cmd, flags.out, 0o644)
			if err != nil {
				return err
			}
			n, err := io.Copy(out, r)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("failed to open: %w", err)
			}

			logger.Debug("Opened stream", slog.Int64("bytes", n))
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}
