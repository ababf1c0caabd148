package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheusHen/na/na/stream/erasure"
)

type shardFlags struct {
	data, parity int
	in, out      string
}

func (f *shardFlags) bind(cmd *cobra.Command, inUsage, outUsage string) {
	flags := cmd.Flags()
	flags.IntVar(&f.data, "data", 0, "number of data shards (default from the config)")
	flags.IntVar(&f.parity, "parity", 0, "number of parity shards (default from the config)")
	flags.StringVarP(&f.in, "input", "i", "", inUsage)
	flags.StringVarP(&f.out, "output", "o", "", outUsage)
}

func (f *shardFlags) codec(cmd *cobra.Command) (*erasure.Codec, error) {
	if cmd.Flags().Changed("data") {
		cfg.Erasure.DataShards = f.data
	}
	if cmd.Flags().Changed("parity") {
		cfg.Erasure.ParityShards = f.parity
	}
	return cfg.Codec()
}

func shardPath(prefix string, i int) string {
	return fmt.Sprintf("%s.%d", prefix, i)
}

func manifestPath(prefix string) string {
	return prefix + ".manifest"
}

func newShardCmd() *cobra.Command {
	var flags shardFlags

	cmd := &cobra.Command{
		Use:   "shard",
		Short: "Split a blob into Reed-Solomon shards",
		Long:  "Writes shards to <output>.0 ... <output>.N-1. Any --parity of them may be lost.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.out == "" {
				return errors.New("an output prefix is required")
			}
			codec, err := flags.codec(cmd)
			if err != nil {
				return err
			}

			in, err := openInput(cmd, flags.in)
			if err != nil {
				return err
			}
			blob, err := io.ReadAll(in)
			in.Close()
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			shards, err := codec.Protect(blob)
			if err != nil {
				return err
			}
			for i, sh := range shards {
				if err := os.WriteFile(shardPath(flags.out, i), sh, 0o644); err != nil {
					return err
				}
			}

			m, err := codec.Manifest(shards)
			if err != nil {
				return err
			}
			mf, err := os.OpenFile(manifestPath(flags.out), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			if err := m.Dump(mf); err != nil {
				mf.Close()
				return err
			}
			if err := mf.Close(); err != nil {
				return err
			}

			logger.Debug("Wrote shards",
				slog.Int("count", len(shards)),
				slog.Int("size", codec.ShardSize(len(blob))))
			return nil
		},
	}

	flags.bind(cmd, "blob to shard (default stdin)", "shard file prefix")
	return cmd
}

func newRecoverCmd() *cobra.Command {
	var flags shardFlags

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Rebuild a blob from its surviving shards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.in == "" {
				return errors.New("an input prefix is required")
			}
			m, err := loadManifest(flags.in)
			if err != nil {
				return err
			}
			if m != nil && !cmd.Flags().Changed("data") && !cmd.Flags().Changed("parity") {
				cfg.Erasure.DataShards = m.DataShards
				cfg.Erasure.ParityShards = m.ParityShards
			}
			codec, err := flags.codec(cmd)
			if err != nil {
				return err
			}

			shards := make(erasure.Shards, codec.TotalShards())
			for i := range shards {
				sh, err := os.ReadFile(shardPath(flags.in, i))
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if err != nil {
					return err
				}
				shards[i] = sh
			}
			if m != nil {
				dropped, err := m.Check(shards)
				if err != nil {
					return err
				}
				if len(dropped) > 0 {
					logger.Warn("Shards corrupt", slog.Any("indices", dropped))
				}
			} else {
				logger.Warn("No manifest, corrupt shards go undetected")
			}
			if missing := shards.Missing(); len(missing) > 0 {
				logger.Warn("Shards missing", slog.Any("indices", missing))
			}

			blob, err := codec.Recover(shards)
			if err != nil {
				return err
			}

			out, err := openOutput(cmd, flags.out, 0o644)
			if err != nil {
				return err
			}
			_, err = out.Write(blob)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}

	flags.bind(cmd, "shard file prefix", "output file (default stdout)")
	return cmd
}

// loadManifest reads the manifest next to the shards, if there is one.
func loadManifest(prefix string) (*erasure.Manifest, error) {
	fh, err := os.Open(manifestPath(prefix))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var m erasure.Manifest
	if err := m.Load(fh); err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return &m, nil
}
