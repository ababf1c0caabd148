package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheusHen/na/na"
	"github.com/TheusHen/na/na/hexenc"
	"github.com/TheusHen/na/na/random"
)

func newKeygenCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a symmetric key",
		Long:  "Writes a fresh 32-byte key in hex. Keep the key file a secret!",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out != "" {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("key file \"%s\" exists, refusing to overwrite it", out)
				}
			}

			key, err := na.GenerateKey()
			if err != nil {
				return err
			}
			defer na.Wipe(key)

			w, err := openOutput(cmd, out, 0o600)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, na.FormatKey(key)); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}

			if out != "" {
				logger.Info("Generated key", slog.String("file", out))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "where to write the key (default stdout)")
	return cmd
}

func newRandCmd() *cobra.Command {
	var (
		n    int
		seed string
	)

	cmd := &cobra.Command{
		Use:   "rand",
		Short: "Print random bytes in hex",
		Long:  "With --seed the output is derived deterministically from a 32-byte hex seed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < 0 || n > random.MaxRead {
				return fmt.Errorf("byte count must be between 0 and %d", random.MaxRead)
			}
			buf := make([]byte, n)

			if seed != "" {
				s, err := hexenc.DecodeString(seed, ": ")
				if err != nil {
					return err
				}
				if err := random.FillDeterministic(buf, s); err != nil {
					return err
				}
			} else if err := random.Fill(buf); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), hexenc.Encode(buf))
			return err
		},
	}

	f := cmd.Flags()
	f.IntVarP(&n, "bytes", "n", 32, "number of bytes")
	f.StringVar(&seed, "seed", "", "hex seed for deterministic output")
	return cmd
}
