package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheusHen/na/na"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// openInput opens path for reading; "" and "-" select stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return fh, nil
}

// openOutput creates path for writing; "" and "-" select stdout.
func openOutput(cmd *cobra.Command, path string, perm os.FileMode) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return nil, fmt.Errorf("failed to open output: %w", err)
	}
	return fh, nil
}

// loadKey reads a hex key from the given file, falling back to the key file
// named in the configuration.
func loadKey(path string) ([]byte, error) {
	if path == "" {
		path = cfg.KeyFile
	}
	if path == "" {
		return nil, fmt.Errorf("a key file is required (--key-file or key_file in the config)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	defer na.Wipe(raw)

	key, err := na.ParseKey(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	return key, nil
}
