// Command na works with little-endian nonce counters, keys and sealed streams.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheusHen/na/config"
)

var (
	logger     *slog.Logger
	cfg        config.File
	configFile string
	verbose    bool
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := newRootCmd().Execute(); err != nil {
		logger.Error("Error", slog.Any("error", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "na",
		Short:             "Nonce arithmetic, keys and sealed streams",
		PersistentPreRunE: setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	f := rootCmd.PersistentFlags()
	f.StringVarP(&configFile, "config", "c", "", "configuration file (TOML)")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newKeygenCmd())
	rootCmd.AddCommand(newRandCmd())
	rootCmd.AddCommand(newIncrCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newSealCmd())
	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newShardCmd())
	rootCmd.AddCommand(newRecoverCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// setup loads the configuration file and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	cfg = config.Default()
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.Dump(cmd.OutOrStdout())
		},
	}
}
