package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheusHen/na/na/biguint"
	"github.com/TheusHen/na/na/hexenc"
)

// counterIgnore lists separators accepted between byte pairs of a counter.
const counterIgnore = ": "

func newIncrCmd() *cobra.Command {
	var by uint64

	cmd := &cobra.Command{
		Use:   "incr <hex>",
		Short: "Increment a little-endian counter",
		Long:  "Adds --by to the little-endian counter given in hex. The counter keeps its width and wraps silently.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := hexenc.DecodeString(args[0], counterIgnore)
			if err != nil {
				return err
			}
			biguint.IncrementBy(n, by)
			logger.Debug("Incremented counter", "width", len(n), "by", by)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hexenc.Encode(n))
			return err
		},
	}

	cmd.Flags().Uint64Var(&by, "by", 1, "amount to add")
	return cmd
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <hex> <hex>",
		Short: "Compare two little-endian counters of equal width",
		Long:  "Prints -1, 0 or 1.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := hexenc.DecodeString(args[0], counterIgnore)
			if err != nil {
				return err
			}
			b, err := hexenc.DecodeString(args[1], counterIgnore)
			if err != nil {
				return err
			}
			c, err := biguint.Compare(a, b)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), c)
			return err
		},
	}
}
