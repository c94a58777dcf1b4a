package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BinaryVersion is set at build time with -ldflags "-X main.BinaryVersion=<version>".
var BinaryVersion = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the helmfile-deps version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "helmfile-deps %s\n", BinaryVersion)
			return err
		},
	}
}
