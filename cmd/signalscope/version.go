package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"signalscope/internal/protocol"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build and protocol versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "signalscope %s (protocol %s)\n", version, protocol.Version)
			return err
		},
	}
}
