package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"signalscope/internal/client"
)

func newSnapshotCmd(g *globals) *cobra.Command {
	var (
		url     string
		timeout time.Duration
		counts  bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current registry snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			c := client.New(url, client.WithLogger(g.log))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if counts {
				m, err := c.Registry(ctx)
				if err != nil {
					return err
				}
				return enc.Encode(m)
			}
			s, err := c.Snapshot(ctx)
			if err != nil {
				return err
			}
			return enc.Encode(s)
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:9090", "Server base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	cmd.Flags().BoolVar(&counts, "counts", false, "Print registry counts and controllers only")
	return cmd
}
