package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"signalscope/internal/client"
	"signalscope/internal/protocol"
	"signalscope/pkg/types"
)

func newWatchCmd(g *globals) *cobra.Command {
	var (
		url  string
		raw  bool
		wait time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail live events from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			c := client.New(url, client.WithLogger(g.log))
			if wait > 0 {
				wctx, cancel := context.WithTimeout(ctx, wait)
				err := c.WaitHealthy(wctx, 0)
				cancel()
				if err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			return c.Tail(ctx, func(m client.Message) error {
				if raw {
					_, err := fmt.Fprintln(out, string(m.Raw))
					return err
				}
				return printMessage(out, m)
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:9090", "Server base URL")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print envelopes as raw JSON lines")
	cmd.Flags().DurationVar(&wait, "wait", 0, "Wait up to this long for the server to become healthy")
	return cmd
}

// printMessage renders one envelope as a single human-readable line.
func printMessage(w io.Writer, m client.Message) error {
	switch m.Type {
	case protocol.TypeInfo:
		var info types.InfoMessage
		if err := m.Decode(&info); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "connected protocol=%s session=%s transports=%v\n", info.Protocol, info.Session, info.Transports)
		return err
	case protocol.TypeEvent:
		var em types.EventMessage
		if err := m.Decode(&em); err != nil {
			return err
		}
		ts, _ := em.Event["timestamp"].(float64)
		v, _ := json.Marshal(em.Event["value"])
		_, err := fmt.Fprintf(w, "%s %-20s %s %s\n",
			time.UnixMilli(int64(ts)).Format("15:04:05.000"), em.Event["kind"], em.Event["id"], v)
		return err
	case protocol.TypeHeartbeat:
		var hb types.HeartbeatMessage
		if err := m.Decode(&hb); err != nil {
			return err
		}
		if hb.Dropped > 0 {
			_, err := fmt.Fprintf(w, "heartbeat: %d events dropped so far\n", hb.Dropped)
			return err
		}
	}
	return nil
}
