package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow newly indexed comics as they arrive",
		Long: `Connects to the server's WebSocket feed and prints every event.
Reconnects after a second when the connection drops; stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL, err := websocketURL(opts.baseURL, "/ws")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			for {
				if err := watch(ctx, wsURL, cmd.OutOrStdout(), raw); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "disconnected: %v\n", err)
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(1 * time.Second):
				}
			}
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print events exactly as received")
	return cmd
}

func watch(ctx context.Context, wsURL string, out io.Writer, raw bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// unblock ReadMessage on cancel
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := printEvent(out, msg, raw); err != nil {
			return err
		}
	}
}

func printEvent(out io.Writer, msg []byte, raw bool) error {
	if !raw {
		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err == nil {
			b, _ := json.MarshalIndent(obj, "", "  ")
			msg = b
		}
	}
	_, err := fmt.Fprintln(out, string(bytes.TrimRight(msg, "\r\n")))
	return err
}

