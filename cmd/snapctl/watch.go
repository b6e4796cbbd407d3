package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soundgrid/snapctl/pkg/client"
	"github.com/soundgrid/snapctl/pkg/protocol"
)

func watchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow server-side changes live",
		Long: `Connect, request a full status, and print every notification
the server sends until interrupted. The connection survives server
restarts.

Examples:
  snapctl watch
  snapctl watch --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw messages as JSON")

	return cmd
}

func runWatch(asJSON bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var c *client.Client
	c, err = connect(ctx, cfg, logger, client.WithOnConnect(func() {
		// Resynchronize after every (re)connect. The first callback fires
		// before Open returns, when c is still nil; the initial sync below
		// covers that one.
		if c != nil {
			go c.ServerStatus(context.Background())
		}
	}))
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.ServerStatus(ctx); err != nil {
		return err
	}

	for {
		batch, err := c.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, r := range batch {
			if err := printEvent(r, asJSON, logger); err != nil {
				return err
			}
		}
	}
}

func printEvent(r client.Received, asJSON bool, logger *slog.Logger) error {
	if r.Err != nil {
		logger.Warn("receive", "err", r.Err)
		return nil
	}
	msg := r.Message
	switch {
	case msg.Notification != nil:
		if asJSON {
			return printJSON(msg.Notification)
		}
		_, err := fmt.Printf("%-28s %s\n", msg.Notification.NotificationMethod(), describeNotification(msg.Notification))
		return err
	case msg.Result != nil:
		if asJSON {
			return printJSON(msg.Result)
		}
		_, err := fmt.Printf("%-28s result\n", msg.Result.ResultMethod())
		return err
	}
	return nil
}

func describeNotification(n protocol.Notification) string {
	switch n := n.(type) {
	case protocol.ClientConnected:
		return fmt.Sprintf("client=%s", n.ID)
	case protocol.ClientDisconnected:
		return fmt.Sprintf("client=%s", n.ID)
	case protocol.ClientVolumeChanged:
		return fmt.Sprintf("client=%s volume=%d%% muted=%v", n.ID, n.Volume.Percent, n.Volume.Muted)
	case protocol.ClientLatencyChanged:
		return fmt.Sprintf("client=%s latency=%dms", n.ID, n.Latency)
	case protocol.ClientNameChanged:
		return fmt.Sprintf("client=%s name=%q", n.ID, n.Name)
	case protocol.GroupMuteChanged:
		return fmt.Sprintf("group=%s muted=%v", n.ID, n.Mute)
	case protocol.GroupStreamChanged:
		return fmt.Sprintf("group=%s stream=%s", n.ID, n.StreamID)
	case protocol.GroupNameChanged:
		return fmt.Sprintf("group=%s name=%q", n.ID, n.Name)
	case protocol.ServerUpdated:
		return fmt.Sprintf("groups=%d streams=%d", len(n.Server.Groups), len(n.Server.Streams))
	case protocol.StreamUpdated:
		return fmt.Sprintf("stream=%s status=%s", n.ID, n.Stream.Status)
	case protocol.StreamPropertiesChanged:
		return fmt.Sprintf("stream=%s", n.ID)
	}
	return ""
}
