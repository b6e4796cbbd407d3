package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/soundgrid/snapctl/internal/config"
	"github.com/soundgrid/snapctl/pkg/client"
	"github.com/soundgrid/snapctl/pkg/protocol"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagServer  string
	flagTimeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "snapctl",
		Short: "Control a snapserver from the command line",
		Long: `snapctl talks to a snapserver's JSON-RPC control endpoint.

It can inspect and change clients, groups, and streams, follow
server-side changes live, and bridge the control API to HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.ConfigFileName+")")
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Server address (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "Time to wait for a server reply")

	rootCmd.AddCommand(
		statusCmd(),
		clientCmd(),
		groupCmd(),
		streamCmd(),
		watchCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	path, explicit := config.ConfigFileName, false
	if flagConfig != "" {
		path, explicit = flagConfig, true
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return config.Config{}, err
	}
	if flagServer != "" {
		cfg.Server = flagServer
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func connect(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...client.Option) (*client.Client, error) {
	opts := append([]client.Option{
		client.WithLogger(logger),
		client.WithDialTimeout(cfg.DialTimeout.Std()),
		client.WithBackoff(client.BackoffConfig{
			Initial:     cfg.Reconnect.Initial.Std(),
			Max:         cfg.Reconnect.Max.Std(),
			MaxAttempts: cfg.Reconnect.MaxAttempts,
		}),
	}, extra...)
	return client.Open(ctx, cfg.Server, opts...)
}

// request runs the common one-shot shape: connect, send one command, wait
// for its reply, disconnect.
func request(cmd protocol.Command) (protocol.Result, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	c, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	id, err := c.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	msg, err := awaitReply(ctx, c, id)
	if err != nil {
		return nil, err
	}
	return msg.Result, nil
}

// awaitReply reads batches until the reply for id shows up. Frames that fail
// to decode are logged and skipped; unrelated messages are applied to the
// cache as usual and otherwise ignored.
func awaitReply(ctx context.Context, c *client.Client, id uuid.UUID) (*protocol.Message, error) {
	for {
		batch, err := c.Receive(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range batch {
			if r.Message == nil || r.Message.ID != id {
				continue
			}
			if r.Err != nil {
				return nil, r.Err
			}
			return r.Message, nil
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
