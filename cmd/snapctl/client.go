package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/soundgrid/snapctl/pkg/protocol"
)

func clientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Inspect and change playback clients",
	}
	cmd.AddCommand(
		clientStatusCmd(),
		clientVolumeCmd(),
		clientLatencyCmd(),
		clientRenameCmd(),
		clientDeleteCmd(),
	)
	return cmd
}

func clientStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <client-id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := request(protocol.ClientGetStatus{ID: args[0]})
			if err != nil {
				return err
			}
			status, ok := res.(protocol.ClientStatus)
			if !ok {
				return fmt.Errorf("unexpected result type %T", res)
			}
			return printJSON(status.Client)
		},
	}
}

func clientVolumeCmd() *cobra.Command {
	var mute, unmute bool

	cmd := &cobra.Command{
		Use:   "volume <client-id> [percent]",
		Short: "Set a client's volume or mute state",
		Long: `Set a client's volume percentage and mute state.

Examples:
  snapctl client volume 00:21:6a:7d:74:fc 75
  snapctl client volume 00:21:6a:7d:74:fc --mute
  snapctl client volume 00:21:6a:7d:74:fc 30 --unmute`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mute && unmute {
				return fmt.Errorf("--mute and --unmute are mutually exclusive")
			}

			res, err := request(protocol.ClientGetStatus{ID: args[0]})
			if err != nil {
				return err
			}
			status, ok := res.(protocol.ClientStatus)
			if !ok {
				return fmt.Errorf("unexpected result type %T", res)
			}
			volume := status.Client.Config.Volume

			if len(args) == 2 {
				percent, err := strconv.Atoi(args[1])
				if err != nil || percent < 0 || percent > 100 {
					return fmt.Errorf("percent must be an integer between 0 and 100")
				}
				volume.Percent = percent
			}
			if mute {
				volume.Muted = true
			}
			if unmute {
				volume.Muted = false
			}

			if _, err := request(protocol.ClientSetVolume{ID: args[0], Volume: volume}); err != nil {
				return err
			}
			fmt.Printf("volume %d%% muted=%v\n", volume.Percent, volume.Muted)
			return nil
		},
	}

	cmd.Flags().BoolVar(&mute, "mute", false, "Mute the client")
	cmd.Flags().BoolVar(&unmute, "unmute", false, "Unmute the client")

	return cmd
}

func clientLatencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latency <client-id> <milliseconds>",
		Short: "Set a client's playback latency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			latency, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("latency must be an integer: %w", err)
			}
			if _, err := request(protocol.ClientSetLatency{ID: args[0], Latency: latency}); err != nil {
				return err
			}
			fmt.Printf("latency %dms\n", latency)
			return nil
		},
	}
}

func clientRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <client-id> <name>",
		Short: "Set a client's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := request(protocol.ClientSetName{ID: args[0], Name: args[1]}); err != nil {
				return err
			}
			fmt.Printf("renamed to %q\n", args[1])
			return nil
		},
	}
}

func clientDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Remove a client from the server configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := request(protocol.ServerDeleteClient{ID: args[0]}); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
}
