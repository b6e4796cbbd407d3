package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundgrid/snapctl/pkg/protocol"
)

func statusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the full server status",
		Long: `Fetch a full server snapshot and print its groups, clients,
and streams.

Examples:
  snapctl status
  snapctl status --json
  snapctl -s music.local:1705 status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := request(protocol.ServerGetStatus{})
			if err != nil {
				return err
			}
			status, ok := res.(protocol.ServerStatus)
			if !ok {
				return fmt.Errorf("unexpected result type %T", res)
			}
			if asJSON {
				return printJSON(status.Server)
			}
			printServer(status.Server)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw snapshot as JSON")

	return cmd
}

func printServer(server protocol.Server) {
	fmt.Printf("%s %s (control protocol v%d)\n",
		server.Server.Snapserver.Name,
		server.Server.Snapserver.Version,
		server.Server.Snapserver.ControlProtocolVersion,
	)

	for _, g := range server.Groups {
		name := g.Name
		if name == "" {
			name = g.ID
		}
		mute := ""
		if g.Muted {
			mute = " [muted]"
		}
		fmt.Printf("\ngroup %s%s  stream=%s\n", name, mute, g.StreamID)
		for _, c := range g.Clients {
			state := "offline"
			if c.Connected {
				state = "online"
			}
			label := c.Config.Name
			if label == "" {
				label = c.Host.Name
			}
			fmt.Printf("  client %-24s %-8s vol=%3d%%", label, state, c.Config.Volume.Percent)
			if c.Config.Volume.Muted {
				fmt.Print(" [muted]")
			}
			if c.Config.Latency != 0 {
				fmt.Printf(" latency=%dms", c.Config.Latency)
			}
			fmt.Printf("  (%s)\n", c.ID)
		}
	}

	fmt.Println()
	for _, s := range server.Streams {
		fmt.Printf("stream %-16s %-10s %s\n", s.ID, s.Status, s.URI.Raw)
	}
}
