package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundgrid/snapctl/pkg/protocol"
)

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Inspect and change client groups",
	}
	cmd.AddCommand(
		groupStatusCmd(),
		groupMuteCmd(),
		groupStreamCmd(),
		groupClientsCmd(),
		groupRenameCmd(),
	)
	return cmd
}

func groupStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <group-id>",
		Short: "Show one group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := request(protocol.GroupGetStatus{ID: args[0]})
			if err != nil {
				return err
			}
			status, ok := res.(protocol.GroupStatus)
			if !ok {
				return fmt.Errorf("unexpected result type %T", res)
			}
			return printJSON(status.Group)
		},
	}
}

func groupMuteCmd() *cobra.Command {
	var unmute bool

	cmd := &cobra.Command{
		Use:   "mute <group-id>",
		Short: "Mute or unmute a whole group",
		Long: `Mute a group, silencing every client in it.

Examples:
  snapctl group mute 4dcc4e3b-c699-a04b-7f0c-8260d23c43e1
  snapctl group mute 4dcc4e3b-c699-a04b-7f0c-8260d23c43e1 --off`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mute := !unmute
			if _, err := request(protocol.GroupSetMute{ID: args[0], Mute: mute}); err != nil {
				return err
			}
			fmt.Printf("muted=%v\n", mute)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unmute, "off", false, "Unmute instead")

	return cmd
}

func groupStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stream <group-id> <stream-id>",
		Short: "Bind a group to a different stream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := request(protocol.GroupSetStream{ID: args[0], StreamID: args[1]})
			if err != nil {
				return err
			}
			set, ok := res.(protocol.GroupStreamSet)
			if !ok {
				return fmt.Errorf("unexpected result type %T", res)
			}
			fmt.Printf("stream=%s\n", set.StreamID)
			return nil
		},
	}
}

func groupClientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients <group-id> <client-id>...",
		Short: "Replace a group's membership",
		Long: `Replace the set of clients in a group. Clients are moved from
their previous groups; the server may dissolve groups left empty.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := request(protocol.GroupSetClients{ID: args[0], Clients: args[1:]})
			if err != nil {
				return err
			}
			set, ok := res.(protocol.GroupClientsSet)
			if !ok {
				return fmt.Errorf("unexpected result type %T", res)
			}
			printServer(set.Server)
			return nil
		},
	}
}

func groupRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <group-id> <name>",
		Short: "Set a group's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := request(protocol.GroupSetName{ID: args[0], Name: args[1]}); err != nil {
				return err
			}
			fmt.Printf("renamed to %q\n", args[1])
			return nil
		},
	}
}
