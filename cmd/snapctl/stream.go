package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/soundgrid/snapctl/pkg/protocol"
)

func streamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Manage streams and their playback",
	}
	cmd.AddCommand(
		streamAddCmd(),
		streamRemoveCmd(),
		streamControlCmd(),
		streamPropertyCmd(),
	)
	return cmd
}

func streamAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <uri>",
		Short: "Register a new stream from a source URI",
		Long: `Register a new stream. The URI uses the snapserver source
syntax.

Examples:
  snapctl stream add "pipe:///tmp/extra?name=extra"
  snapctl stream add "librespot:///usr/bin/librespot?name=spotify"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := request(protocol.StreamAddStream{StreamURI: args[0]})
			if err != nil {
				return err
			}
			added, ok := res.(protocol.StreamAdded)
			if !ok {
				return fmt.Errorf("unexpected result type %T", res)
			}
			fmt.Printf("added %s\n", added.StreamID)
			return nil
		},
	}
}

func streamRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <stream-id>",
		Short: "Remove a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := request(protocol.StreamRemoveStream{ID: args[0]}); err != nil {
				return err
			}
			fmt.Println("removed")
			return nil
		},
	}
}

func streamControlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "control <stream-id> <command> [arg]",
		Short: "Send a playback command to a stream's source",
		Long: `Send a playback command to the source behind a stream. The
source must support control (see the stream's properties).

Commands: play, pause, playPause, stop, next, previous,
seek <offset-seconds>, setPosition <seconds>.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			control, err := parseControl(args[1], args[2:])
			if err != nil {
				return err
			}
			if _, err := request(protocol.StreamControl{ID: args[0], ControlCommand: control}); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func parseControl(name string, rest []string) (protocol.ControlCommand, error) {
	switch name {
	case "play":
		return protocol.ControlPlay(), nil
	case "pause":
		return protocol.ControlPause(), nil
	case "playPause":
		return protocol.ControlPlayPause(), nil
	case "stop":
		return protocol.ControlStop(), nil
	case "next":
		return protocol.ControlNext(), nil
	case "previous":
		return protocol.ControlPrevious(), nil
	case "seek", "setPosition":
		if len(rest) != 1 {
			return protocol.ControlCommand{}, fmt.Errorf("%s needs a seconds argument", name)
		}
		seconds, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return protocol.ControlCommand{}, fmt.Errorf("bad seconds value %q: %w", rest[0], err)
		}
		if name == "seek" {
			return protocol.ControlSeek(seconds), nil
		}
		return protocol.ControlSetPosition(seconds), nil
	}
	return protocol.ControlCommand{}, fmt.Errorf("unknown control command %q", name)
}

func streamPropertyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "property <stream-id> <property> <value>",
		Short: "Set a playback property on a stream's source",
		Long: `Set one playback property.

Properties: loopStatus (none|track|playlist), shuffle (bool),
volume (0-100), mute (bool), rate (float).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			prop, err := parseProperty(args[1], args[2])
			if err != nil {
				return err
			}
			if _, err := request(protocol.StreamSetProperty{ID: args[0], StreamProperty: prop}); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func parseProperty(name, value string) (protocol.StreamProperty, error) {
	switch name {
	case "loopStatus":
		switch protocol.LoopStatus(value) {
		case protocol.LoopNone, protocol.LoopTrack, protocol.LoopPlaylist:
			return protocol.PropertyLoopStatus(protocol.LoopStatus(value)), nil
		}
		return protocol.StreamProperty{}, fmt.Errorf("loopStatus must be none, track, or playlist")
	case "shuffle", "mute":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return protocol.StreamProperty{}, fmt.Errorf("%s must be a bool: %w", name, err)
		}
		if name == "shuffle" {
			return protocol.PropertyShuffle(b), nil
		}
		return protocol.PropertyMute(b), nil
	case "volume":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > 100 {
			return protocol.StreamProperty{}, fmt.Errorf("volume must be an integer between 0 and 100")
		}
		return protocol.PropertyVolume(v), nil
	case "rate":
		r, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return protocol.StreamProperty{}, fmt.Errorf("rate must be a float: %w", err)
		}
		return protocol.PropertyRate(r), nil
	}
	return protocol.StreamProperty{}, fmt.Errorf("unknown property %q", name)
}
