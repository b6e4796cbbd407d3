package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/soundgrid/snapctl/pkg/protocol"
)

// Typed wrappers around Send, one per protocol method. Replies arrive
// asynchronously through Receive; the returned id ties them back.

// ClientStatus requests the full status of one client.
func (c *Client) ClientStatus(ctx context.Context, id string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.ClientGetStatus{ID: id})
}

// SetClientVolume sets a client's volume and mute state.
func (c *Client) SetClientVolume(ctx context.Context, id string, volume protocol.Volume) (uuid.UUID, error) {
	return c.Send(ctx, protocol.ClientSetVolume{ID: id, Volume: volume})
}

// SetClientLatency sets a client's playback latency in milliseconds.
func (c *Client) SetClientLatency(ctx context.Context, id string, latency int) (uuid.UUID, error) {
	return c.Send(ctx, protocol.ClientSetLatency{ID: id, Latency: latency})
}

// SetClientName sets a client's display name.
func (c *Client) SetClientName(ctx context.Context, id, name string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.ClientSetName{ID: id, Name: name})
}

// GroupStatus requests the full status of one group.
func (c *Client) GroupStatus(ctx context.Context, id string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.GroupGetStatus{ID: id})
}

// SetGroupMute mutes or unmutes a whole group.
func (c *Client) SetGroupMute(ctx context.Context, id string, mute bool) (uuid.UUID, error) {
	return c.Send(ctx, protocol.GroupSetMute{ID: id, Mute: mute})
}

// SetGroupStream binds a group to a different stream.
func (c *Client) SetGroupStream(ctx context.Context, id, streamID string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.GroupSetStream{ID: id, StreamID: streamID})
}

// SetGroupClients replaces a group's membership.
func (c *Client) SetGroupClients(ctx context.Context, id string, clients []string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.GroupSetClients{ID: id, Clients: clients})
}

// SetGroupName sets a group's display name.
func (c *Client) SetGroupName(ctx context.Context, id, name string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.GroupSetName{ID: id, Name: name})
}

// RPCVersion requests the server's control protocol version.
func (c *Client) RPCVersion(ctx context.Context) (uuid.UUID, error) {
	return c.Send(ctx, protocol.ServerGetRPCVersion{})
}

// ServerStatus requests a full server snapshot, resynchronizing the state
// cache when the result arrives.
func (c *Client) ServerStatus(ctx context.Context) (uuid.UUID, error) {
	return c.Send(ctx, protocol.ServerGetStatus{})
}

// DeleteClient removes a client from the server's configuration.
func (c *Client) DeleteClient(ctx context.Context, id string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.ServerDeleteClient{ID: id})
}

// AddStream registers a new stream from a source URI.
func (c *Client) AddStream(ctx context.Context, streamURI string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.StreamAddStream{StreamURI: streamURI})
}

// RemoveStream removes a stream.
func (c *Client) RemoveStream(ctx context.Context, id string) (uuid.UUID, error) {
	return c.Send(ctx, protocol.StreamRemoveStream{ID: id})
}

// ControlStream sends a playback command to a stream's source.
func (c *Client) ControlStream(ctx context.Context, id string, cmd protocol.ControlCommand) (uuid.UUID, error) {
	return c.Send(ctx, protocol.StreamControl{ID: id, ControlCommand: cmd})
}

// SetStreamProperty sets one playback property on a stream's source.
func (c *Client) SetStreamProperty(ctx context.Context, id string, prop protocol.StreamProperty) (uuid.UUID, error) {
	return c.Send(ctx, protocol.StreamSetProperty{ID: id, StreamProperty: prop})
}
