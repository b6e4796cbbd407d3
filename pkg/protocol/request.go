package protocol

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Version is the JSON-RPC protocol version used on the wire.
const Version = "2.0"

// Method is the wire name of a request or notification.
type Method string

// Request methods.
const (
	MethodClientGetStatus  Method = "Client.GetStatus"
	MethodClientSetVolume  Method = "Client.SetVolume"
	MethodClientSetLatency Method = "Client.SetLatency"
	MethodClientSetName    Method = "Client.SetName"

	MethodGroupGetStatus  Method = "Group.GetStatus"
	MethodGroupSetMute    Method = "Group.SetMute"
	MethodGroupSetStream  Method = "Group.SetStream"
	MethodGroupSetClients Method = "Group.SetClients"
	MethodGroupSetName    Method = "Group.SetName"

	MethodServerGetRPCVersion Method = "Server.GetRPCVersion"
	MethodServerGetStatus     Method = "Server.GetStatus"
	MethodServerDeleteClient  Method = "Server.DeleteClient"

	MethodStreamAddStream    Method = "Stream.AddStream"
	MethodStreamRemoveStream Method = "Stream.RemoveStream"
	MethodStreamControl      Method = "Stream.Control"
	MethodStreamSetProperty  Method = "Stream.SetProperty"
)

// Command is an outbound request. The set of commands is closed: each variant
// knows its wire method, its params payload, and the context a decoder needs
// to interpret the eventual result.
type Command interface {
	Method() Method

	// params returns the wire params and whether the method carries any.
	params() (any, bool)

	// pending returns the expectation recorded for the reply.
	pending() PendingContext
}

type requestEnvelope struct {
	ID      uuid.UUID `json:"id"`
	JSONRPC string    `json:"jsonrpc"`
	Method  Method    `json:"method"`
	Params  any       `json:"params,omitempty"`
}

// EncodeCommand serializes cmd into a complete wire frame, newline included.
// It allocates a fresh correlation id, records the result expectation in
// pending, and returns the id so callers can correlate the eventual reply.
// Nothing is recorded when serialization fails.
func EncodeCommand(cmd Command, pending *Pending) ([]byte, uuid.UUID, error) {
	id := uuid.New()
	env := requestEnvelope{ID: id, JSONRPC: Version, Method: cmd.Method()}
	if p, ok := cmd.params(); ok {
		env.Params = p
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, uuid.Nil, err
	}
	pending.Record(id, cmd.pending())
	return append(data, '\n'), id, nil
}

// ClientGetStatus requests the full status of one client.
type ClientGetStatus struct {
	ID string `json:"id"`
}

func (ClientGetStatus) Method() Method { return MethodClientGetStatus }
func (c ClientGetStatus) params() (any, bool) { return c, true }
func (c ClientGetStatus) pending() PendingContext { return PendingContext{Method: MethodClientGetStatus} }

// ClientSetVolume sets a client's volume and mute state.
type ClientSetVolume struct {
	ID     string `json:"id"`
	Volume Volume `json:"volume"`
}

func (ClientSetVolume) Method() Method { return MethodClientSetVolume }
func (c ClientSetVolume) params() (any, bool) { return c, true }
func (c ClientSetVolume) pending() PendingContext {
	return PendingContext{Method: MethodClientSetVolume, TargetID: c.ID}
}

// ClientSetLatency sets a client's playback latency in milliseconds.
type ClientSetLatency struct {
	ID      string `json:"id"`
	Latency int    `json:"latency"`
}

func (ClientSetLatency) Method() Method { return MethodClientSetLatency }
func (c ClientSetLatency) params() (any, bool) { return c, true }
func (c ClientSetLatency) pending() PendingContext {
	return PendingContext{Method: MethodClientSetLatency, TargetID: c.ID}
}

// ClientSetName sets a client's display name.
type ClientSetName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (ClientSetName) Method() Method { return MethodClientSetName }
func (c ClientSetName) params() (any, bool) { return c, true }
func (c ClientSetName) pending() PendingContext {
	return PendingContext{Method: MethodClientSetName, TargetID: c.ID}
}

// GroupGetStatus requests the full status of one group.
type GroupGetStatus struct {
	ID string `json:"id"`
}

func (GroupGetStatus) Method() Method { return MethodGroupGetStatus }
func (g GroupGetStatus) params() (any, bool) { return g, true }
func (g GroupGetStatus) pending() PendingContext { return PendingContext{Method: MethodGroupGetStatus} }

// GroupSetMute mutes or unmutes a whole group.
type GroupSetMute struct {
	ID   string `json:"id"`
	Mute bool   `json:"mute"`
}

func (GroupSetMute) Method() Method { return MethodGroupSetMute }
func (g GroupSetMute) params() (any, bool) { return g, true }
func (g GroupSetMute) pending() PendingContext {
	return PendingContext{Method: MethodGroupSetMute, TargetID: g.ID}
}

// GroupSetStream binds a group to a different stream.
type GroupSetStream struct {
	ID       string `json:"id"`
	StreamID string `json:"stream_id"`
}

func (GroupSetStream) Method() Method { return MethodGroupSetStream }
func (g GroupSetStream) params() (any, bool) { return g, true }
func (g GroupSetStream) pending() PendingContext {
	return PendingContext{Method: MethodGroupSetStream, TargetID: g.ID}
}

// GroupSetClients replaces a group's membership with the given client ids.
// The server answers with a full server snapshot.
type GroupSetClients struct {
	ID      string   `json:"id"`
	Clients []string `json:"clients"`
}

func (GroupSetClients) Method() Method { return MethodGroupSetClients }
func (g GroupSetClients) params() (any, bool) { return g, true }
func (g GroupSetClients) pending() PendingContext {
	return PendingContext{Method: MethodGroupSetClients}
}

// GroupSetName sets a group's display name.
type GroupSetName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (GroupSetName) Method() Method { return MethodGroupSetName }
func (g GroupSetName) params() (any, bool) { return g, true }
func (g GroupSetName) pending() PendingContext {
	return PendingContext{Method: MethodGroupSetName, TargetID: g.ID}
}

// ServerGetRPCVersion requests the server's control protocol version.
type ServerGetRPCVersion struct{}

func (ServerGetRPCVersion) Method() Method { return MethodServerGetRPCVersion }
func (ServerGetRPCVersion) params() (any, bool) { return nil, false }
func (ServerGetRPCVersion) pending() PendingContext {
	return PendingContext{Method: MethodServerGetRPCVersion}
}

// ServerGetStatus requests a full server snapshot. This is the full-resync
// primitive: its result reconciles the entire state cache.
type ServerGetStatus struct{}

func (ServerGetStatus) Method() Method { return MethodServerGetStatus }
func (ServerGetStatus) params() (any, bool) { return nil, false }
func (ServerGetStatus) pending() PendingContext { return PendingContext{Method: MethodServerGetStatus} }

// ServerDeleteClient removes a client from the server's configuration.
type ServerDeleteClient struct {
	ID string `json:"id"`
}

func (ServerDeleteClient) Method() Method { return MethodServerDeleteClient }
func (s ServerDeleteClient) params() (any, bool) { return s, true }
func (s ServerDeleteClient) pending() PendingContext {
	return PendingContext{Method: MethodServerDeleteClient}
}

// StreamAddStream registers a new stream from a source URI.
type StreamAddStream struct {
	StreamURI string `json:"streamUri"`
}

func (StreamAddStream) Method() Method { return MethodStreamAddStream }
func (s StreamAddStream) params() (any, bool) { return s, true }
func (s StreamAddStream) pending() PendingContext {
	return PendingContext{Method: MethodStreamAddStream}
}

// StreamRemoveStream removes a stream.
type StreamRemoveStream struct {
	ID string `json:"id"`
}

func (StreamRemoveStream) Method() Method { return MethodStreamRemoveStream }
func (s StreamRemoveStream) params() (any, bool) { return s, true }
func (s StreamRemoveStream) pending() PendingContext {
	return PendingContext{Method: MethodStreamRemoveStream}
}

// StreamControl sends a playback command to a stream's source.
type StreamControl struct {
	ID string `json:"id"`
	ControlCommand
}

func (StreamControl) Method() Method { return MethodStreamControl }
func (s StreamControl) params() (any, bool) { return s, true }
func (s StreamControl) pending() PendingContext {
	return PendingContext{Method: MethodStreamControl}
}

// ControlCommand is the command part of Stream.Control params.
type ControlCommand struct {
	Command string       `json:"command"`
	Params  *ControlArgs `json:"params,omitempty"`
}

// ControlArgs carries the arguments of seek and setPosition commands.
type ControlArgs struct {
	Offset   *float64 `json:"offset,omitempty"`
	Position *float64 `json:"position,omitempty"`
}

// Playback control command constructors.
func ControlPlay() ControlCommand { return ControlCommand{Command: "play"} }
func ControlPause() ControlCommand { return ControlCommand{Command: "pause"} }
func ControlPlayPause() ControlCommand { return ControlCommand{Command: "playPause"} }
func ControlStop() ControlCommand { return ControlCommand{Command: "stop"} }
func ControlNext() ControlCommand { return ControlCommand{Command: "next"} }
func ControlPrevious() ControlCommand { return ControlCommand{Command: "previous"} }

// ControlSeek seeks by offset seconds relative to the current position.
func ControlSeek(offset float64) ControlCommand {
	return ControlCommand{Command: "seek", Params: &ControlArgs{Offset: &offset}}
}

// ControlSetPosition seeks to an absolute position in seconds.
func ControlSetPosition(position float64) ControlCommand {
	return ControlCommand{Command: "setPosition", Params: &ControlArgs{Position: &position}}
}

// StreamSetProperty sets one playback property on a stream's source.
type StreamSetProperty struct {
	ID string `json:"id"`
	StreamProperty
}

func (StreamSetProperty) Method() Method { return MethodStreamSetProperty }
func (s StreamSetProperty) params() (any, bool) { return s, true }
func (s StreamSetProperty) pending() PendingContext {
	return PendingContext{Method: MethodStreamSetProperty}
}

// StreamProperty is the property/value pair of Stream.SetProperty params.
type StreamProperty struct {
	Property string `json:"property"`
	Value    any    `json:"value"`
}

// Stream property constructors.
func PropertyLoopStatus(v LoopStatus) StreamProperty {
	return StreamProperty{Property: "loopStatus", Value: v}
}
func PropertyShuffle(v bool) StreamProperty { return StreamProperty{Property: "shuffle", Value: v} }
func PropertyVolume(v int) StreamProperty { return StreamProperty{Property: "volume", Value: v} }
func PropertyMute(v bool) StreamProperty { return StreamProperty{Property: "mute", Value: v} }
func PropertyRate(v float64) StreamProperty { return StreamProperty{Property: "rate", Value: v} }
