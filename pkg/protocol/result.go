package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnresolvedResult is returned when a result's correlation id is unknown
// and the payload is not self-describing enough to decode without context.
var ErrUnresolvedResult = errors.New("protocol: cannot resolve result shape")

// Result is a typed result payload. The concrete type is determined by the
// request that produced it, recovered through the pending-request registry;
// ResultMethod names that request.
type Result interface {
	ResultMethod() Method
}

// ClientStatus is the result of Client.GetStatus.
type ClientStatus struct {
	Client Client `json:"client"`
}

func (ClientStatus) ResultMethod() Method { return MethodClientGetStatus }

// ClientVolumeSet is the result of Client.SetVolume. The wire payload carries
// only the volume; ClientID is restored from the recorded request context.
type ClientVolumeSet struct {
	ClientID string
	Volume   Volume
}

func (ClientVolumeSet) ResultMethod() Method { return MethodClientSetVolume }

// ClientLatencySet is the result of Client.SetLatency.
type ClientLatencySet struct {
	ClientID string
	Latency  int
}

func (ClientLatencySet) ResultMethod() Method { return MethodClientSetLatency }

// ClientNameSet is the result of Client.SetName.
type ClientNameSet struct {
	ClientID string
	Name     string
}

func (ClientNameSet) ResultMethod() Method { return MethodClientSetName }

// GroupStatus is the result of Group.GetStatus.
type GroupStatus struct {
	Group Group `json:"group"`
}

func (GroupStatus) ResultMethod() Method { return MethodGroupGetStatus }

// GroupMuteSet is the result of Group.SetMute.
type GroupMuteSet struct {
	GroupID string
	Mute    bool
}

func (GroupMuteSet) ResultMethod() Method { return MethodGroupSetMute }

// GroupStreamSet is the result of Group.SetStream.
type GroupStreamSet struct {
	GroupID  string
	StreamID string
}

func (GroupStreamSet) ResultMethod() Method { return MethodGroupSetStream }

// GroupClientsSet is the result of Group.SetClients. Regrouping clients can
// create or dissolve groups, so the server answers with a full snapshot.
type GroupClientsSet struct {
	Server Server `json:"server"`
}

func (GroupClientsSet) ResultMethod() Method { return MethodGroupSetClients }

// GroupNameSet is the result of Group.SetName.
type GroupNameSet struct {
	GroupID string
	Name    string
}

func (GroupNameSet) ResultMethod() Method { return MethodGroupSetName }

// RPCVersion is the result of Server.GetRPCVersion.
type RPCVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (RPCVersion) ResultMethod() Method { return MethodServerGetRPCVersion }

// ServerStatus is the result of Server.GetStatus: a full snapshot.
type ServerStatus struct {
	Server Server `json:"server"`
}

func (ServerStatus) ResultMethod() Method { return MethodServerGetStatus }

// ClientDeleted is the result of Server.DeleteClient: a full snapshot.
type ClientDeleted struct {
	Server Server `json:"server"`
}

func (ClientDeleted) ResultMethod() Method { return MethodServerDeleteClient }

// StreamAdded is the result of Stream.AddStream. Only the id is returned;
// the stream's detail arrives later via Stream.OnUpdate or a full sync.
type StreamAdded struct {
	StreamID string `json:"id"`
}

func (StreamAdded) ResultMethod() Method { return MethodStreamAddStream }

// StreamRemoved is the result of Stream.RemoveStream.
type StreamRemoved struct {
	StreamID string `json:"id"`
}

func (StreamRemoved) ResultMethod() Method { return MethodStreamRemoveStream }

// StreamControlAck is the result of Stream.Control, a bare "ok" string.
type StreamControlAck struct {
	Response string
}

func (StreamControlAck) ResultMethod() Method { return MethodStreamControl }

// StreamPropertySet is the result of Stream.SetProperty, a bare "ok" string.
type StreamPropertySet struct {
	Response string
}

func (StreamPropertySet) ResultMethod() Method { return MethodStreamSetProperty }

// decodeResult decodes raw into the shape the recorded context dictates.
func decodeResult(ctx PendingContext, raw json.RawMessage) (Result, error) {
	switch ctx.Method {
	case MethodClientGetStatus:
		return resultPayload[ClientStatus](ctx.Method, raw)
	case MethodClientSetVolume:
		var body struct {
			Volume Volume `json:"volume"`
		}
		if err := unmarshalResult(ctx.Method, raw, &body); err != nil {
			return nil, err
		}
		return ClientVolumeSet{ClientID: ctx.TargetID, Volume: body.Volume}, nil
	case MethodClientSetLatency:
		var body struct {
			Latency int `json:"latency"`
		}
		if err := unmarshalResult(ctx.Method, raw, &body); err != nil {
			return nil, err
		}
		return ClientLatencySet{ClientID: ctx.TargetID, Latency: body.Latency}, nil
	case MethodClientSetName:
		var body struct {
			Name string `json:"name"`
		}
		if err := unmarshalResult(ctx.Method, raw, &body); err != nil {
			return nil, err
		}
		return ClientNameSet{ClientID: ctx.TargetID, Name: body.Name}, nil

	case MethodGroupGetStatus:
		return resultPayload[GroupStatus](ctx.Method, raw)
	case MethodGroupSetMute:
		var body struct {
			Mute bool `json:"mute"`
		}
		if err := unmarshalResult(ctx.Method, raw, &body); err != nil {
			return nil, err
		}
		return GroupMuteSet{GroupID: ctx.TargetID, Mute: body.Mute}, nil
	case MethodGroupSetStream:
		var body struct {
			StreamID string `json:"stream_id"`
		}
		if err := unmarshalResult(ctx.Method, raw, &body); err != nil {
			return nil, err
		}
		return GroupStreamSet{GroupID: ctx.TargetID, StreamID: body.StreamID}, nil
	case MethodGroupSetClients:
		return resultPayload[GroupClientsSet](ctx.Method, raw)
	case MethodGroupSetName:
		var body struct {
			Name string `json:"name"`
		}
		if err := unmarshalResult(ctx.Method, raw, &body); err != nil {
			return nil, err
		}
		return GroupNameSet{GroupID: ctx.TargetID, Name: body.Name}, nil

	case MethodServerGetRPCVersion:
		return resultPayload[RPCVersion](ctx.Method, raw)
	case MethodServerGetStatus:
		return resultPayload[ServerStatus](ctx.Method, raw)
	case MethodServerDeleteClient:
		return resultPayload[ClientDeleted](ctx.Method, raw)

	case MethodStreamAddStream:
		return resultPayload[StreamAdded](ctx.Method, raw)
	case MethodStreamRemoveStream:
		return resultPayload[StreamRemoved](ctx.Method, raw)
	case MethodStreamControl:
		var resp string
		if err := unmarshalResult(ctx.Method, raw, &resp); err != nil {
			return nil, err
		}
		return StreamControlAck{Response: resp}, nil
	case MethodStreamSetProperty:
		var resp string
		if err := unmarshalResult(ctx.Method, raw, &resp); err != nil {
			return nil, err
		}
		return StreamPropertySet{Response: resp}, nil
	}
	return nil, fmt.Errorf("protocol: no result shape for method %q", ctx.Method)
}

// decodeResultGeneric is the best-effort fallback for results whose
// correlation id is unknown. It only recognizes payloads whose shape is
// self-describing; ambiguous payloads can be miscategorized, which is
// accepted for stale replies.
func decodeResultGeneric(raw json.RawMessage) (Result, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Not an object: Stream.Control and Stream.SetProperty answer with a
		// bare string.
		var resp string
		if serr := json.Unmarshal(raw, &resp); serr == nil {
			return StreamControlAck{Response: resp}, nil
		}
		return nil, ErrUnresolvedResult
	}
	switch {
	case hasKey(doc, "client"):
		return genericPayload[ClientStatus](raw)
	case hasKey(doc, "group"):
		return genericPayload[GroupStatus](raw)
	case hasKey(doc, "server"):
		return genericPayload[ServerStatus](raw)
	case hasKey(doc, "major"):
		return genericPayload[RPCVersion](raw)
	case hasKey(doc, "id"):
		return genericPayload[StreamAdded](raw)
	}
	return nil, ErrUnresolvedResult
}

func hasKey(doc map[string]json.RawMessage, key string) bool {
	_, ok := doc[key]
	return ok
}

func unmarshalResult(method Method, raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("protocol: decode %s result: %w", method, err)
	}
	return nil
}

func resultPayload[R Result](method Method, raw json.RawMessage) (Result, error) {
	var r R
	if err := unmarshalResult(method, raw, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func genericPayload[R Result](raw json.RawMessage) (Result, error) {
	var r R
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvedResult, err)
	}
	return r, nil
}
