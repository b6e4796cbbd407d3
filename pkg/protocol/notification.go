package protocol

import (
	"encoding/json"
	"fmt"
)

// Notification methods.
const (
	MethodClientOnConnect        Method = "Client.OnConnect"
	MethodClientOnDisconnect     Method = "Client.OnDisconnect"
	MethodClientOnVolumeChanged  Method = "Client.OnVolumeChanged"
	MethodClientOnLatencyChanged Method = "Client.OnLatencyChanged"
	MethodClientOnNameChanged    Method = "Client.OnNameChanged"

	MethodGroupOnMute          Method = "Group.OnMute"
	MethodGroupOnStreamChanged Method = "Group.OnStreamChanged"
	MethodGroupOnNameChanged   Method = "Group.OnNameChanged"

	MethodServerOnUpdate Method = "Server.OnUpdate"

	MethodStreamOnUpdate     Method = "Stream.OnUpdate"
	MethodStreamOnProperties Method = "Stream.OnProperties"
)

// Notification is a typed server-initiated message. The set is closed:
// unknown notification methods are a decode error, not silently dropped.
type Notification interface {
	NotificationMethod() Method
}

// ClientConnected reports a client coming online.
type ClientConnected struct {
	ID     string `json:"id"`
	Client Client `json:"client"`
}

func (ClientConnected) NotificationMethod() Method { return MethodClientOnConnect }

// ClientDisconnected reports a client going offline.
type ClientDisconnected struct {
	ID string `json:"id"`
}

func (ClientDisconnected) NotificationMethod() Method { return MethodClientOnDisconnect }

// ClientVolumeChanged reports a volume change made by some controller.
type ClientVolumeChanged struct {
	ID     string `json:"id"`
	Volume Volume `json:"volume"`
}

func (ClientVolumeChanged) NotificationMethod() Method { return MethodClientOnVolumeChanged }

// ClientLatencyChanged reports a latency change.
type ClientLatencyChanged struct {
	ID      string `json:"id"`
	Latency int    `json:"latency"`
}

func (ClientLatencyChanged) NotificationMethod() Method { return MethodClientOnLatencyChanged }

// ClientNameChanged reports a rename.
type ClientNameChanged struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (ClientNameChanged) NotificationMethod() Method { return MethodClientOnNameChanged }

// GroupMuteChanged reports a group mute toggle.
type GroupMuteChanged struct {
	ID   string `json:"id"`
	Mute bool   `json:"mute"`
}

func (GroupMuteChanged) NotificationMethod() Method { return MethodGroupOnMute }

// GroupStreamChanged reports a group being bound to a different stream.
type GroupStreamChanged struct {
	ID       string `json:"id"`
	StreamID string `json:"stream_id"`
}

func (GroupStreamChanged) NotificationMethod() Method { return MethodGroupOnStreamChanged }

// GroupNameChanged reports a group rename.
type GroupNameChanged struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (GroupNameChanged) NotificationMethod() Method { return MethodGroupOnNameChanged }

// ServerUpdated carries a full server snapshot after a server-side change.
type ServerUpdated struct {
	Server Server `json:"server"`
}

func (ServerUpdated) NotificationMethod() Method { return MethodServerOnUpdate }

// StreamUpdated carries the full description of one stream.
type StreamUpdated struct {
	ID     string `json:"id"`
	Stream Stream `json:"stream"`
}

func (StreamUpdated) NotificationMethod() Method { return MethodStreamOnUpdate }

// StreamPropertiesChanged reports new playback properties for a stream.
type StreamPropertiesChanged struct {
	ID         string           `json:"id"`
	Properties StreamProperties `json:"properties"`
}

func (StreamPropertiesChanged) NotificationMethod() Method { return MethodStreamOnProperties }

func decodeNotification(method Method, params json.RawMessage) (Notification, error) {
	if params == nil {
		return nil, fmt.Errorf("protocol: notification %s has no params", method)
	}
	switch method {
	case MethodClientOnConnect:
		return notificationParams[ClientConnected](method, params)
	case MethodClientOnDisconnect:
		return notificationParams[ClientDisconnected](method, params)
	case MethodClientOnVolumeChanged:
		return notificationParams[ClientVolumeChanged](method, params)
	case MethodClientOnLatencyChanged:
		return notificationParams[ClientLatencyChanged](method, params)
	case MethodClientOnNameChanged:
		return notificationParams[ClientNameChanged](method, params)
	case MethodGroupOnMute:
		return notificationParams[GroupMuteChanged](method, params)
	case MethodGroupOnStreamChanged:
		return notificationParams[GroupStreamChanged](method, params)
	case MethodGroupOnNameChanged:
		return notificationParams[GroupNameChanged](method, params)
	case MethodServerOnUpdate:
		return notificationParams[ServerUpdated](method, params)
	case MethodStreamOnUpdate:
		return notificationParams[StreamUpdated](method, params)
	case MethodStreamOnProperties:
		return notificationParams[StreamPropertiesChanged](method, params)
	}
	return nil, fmt.Errorf("protocol: unknown notification method %q", method)
}

func notificationParams[N Notification](method Method, params json.RawMessage) (Notification, error) {
	var n N
	if err := json.Unmarshal(params, &n); err != nil {
		return nil, fmt.Errorf("protocol: decode %s params: %w", method, err)
	}
	return n, nil
}
