package protocol

// Client is a playback client known to the snapserver. The id is usually the
// client's MAC address, with a "#n" suffix when several instances share a host.
type Client struct {
	ID         string       `json:"id"`
	Connected  bool         `json:"connected"`
	Config     ClientConfig `json:"config"`
	Host       Host         `json:"host"`
	Snapclient Snapclient   `json:"snapclient"`
	LastSeen   LastSeen     `json:"lastSeen"`
}

// Host describes the machine a client or server runs on.
type Host struct {
	Arch string `json:"arch"`
	IP   string `json:"ip"`
	MAC  string `json:"mac"`
	Name string `json:"name"`
	OS   string `json:"os"`
}

// ClientConfig is the mutable part of a client: the fields the control
// protocol can change.
type ClientConfig struct {
	Instance int    `json:"instance"`
	Latency  int    `json:"latency"`
	Name     string `json:"name"`
	Volume   Volume `json:"volume"`
}

// Volume is a client volume setting.
type Volume struct {
	Muted   bool `json:"muted"`
	Percent int  `json:"percent"`
}

// Snapclient identifies the client software and its protocol support.
type Snapclient struct {
	Name            string `json:"name"`
	ProtocolVersion int    `json:"protocolVersion"`
	Version         string `json:"version"`
}

// LastSeen is the server-side timestamp of the client's last activity.
type LastSeen struct {
	Sec  int64 `json:"sec"`
	Usec int64 `json:"usec"`
}
