package protocol

// Server is the full server snapshot carried by Server.GetStatus results,
// Server.OnUpdate notifications, and the results of commands that restructure
// groups (Group.SetClients, Server.DeleteClient).
type Server struct {
	Server  ServerDetails `json:"server"`
	Groups  []Group       `json:"groups"`
	Streams []Stream      `json:"streams"`
}

// ServerDetails describes the snapserver process itself.
type ServerDetails struct {
	Host       Host       `json:"host"`
	Snapserver Snapserver `json:"snapserver"`
}

// Snapserver identifies the server software and its protocol versions.
type Snapserver struct {
	Name                   string `json:"name"`
	ProtocolVersion        int    `json:"protocolVersion"`
	ControlProtocolVersion int    `json:"controlProtocolVersion"`
	Version                string `json:"version"`
}
