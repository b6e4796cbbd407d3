package protocol

// Group is a set of clients bound to one stream. On the wire the server embeds
// full client objects; the state cache keeps only their ids (see package state).
type Group struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	StreamID string   `json:"stream_id"`
	Muted    bool     `json:"muted"`
	Clients  []Client `json:"clients"`
}

// ClientIDs returns the ids of the group's embedded clients.
func (g Group) ClientIDs() []string {
	ids := make([]string, len(g.Clients))
	for i, c := range g.Clients {
		ids[i] = c.ID
	}
	return ids
}
