// Package state keeps a local mirror of the server's clients, groups, and
// streams. The cache is updated exclusively by applying classified inbound
// messages; callers get concurrent read access through copying accessors.
//
// Each entity map is guarded by its own lock, so a burst of client updates
// never blocks a reader walking the groups. The tradeoff is that a reader can
// observe the middle of a full resync, say new clients next to old groups.
// The protocol delivers updates incrementally anyway, so the cache is
// eventually consistent with the server, not transactionally consistent.
package state

import (
	"sync"

	"github.com/soundgrid/snapctl/pkg/protocol"
)

// Group is a group as the cache stores it: membership is a set of client ids,
// not the embedded client objects the wire form carries. Clients are owned by
// the clients map alone.
type Group struct {
	ID       string
	Name     string
	StreamID string
	Muted    bool
	Clients  map[string]struct{}
}

// StreamEntry is one stream slot. Detail is nil while the stream is known
// only by id, after Stream.AddStream and before the first Stream.OnUpdate or
// full resync describes it.
type StreamEntry struct {
	ID     string
	Detail *protocol.Stream
}

// State is the mirrored server state. The zero value is not usable; call New.
type State struct {
	serverMu sync.RWMutex
	server   *protocol.ServerDetails

	clientsMu sync.RWMutex
	clients   map[string]protocol.Client

	groupsMu sync.RWMutex
	groups   map[string]Group

	streamsMu sync.RWMutex
	streams   map[string]*protocol.Stream
}

// New returns an empty cache.
func New() *State {
	return &State{
		clients: make(map[string]protocol.Client),
		groups:  make(map[string]Group),
		streams: make(map[string]*protocol.Stream),
	}
}

// Apply folds one classified message into the cache. Error messages have no
// cache effect.
func (s *State) Apply(msg *protocol.Message) {
	if msg == nil {
		return
	}
	switch {
	case msg.Result != nil:
		s.applyResult(msg.Result)
	case msg.Notification != nil:
		s.applyNotification(msg.Notification)
	}
}

func (s *State) applyResult(res protocol.Result) {
	switch r := res.(type) {
	case protocol.ClientStatus:
		s.upsertClient(r.Client)
	case protocol.ClientVolumeSet:
		s.updateClient(r.ClientID, func(c *protocol.Client) { c.Config.Volume = r.Volume })
	case protocol.ClientLatencySet:
		s.updateClient(r.ClientID, func(c *protocol.Client) { c.Config.Latency = r.Latency })
	case protocol.ClientNameSet:
		s.updateClient(r.ClientID, func(c *protocol.Client) { c.Config.Name = r.Name })

	case protocol.GroupStatus:
		s.upsertGroup(r.Group)
	case protocol.GroupMuteSet:
		s.updateGroup(r.GroupID, func(g *Group) { g.Muted = r.Mute })
	case protocol.GroupStreamSet:
		s.updateGroup(r.GroupID, func(g *Group) { g.StreamID = r.StreamID })
	case protocol.GroupNameSet:
		s.updateGroup(r.GroupID, func(g *Group) { g.Name = r.Name })
	case protocol.GroupClientsSet:
		s.fullSync(r.Server)

	case protocol.ServerStatus:
		s.fullSync(r.Server)
	case protocol.ClientDeleted:
		s.fullSync(r.Server)

	case protocol.StreamAdded:
		s.insertPendingStream(r.StreamID)
	case protocol.StreamRemoved:
		s.removeStream(r.StreamID)
	}
	// RPCVersion, StreamControlAck, and StreamPropertySet carry no state.
}

func (s *State) applyNotification(n protocol.Notification) {
	switch n := n.(type) {
	case protocol.ClientConnected:
		s.upsertClient(n.Client)
	case protocol.ClientDisconnected:
		s.removeClient(n.ID)
	case protocol.ClientVolumeChanged:
		s.updateClient(n.ID, func(c *protocol.Client) { c.Config.Volume = n.Volume })
	case protocol.ClientLatencyChanged:
		s.updateClient(n.ID, func(c *protocol.Client) { c.Config.Latency = n.Latency })
	case protocol.ClientNameChanged:
		s.updateClient(n.ID, func(c *protocol.Client) { c.Config.Name = n.Name })

	case protocol.GroupMuteChanged:
		s.updateGroup(n.ID, func(g *Group) { g.Muted = n.Mute })
	case protocol.GroupStreamChanged:
		s.updateGroup(n.ID, func(g *Group) { g.StreamID = n.StreamID })
	case protocol.GroupNameChanged:
		s.updateGroup(n.ID, func(g *Group) { g.Name = n.Name })

	case protocol.ServerUpdated:
		s.fullSync(n.Server)

	case protocol.StreamUpdated:
		s.upsertStream(n.Stream)
	case protocol.StreamPropertiesChanged:
		s.updateStreamProperties(n.ID, n.Properties)
	}
}

// fullSync reconciles the whole cache against a server snapshot. For each map
// the incoming key set is authoritative: entries absent from the snapshot are
// evicted, everything in the snapshot is upserted. Maps are reconciled one at
// a time under their own locks.
func (s *State) fullSync(server protocol.Server) {
	s.serverMu.Lock()
	details := server.Server
	s.server = &details
	s.serverMu.Unlock()

	clientKeys := make(map[string]struct{})
	for _, g := range server.Groups {
		for _, c := range g.Clients {
			clientKeys[c.ID] = struct{}{}
		}
	}
	s.clientsMu.Lock()
	for id := range s.clients {
		if _, ok := clientKeys[id]; !ok {
			delete(s.clients, id)
		}
	}
	for _, g := range server.Groups {
		for _, c := range g.Clients {
			s.clients[c.ID] = c
		}
	}
	s.clientsMu.Unlock()

	groupKeys := make(map[string]struct{}, len(server.Groups))
	for _, g := range server.Groups {
		groupKeys[g.ID] = struct{}{}
	}
	s.groupsMu.Lock()
	for id := range s.groups {
		if _, ok := groupKeys[id]; !ok {
			delete(s.groups, id)
		}
	}
	for _, g := range server.Groups {
		s.groups[g.ID] = groupFromWire(g)
	}
	s.groupsMu.Unlock()

	streamKeys := make(map[string]struct{}, len(server.Streams))
	for _, st := range server.Streams {
		streamKeys[st.ID] = struct{}{}
	}
	s.streamsMu.Lock()
	for id := range s.streams {
		if _, ok := streamKeys[id]; !ok {
			delete(s.streams, id)
		}
	}
	for _, st := range server.Streams {
		detail := st
		s.streams[st.ID] = &detail
	}
	s.streamsMu.Unlock()
}

func groupFromWire(g protocol.Group) Group {
	members := make(map[string]struct{}, len(g.Clients))
	for _, c := range g.Clients {
		members[c.ID] = struct{}{}
	}
	return Group{
		ID:       g.ID,
		Name:     g.Name,
		StreamID: g.StreamID,
		Muted:    g.Muted,
		Clients:  members,
	}
}

func (s *State) upsertClient(c protocol.Client) {
	s.clientsMu.Lock()
	s.clients[c.ID] = c
	s.clientsMu.Unlock()
}

func (s *State) removeClient(id string) {
	s.clientsMu.Lock()
	delete(s.clients, id)
	s.clientsMu.Unlock()
}

// updateClient applies a partial mutation to an existing client. Unknown ids
// are a silent no-op: the client may have been evicted by a racing resync.
func (s *State) updateClient(id string, fn func(*protocol.Client)) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return
	}
	fn(&c)
	s.clients[id] = c
}

// upsertGroup replaces a group from a wire payload. The embedded clients set
// the membership and are also upserted into the clients map.
func (s *State) upsertGroup(g protocol.Group) {
	s.clientsMu.Lock()
	for _, c := range g.Clients {
		s.clients[c.ID] = c
	}
	s.clientsMu.Unlock()

	s.groupsMu.Lock()
	s.groups[g.ID] = groupFromWire(g)
	s.groupsMu.Unlock()
}

func (s *State) updateGroup(id string, fn func(*Group)) {
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return
	}
	fn(&g)
	s.groups[id] = g
}

// insertPendingStream records a stream known only by id. An already described
// stream keeps its detail; a stream never moves back to the pending state.
func (s *State) insertPendingStream(id string) {
	s.streamsMu.Lock()
	if _, ok := s.streams[id]; !ok {
		s.streams[id] = nil
	}
	s.streamsMu.Unlock()
}

func (s *State) upsertStream(st protocol.Stream) {
	s.streamsMu.Lock()
	detail := st
	s.streams[st.ID] = &detail
	s.streamsMu.Unlock()
}

func (s *State) removeStream(id string) {
	s.streamsMu.Lock()
	delete(s.streams, id)
	s.streamsMu.Unlock()
}

func (s *State) updateStreamProperties(id string, props protocol.StreamProperties) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	st, ok := s.streams[id]
	if !ok || st == nil {
		return
	}
	st.Properties = &props
}

// ServerDetails returns the server singleton. ok is false before the first
// full sync; once set, the slot is only ever overwritten.
func (s *State) ServerDetails() (protocol.ServerDetails, bool) {
	s.serverMu.RLock()
	defer s.serverMu.RUnlock()
	if s.server == nil {
		return protocol.ServerDetails{}, false
	}
	return *s.server, true
}

// Client returns one client by id.
func (s *State) Client(id string) (protocol.Client, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	c, ok := s.clients[id]
	return c, ok
}

// Clients returns a copy of the clients map.
func (s *State) Clients() map[string]protocol.Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	out := make(map[string]protocol.Client, len(s.clients))
	for id, c := range s.clients {
		out[id] = c
	}
	return out
}

// Group returns one group by id. The membership set is copied.
func (s *State) Group(id string) (Group, bool) {
	s.groupsMu.RLock()
	defer s.groupsMu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return Group{}, false
	}
	return copyGroup(g), true
}

// Groups returns a copy of the groups map.
func (s *State) Groups() map[string]Group {
	s.groupsMu.RLock()
	defer s.groupsMu.RUnlock()
	out := make(map[string]Group, len(s.groups))
	for id, g := range s.groups {
		out[id] = copyGroup(g)
	}
	return out
}

// Stream returns one stream slot by id. Detail is a copy and nil while the
// stream's description is pending.
func (s *State) Stream(id string) (StreamEntry, bool) {
	s.streamsMu.RLock()
	defer s.streamsMu.RUnlock()
	st, ok := s.streams[id]
	if !ok {
		return StreamEntry{}, false
	}
	return StreamEntry{ID: id, Detail: copyStream(st)}, true
}

// Streams returns a copy of the streams map.
func (s *State) Streams() map[string]StreamEntry {
	s.streamsMu.RLock()
	defer s.streamsMu.RUnlock()
	out := make(map[string]StreamEntry, len(s.streams))
	for id, st := range s.streams {
		out[id] = StreamEntry{ID: id, Detail: copyStream(st)}
	}
	return out
}

func copyGroup(g Group) Group {
	members := make(map[string]struct{}, len(g.Clients))
	for id := range g.Clients {
		members[id] = struct{}{}
	}
	g.Clients = members
	return g
}

func copyStream(st *protocol.Stream) *protocol.Stream {
	if st == nil {
		return nil
	}
	out := *st
	if st.Properties != nil {
		props := *st.Properties
		out.Properties = &props
	}
	return &out
}
