package state

import (
	"reflect"
	"testing"

	"github.com/soundgrid/snapctl/pkg/protocol"
)

func wireClient(id string) protocol.Client {
	return protocol.Client{
		ID:        id,
		Connected: true,
		Config: protocol.ClientConfig{
			Instance: 1,
			Volume:   protocol.Volume{Percent: 100},
		},
	}
}

func wireGroup(id, streamID string, clients ...string) protocol.Group {
	g := protocol.Group{ID: id, StreamID: streamID}
	for _, c := range clients {
		g.Clients = append(g.Clients, wireClient(c))
	}
	return g
}

func snapshot(groups []protocol.Group, streams []protocol.Stream) protocol.Server {
	return protocol.Server{
		Server: protocol.ServerDetails{
			Snapserver: protocol.Snapserver{Name: "Snapserver", Version: "0.27.0"},
		},
		Groups:  groups,
		Streams: streams,
	}
}

func applyResult(t *testing.T, s *State, r protocol.Result) {
	t.Helper()
	s.Apply(&protocol.Message{Result: r})
}

func applyNotification(t *testing.T, s *State, n protocol.Notification) {
	t.Helper()
	s.Apply(&protocol.Message{Notification: n})
}

func keys[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func TestFullResyncKeySets(t *testing.T) {
	s := New()

	first := snapshot(
		[]protocol.Group{wireGroup("g1", "radio", "c1", "c2"), wireGroup("g2", "spotify", "c3")},
		[]protocol.Stream{{ID: "radio"}, {ID: "spotify"}},
	)
	applyResult(t, s, protocol.ServerStatus{Server: first})

	if got := keys(s.Clients()); !reflect.DeepEqual(got, map[string]bool{"c1": true, "c2": true, "c3": true}) {
		t.Errorf("clients after first sync = %v", got)
	}
	if got := keys(s.Groups()); !reflect.DeepEqual(got, map[string]bool{"g1": true, "g2": true}) {
		t.Errorf("groups after first sync = %v", got)
	}
	if got := keys(s.Streams()); !reflect.DeepEqual(got, map[string]bool{"radio": true, "spotify": true}) {
		t.Errorf("streams after first sync = %v", got)
	}

	// Second snapshot drops g2, c2, c3, and spotify, adds c4 and tv.
	second := snapshot(
		[]protocol.Group{wireGroup("g1", "radio", "c1", "c4")},
		[]protocol.Stream{{ID: "radio"}, {ID: "tv"}},
	)
	applyNotification(t, s, protocol.ServerUpdated{Server: second})

	if got := keys(s.Clients()); !reflect.DeepEqual(got, map[string]bool{"c1": true, "c4": true}) {
		t.Errorf("clients after second sync = %v", got)
	}
	if got := keys(s.Groups()); !reflect.DeepEqual(got, map[string]bool{"g1": true}) {
		t.Errorf("groups after second sync = %v", got)
	}
	if got := keys(s.Streams()); !reflect.DeepEqual(got, map[string]bool{"radio": true, "tv": true}) {
		t.Errorf("streams after second sync = %v", got)
	}

	g, ok := s.Group("g1")
	if !ok {
		t.Fatal("g1 missing after second sync")
	}
	wantMembers := map[string]struct{}{"c1": {}, "c4": {}}
	if !reflect.DeepEqual(g.Clients, wantMembers) {
		t.Errorf("g1 members = %v, want %v", g.Clients, wantMembers)
	}
}

func TestServerDetailsSingleton(t *testing.T) {
	s := New()
	if _, ok := s.ServerDetails(); ok {
		t.Fatal("ServerDetails() ok before any sync")
	}

	applyResult(t, s, protocol.ServerStatus{Server: snapshot(nil, nil)})
	details, ok := s.ServerDetails()
	if !ok {
		t.Fatal("ServerDetails() not ok after sync")
	}
	if details.Snapserver.Version != "0.27.0" {
		t.Errorf("version = %q, want 0.27.0", details.Snapserver.Version)
	}

	// A later snapshot overwrites, never resets.
	next := snapshot(nil, nil)
	next.Server.Snapserver.Version = "0.28.0"
	applyResult(t, s, protocol.ServerStatus{Server: next})
	details, ok = s.ServerDetails()
	if !ok || details.Snapserver.Version != "0.28.0" {
		t.Errorf("details = %+v, %v, want version 0.28.0", details, ok)
	}
}

func TestClientPartialUpdates(t *testing.T) {
	s := New()
	applyNotification(t, s, protocol.ClientConnected{ID: "c1", Client: wireClient("c1")})

	applyResult(t, s, protocol.ClientVolumeSet{ClientID: "c1", Volume: protocol.Volume{Muted: true, Percent: 30}})
	c, ok := s.Client("c1")
	if !ok {
		t.Fatal("c1 missing")
	}
	if !c.Config.Volume.Muted || c.Config.Volume.Percent != 30 {
		t.Errorf("volume = %+v, want muted 30%%", c.Config.Volume)
	}

	// Other fields survive a partial update.
	if c.Config.Instance != 1 || !c.Connected {
		t.Errorf("unrelated fields changed: %+v", c)
	}

	applyNotification(t, s, protocol.ClientLatencyChanged{ID: "c1", Latency: 40})
	applyNotification(t, s, protocol.ClientNameChanged{ID: "c1", Name: "Kitchen"})
	c, _ = s.Client("c1")
	if c.Config.Latency != 40 || c.Config.Name != "Kitchen" {
		t.Errorf("config = %+v, want latency 40 name Kitchen", c.Config)
	}
}

func TestPartialUpdateIdempotent(t *testing.T) {
	s := New()
	applyNotification(t, s, protocol.ClientConnected{ID: "c1", Client: wireClient("c1")})

	update := protocol.ClientVolumeChanged{ID: "c1", Volume: protocol.Volume{Percent: 50}}
	applyNotification(t, s, update)
	once, _ := s.Client("c1")
	applyNotification(t, s, update)
	twice, _ := s.Client("c1")

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second apply changed state: %+v vs %+v", once, twice)
	}
}

func TestPartialUpdateMissingIDNoOp(t *testing.T) {
	s := New()
	applyResult(t, s, protocol.ClientVolumeSet{ClientID: "ghost", Volume: protocol.Volume{Percent: 10}})
	applyNotification(t, s, protocol.GroupMuteChanged{ID: "ghost", Mute: true})

	if len(s.Clients()) != 0 {
		t.Errorf("clients = %v, want empty", s.Clients())
	}
	if len(s.Groups()) != 0 {
		t.Errorf("groups = %v, want empty", s.Groups())
	}
}

func TestClientDisconnectKeepsMembership(t *testing.T) {
	s := New()
	applyResult(t, s, protocol.ServerStatus{Server: snapshot(
		[]protocol.Group{wireGroup("g1", "radio", "c1", "c2")},
		[]protocol.Stream{{ID: "radio"}},
	)})

	applyNotification(t, s, protocol.ClientDisconnected{ID: "c1"})

	if _, ok := s.Client("c1"); ok {
		t.Error("c1 still in clients map after disconnect")
	}
	g, ok := s.Group("g1")
	if !ok {
		t.Fatal("g1 missing")
	}
	if _, ok := g.Clients["c1"]; !ok {
		t.Error("disconnect pruned group membership; pruning happens only on full resync")
	}
}

func TestGroupPartialUpdates(t *testing.T) {
	s := New()
	applyResult(t, s, protocol.GroupStatus{Group: wireGroup("g1", "radio", "c1")})

	applyResult(t, s, protocol.GroupMuteSet{GroupID: "g1", Mute: true})
	applyNotification(t, s, protocol.GroupStreamChanged{ID: "g1", StreamID: "spotify"})
	applyResult(t, s, protocol.GroupNameSet{GroupID: "g1", Name: "Upstairs"})

	g, ok := s.Group("g1")
	if !ok {
		t.Fatal("g1 missing")
	}
	if !g.Muted || g.StreamID != "spotify" || g.Name != "Upstairs" {
		t.Errorf("group = %+v, want muted/spotify/Upstairs", g)
	}

	// The group result also upserted the embedded client.
	if _, ok := s.Client("c1"); !ok {
		t.Error("embedded client c1 not upserted by group status")
	}
}

func TestStreamLifecycle(t *testing.T) {
	s := New()

	// Newly added: present, detail pending.
	applyResult(t, s, protocol.StreamAdded{StreamID: "extra"})
	entry, ok := s.Stream("extra")
	if !ok {
		t.Fatal("extra missing after add")
	}
	if entry.Detail != nil {
		t.Errorf("Detail = %+v, want nil while pending", entry.Detail)
	}

	// Described by a stream update notification.
	applyNotification(t, s, protocol.StreamUpdated{ID: "extra", Stream: protocol.Stream{
		ID:     "extra",
		Status: protocol.StreamPlaying,
	}})
	entry, _ = s.Stream("extra")
	if entry.Detail == nil {
		t.Fatal("Detail still nil after stream update")
	}
	if entry.Detail.Status != protocol.StreamPlaying {
		t.Errorf("status = %q, want playing", entry.Detail.Status)
	}

	// A duplicate add does not regress a described stream to pending.
	applyResult(t, s, protocol.StreamAdded{StreamID: "extra"})
	entry, _ = s.Stream("extra")
	if entry.Detail == nil {
		t.Error("duplicate add reset detail to pending")
	}

	applyResult(t, s, protocol.StreamRemoved{StreamID: "extra"})
	if _, ok := s.Stream("extra"); ok {
		t.Error("extra still present after remove")
	}
}

func TestStreamPropertiesChanged(t *testing.T) {
	s := New()
	applyNotification(t, s, protocol.StreamUpdated{ID: "radio", Stream: protocol.Stream{ID: "radio"}})

	vol := 80
	applyNotification(t, s, protocol.StreamPropertiesChanged{
		ID:         "radio",
		Properties: protocol.StreamProperties{CanControl: true, Volume: &vol},
	})
	entry, _ := s.Stream("radio")
	if entry.Detail == nil || entry.Detail.Properties == nil {
		t.Fatal("properties not applied")
	}
	if !entry.Detail.Properties.CanControl || *entry.Detail.Properties.Volume != 80 {
		t.Errorf("properties = %+v, want control with volume 80", entry.Detail.Properties)
	}

	// Properties for a pending or unknown stream are dropped.
	applyResult(t, s, protocol.StreamAdded{StreamID: "pending"})
	applyNotification(t, s, protocol.StreamPropertiesChanged{ID: "pending"})
	entry, _ = s.Stream("pending")
	if entry.Detail != nil {
		t.Errorf("pending stream gained detail: %+v", entry.Detail)
	}
	applyNotification(t, s, protocol.StreamPropertiesChanged{ID: "ghost"})
	if _, ok := s.Stream("ghost"); ok {
		t.Error("properties notification created a stream")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := New()
	applyResult(t, s, protocol.ServerStatus{Server: snapshot(
		[]protocol.Group{wireGroup("g1", "radio", "c1")},
		[]protocol.Stream{{ID: "radio", Status: protocol.StreamIdle}},
	)})

	g, _ := s.Group("g1")
	g.Clients["intruder"] = struct{}{}
	again, _ := s.Group("g1")
	if _, ok := again.Clients["intruder"]; ok {
		t.Error("mutating a returned group leaked into the cache")
	}

	entry, _ := s.Stream("radio")
	entry.Detail.Status = protocol.StreamDisabled
	again2, _ := s.Stream("radio")
	if again2.Detail.Status != protocol.StreamIdle {
		t.Error("mutating a returned stream leaked into the cache")
	}

	clients := s.Clients()
	delete(clients, "c1")
	if _, ok := s.Client("c1"); !ok {
		t.Error("deleting from a returned map leaked into the cache")
	}
}

func TestErrorHasNoCacheEffect(t *testing.T) {
	s := New()
	applyNotification(t, s, protocol.ClientConnected{ID: "c1", Client: wireClient("c1")})
	before := s.Clients()

	s.Apply(&protocol.Message{Err: &protocol.ServerError{Code: protocol.CodeMethodNotFound, Message: "Method not found"}})

	if !reflect.DeepEqual(before, s.Clients()) {
		t.Error("error message mutated the cache")
	}
}
