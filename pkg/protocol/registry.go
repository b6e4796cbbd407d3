package protocol

import (
	"sync"

	"github.com/google/uuid"
)

// PendingContext is what a decoder needs to interpret an untagged result: the
// method that was sent and, for commands whose results omit it, the id of the
// entity the command targeted.
type PendingContext struct {
	Method   Method
	TargetID string
}

// Pending tracks requests that have been sent but not yet answered. Entries
// are recorded at encode time and consumed exactly once when the matching
// result or error arrives. Replies lost to a dropped connection leave their
// entries behind; they are cleared only by Reset on connection teardown.
type Pending struct {
	mu      sync.Mutex
	entries map[uuid.UUID]PendingContext
}

// NewPending returns an empty registry.
func NewPending() *Pending {
	return &Pending{entries: make(map[uuid.UUID]PendingContext)}
}

// Record stores the expectation for a request id. Ids are 128-bit random
// values, so collisions are not handled beyond overwriting.
func (p *Pending) Record(id uuid.UUID, ctx PendingContext) {
	p.mu.Lock()
	p.entries[id] = ctx
	p.mu.Unlock()
}

// Resolve removes and returns the expectation for id. The second return is
// false for unknown ids: late replies, duplicates, or replies that survived a
// registry reset.
func (p *Pending) Resolve(id uuid.UUID) (PendingContext, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ctx, ok := p.entries[id]
	if ok {
		delete(p.entries, id)
	}
	return ctx, ok
}

// Len reports the number of outstanding requests.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Reset drops all outstanding entries.
func (p *Pending) Reset() {
	p.mu.Lock()
	p.entries = make(map[uuid.UUID]PendingContext)
	p.mu.Unlock()
}
