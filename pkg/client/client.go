package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soundgrid/snapctl/pkg/protocol"
	"github.com/soundgrid/snapctl/pkg/state"
)

// ErrClosed is returned by Send and Receive after Close, and by Receive once
// reconnection is exhausted and the stream has ended.
var ErrClosed = errors.New("client: connection closed")

// Received is one element of a receive batch. Err carries either a decode
// failure for that frame (Message is nil) or a protocol error the server
// returned (Message is set, its Err member is the same error).
type Received struct {
	Message *protocol.Message
	Err     error
}

// Client is a connection to a snapserver control endpoint.
type Client struct {
	addr    string
	opts    options
	log     *slog.Logger
	metrics *metrics

	pending *protocol.Pending
	cache   *state.State

	mu        sync.Mutex
	cond      *sync.Cond
	conn      transport
	gen       int
	redialing bool
	closed    bool
	closedCh  chan struct{}

	// Receive-loop state, owned by the single Receive caller.
	framer  protocol.LineFramer
	recvGen int
}

// Open dials addr and returns a connected client. See dialTransport for the
// accepted address forms.
func Open(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Client{
		addr:     addr,
		opts:     o,
		log:      o.logger,
		metrics:  newMetrics(o.registry),
		pending:  protocol.NewPending(),
		cache:    state.New(),
		closedCh: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)

	t, err := dialTransport(ctx, addr, o.dialTimeout)
	if err != nil {
		return nil, err
	}
	c.conn = t
	c.gen = 1
	c.recvGen = 1
	c.log.Info("connected", "addr", addr)
	if o.onConnect != nil {
		o.onConnect()
	}
	return c, nil
}

// State is the mirrored server state, safe for concurrent reads.
func (c *Client) State() *state.State {
	return c.cache
}

// Send encodes cmd and writes it to the server. The returned id correlates
// the eventual reply delivered through Receive. Commands are never retried;
// a command lost to a transport failure surfaces here as an error.
func (c *Client) Send(ctx context.Context, cmd protocol.Command) (uuid.UUID, error) {
	frame, id, err := protocol.EncodeCommand(cmd, c.pending)
	if err != nil {
		return uuid.Nil, fmt.Errorf("client: encode %s: %w", cmd.Method(), err)
	}
	t, gen, err := c.acquire(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if err := t.Write(frame); err != nil {
		c.fault(t, gen, err)
		return uuid.Nil, fmt.Errorf("client: send %s: %w", cmd.Method(), err)
	}
	c.metrics.commandSent()
	return id, nil
}

// Receive blocks until at least one complete frame arrives, then returns
// every frame buffered so far as a batch. Each element stands alone: one
// undecodable frame does not invalidate its siblings. Successful results and
// notifications are applied to the state cache before they are returned;
// decode failures and server errors touch nothing. Receive returns an error
// only when the stream has ended or ctx is canceled; cancellation retires the
// current connection to unblock the pending read, and a later call redials.
func (c *Client) Receive(ctx context.Context) ([]Received, error) {
	for {
		if batch := c.drainFrames(); len(batch) > 0 {
			return batch, nil
		}
		t, gen, err := c.acquire(ctx)
		if err != nil {
			return nil, err
		}
		if gen != c.recvGen {
			// A replaced connection invalidates any partial frame.
			c.framer.Reset()
			c.recvGen = gen
		}
		stop := context.AfterFunc(ctx, func() {
			c.fault(t, gen, ctx.Err())
		})
		chunk, err := t.ReadChunk()
		stop()
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			c.fault(t, gen, err)
			continue
		}
		if err := c.framer.Append(chunk); err != nil {
			c.fault(t, gen, err)
			continue
		}
	}
}

func (c *Client) drainFrames() []Received {
	var batch []Received
	for {
		frame, ok := c.framer.Next()
		if !ok {
			return batch
		}
		if len(bytes.TrimSpace(frame)) == 0 {
			continue
		}
		msg, err := protocol.Classify(frame, c.pending)
		switch {
		case err != nil:
			c.metrics.decodeError()
			c.log.Debug("frame rejected", "err", err)
			batch = append(batch, Received{Err: err})
		case msg.Err != nil:
			c.metrics.frameDecoded()
			batch = append(batch, Received{Message: msg, Err: msg.Err})
		default:
			c.metrics.frameDecoded()
			c.cache.Apply(msg)
			batch = append(batch, Received{Message: msg})
		}
	}
}

// Close tears the connection down. Outstanding registry entries are dropped;
// blocked Send and Receive calls return ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.markClosedLocked()
	t := c.conn
	c.conn = nil
	c.cond.Broadcast()
	c.mu.Unlock()

	c.pending.Reset()
	if t != nil {
		return t.Close()
	}
	return nil
}

func (c *Client) markClosedLocked() {
	if !c.closed {
		c.closed = true
		close(c.closedCh)
	}
}

// acquire returns the live connection, reconnecting if necessary. Exactly one
// caller runs the redial loop; the rest wait for its outcome.
func (c *Client) acquire(ctx context.Context) (transport, int, error) {
	c.mu.Lock()
	for {
		if err := ctx.Err(); err != nil {
			c.mu.Unlock()
			return nil, 0, err
		}
		if c.closed {
			c.mu.Unlock()
			return nil, 0, ErrClosed
		}
		if c.conn != nil {
			t, gen := c.conn, c.gen
			c.mu.Unlock()
			return t, gen, nil
		}
		if c.redialing {
			c.cond.Wait()
			continue
		}

		c.redialing = true
		c.mu.Unlock()
		t, err := c.redial(ctx)
		c.mu.Lock()
		c.redialing = false

		if err != nil {
			// Exhausted backoff ends the stream for everyone; a canceled
			// context only fails this caller.
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				c.markClosedLocked()
			}
			c.cond.Broadcast()
			c.mu.Unlock()
			return nil, 0, err
		}
		if c.closed {
			c.mu.Unlock()
			t.Close()
			return nil, 0, ErrClosed
		}
		c.conn = t
		c.gen++
		c.metrics.reconnected()
		c.cond.Broadcast()
		c.mu.Unlock()

		c.log.Info("reconnected", "addr", c.addr)
		if fn := c.opts.onConnect; fn != nil {
			fn()
		}
		c.mu.Lock()
	}
}

// redial attempts to replace a dead connection under the backoff schedule.
func (c *Client) redial(ctx context.Context) (transport, error) {
	delay := c.opts.backoff.Initial
	for attempt := 1; ; attempt++ {
		t, err := dialTransport(ctx, c.addr, c.opts.dialTimeout)
		if err == nil {
			return t, nil
		}
		c.metrics.reconnectFailed()
		c.log.Warn("reconnect failed", "addr", c.addr, "attempt", attempt, "err", err)
		if fn := c.opts.onReconnectFailed; fn != nil {
			fn(attempt, err)
		}
		if max := c.opts.backoff.MaxAttempts; max > 0 && attempt >= max {
			return nil, fmt.Errorf("client: reconnect exhausted after %d attempts: %w", attempt, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-c.closedCh:
			timer.Stop()
			return nil, ErrClosed
		}
		if delay *= 2; delay > c.opts.backoff.Max {
			delay = c.opts.backoff.Max
		}
	}
}

// fault retires a dead connection. The generation check makes concurrent
// reporters of the same failure idempotent and protects a successor
// connection from being torn down by a stale report.
func (c *Client) fault(t transport, gen int, err error) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.conn != t {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()

	t.Close()
	c.log.Warn("connection lost", "addr", c.addr, "err", err)
	if fn := c.opts.onDisconnect; fn != nil {
		fn(err)
	}
}
