package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/soundgrid/snapctl/pkg/protocol"
)

const serverUpdateLine = `{"jsonrpc":"2.0","method":"Server.OnUpdate","params":{"server":{"server":{"host":{"name":"den"},"snapserver":{"name":"Snapserver","version":"0.27.0"}},"groups":[{"id":"g1","name":"","stream_id":"radio","muted":false,"clients":[{"id":"c1","connected":true,"config":{"instance":1,"latency":0,"name":"","volume":{"muted":false,"percent":100}},"host":{},"snapclient":{},"lastSeen":{"sec":0,"usec":0}}]}],"streams":[{"id":"radio","status":"idle","uri":{"fragment":"","host":"","path":"","query":{},"raw":"","scheme":"pipe"}}]}}}` + "\n"

type fakeServer struct {
	ln    net.Listener
	conns chan net.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	fs := &fakeServer{ln: ln, conns: make(chan net.Conn, 4)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			fs.conns <- conn
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return fs
}

func (fs *fakeServer) addr() string {
	return fs.ln.Addr().String()
}

func (fs *fakeServer) accept(t *testing.T) net.Conn {
	t.Helper()
	select {
	case conn := <-fs.conns:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

func openTest(t *testing.T, fs *fakeServer, opts ...Option) *Client {
	t.Helper()
	c, err := Open(context.Background(), fs.addr(), opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSendWritesFrame(t *testing.T) {
	fs := newFakeServer(t)
	c := openTest(t, fs)
	conn := fs.accept(t)

	id, err := c.ServerStatus(context.Background())
	if err != nil {
		t.Fatalf("ServerStatus() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	var env struct {
		ID      string `json:"id"`
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
	}
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		t.Fatalf("server received bad JSON %q: %v", line, err)
	}
	if env.Method != "Server.GetStatus" {
		t.Errorf("method = %q, want Server.GetStatus", env.Method)
	}
	if env.ID != id.String() {
		t.Errorf("wire id = %q, want %q", env.ID, id)
	}
}

func TestReceiveAppliesToCache(t *testing.T) {
	fs := newFakeServer(t)
	c := openTest(t, fs)
	conn := fs.accept(t)

	if _, err := conn.Write([]byte(serverUpdateLine)); err != nil {
		t.Fatalf("server write: %v", err)
	}

	batch, err := c.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch size = %d, want 1", len(batch))
	}
	if batch[0].Err != nil {
		t.Fatalf("element error = %v", batch[0].Err)
	}
	if _, ok := batch[0].Message.Notification.(protocol.ServerUpdated); !ok {
		t.Fatalf("notification type = %T, want ServerUpdated", batch[0].Message.Notification)
	}

	if _, ok := c.State().Client("c1"); !ok {
		t.Error("cache missing c1 after server update")
	}
	if _, ok := c.State().Group("g1"); !ok {
		t.Error("cache missing g1 after server update")
	}
	details, ok := c.State().ServerDetails()
	if !ok || details.Snapserver.Version != "0.27.0" {
		t.Errorf("server details = %+v, %v", details, ok)
	}
}

func TestReceiveBatchIsolatesBadFrames(t *testing.T) {
	fs := newFakeServer(t)
	c := openTest(t, fs)
	conn := fs.accept(t)

	payload := "this is not json\n" + serverUpdateLine
	if _, err := conn.Write([]byte(payload)); err != nil {
		t.Fatalf("server write: %v", err)
	}

	batch, err := c.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch))
	}
	if batch[0].Err == nil {
		t.Error("bad frame produced no error element")
	}
	if batch[0].Message != nil {
		t.Errorf("bad frame produced a message: %+v", batch[0].Message)
	}
	if batch[1].Err != nil {
		t.Errorf("sibling frame failed: %v", batch[1].Err)
	}
}

func TestReceiveServerError(t *testing.T) {
	fs := newFakeServer(t)
	c := openTest(t, fs)
	conn := fs.accept(t)

	id, err := c.ClientStatus(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ClientStatus() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
		t.Fatalf("server read: %v", err)
	}
	reply := fmt.Sprintf(`{"id":%q,"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"}}`+"\n", id)
	if _, err := conn.Write([]byte(reply)); err != nil {
		t.Fatalf("server write: %v", err)
	}

	batch, err := c.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch size = %d, want 1", len(batch))
	}
	var serr *protocol.ServerError
	if !errors.As(batch[0].Err, &serr) {
		t.Fatalf("element error = %v, want ServerError", batch[0].Err)
	}
	if serr.Code != protocol.CodeMethodNotFound {
		t.Errorf("code = %d, want %d", serr.Code, protocol.CodeMethodNotFound)
	}
	if len(c.State().Clients()) != 0 {
		t.Error("protocol error mutated the cache")
	}
}

func TestReconnect(t *testing.T) {
	fs := newFakeServer(t)

	connects := make(chan struct{}, 4)
	disconnects := make(chan struct{}, 4)
	c := openTest(t, fs,
		WithBackoff(BackoffConfig{Initial: 10 * time.Millisecond, Max: 50 * time.Millisecond}),
		WithOnConnect(func() { connects <- struct{}{} }),
		WithOnDisconnect(func(error) { disconnects <- struct{}{} }),
	)
	<-connects

	conn1 := fs.accept(t)
	conn1.Close()

	// The replacement connection greets the client with a snapshot.
	go func() {
		conn2 := <-fs.conns
		conn2.Write([]byte(serverUpdateLine))
	}()

	batch, err := c.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(batch) != 1 || batch[0].Err != nil {
		t.Fatalf("batch = %+v", batch)
	}

	select {
	case <-disconnects:
	default:
		t.Error("disconnect callback did not fire")
	}
	select {
	case <-connects:
	default:
		t.Error("connect callback did not fire again after reconnect")
	}
}

func TestStatusChangeCallback(t *testing.T) {
	fs := newFakeServer(t)

	type change struct {
		connected bool
		err       error
	}
	changes := make(chan change, 4)
	c := openTest(t, fs,
		WithBackoff(BackoffConfig{Initial: 10 * time.Millisecond, Max: 50 * time.Millisecond}),
		WithOnStatusChange(func(connected bool, err error) {
			changes <- change{connected, err}
		}),
	)

	if got := <-changes; !got.connected || got.err != nil {
		t.Fatalf("initial change = %+v, want connected", got)
	}

	conn1 := fs.accept(t)
	conn1.Close()

	go func() {
		conn2 := <-fs.conns
		conn2.Write([]byte(serverUpdateLine))
	}()

	if _, err := c.Receive(context.Background()); err != nil {
		t.Fatalf("Receive() error = %v", err)
	}

	got := <-changes
	if got.connected || got.err == nil {
		t.Fatalf("change after drop = %+v, want disconnected with error", got)
	}
	if got := <-changes; !got.connected || got.err != nil {
		t.Fatalf("change after redial = %+v, want connected", got)
	}
}

func TestReconnectExhausted(t *testing.T) {
	fs := newFakeServer(t)

	failures := make(chan int, 8)
	c := openTest(t, fs,
		WithBackoff(BackoffConfig{Initial: 5 * time.Millisecond, Max: 10 * time.Millisecond, MaxAttempts: 2}),
		WithOnReconnectFailed(func(attempt int, err error) { failures <- attempt }),
	)
	conn := fs.accept(t)

	// Kill the server entirely so reconnects cannot succeed.
	fs.ln.Close()
	conn.Close()

	if _, err := c.Receive(context.Background()); err == nil {
		t.Fatal("Receive() error = nil after exhausted reconnect")
	}
	if got := len(failures); got != 2 {
		t.Errorf("reconnect-failed callbacks = %d, want 2", got)
	}

	// The stream has ended for good.
	if _, err := c.Receive(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("subsequent Receive() error = %v, want ErrClosed", err)
	}
	if _, err := c.ServerStatus(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after exhaustion error = %v, want ErrClosed", err)
	}
}

func TestCancelUnblocksReceive(t *testing.T) {
	fs := newFakeServer(t)
	c := openTest(t, fs)
	fs.accept(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(ctx)
		done <- err
	}()

	// Let Receive park in the blocking read before canceling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Receive() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not return after cancellation")
	}
}

func TestCloseUnblocksReceive(t *testing.T) {
	fs := newFakeServer(t)
	c := openTest(t, fs)
	fs.accept(t)

	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(context.Background())
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Receive() error = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not return after Close")
	}

	if _, err := c.ServerStatus(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close error = %v, want ErrClosed", err)
	}
}

func TestDialUnsupportedScheme(t *testing.T) {
	if _, err := Open(context.Background(), "ftp://localhost:1705"); err == nil {
		t.Fatal("Open() error = nil for unsupported scheme")
	}
}
