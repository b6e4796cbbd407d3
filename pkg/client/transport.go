package client

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// transport is one live duplex connection. ReadChunk blocks until the peer
// delivers bytes; chunk boundaries carry no meaning, framing happens above.
type transport interface {
	ReadChunk() ([]byte, error)
	Write(p []byte) error
	Close() error
}

// dialTransport connects to addr. Supported forms: "tcp://host:port",
// "ws://..." or "wss://..." for the websocket endpoint, and a bare
// "host:port" which is treated as TCP.
func dialTransport(ctx context.Context, addr string, timeout time.Duration) (transport, error) {
	scheme, rest := "tcp", addr
	if i := strings.Index(addr, "://"); i >= 0 {
		scheme, rest = addr[:i], addr[i+3:]
	}
	switch scheme {
	case "tcp":
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", rest)
		if err != nil {
			return nil, fmt.Errorf("client: dial %s: %w", addr, err)
		}
		return &tcpTransport{conn: conn}, nil
	case "ws", "wss":
		d := websocket.Dialer{HandshakeTimeout: timeout}
		conn, resp, err := d.DialContext(ctx, addr, nil)
		if err != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, fmt.Errorf("client: dial %s: %w", addr, err)
		}
		return &wsTransport{conn: conn}, nil
	}
	return nil, fmt.Errorf("client: unsupported scheme %q in %q", scheme, addr)
}

type tcpTransport struct {
	conn net.Conn
	buf  [4096]byte
}

func (t *tcpTransport) ReadChunk() ([]byte, error) {
	n, err := t.conn.Read(t.buf[:])
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, t.buf[:n])
		return chunk, nil
	}
	return nil, err
}

func (t *tcpTransport) Write(p []byte) error {
	_, err := t.conn.Write(p)
	return err
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

// wsTransport adapts the websocket endpoint to the byte-stream shape the
// framer expects: every websocket message is one frame, so reads append the
// delimiter and writes strip it.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) ReadChunk() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (t *wsTransport) Write(p []byte) error {
	return t.conn.WriteMessage(websocket.TextMessage, trimNewline(p))
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

func trimNewline(p []byte) []byte {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		return p[:n-1]
	}
	return p
}
