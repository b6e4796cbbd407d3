package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUTF8 is returned for frames that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("protocol: frame is not valid UTF-8")

	// ErrNotProtocolMessage is returned for well-formed JSON that carries
	// neither a method, a result, nor an error member.
	ErrNotProtocolMessage = errors.New("protocol: not a protocol message")
)

// Message is one classified inbound frame. Exactly one of Result,
// Notification, and Err is set.
type Message struct {
	JSONRPC      string
	ID           uuid.UUID // zero for notifications
	Result       Result
	Notification Notification
	Err          *ServerError
}

// Classify parses a single frame and resolves it against the pending-request
// registry. Members are checked in a fixed order: a "method" member makes the
// frame a notification, otherwise a "result" member makes it a result,
// otherwise an "error" member makes it a server error. Result frames whose id
// is found in pending consume that entry; unknown ids fall back to
// self-describing payload shapes.
func Classify(frame []byte, pending *Pending) (*Message, error) {
	if !utf8.Valid(frame) {
		return nil, ErrInvalidUTF8
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(frame, &doc); err != nil {
		return nil, fmt.Errorf("protocol: parse frame: %w", err)
	}

	msg := &Message{JSONRPC: Version}
	if raw, ok := doc["jsonrpc"]; ok {
		if err := json.Unmarshal(raw, &msg.JSONRPC); err != nil {
			return nil, fmt.Errorf("protocol: parse jsonrpc member: %w", err)
		}
	}

	if raw, ok := doc["method"]; ok {
		var method Method
		if err := json.Unmarshal(raw, &method); err != nil {
			return nil, fmt.Errorf("protocol: parse method member: %w", err)
		}
		n, err := decodeNotification(method, doc["params"])
		if err != nil {
			return nil, err
		}
		msg.Notification = n
		return msg, nil
	}

	if raw, ok := doc["result"]; ok {
		id, err := parseID(doc)
		if err != nil {
			return nil, err
		}
		msg.ID = id
		if ctx, ok := pending.Resolve(id); ok {
			msg.Result, err = decodeResult(ctx, raw)
		} else {
			msg.Result, err = decodeResultGeneric(raw)
		}
		if err != nil {
			return nil, err
		}
		return msg, nil
	}

	if raw, ok := doc["error"]; ok {
		id, err := parseID(doc)
		if err != nil {
			return nil, err
		}
		msg.ID = id
		pending.Resolve(id)
		msg.Err, err = decodeServerError(raw)
		if err != nil {
			return nil, err
		}
		return msg, nil
	}

	return nil, ErrNotProtocolMessage
}

func parseID(doc map[string]json.RawMessage) (uuid.UUID, error) {
	raw, ok := doc["id"]
	if !ok {
		return uuid.Nil, errors.New("protocol: response has no id")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return uuid.Nil, fmt.Errorf("protocol: parse id member: %w", err)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("protocol: parse id %q: %w", s, err)
	}
	return id, nil
}
