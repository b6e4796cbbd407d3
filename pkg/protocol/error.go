package protocol

import (
	"encoding/json"
	"fmt"
)

// ErrorCode is a JSON-RPC error code from the server.
type ErrorCode int

// Known error codes. Anything else is carried through verbatim.
const (
	CodeParseError     ErrorCode = -32700
	CodeInvalidRequest ErrorCode = -32600
	CodeMethodNotFound ErrorCode = -32601
	CodeInvalidParams  ErrorCode = -32602
	CodeInternalError  ErrorCode = -32603
)

// String returns the name of the code, or "Unknown" for codes outside the
// closed set.
func (c ErrorCode) String() string {
	switch c {
	case CodeParseError:
		return "ParseError"
	case CodeInvalidRequest:
		return "InvalidRequest"
	case CodeMethodNotFound:
		return "MethodNotFound"
	case CodeInvalidParams:
		return "InvalidParams"
	case CodeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Known reports whether the code belongs to the closed set.
func (c ErrorCode) Known() bool {
	switch c {
	case CodeParseError, CodeInvalidRequest, CodeMethodNotFound, CodeInvalidParams, CodeInternalError:
		return true
	}
	return false
}

// ServerError is an error the server returned for a request. It satisfies
// error so it can flow through a receive batch as a normal failure.
type ServerError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("snapserver: %s (%d): %s", e.Code, int(e.Code), e.Message)
}

func decodeServerError(raw json.RawMessage) (*ServerError, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("protocol: malformed error object: %w", err)
	}
	se := &ServerError{}
	rawCode, ok := doc["code"]
	if !ok {
		return nil, fmt.Errorf("protocol: error object missing code")
	}
	if err := json.Unmarshal(rawCode, &se.Code); err != nil {
		return nil, fmt.Errorf("protocol: bad error code: %w", err)
	}
	rawMsg, ok := doc["message"]
	if !ok {
		return nil, fmt.Errorf("protocol: error object missing message")
	}
	if err := json.Unmarshal(rawMsg, &se.Message); err != nil {
		return nil, fmt.Errorf("protocol: bad error message: %w", err)
	}
	return se, nil
}
