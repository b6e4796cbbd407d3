// Package protocol implements the Snapcast JSON-RPC control protocol.
//
// The protocol is newline-delimited JSON-RPC 2.0 over a byte stream. Requests
// carry a correlation id that the server echoes back in the matching result or
// error; notifications are unsolicited and carry no id. Result payloads are
// untagged: their JSON shape alone does not identify the request that produced
// them, so the codec records an expectation for every request it encodes (see
// Pending) and consumes it when the reply arrives.
//
// The package is transport-agnostic. LineFramer splits a raw byte stream into
// frames, EncodeCommand produces outbound frames, and Classify turns one frame
// into a typed Message. Connection handling lives in package client.
package protocol
